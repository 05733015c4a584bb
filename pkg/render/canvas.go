package render

// Maximum surface dimensions.
const (
	MaxWidth  = 1280
	MaxHeight = 800
)

// Canvas is the indexed pixel sink the drawers write to.
// Screen is the frame, Back the persistent border source, and Mask the
// scratch plane for the fuzz mask pass. All three share Pitch.
type Canvas struct {
	Width  int
	Height int
	Pitch  int // bytes per row

	Screen []byte
	Back   []byte
	Mask   []byte

	viewX, viewY int
	viewW, viewH int
	rows         []int // view-relative row start offsets
}

// NewCanvas allocates a canvas. The view window starts as the whole surface.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		Width:  width,
		Height: height,
		Pitch:  width,
		Screen: make([]byte, width*height),
		Back:   make([]byte, width*height),
		Mask:   make([]byte, width*height),
		rows:   make([]int, height),
	}
	c.SetView(0, 0, width, height)
	return c
}

// SetView sets the view window that view-relative offsets address.
func (c *Canvas) SetView(x, y, w, h int) {
	c.viewX, c.viewY, c.viewW, c.viewH = x, y, w, h
	for row := range h {
		c.rows[row] = (y+row)*c.Pitch + x
	}
}

// View returns the view window.
func (c *Canvas) View() (x, y, w, h int) {
	return c.viewX, c.viewY, c.viewW, c.viewH
}

// ViewOffset returns the buffer offset of view-relative pixel (x, y).
func (c *Canvas) ViewOffset(x, y int) int {
	return c.rows[y] + x
}

// Index returns the buffer offset of surface pixel (x, y).
func (c *Canvas) Index(x, y int) int {
	return y*c.Pitch + x
}

// Fill sets a surface rectangle of buf to one color, clipped to the surface.
func (c *Canvas) Fill(buf []byte, x, y, w, h int, color byte) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, c.Width), min(y+h, c.Height)
	for row := y0; row < y1; row++ {
		line := buf[row*c.Pitch+x0 : row*c.Pitch+x1]
		for i := range line {
			line[i] = color
		}
	}
}

// FillView fills the view window of buf.
func (c *Canvas) FillView(buf []byte, color byte) {
	c.Fill(buf, c.viewX, c.viewY, c.viewW, c.viewH, color)
}

// CopyRect copies a surface rectangle from Back to Screen.
func (c *Canvas) CopyRect(x, y, w, h int) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, c.Width), min(y+h, c.Height)
	if x0 >= x1 {
		return
	}
	for row := y0; row < y1; row++ {
		off := row * c.Pitch
		copy(c.Screen[off+x0:off+x1], c.Back[off+x0:off+x1])
	}
}

// SetPixel sets a surface pixel on Screen. Out of bounds writes are ignored.
func (c *Canvas) SetPixel(x, y int, color byte) {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return
	}
	c.Screen[y*c.Pitch+x] = color
}

// Pixel returns a surface pixel of Screen, or 0 when out of bounds.
func (c *Canvas) Pixel(x, y int) byte {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return 0
	}
	return c.Screen[y*c.Pitch+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color byte) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.SetPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
