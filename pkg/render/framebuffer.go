package render

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Framebuffer is the RGBA image a canvas is presented through.
// For the terminal the height is twice the row count, since every cell
// shows two pixels with a half block.
type Framebuffer struct {
	Width  int
	Height int
	Image  *image.RGBA

	// canvas sized staging image for scaled blits
	src *image.RGBA
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Image:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	pix := fb.Image.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// SetPixel sets a pixel at (x, y). Out of bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Image.SetRGBA(x, y, c)
}

// GetPixel returns the color at (x, y), or transparent black when out of
// bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Image.RGBAAt(x, y)
}

// Blit converts the canvas screen through a palette and scales it to the
// framebuffer with nearest neighbour sampling.
func (fb *Framebuffer) Blit(cv *Canvas, pal *Palette) {
	dst := fb.Image
	if cv.Width != fb.Width || cv.Height != fb.Height {
		if fb.src == nil || fb.src.Rect.Dx() != cv.Width || fb.src.Rect.Dy() != cv.Height {
			fb.src = image.NewRGBA(image.Rect(0, 0, cv.Width, cv.Height))
		}
		dst = fb.src
	}

	for y := range cv.Height {
		row := cv.Screen[y*cv.Pitch : y*cv.Pitch+cv.Width]
		pix := dst.Pix[y*dst.Stride:]
		for x, c := range row {
			rgba := pal.Colors[c]
			i := x * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = rgba.R, rgba.G, rgba.B, 255
		}
	}

	if dst != fb.Image {
		draw.NearestNeighbor.Scale(fb.Image, fb.Image.Bounds(), fb.src, fb.src.Bounds(), draw.Src, nil)
	}
}

// ToImage returns the framebuffer image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	return fb.Image
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.Image)
}
