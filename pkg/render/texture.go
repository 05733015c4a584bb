package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"golang.org/x/image/draw"
)

// FlatSize is the edge length of a floor/ceiling tile.
const FlatSize = 64

// Texture is a paletted wall or sky texture stored column-major, so a
// column drawer can read one column as a contiguous slice.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte // column-major

	// Brightmap marks the colors drawn unlit; nil for none.
	Brightmap *[256]byte

	widthMask int // Width-1 for power-of-two widths, else -1
	posts     [][]Post
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(name string, width, height int) *Texture {
	t := &Texture{
		Name:      name,
		Width:     width,
		Height:    height,
		Pixels:    make([]byte, width*height),
		widthMask: -1,
	}
	if width&(width-1) == 0 {
		t.widthMask = width - 1
	}
	return t
}

func (t *Texture) wrap(col int) int {
	if t.widthMask >= 0 {
		return col & t.widthMask
	}
	col %= t.Width
	if col < 0 {
		col += t.Width
	}
	return col
}

// Column returns texture column col, wrapped into the texture width.
func (t *Texture) Column(col int) []byte {
	col = t.wrap(col)
	return t.Pixels[col*t.Height : (col+1)*t.Height]
}

// Mask splits every column into posts with transparent as the hole color.
// Call it again after editing the pixels.
func (t *Texture) Mask(transparent byte) {
	t.posts = make([][]Post, t.Width)
	for x := range t.Width {
		col := t.Column(x)
		for y := 0; y < t.Height; {
			if col[y] == transparent {
				y++
				continue
			}
			start := y
			for y < t.Height && col[y] != transparent {
				y++
			}
			t.posts[x] = append(t.posts[x], Post{TopDelta: start, Pixels: col[start:y]})
		}
	}
}

// Posts returns the opaque runs of column col. An unmasked texture has one
// post per column.
func (t *Texture) Posts(col int) []Post {
	if t.posts == nil {
		t.posts = make([][]Post, t.Width)
		for x := range t.Width {
			t.posts[x] = []Post{{Pixels: t.Column(x)}}
		}
	}
	return t.posts[t.wrap(col)]
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c byte) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[x*t.Height+y] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) byte {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return 0
	}
	return t.Pixels[x*t.Height+y]
}

// Flat is a FlatSize x FlatSize row-major floor/ceiling tile.
type Flat struct {
	Name   string
	Pixels []byte
	Liquid bool // animated with the swirl effect
}

// NewFlat creates an empty flat.
func NewFlat(name string) *Flat {
	return &Flat{Name: name, Pixels: make([]byte, FlatSize*FlatSize)}
}

// MaterialSource resolves material ids to decoded textures and flats.
type MaterialSource interface {
	// Texture returns a wall texture, or nil for level.NoTexture.
	Texture(id int) *Texture
	// Flat returns a floor/ceiling tile.
	Flat(id int) *Flat
	// Sky returns the sky texture.
	Sky() *Texture
	// IsSky reports whether a flat id is the sky marker.
	IsSky(flat int) bool
}

// MaterialSet is an in-memory MaterialSource.
type MaterialSet struct {
	Textures   []*Texture
	Flats      []*Flat
	SkyTexture *Texture
	SkyFlat    int
}

// Texture returns texture id, or nil when id is out of range.
func (m *MaterialSet) Texture(id int) *Texture {
	if id < 0 || id >= len(m.Textures) {
		return nil
	}
	return m.Textures[id]
}

// Flat returns flat id, falling back to flat 0, or nil when there are
// no flats.
func (m *MaterialSet) Flat(id int) *Flat {
	if len(m.Flats) == 0 {
		return nil
	}
	if id < 0 || id >= len(m.Flats) {
		id = 0
	}
	return m.Flats[id]
}

// Sky returns the sky texture.
func (m *MaterialSet) Sky() *Texture {
	return m.SkyTexture
}

// IsSky reports whether flat is the sky flat.
func (m *MaterialSet) IsSky(flat int) bool {
	return flat == m.SkyFlat
}

// TextureID returns the index of a named texture, or -1.
func (m *MaterialSet) TextureID(name string) int {
	for i, t := range m.Textures {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// FlatID returns the index of a named flat, or -1.
func (m *MaterialSet) FlatID(name string) int {
	for i, f := range m.Flats {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string, pal *Palette) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return TextureFromImage(path, img, pal), nil
}

// TextureFromImage quantizes an image into a texture.
func TextureFromImage(name string, img image.Image, pal *Palette) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(name, width, height)
	for y := range height {
		for x := range width {
			tex.SetPixel(x, y, pal.NearestColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return tex
}

// FlatFromImage resamples an image to FlatSize and quantizes it.
func FlatFromImage(name string, img image.Image, pal *Palette) *Flat {
	src := img
	if b := img.Bounds(); b.Dx() != FlatSize || b.Dy() != FlatSize {
		dst := image.NewRGBA(image.Rect(0, 0, FlatSize, FlatSize))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}
	b := src.Bounds()
	flat := NewFlat(name)
	for y := range FlatSize {
		for x := range FlatSize {
			flat.Pixels[y*FlatSize+x] = pal.NearestColor(src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return flat
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(name string, width, height, checkSize int, c1, c2 byte) *Texture {
	tex := NewTexture(name, width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewCheckerFlat creates a procedural checkerboard flat.
func NewCheckerFlat(name string, checkSize int, c1, c2 byte) *Flat {
	flat := NewFlat(name)
	for y := range FlatSize {
		for x := range FlatSize {
			if (x/checkSize+y/checkSize)%2 == 0 {
				flat.Pixels[y*FlatSize+x] = c1
			} else {
				flat.Pixels[y*FlatSize+x] = c2
			}
		}
	}
	return flat
}
