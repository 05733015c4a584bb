package render

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Palette layout: 16 ramps of 16 shades each, brightest shade first.
const (
	RampShades = 16
	NumRamps   = 16
)

// Ramp base indices.
const (
	RampGray   = 0
	RampFlesh  = 16
	RampTan    = 32
	RampBrown  = 48
	RampOlive  = 64
	RampStone  = 80
	RampSteel  = 96
	RampGreen  = 112
	RampUmber  = 128
	RampOrange = 144
	RampYellow = 160
	RampRed    = 176
	RampBlue   = 192
	RampTeal   = 208
	RampPurple = 224
	RampFire   = 240
)

// NoTextureColor is the palette index walls use when textures are disabled.
const NoTextureColor = RampStone + 4

// Ramp describes one run of shades from Light down to Dark.
type Ramp struct {
	Name  string
	Light Color
	Dark  Color
}

// DefaultRamps is the ramp set used by DefaultPalette, in palette order.
var DefaultRamps = [NumRamps]Ramp{
	{"gray", RGB(255, 255, 255), RGB(0, 0, 0)},
	{"flesh", RGB(255, 196, 168), RGB(72, 36, 24)},
	{"tan", RGB(232, 208, 160), RGB(60, 48, 28)},
	{"brown", RGB(184, 132, 84), RGB(36, 20, 8)},
	{"olive", RGB(168, 168, 100), RGB(32, 32, 12)},
	{"stone", RGB(200, 192, 176), RGB(36, 32, 28)},
	{"steel", RGB(168, 184, 208), RGB(20, 24, 36)},
	{"green", RGB(120, 255, 120), RGB(0, 36, 0)},
	{"umber", RGB(176, 112, 72), RGB(28, 12, 4)},
	{"orange", RGB(255, 176, 64), RGB(64, 24, 0)},
	{"yellow", RGB(255, 255, 140), RGB(72, 56, 0)},
	{"red", RGB(255, 96, 96), RGB(48, 0, 0)},
	{"blue", RGB(140, 140, 255), RGB(0, 0, 48)},
	{"teal", RGB(120, 232, 224), RGB(0, 36, 40)},
	{"purple", RGB(232, 120, 255), RGB(36, 0, 48)},
	{"fire", RGB(255, 255, 220), RGB(160, 16, 0)},
}

// Palette is a 256-entry indexed color table with a nearest-color matcher.
type Palette struct {
	Colors [256]Color

	// nearest-match cache over a 5-bit-per-channel cube
	cache   [32 * 32 * 32]int16
	palette color.Palette
}

// NewPalette builds a palette from explicit colors.
func NewPalette(colors [256]Color) *Palette {
	p := &Palette{Colors: colors}
	for i := range p.cache {
		p.cache[i] = -1
	}
	p.palette = make(color.Palette, 256)
	for i, c := range colors {
		c.A = 255
		p.Colors[i] = c
		p.palette[i] = c
	}
	return p
}

// DefaultPalette builds the ramp palette from DefaultRamps.
func DefaultPalette() *Palette {
	var colors [256]Color
	for r, ramp := range DefaultRamps {
		for s := range RampShades {
			t := float32(s) / float32(RampShades-1)
			// perceptual falloff: shades darken faster near the end
			t = math32.Pow(t, 1.35)
			colors[r*RampShades+s] = lerpRGB(ramp.Light, ramp.Dark, t)
		}
	}
	return NewPalette(colors)
}

func lerpRGB(a, b Color, t float32) Color {
	mix := func(x, y uint8) uint8 {
		v := float32(x) + (float32(y)-float32(x))*t
		return uint8(math32.Round(clampf(v, 0, 255)))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Nearest returns the palette index closest to the given color.
// Results are cached per 5-bit color cube cell.
func (p *Palette) Nearest(r, g, b uint8) byte {
	key := int(r>>3)<<10 | int(g>>3)<<5 | int(b>>3)
	if v := p.cache[key]; v >= 0 {
		return byte(v)
	}
	best, bestDist := 0, int(^uint(0)>>1)
	for i, c := range p.Colors {
		dr := int(c.R) - int(r)
		dg := int(c.G) - int(g)
		db := int(c.B) - int(b)
		// weighted towards green, as the eye is
		d := 3*dr*dr + 4*dg*dg + 2*db*db
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	p.cache[key] = int16(best)
	return byte(best)
}

// NearestColor is Nearest for a color.Color.
func (p *Palette) NearestColor(c color.Color) byte {
	r, g, b, _ := c.RGBA()
	return p.Nearest(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Luminance returns the perceived brightness of palette entry i in [0,1].
func (p *Palette) Luminance(i byte) float32 {
	c := p.Colors[i]
	return (0.299*float32(c.R) + 0.587*float32(c.G) + 0.114*float32(c.B)) / 255
}

// ColorPalette returns the palette as an image/color palette.
func (p *Palette) ColorPalette() color.Palette {
	return p.palette
}
