package render

// BlendTable maps an (old pixel, new pixel) pair to the composited pixel.
// It is indexed dst<<8 | src.
type BlendTable []byte

// Blend returns the composite of src drawn over dst.
func (t BlendTable) Blend(dst, src byte) byte {
	return t[int(dst)<<8|int(src)]
}

// NewBlendTable builds a table by evaluating f for every palette pair and
// matching the result back into the palette.
func NewBlendTable(pal *Palette, f func(dst, src Color) Color) BlendTable {
	t := make(BlendTable, 256*256)
	for d := range 256 {
		dc := pal.Colors[d]
		for s := range 256 {
			c := f(dc, pal.Colors[s])
			t[d<<8|s] = pal.Nearest(c.R, c.G, c.B)
		}
	}
	return t
}

// PercentBlend draws src at pct percent opacity.
func PercentBlend(pal *Palette, pct int) BlendTable {
	return NewBlendTable(pal, func(dst, src Color) Color {
		mix := func(d, s uint8) uint8 {
			return uint8((int(s)*pct + int(d)*(100-pct)) / 100)
		}
		return Color{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 255}
	})
}

// AdditiveBlend adds src to dst, saturating.
func AdditiveBlend(pal *Palette) BlendTable {
	return NewBlendTable(pal, func(dst, src Color) Color {
		add := func(d, s uint8) uint8 {
			return uint8(min(int(d)+int(s), 255))
		}
		return Color{R: add(dst.R, src.R), G: add(dst.G, src.G), B: add(dst.B, src.B), A: 255}
	})
}

// FilterBlend composites through base only for source colors accepted by
// keep; every other source color is drawn opaque.
func FilterBlend(pal *Palette, base BlendTable, keep func(Color) bool) BlendTable {
	t := make(BlendTable, 256*256)
	for s := range 256 {
		blend := keep(pal.Colors[s])
		for d := range 256 {
			if blend {
				t[d<<8|s] = base[d<<8|s]
			} else {
				t[d<<8|s] = byte(s)
			}
		}
	}
	return t
}

func isRed(c Color) bool {
	return int(c.R) > int(c.G)+48 && int(c.R) > int(c.B)+48
}

func isGreen(c Color) bool {
	return int(c.G) > int(c.R)+48 && int(c.G) > int(c.B)+48
}

func isBlue(c Color) bool {
	return int(c.B) > int(c.R)+48 && int(c.B) > int(c.G)+48
}

func isRedOrWhite(c Color) bool {
	return isRed(c) || min(c.R, c.G, c.B) > 176
}

// NumTranslations is the number of player color translations.
const NumTranslations = 3

// Tables holds every palette-derived lookup the drawers read.
type Tables struct {
	Palette   *Palette
	Colormaps ColormapProvider

	Tint25, Tint33, Tint50, Tint75 BlendTable
	Additive                       BlendTable

	Red, Green, Blue      BlendTable
	RedWhite1, RedWhite2  BlendTable
	RedWhite50            BlendTable
	Red33, Green33        BlendTable
	Blue25                BlendTable
	RedToBlue, RedToGreen [256]byte

	// Translations recolor the green ramp of player sprites.
	Translations [NumTranslations][256]byte
}

// NewTables builds the blend, remap and translation tables for a palette.
func NewTables(pal *Palette, cmaps ColormapProvider) *Tables {
	t := &Tables{
		Palette:   pal,
		Colormaps: cmaps,
		Tint25:    PercentBlend(pal, 25),
		Tint33:    PercentBlend(pal, 33),
		Tint50:    PercentBlend(pal, 50),
		Tint75:    PercentBlend(pal, 75),
		Additive:  AdditiveBlend(pal),
	}
	t.Red = FilterBlend(pal, t.Additive, isRed)
	t.Green = FilterBlend(pal, t.Additive, isGreen)
	t.Blue = FilterBlend(pal, t.Additive, isBlue)
	t.RedWhite1 = FilterBlend(pal, t.Additive, isRedOrWhite)
	t.RedWhite2 = FilterBlend(pal, t.Tint75, isRedOrWhite)
	t.RedWhite50 = FilterBlend(pal, t.Tint50, isRedOrWhite)
	t.Red33 = FilterBlend(pal, t.Tint33, isRed)
	t.Green33 = FilterBlend(pal, t.Tint33, isGreen)
	t.Blue25 = FilterBlend(pal, t.Tint25, isBlue)

	for i := range 256 {
		t.RedToBlue[i] = byte(i)
		t.RedToGreen[i] = byte(i)
	}
	for i := range RampShades {
		t.RedToBlue[RampRed+i] = byte(RampBlue + i)
		t.RedToGreen[RampRed+i] = byte(RampGreen + i)
	}

	targets := [NumTranslations]int{RampSteel, RampOlive, RampTan}
	for n, base := range targets {
		for i := range 256 {
			t.Translations[n][i] = byte(i)
		}
		for i := range RampShades {
			t.Translations[n][RampGreen+i] = byte(base + i)
		}
	}
	return t
}
