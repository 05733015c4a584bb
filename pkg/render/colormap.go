package render

import "github.com/chewxy/math32"

// Colormap layout: NumColormaps light levels, then the inverse map, then black.
const (
	NumColormaps    = 32
	InverseColormap = NumColormaps
	BlackColormap   = NumColormaps + 1
	ColormapTables  = NumColormaps + 2
	ColormapSize    = ColormapTables * 256
)

// ColormapProvider supplies lighting tables per colormap set.
// Set 0 is the normal set; further sets are tinted regimes such as underwater.
type ColormapProvider interface {
	// Colormap returns the ColormapSize table for a set.
	Colormap(set int) []byte
	// NumSets returns how many sets are available.
	NumSets() int
}

// Tint describes an extra colormap set.
type Tint struct {
	Name     string
	Color    Color
	Strength float32 // 0..1, how far each shade is pulled toward Color
}

// Colormaps is the default ColormapProvider built from a palette.
type Colormaps struct {
	sets  [][]byte
	names []string
}

// NewColormaps builds the normal set plus one set per tint.
func NewColormaps(pal *Palette, tints ...Tint) *Colormaps {
	c := &Colormaps{}
	c.sets = append(c.sets, buildColormap(pal, Tint{Name: "normal"}))
	c.names = append(c.names, "normal")
	for _, t := range tints {
		c.sets = append(c.sets, buildColormap(pal, t))
		c.names = append(c.names, t.Name)
	}
	return c
}

// Colormap returns the tables for set, or set 0 when set is out of range.
func (c *Colormaps) Colormap(set int) []byte {
	if set < 0 || set >= len(c.sets) {
		set = 0
	}
	return c.sets[set]
}

// NumSets returns the number of colormap sets.
func (c *Colormaps) NumSets() int {
	return len(c.sets)
}

// Name returns the name of a set.
func (c *Colormaps) Name(set int) string {
	if set < 0 || set >= len(c.names) {
		return ""
	}
	return c.names[set]
}

func buildColormap(pal *Palette, tint Tint) []byte {
	cm := make([]byte, ColormapSize)
	for level := range NumColormaps {
		// light falls off slightly faster than linear
		scale := math32.Pow(1-float32(level)/NumColormaps, 1.15)
		table := cm[level*256 : (level+1)*256]
		for i, c := range pal.Colors {
			r, g, b := float32(c.R), float32(c.G), float32(c.B)
			if tint.Strength > 0 {
				r += (float32(tint.Color.R) - r) * tint.Strength
				g += (float32(tint.Color.G) - g) * tint.Strength
				b += (float32(tint.Color.B) - b) * tint.Strength
			}
			table[i] = pal.Nearest(
				uint8(clampf(r*scale, 0, 255)),
				uint8(clampf(g*scale, 0, 255)),
				uint8(clampf(b*scale, 0, 255)),
			)
		}
	}

	inverse := cm[InverseColormap*256 : (InverseColormap+1)*256]
	for i := range pal.Colors {
		gray := uint8(math32.Round((1 - pal.Luminance(byte(i))) * 255))
		inverse[i] = pal.Nearest(gray, gray, gray)
	}

	black := pal.Nearest(0, 0, 0)
	for i := range 256 {
		cm[BlackColormap*256+i] = black
	}
	return cm
}

// ColormapTable returns the 256-entry table for one level of a set.
func ColormapTable(cm []byte, level int) []byte {
	return cm[level<<8 : (level+1)<<8]
}
