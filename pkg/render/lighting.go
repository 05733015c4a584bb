package render

import "github.com/taigrr/retrorender/pkg/fixed"

// Light table dimensions.
const (
	LightLevels     = 32
	LightSegShift   = 3 // sector light 0..255 to a light level
	LightBright     = 2
	MaxLightScale   = 384
	LightScaleShift = 12
	MaxLightZ       = 1024
	LightZShift     = 17

	// The weapon sprite keeps the coarser 16-level lighting so it looks the
	// same at every view size.
	OldLightLevels   = 16
	OldLightSegShift = 4
	OldMaxLightScale = 48
)

// Lighting maps (colormap set, light level, depth or scale) to a lighting
// table. Levels are shared across sets; the set picks which colormap they
// index.
type Lighting struct {
	colormaps ColormapProvider

	zlight         [LightLevels][MaxLightZ]uint8
	scalelight     [LightLevels][MaxLightScale]uint8
	psprscalelight [OldLightLevels][OldMaxLightScale]uint8
}

// NewLighting builds the depth tables for a FOV scale (tangent of half the
// horizontal FOV).
func NewLighting(cmaps ColormapProvider, fovScale fixed.Fixed) *Lighting {
	l := &Lighting{colormaps: cmaps}

	// Depth light is defined on the reference width so it is resolution
	// independent.
	proj := fixed.Mul(fixed.FromInt(OrigWidth), fixed.Div(fixed.FracUnit, fovScale))
	width := fixed.FromInt((proj.Int() + 1) / 2)
	for i := range LightLevels {
		start := ((LightLevels - LightBright - i) * 2) * NumColormaps / LightLevels
		for j := range MaxLightZ {
			scale := int(fixed.Div(width, fixed.Fixed((j+1)<<LightZShift)) >> LightScaleShift)
			l.zlight[i][j] = uint8(fixed.Clamp(start-scale/2, 0, NumColormaps-1))
		}
	}
	return l
}

// Resize rebuilds the scale tables for a view width.
func (l *Lighting) Resize(viewWidth int) {
	for i := range LightLevels {
		start := ((LightLevels - LightBright - i) * 2) * NumColormaps / LightLevels
		for j := range MaxLightScale {
			level := start - j*OrigWidth/(viewWidth*2)
			l.scalelight[i][j] = uint8(fixed.Clamp(level, 0, NumColormaps-1))
		}
	}
	for i := range OldLightLevels {
		start := ((OldLightLevels - LightBright - i) * 2) * NumColormaps / OldLightLevels
		for j := range OldMaxLightScale {
			l.psprscalelight[i][j] = uint8(fixed.Clamp(start-j/2, 0, NumColormaps-1))
		}
	}
}

// NumSets returns the number of colormap sets.
func (l *Lighting) NumSets() int {
	return l.colormaps.NumSets()
}

// Colormap returns the full table block for a set, clamping bad sets to 0.
func (l *Lighting) Colormap(set int) []byte {
	if set < 0 || set >= l.colormaps.NumSets() {
		set = 0
	}
	return l.colormaps.Colormap(set)
}

// ZLevel returns the colormap level for a light level and depth index.
func (l *Lighting) ZLevel(light, z int) int {
	return int(l.zlight[fixed.Clamp(light, 0, LightLevels-1)][fixed.Clamp(z, 0, MaxLightZ-1)])
}

// ScaleLevel returns the colormap level for a light level and scale index.
func (l *Lighting) ScaleLevel(light, scale int) int {
	return int(l.scalelight[fixed.Clamp(light, 0, LightLevels-1)][fixed.Clamp(scale, 0, MaxLightScale-1)])
}

// PSprLevel returns the weapon sprite colormap level.
func (l *Lighting) PSprLevel(light, scale int) int {
	return int(l.psprscalelight[fixed.Clamp(light, 0, OldLightLevels-1)][fixed.Clamp(scale, 0, OldMaxLightScale-1)])
}

// ZLight returns the lighting table for depth z in a set.
func (l *Lighting) ZLight(set, light, z int) []byte {
	return ColormapTable(l.Colormap(set), l.ZLevel(light, z))
}

// ScaleLight returns the lighting table for a wall or sprite scale in a set.
func (l *Lighting) ScaleLight(set, light, scale int) []byte {
	return ColormapTable(l.Colormap(set), l.ScaleLevel(light, scale))
}

// PSprLight returns the weapon sprite lighting table in a set.
func (l *Lighting) PSprLight(set, light, scale int) []byte {
	return ColormapTable(l.Colormap(set), l.PSprLevel(light, scale))
}
