package render

import "github.com/taigrr/retrorender/pkg/fixed"

// ColumnState is the scratch state for one vertical pixel run. Callers fill
// it before every draw; drawers never validate it. YL must not exceed YH and
// both must lie inside the view window.
type ColumnState struct {
	X, YL, YH int

	// Frac is the texture row of pixel YL, Step the rows per pixel.
	Frac fixed.Fixed
	Step fixed.Fixed

	Source    []byte
	TexHeight int // real height of Source for wrapping drawers

	Colormap     []byte // lighting table
	NextColormap []byte // neighbouring table for dithered lighting
	DitherZ      int    // depth fraction 0..255 selecting NextColormap
	FullColormap []byte // every level of the active set, for fuzz
	Translation  []byte // player color translation
	Color        byte   // solid color for untextured drawers

	// Brightmap marks source colors drawn with level 0 of FullColormap.
	Brightmap *[256]byte
}

// ColumnDrawer writes the pixels of a column.
type ColumnDrawer interface {
	DrawColumn(cv *Canvas, dc *ColumnState)
}

// ColumnFunc adapts a function to ColumnDrawer.
type ColumnFunc func(cv *Canvas, dc *ColumnState)

// DrawColumn calls f.
func (f ColumnFunc) DrawColumn(cv *Canvas, dc *ColumnState) {
	f(cv, dc)
}

// ditherMatrix is an 8x8 ordered threshold matrix.
var ditherMatrix = [8][8]uint8{
	{0, 0, 224, 224, 48, 48, 208, 208},
	{0, 0, 224, 224, 48, 48, 208, 208},
	{176, 176, 80, 80, 128, 128, 96, 96},
	{176, 176, 80, 80, 128, 128, 96, 96},
	{192, 192, 32, 32, 240, 240, 16, 16},
	{192, 192, 32, 32, 240, 240, 16, 16},
	{112, 112, 144, 144, 64, 64, 160, 160},
	{112, 112, 144, 144, 64, 64, 160, 160},
}

// ditherNext reports whether pixel (x, y) at depth fraction z takes the
// next lighting table.
func ditherNext(x, y, z int) bool {
	return int(ditherMatrix[y&7][x&7]) < z
}

// ditherTable picks between the two lighting tables of a column pixel.
func (dc *ColumnState) ditherTable(y int) []byte {
	if ditherNext(dc.X, y, dc.DitherZ) {
		return dc.NextColormap
	}
	return dc.Colormap
}

// drawColumn is the plain textured column.
func drawColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, step := dc.Frac, dc.Step
	cm, src := dc.Colormap, dc.Source
	for n := dc.YH - dc.YL; n >= 0; n-- {
		screen[dest] = cm[src[frac>>fixed.FracBits]]
		dest += pitch
		frac += step
	}
}

func drawDitherColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, src := dc.Frac, dc.Source
	for y := dc.YL; y <= dc.YH; y++ {
		screen[dest] = dc.ditherTable(y)[src[frac>>fixed.FracBits]]
		dest += pitch
		frac += dc.Step
	}
}

func drawTranslatedColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac := dc.Frac
	cm, tr, src := dc.Colormap, dc.Translation, dc.Source
	for n := dc.YH - dc.YL; n >= 0; n-- {
		screen[dest] = cm[tr[src[frac>>fixed.FracBits]]]
		dest += pitch
		frac += dc.Step
	}
}

func drawDitherTranslatedColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, tr, src := dc.Frac, dc.Translation, dc.Source
	for y := dc.YL; y <= dc.YH; y++ {
		screen[dest] = dc.ditherTable(y)[tr[src[frac>>fixed.FracBits]]]
		dest += pitch
		frac += dc.Step
	}
}

// remapColumn substitutes a fixed color remap before lighting.
type remapColumn struct {
	remap  *[256]byte
	dither bool
}

func (r remapColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, src, remap := dc.Frac, dc.Source, r.remap
	for y := dc.YL; y <= dc.YH; y++ {
		cm := dc.Colormap
		if r.dither {
			cm = dc.ditherTable(y)
		}
		screen[dest] = cm[remap[src[frac>>fixed.FracBits]]]
		dest += pitch
		frac += dc.Step
	}
}

// drawColorColumn fills with a lit solid color.
func drawColorColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	c := dc.Colormap[dc.Color]
	for n := dc.YH - dc.YL; n >= 0; n-- {
		screen[dest] = c
		dest += pitch
	}
}

func drawDitherColorColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	for y := dc.YL; y <= dc.YH; y++ {
		screen[dest] = dc.ditherTable(y)[dc.Color]
		dest += pitch
	}
}

// drawSkyColorColumn fills with the unlit sky color.
func drawSkyColorColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	for n := dc.YH - dc.YL; n >= 0; n-- {
		screen[dest] = dc.Color
		dest += pitch
	}
}

// wrapFrac brings frac into [0, height) texels.
func wrapFrac(frac fixed.Fixed, height int) fixed.Fixed {
	hm := fixed.Fixed(height << fixed.FracBits)
	frac %= hm
	if frac < 0 {
		frac += hm
	}
	return frac
}

// drawWallColumn wraps the source at TexHeight, masking for power-of-two
// heights and stepping with a modulo fixup otherwise.
func drawWallColumn(cv *Canvas, dc *ColumnState) {
	wallColumn(cv, dc, false, false)
}

func drawDitherWallColumn(cv *Canvas, dc *ColumnState) {
	wallColumn(cv, dc, true, false)
}

// drawBrightmapWallColumn draws the colors marked in Brightmap unlit.
func drawBrightmapWallColumn(cv *Canvas, dc *ColumnState) {
	wallColumn(cv, dc, false, true)
}

func drawBrightmapDitherWallColumn(cv *Canvas, dc *ColumnState) {
	wallColumn(cv, dc, true, true)
}

func wallColumn(cv *Canvas, dc *ColumnState, dither, bright bool) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, step, src := dc.Frac, dc.Step, dc.Source
	cm := dc.Colormap
	height := dc.TexHeight

	var bm *[256]byte
	var full []byte
	if bright && dc.Brightmap != nil && len(dc.FullColormap) >= 256 {
		bm, full = dc.Brightmap, dc.FullColormap[:256]
	}
	put := func(y int, dot byte) {
		switch {
		case bm != nil && bm[dot] != 0:
			screen[dest] = full[dot]
		case dither:
			screen[dest] = dc.ditherTable(y)[dot]
		default:
			screen[dest] = cm[dot]
		}
	}

	if height&(height-1) == 0 {
		mask := fixed.Fixed(height - 1)
		for y := dc.YL; y <= dc.YH; y++ {
			put(y, src[(frac>>fixed.FracBits)&mask])
			dest += pitch
			frac += step
		}
		return
	}

	hm := fixed.Fixed(height << fixed.FracBits)
	frac = wrapFrac(frac, height)
	for y := dc.YL; y <= dc.YH; y++ {
		put(y, src[frac>>fixed.FracBits])
		dest += pitch
		if frac += step; frac >= hm {
			frac -= hm
			if frac >= hm {
				frac %= hm
			}
		}
	}
}

// drawFlippedSkyColumn mirrors the sky texture below its 128th row.
func drawFlippedSkyColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, cm, src := dc.Frac, dc.Colormap, dc.Source
	last := len(src) - 1
	for n := dc.YH - dc.YL; n >= 0; n-- {
		i := int(frac >> fixed.FracBits)
		if i >= 128 {
			i = 126 - (i & 127)
		}
		screen[dest] = cm[src[fixed.Clamp(i, 0, last)]]
		dest += pitch
		frac += dc.Step
	}
}

// drawShadowColumn darkens what is already on screen: the first and last
// rows with NextColormap, the rows between with Colormap.
func drawShadowColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	edge, inner := dc.NextColormap, dc.Colormap
	for y := dc.YL; y <= dc.YH; y++ {
		if y == dc.YL || y == dc.YH {
			screen[dest] = edge[screen[dest]]
		} else {
			screen[dest] = inner[screen[dest]]
		}
		dest += pitch
	}
}
