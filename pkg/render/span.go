package render

import "github.com/taigrr/retrorender/pkg/fixed"

// SpanState is the scratch state for one horizontal pixel run on row Y.
// X1 must not exceed X2.
type SpanState struct {
	Y, X1, X2 int

	// Texture position of pixel X1 and its per-pixel step.
	XFrac, YFrac fixed.Fixed
	XStep, YStep fixed.Fixed

	Source []byte // FlatSize x FlatSize tile

	Colormap     []byte
	NextColormap []byte
	DitherZ      int
	Color        byte
}

// SpanDrawer writes the pixels of a span.
type SpanDrawer interface {
	DrawSpan(cv *Canvas, ds *SpanState)
}

// SpanFunc adapts a function to SpanDrawer.
type SpanFunc func(cv *Canvas, ds *SpanState)

// DrawSpan calls f.
func (f SpanFunc) DrawSpan(cv *Canvas, ds *SpanState) {
	f(cv, ds)
}

// flatIndex maps a texture position to a tile offset.
func flatIndex(xfrac, yfrac fixed.Fixed) int {
	return int((xfrac>>fixed.FracBits)&63) | int((yfrac>>10)&4032)
}

func drawSpan(cv *Canvas, ds *SpanState) {
	screen := cv.Screen
	dest := cv.ViewOffset(ds.X1, ds.Y)
	xfrac, yfrac := ds.XFrac, ds.YFrac
	cm, src := ds.Colormap, ds.Source
	for n := ds.X2 - ds.X1; n >= 0; n-- {
		screen[dest] = cm[src[flatIndex(xfrac, yfrac)]]
		dest++
		xfrac += ds.XStep
		yfrac += ds.YStep
	}
}

func drawDitherSpan(cv *Canvas, ds *SpanState) {
	screen := cv.Screen
	dest := cv.ViewOffset(ds.X1, ds.Y)
	xfrac, yfrac, src := ds.XFrac, ds.YFrac, ds.Source
	for x := ds.X1; x <= ds.X2; x++ {
		cm := ds.Colormap
		if ditherNext(x, ds.Y, ds.DitherZ) {
			cm = ds.NextColormap
		}
		screen[dest] = cm[src[flatIndex(xfrac, yfrac)]]
		dest++
		xfrac += ds.XStep
		yfrac += ds.YStep
	}
}

func drawColorSpan(cv *Canvas, ds *SpanState) {
	screen := cv.Screen
	dest := cv.ViewOffset(ds.X1, ds.Y)
	c := ds.Colormap[ds.Color]
	for n := ds.X2 - ds.X1; n >= 0; n-- {
		screen[dest] = c
		dest++
	}
}

func drawDitherColorSpan(cv *Canvas, ds *SpanState) {
	screen := cv.Screen
	dest := cv.ViewOffset(ds.X1, ds.Y)
	for x := ds.X1; x <= ds.X2; x++ {
		cm := ds.Colormap
		if ditherNext(x, ds.Y, ds.DitherZ) {
			cm = ds.NextColormap
		}
		screen[dest] = cm[ds.Color]
		dest++
	}
}
