package render

import "github.com/taigrr/retrorender/pkg/fixed"

// blendColumn composites lit texels over the screen through a blend table.
type blendColumn struct {
	table  BlendTable
	dither bool
}

func (b blendColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, src, tl := dc.Frac, dc.Source, b.table
	cm := dc.Colormap
	for y := dc.YL; y <= dc.YH; y++ {
		if b.dither {
			cm = dc.ditherTable(y)
		}
		screen[dest] = tl[int(screen[dest])<<8|int(cm[src[frac>>fixed.FracBits]])]
		dest += pitch
		frac += dc.Step
	}
}

// remapBlendColumn remaps, lights and then composites.
type remapBlendColumn struct {
	table  BlendTable
	remap  *[256]byte
	dither bool
}

func (b remapBlendColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	frac, src, tl, remap := dc.Frac, dc.Source, b.table, b.remap
	cm := dc.Colormap
	for y := dc.YL; y <= dc.YH; y++ {
		if b.dither {
			cm = dc.ditherTable(y)
		}
		screen[dest] = tl[int(screen[dest])<<8|int(cm[remap[src[frac>>fixed.FracBits]]])]
		dest += pitch
		frac += dc.Step
	}
}

// colorBlendColumn composites a lit solid color.
type colorBlendColumn struct {
	table BlendTable
}

func (b colorBlendColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	c := int(dc.Colormap[dc.Color])
	for n := dc.YH - dc.YL; n >= 0; n-- {
		screen[dest] = b.table[int(screen[dest])<<8|c]
		dest += pitch
	}
}
