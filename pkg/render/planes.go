package render

import "github.com/taigrr/retrorender/pkg/fixed"

// skyTextureMid is the sky texture row on the horizon.
const skyTextureMid = 100 * fixed.FracUnit

// skyFallbackColor fills the sky when neither textures nor a sky color are
// enabled.
const skyFallbackColor = RampBlue + 4

// planeState holds the per-plane values every span of a visplane shares.
// The height derived steps stay valid until the plane height or frame
// changes.
type planeState struct {
	frame  uint32
	height fixed.Fixed // distance from the eye to the plane

	baseXScale, baseYScale fixed.Fixed // view direction steps at unit distance
	xScale, yScale         fixed.Fixed // the same scaled by height

	light            int
	xoffset, yoffset fixed.Fixed
}

// drawPlanes draws every visplane recorded this frame.
func (r *Renderer) drawPlanes() {
	angle := (r.viewAngle - fixed.Ang90) >> fixed.AngleToFineShift
	r.plane.baseXScale = fixed.Div(fixed.FineCosine[angle], r.proj.CenterXFrac)
	r.plane.baseYScale = -fixed.Div(fixed.FineSine[angle], r.proj.CenterXFrac)
	r.plane.frame = r.frame
	r.plane.height = -1

	r.planes.Each(func(pl *Visplane) {
		if !pl.Modified || pl.Left > pl.Right {
			return
		}
		if r.mats.IsSky(pl.Pic) {
			r.drawSkyPlane(pl)
			return
		}
		r.drawFlatPlane(pl)
	})
}

// drawSkyPlane draws a sky visplane as columns of the sky texture, which
// is unlit and pinned to the view angle.
func (r *Renderer) drawSkyPlane(pl *Visplane) {
	dc := &r.dc
	sky := r.mats.Sky()
	draw := r.bind.Column(RoleSky)

	dc.Colormap = ColormapTable(r.fullColormap, 0)
	if r.fixedColormap != nil {
		dc.Colormap = r.fixedColormap
	}
	dc.NextColormap = dc.Colormap
	dc.Step = r.proj.SkyIScale
	switch q := r.quality; {
	case q.SkyColor >= 0:
		dc.Color = byte(q.SkyColor)
	case sky != nil:
		dc.Color = sky.Column(0)[sky.Height/2]
	default:
		dc.Color = skyFallbackColor
	}

	for x := pl.Left; x <= pl.Right; x++ {
		top, bottom, ok := pl.Column(x)
		if !ok || top > bottom {
			continue
		}
		dc.X, dc.YL, dc.YH = x, top, bottom
		dc.Frac = skyTextureMid + fixed.Fixed(top-r.proj.CenterY)*dc.Step
		if sky != nil {
			angle := (r.viewAngle + r.proj.XToViewAngle[x]) >> AngleToSkyShift
			dc.Source = sky.Column(int(angle))
			dc.TexHeight = sky.Height
		} else {
			dc.Source = nil
		}
		if dc.Source == nil && r.quality.Textures && r.quality.SkyColor < 0 {
			continue
		}
		draw.DrawColumn(r.canvas, dc)
		r.stats.Columns++
	}
}

// drawFlatPlane sets up the lighting and tile of a floor or ceiling and
// emits its spans.
func (r *Renderer) drawFlatPlane(pl *Visplane) {
	ds := &r.ds
	flat := r.mats.Flat(pl.Pic)
	if flat == nil {
		return
	}
	ds.Source = flat.Pixels
	if flat.Liquid && r.cfg.Swirl {
		ds.Source = r.swirl.Distort(flat, r.view.Time, r.view.Paused)
	}
	ds.Color = flatColor(flat)

	r.plane.light = pl.Light>>LightSegShift + r.extraLight
	r.plane.xoffset, r.plane.yoffset = pl.XOffset, pl.YOffset
	height := fixed.Abs(pl.Height - r.viewZ)
	if height != r.plane.height || r.plane.frame != r.frame {
		r.plane.height = height
		r.plane.frame = r.frame
		r.plane.xScale = fixed.Mul(height, r.plane.baseXScale)
		r.plane.yScale = fixed.Mul(height, r.plane.baseYScale)
		r.stats.SpanCacheMisses++
	}

	// sentinels either side of the range close every open span
	pl.Top[pl.Left] = SentinelTop
	pl.Top[pl.Right+2] = SentinelTop
	r.makeSpans(pl)
}

// makeSpans sweeps the columns of a plane, opening a span on each row
// where the plane starts and mapping it where the plane stops.
func (r *Renderer) makeSpans(pl *Visplane) {
	for x := pl.Left; x <= pl.Right+1; x++ {
		t1, b1 := int(pl.Top[x]), int(pl.Bottom[x])
		t2, b2 := int(pl.Top[x+1]), int(pl.Bottom[x+1])

		for t1 < t2 && t1 <= b1 {
			r.mapPlane(t1, r.spanStart[t1], x-1)
			t1++
		}
		for b1 > b2 && b1 >= t1 {
			r.mapPlane(b1, r.spanStart[b1], x-1)
			b1--
		}
		for t2 < t1 && t2 <= b2 {
			r.spanStart[t2] = x
			t2++
		}
		for b2 > b1 && b2 >= t2 {
			r.spanStart[b2] = x
			b2--
		}
	}
}

// mapPlane draws row y of the current plane between x1 and x2.
func (r *Renderer) mapPlane(y, x1, x2 int) {
	if x1 > x2 {
		return
	}
	ds := &r.ds
	slope := r.proj.YSlope[y]
	distance := fixed.Mul(r.plane.height, slope)
	ds.XStep = fixed.Mul(r.plane.xScale, slope)
	ds.YStep = fixed.Mul(r.plane.yScale, slope)

	length := fixed.Mul(distance, r.proj.DistScale[x1])
	angle := (r.viewAngle + r.proj.XToViewAngle[x1]) >> fixed.AngleToFineShift
	ds.XFrac = r.viewX + r.plane.xoffset + fixed.Mul(fixed.FineCosine[angle], length)
	ds.YFrac = -r.viewY + r.plane.yoffset - fixed.Mul(fixed.FineSine[angle], length)

	if r.fixedColormap != nil {
		ds.Colormap, ds.NextColormap = r.fixedColormap, r.fixedColormap
	} else {
		index := int(distance >> LightZShift)
		ds.Colormap = r.light.ZLight(r.colormapSet, r.plane.light, index)
		ds.NextColormap = r.light.ZLight(r.colormapSet, r.plane.light, index+1)
		ds.DitherZ = int(distance>>(LightZShift-8)) & 255
	}

	ds.Y, ds.X1, ds.X2 = y, x1, x2
	r.bind.Span().DrawSpan(r.canvas, ds)
	r.stats.Spans++
}

// flatColor is the solid color a flat draws with when textures are off.
func flatColor(f *Flat) byte {
	return f.Pixels[FlatSize*FlatSize/2+FlatSize/2]
}
