package render

import (
	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// Automap colors.
const (
	automapWall    = RampRed + 4
	automapFloor   = RampBrown + 4
	automapCeiling = RampYellow + 6
	automapGrid    = RampGray + 12
	automapThing   = RampGreen + 4
	automapPlayer  = RampGray
)

// Automap draws a top-down line view of a level onto a canvas, rotated so
// the viewer faces up.
type Automap struct {
	cv     *Canvas
	scale  fixed.Fixed // pixels per map unit
	cx, cy int
	view   View
	sin    fixed.Fixed
	cos    fixed.Fixed
}

// NewAutomap creates an automap centred on the canvas.
func NewAutomap(cv *Canvas, scale fixed.Fixed) *Automap {
	return &Automap{cv: cv, scale: scale, cx: cv.Width / 2, cy: cv.Height / 2}
}

// SetView centres the map on a viewer.
func (m *Automap) SetView(v View) {
	m.view = v
	a := fixed.Ang90 - v.Angle
	m.sin, m.cos = fixed.Sin(a), fixed.Cos(a)
}

// toScreen maps a world point to canvas pixels.
func (m *Automap) toScreen(x, y fixed.Fixed) (int, int) {
	dx, dy := x-m.view.X, y-m.view.Y
	rx := fixed.Mul(dx, m.cos) - fixed.Mul(dy, m.sin)
	ry := fixed.Mul(dx, m.sin) + fixed.Mul(dy, m.cos)
	return m.cx + fixed.Mul(rx, m.scale).Int(), m.cy - fixed.Mul(ry, m.scale).Int()
}

// DrawLine draws a world space line. Lines entirely off one side of the
// canvas are skipped.
func (m *Automap) DrawLine(x1, y1, x2, y2 fixed.Fixed, color byte) {
	sx1, sy1 := m.toScreen(x1, y1)
	sx2, sy2 := m.toScreen(x2, y2)
	w, h := m.cv.Width, m.cv.Height
	if (sx1 < 0 && sx2 < 0) || (sx1 >= w && sx2 >= w) ||
		(sy1 < 0 && sy2 < 0) || (sy1 >= h && sy2 >= h) {
		return
	}
	m.cv.DrawLine(sx1, sy1, sx2, sy2, color)
}

// DrawGrid draws grid lines every step map units across the level bounds.
func (m *Automap) DrawGrid(b *level.BBox, step fixed.Fixed, color byte) {
	if step <= 0 {
		return
	}
	left := b[level.BoxLeft] - b[level.BoxLeft]%step
	bottom := b[level.BoxBottom] - b[level.BoxBottom]%step
	for x := left; x <= b[level.BoxRight]; x += step {
		m.DrawLine(x, b[level.BoxBottom], x, b[level.BoxTop], color)
	}
	for y := bottom; y <= b[level.BoxTop]; y += step {
		m.DrawLine(b[level.BoxLeft], y, b[level.BoxRight], y, color)
	}
}

// DrawPoint draws a cross of size map units.
func (m *Automap) DrawPoint(x, y, size fixed.Fixed, color byte) {
	half := size / 2
	m.DrawLine(x-half, y, x+half, y, color)
	m.DrawLine(x, y-half, x, y+half, color)
}

// DrawArrow draws a viewer arrow at a pose.
func (m *Automap) DrawArrow(x, y fixed.Fixed, angle fixed.Angle, size fixed.Fixed, color byte) {
	tip := func(a fixed.Angle, r fixed.Fixed) (fixed.Fixed, fixed.Fixed) {
		return x + fixed.Mul(r, fixed.Cos(a)), y + fixed.Mul(r, fixed.Sin(a))
	}
	fx, fy := tip(angle, size)
	bx, by := tip(angle+fixed.Ang180, size)
	lx, ly := tip(angle+fixed.Ang180-fixed.Ang45/2, size/2)
	rx, ry := tip(angle+fixed.Ang180+fixed.Ang45/2, size/2)
	m.DrawLine(bx, by, fx, fy, color)
	m.DrawLine(fx, fy, fx+lx-x, fy+ly-y, color)
	m.DrawLine(fx, fy, fx+rx-x, fy+ry-y, color)
}

// DrawAutomap draws the level lines, the scene's things and the viewer.
// One-sided walls, floor steps and ceiling steps get their own colors.
func DrawAutomap(cv *Canvas, lvl *level.Level, scene *Scene, v View, scale fixed.Fixed) {
	m := NewAutomap(cv, scale)
	m.SetView(v)
	m.DrawGrid(&lvl.Bounds, 128*fixed.FracUnit, automapGrid)

	for i := range lvl.Lines {
		ln := &lvl.Lines[i]
		if ln.Flags&level.LineDontDraw != 0 {
			continue
		}
		color := byte(automapWall)
		if back := ln.BackSector; back != nil {
			front := ln.FrontSector
			switch {
			case back.FloorHeight != front.FloorHeight:
				color = automapFloor
			case back.CeilingHeight != front.CeilingHeight:
				color = automapCeiling
			default:
				continue
			}
		}
		m.DrawLine(ln.V1.X, ln.V1.Y, ln.V2.X, ln.V2.Y, color)
	}

	if scene != nil {
		for _, t := range scene.Things {
			m.DrawPoint(t.X, t.Y, 16*fixed.FracUnit, automapThing)
		}
	}
	m.DrawArrow(v.X, v.Y, v.Angle, 16*fixed.FracUnit, automapPlayer)
}
