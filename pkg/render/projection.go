package render

import "github.com/taigrr/retrorender/pkg/fixed"

// Reference screen the view size and weapon sprite geometry are defined on.
const (
	OrigWidth           = 320
	OrigHeight          = 200
	OrigStatusBarHeight = 32
)

// View size limits, in tenths of the screen. MaxBlocks hides the status bar.
const (
	MinBlocks = 3
	MaxBlocks = 11
)

// Look pitch steps. A pose carries a look direction in [-LookDirMax, LookDirMax].
const (
	LookDirMax = 100
	LookDirs   = 2*LookDirMax + 1
)

// AngleToSkyShift maps a view angle to one of 1024 sky texture columns.
const AngleToSkyShift = 22

// Projection holds the screen-space tables for one view size and FOV.
type Projection struct {
	Width  int // view window size
	Height int
	FOV    int

	CenterX     int
	CenterXFrac fixed.Fixed
	CenterY     int // for the current look direction
	CenterYFrac fixed.Fixed

	// Focal is the distance at which one world unit spans one pixel.
	Focal    fixed.Fixed
	FOVScale fixed.Fixed // tangent of half the FOV

	// ViewAngleToX maps a fine angle offset by 90 degrees to a column.
	ViewAngleToX [fixed.FineAngles / 2]int
	// XToViewAngle is the smallest view angle landing on or left of each
	// column, plus one entry for the right edge.
	XToViewAngle []fixed.Angle
	ClipAngle    fixed.Angle
	// DistScale converts perpendicular distance to ray length per column.
	DistScale []fixed.Fixed

	// YSlopes holds per-row depth scale for every look direction.
	YSlopes [LookDirs][]fixed.Fixed
	YSlope  []fixed.Fixed // current look direction

	PSpriteScale  fixed.Fixed
	PSpriteIScale fixed.Fixed
	SkyIScale     fixed.Fixed
}

// NewProjection builds the tables for a view window and horizontal FOV.
func NewProjection(width, height, fov int) *Projection {
	p := &Projection{
		Width:        width,
		Height:       height,
		FOV:          fov,
		CenterX:      width / 2,
		CenterXFrac:  fixed.FromInt(width / 2),
		XToViewAngle: make([]fixed.Angle, width+1),
		DistScale:    make([]fixed.Fixed, width),
	}
	p.FOVScale = fixed.FineTangent[fixed.FineAngles/4+(fov*fixed.FineAngles/360)/2]
	p.Focal = fixed.Div(p.CenterXFrac, p.FOVScale)

	p.initTextureMapping()
	p.initYSlopes()

	p.PSpriteScale = fixed.Div(fixed.FromInt(width), fixed.FromInt(OrigWidth))
	p.PSpriteIScale = fixed.Div(fixed.FracUnit, p.PSpriteScale)
	p.SkyIScale = p.PSpriteIScale
	p.SetLookDir(0)
	return p
}

func (p *Projection) initTextureMapping() {
	limit := p.FOVScale
	for i := range p.ViewAngleToX {
		t := fixed.FineTangent[i]
		var x int
		switch {
		case t > limit:
			x = -1
		case t < -limit:
			x = p.Width + 1
		default:
			x = int((p.CenterXFrac - fixed.Mul(t, p.Focal) + fixed.FracUnit - 1) >> fixed.FracBits)
			x = fixed.Clamp(x, -1, p.Width+1)
		}
		p.ViewAngleToX[i] = x
	}

	// Scan for the lowest angle that maps onto or left of each column.
	for x := 0; x <= p.Width; x++ {
		i := 0
		for i < len(p.ViewAngleToX)-1 && p.ViewAngleToX[i] > x {
			i++
		}
		p.XToViewAngle[x] = fixed.Angle(i<<fixed.AngleToFineShift) - fixed.Ang90
	}

	// Take out the fencepost cases.
	for i, x := range p.ViewAngleToX {
		switch x {
		case -1:
			p.ViewAngleToX[i] = 0
		case p.Width + 1:
			p.ViewAngleToX[i] = p.Width
		}
	}
	p.ClipAngle = p.XToViewAngle[0]

	for x := range p.DistScale {
		cos := fixed.Abs(fixed.FineCosine[p.XToViewAngle[x]>>fixed.AngleToFineShift])
		p.DistScale[x] = fixed.Div(fixed.FracUnit, cos)
	}
}

// centerFor returns the horizon row for a look direction.
func (p *Projection) centerFor(dir int) int {
	return p.Height/2 + dir*p.Height/(2*LookDirMax)
}

func (p *Projection) initYSlopes() {
	num := fixed.Mul(fixed.Div(fixed.FracUnit, p.FOVScale), fixed.FromInt(p.Width)/2)
	for j := range LookDirs {
		center := p.centerFor(j - LookDirMax)
		slopes := make([]fixed.Fixed, p.Height)
		for y := range slopes {
			dy := fixed.Fixed((y-center)<<fixed.FracBits) + fixed.HalfFracUnit
			slopes[y] = fixed.Div(num, fixed.Abs(dy))
		}
		p.YSlopes[j] = slopes
	}
}

// SetLookDir selects the horizon and row scales for a look direction.
func (p *Projection) SetLookDir(dir int) {
	dir = fixed.Clamp(dir, -LookDirMax, LookDirMax)
	p.CenterY = p.centerFor(dir)
	p.CenterYFrac = fixed.FromInt(p.CenterY)
	p.YSlope = p.YSlopes[dir+LookDirMax]
}

// AngleToX maps a view-relative angle in [-ClipAngle, ClipAngle] to a column.
func (p *Projection) AngleToX(a fixed.Angle) int {
	return p.ViewAngleToX[(a+fixed.Ang90)>>fixed.AngleToFineShift]
}

// ViewWindow computes the view window for a view size on a surface.
// Sizes below MaxBlocks leave room for the status bar.
func ViewWindow(blocks, width, height int) (x, y, w, h int) {
	if blocks >= MaxBlocks {
		return 0, 0, width, height
	}
	sbar := StatusBarHeight(height)
	w = (blocks * width / 10) &^ 7
	h = (blocks * (height - sbar) / 10) &^ 7
	x = (width - w) / 2
	y = (height - sbar - h) / 2
	return x, y, w, h
}

// StatusBarHeight scales the reference status bar to a surface height.
func StatusBarHeight(height int) int {
	return OrigStatusBarHeight * height / OrigHeight
}
