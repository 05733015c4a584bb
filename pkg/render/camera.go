package render

import (
	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// DefaultViewHeight is the eye height above the floor.
const DefaultViewHeight = 41 * fixed.FracUnit

// Camera is a viewer pose that moves once per simulation tic and is drawn
// in between. Views interpolate from the pose of the previous tic.
type Camera struct {
	X, Y       fixed.Fixed
	Z          fixed.Fixed // eye height
	Angle      fixed.Angle
	LookDir    int
	ViewHeight fixed.Fixed

	prevX, prevY, prevZ fixed.Fixed
	prevAngle           fixed.Angle
	prevLookDir         int
}

// NewCamera creates a camera at the start of a level, standing on its
// floor.
func NewCamera(lvl *level.Level) *Camera {
	c := &Camera{ViewHeight: DefaultViewHeight}
	c.Teleport(lvl, lvl.StartX, lvl.StartY, lvl.StartAngle)
	return c
}

// Teleport moves the camera without interpolating from the old pose.
func (c *Camera) Teleport(lvl *level.Level, x, y fixed.Fixed, angle fixed.Angle) {
	c.X, c.Y, c.Angle = x, y, angle
	c.Settle(lvl)
	c.Tic()
}

// Tic starts a simulation tic: the current pose becomes the one views
// interpolate from.
func (c *Camera) Tic() {
	c.prevX, c.prevY, c.prevZ = c.X, c.Y, c.Z
	c.prevAngle = c.Angle
	c.prevLookDir = c.LookDir
}

// MoveForward moves along the view angle, backwards if negative.
func (c *Camera) MoveForward(dist fixed.Fixed) {
	c.X += fixed.Mul(dist, fixed.Cos(c.Angle))
	c.Y += fixed.Mul(dist, fixed.Sin(c.Angle))
}

// MoveRight strafes right, left if negative.
func (c *Camera) MoveRight(dist fixed.Fixed) {
	right := c.Angle - fixed.Ang90
	c.X += fixed.Mul(dist, fixed.Cos(right))
	c.Y += fixed.Mul(dist, fixed.Sin(right))
}

// Turn rotates counterclockwise by degrees, clockwise if negative.
func (c *Camera) Turn(degrees float64) {
	c.Angle += fixed.FromDegrees(degrees)
}

// Look tilts the view up by steps, down if negative.
func (c *Camera) Look(steps int) {
	c.LookDir = fixed.Clamp(c.LookDir+steps, -LookDirMax, LookDirMax)
}

// Settle keeps the camera inside the level bounds and puts the eye
// ViewHeight above the floor, below the ceiling.
func (c *Camera) Settle(lvl *level.Level) {
	const margin = 16 * fixed.FracUnit
	b := &lvl.Bounds
	if b[level.BoxRight] > b[level.BoxLeft] {
		c.X = max(b[level.BoxLeft]+margin, min(c.X, b[level.BoxRight]-margin))
	}
	if b[level.BoxTop] > b[level.BoxBottom] {
		c.Y = max(b[level.BoxBottom]+margin, min(c.Y, b[level.BoxTop]-margin))
	}
	sec := lvl.PointInSubsector(c.X, c.Y).Sector
	c.Z = min(sec.FloorHeight+c.ViewHeight, sec.CeilingHeight-4*fixed.FracUnit)
}

// View returns the pose frac of the way from the previous tic to the
// current one. frac is in [0, FracUnit].
func (c *Camera) View(frac fixed.Fixed) View {
	lerp := func(a, b fixed.Fixed) fixed.Fixed {
		return a + fixed.Mul(b-a, frac)
	}
	frac = max(0, min(frac, fixed.FracUnit))
	return View{
		X:       lerp(c.prevX, c.X),
		Y:       lerp(c.prevY, c.Y),
		Z:       lerp(c.prevZ, c.Z),
		Angle:   fixed.InterpolateAngle(c.prevAngle, c.Angle, frac),
		LookDir: c.prevLookDir + (c.LookDir-c.prevLookDir)*int(frac)>>fixed.FracBits,
	}
}
