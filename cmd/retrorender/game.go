package main

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/render"
)

// ticRate is the simulation rate. Frames in between interpolate.
const ticRate = 35

const ticDuration = time.Second / ticRate

// Top speeds per tic.
const (
	walkSpeed   = 8.0 // map units
	strafeSpeed = 6.0
	turnSpeed   = 4.0 // degrees
	lookSpeed   = 4.0 // look steps
)

// flashTics is how long a weapon flash brightens the view.
const flashTics = 6

// automapScale is pixels per map unit on the automap, in fixed point.
const automapScale = fixed.FracUnit / 4

// MotionAxis eases a rate toward the input target with a critically damped
// spring, so starting and stopping never snap.
type MotionAxis struct {
	Rate   float64
	Target float64
	accel  float64 // spring velocity of Rate
	spring harmonica.Spring
}

// NewMotionAxis creates an axis updated ticRate times a second.
func NewMotionAxis(frequency float64) MotionAxis {
	return MotionAxis{
		// damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(ticRate), frequency, 1.0),
	}
}

// Update moves Rate one tic toward Target.
func (a *MotionAxis) Update() {
	a.Rate, a.accel = a.spring.Update(a.Rate, a.accel, a.Target)
	if math.Abs(a.Rate) < 1e-3 && a.Target == 0 {
		a.Rate, a.accel = 0, 0
	}
}

// Motion holds the smoothed input axes of the viewer.
type Motion struct {
	Walk, Strafe, Turn, Look MotionAxis

	// Decay scales the targets every tic. Terminals report no key releases,
	// so held keys are kept alive by repeats and decay once let go.
	Decay float64
}

// NewMotion creates the walk, strafe, turn and look axes.
func NewMotion(decay float64) *Motion {
	return &Motion{
		Walk:   NewMotionAxis(6.0),
		Strafe: NewMotionAxis(6.0),
		Turn:   NewMotionAxis(8.0),
		Look:   NewMotionAxis(8.0),
		Decay:  decay,
	}
}

// Update advances every axis one tic.
func (m *Motion) Update() {
	for _, a := range []*MotionAxis{&m.Walk, &m.Strafe, &m.Turn, &m.Look} {
		a.Update()
		if m.Decay > 0 {
			a.Target *= m.Decay
		}
	}
}

// Stop zeroes every target.
func (m *Motion) Stop() {
	m.Walk.Target, m.Strafe.Target, m.Turn.Target, m.Look.Target = 0, 0, 0, 0
}

// action is a discrete command from a presenter's input.
type action int

const (
	actionNone action = iota
	actionQuit
	actionGrow
	actionShrink
	actionAutomap
	actionTextures
	actionTranslucency
	actionDither
	actionSkyColor
	actionFlippedSky
	actionSplats
	actionColormap
	actionFlash
	actionPause
	actionScreenshot
	actionHUD
)

// game is the viewer state shared by the presenters.
type game struct {
	log    *slog.Logger
	r      *render.Renderer
	scene  *render.Scene
	cam    *render.Camera
	motion *Motion
	weapon *render.PlayerSprite
	fb     *render.Framebuffer // presenter sized

	time     int
	paused   bool
	automap  bool
	showHUD  bool
	colormap render.FixedColormap
	flash    int
	shots    int
	skyColor int // restored when the solid sky is toggled back on

	acc     time.Duration
	lastNow time.Time

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newGameState(log *slog.Logger, r *render.Renderer, scene *render.Scene) *game {
	cv := r.Canvas()
	skyColor := r.Quality().SkyColor
	if skyColor < 0 {
		skyColor = render.RampBlue + 6
	}
	return &game{
		log:      log,
		r:        r,
		scene:    scene,
		cam:      render.NewCamera(r.Level()),
		motion:   NewMotion(0),
		weapon:   render.DemoWeapon(),
		fb:       render.NewFramebuffer(cv.Width, cv.Height),
		skyColor: skyColor,
		fpsTime:  time.Now(),
	}
}

// resize sets the presenter framebuffer size in pixels.
func (g *game) resize(width, height int) {
	if width <= 0 || height <= 0 || (width == g.fb.Width && height == g.fb.Height) {
		return
	}
	g.fb = render.NewFramebuffer(width, height)
}

// advance runs the tics that fit in the time since the last call and
// returns how far the next tic has progressed.
func (g *game) advance(now time.Time) fixed.Fixed {
	if g.lastNow.IsZero() {
		g.lastNow = now
	}
	g.acc += min(now.Sub(g.lastNow), 100*time.Millisecond)
	g.lastNow = now
	for g.acc >= ticDuration {
		g.tic()
		g.acc -= ticDuration
	}
	return fixed.Fixed(int64(g.acc) * int64(fixed.FracUnit) / int64(ticDuration))
}

// tic runs one simulation step.
func (g *game) tic() {
	g.cam.Tic()
	g.motion.Update()

	m := g.motion
	g.cam.Turn(m.Turn.Rate * turnSpeed)
	g.cam.MoveForward(fixed.Fixed(m.Walk.Rate * walkSpeed * float64(fixed.FracUnit)))
	g.cam.MoveRight(fixed.Fixed(m.Strafe.Rate * strafeSpeed * float64(fixed.FracUnit)))
	g.cam.Look(int(math.Round(m.Look.Rate * lookSpeed)))
	g.cam.Settle(g.r.Level())

	if g.flash > 0 {
		g.flash--
	}
	if !g.paused {
		g.time++
	}
}

// renderFrame draws the view frac of the way into the current tic and
// presents it into the framebuffer.
func (g *game) renderFrame(frac fixed.Fixed) {
	v := g.cam.View(frac)
	v.Time = g.time
	v.Paused = g.paused
	v.Colormap = g.colormap
	v.Weapon = g.weapon
	if g.flash > 0 {
		v.ExtraLight = 2
	}
	g.weapon.FullBright = g.flash > 0
	g.r.RenderPlayerView(v)

	cv := g.r.Canvas()
	pal := g.r.Tables().Palette
	if g.automap {
		cv.Fill(cv.Screen, 0, 0, cv.Width, cv.Height, pal.Nearest(0, 0, 0))
		render.DrawAutomap(cv, g.r.Level(), g.scene, v, automapScale)
	}
	g.fb.Blit(cv, pal)
	g.updateFPS()
}

func (g *game) updateFPS() {
	g.fpsFrames++
	elapsed := time.Since(g.fpsTime)
	if elapsed >= time.Second {
		g.fps = float64(g.fpsFrames) / elapsed.Seconds()
		g.fpsFrames = 0
		g.fpsTime = time.Now()
	}
}

// apply performs a discrete command. It reports false for actionQuit.
func (g *game) apply(a action) bool {
	q := g.r.Quality()
	switch a {
	case actionNone:
		return true
	case actionQuit:
		return false
	case actionGrow:
		g.r.SetViewSize(g.r.ViewSize() + 1)
		return true
	case actionShrink:
		g.r.SetViewSize(g.r.ViewSize() - 1)
		return true
	case actionAutomap:
		g.automap = !g.automap
		return true
	case actionColormap:
		g.colormap = (g.colormap + 1) % (render.ColormapInverse + 1)
		return true
	case actionFlash:
		g.flash = flashTics
		return true
	case actionPause:
		g.paused = !g.paused
		return true
	case actionHUD:
		g.showHUD = !g.showHUD
		return true
	case actionScreenshot:
		g.shots++
		path := fmt.Sprintf("retrorender%03d.png", g.shots)
		if err := g.saveScreenshot(path); err != nil {
			g.log.Error("screenshot failed", "path", path, "err", err)
		}
		return true
	case actionTextures:
		q.Textures = !q.Textures
	case actionTranslucency:
		q.Translucency = !q.Translucency
	case actionDither:
		q.DitheredLighting = !q.DitheredLighting
	case actionSkyColor:
		if q.SkyColor >= 0 {
			q.SkyColor = -1
		} else {
			q.SkyColor = g.skyColor
		}
	case actionFlippedSky:
		q.FlippedSky = !q.FlippedSky
	case actionSplats:
		q.BloodSplatTranslucency = !q.BloodSplatTranslucency
	}
	if err := g.r.SetQuality(q); err != nil {
		g.log.Error("quality change failed", "err", err)
	}
	return true
}

// saveScreenshot writes the canvas at its own resolution.
func (g *game) saveScreenshot(path string) error {
	cv := g.r.Canvas()
	fb := render.NewFramebuffer(cv.Width, cv.Height)
	fb.Blit(cv, g.r.Tables().Palette)
	if err := fb.SavePNG(path); err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}
	g.log.Info("screenshot saved", "path", path)
	return nil
}

// status is the HUD line.
func (g *game) status() string {
	q := g.r.Quality()
	st := g.r.Stats()
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	s := fmt.Sprintf(" %.0f FPS  view %d  planes %d  spans %d  cols %d  sprites %d  %s tex %s trans %s dither",
		g.fps, g.r.ViewSize(), st.Visplanes, st.Spans, st.Columns, st.Sprites,
		check(q.Textures), check(q.Translucency), check(q.DitheredLighting))
	if g.paused {
		s += "  PAUSED"
	}
	return s
}
