//go:build !headless

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// windowActions maps just-pressed keys to commands.
var windowActions = []struct {
	keys []ebiten.Key
	act  action
}{
	{[]ebiten.Key{ebiten.KeyEscape}, actionQuit},
	{[]ebiten.Key{ebiten.KeyEqual, ebiten.KeyNumpadAdd}, actionGrow},
	{[]ebiten.Key{ebiten.KeyMinus, ebiten.KeyNumpadSubtract}, actionShrink},
	{[]ebiten.Key{ebiten.KeyTab}, actionAutomap},
	{[]ebiten.Key{ebiten.KeyT}, actionTextures},
	{[]ebiten.Key{ebiten.KeyY}, actionTranslucency},
	{[]ebiten.Key{ebiten.KeyU}, actionDither},
	{[]ebiten.Key{ebiten.KeyK}, actionSkyColor},
	{[]ebiten.Key{ebiten.KeyI}, actionFlippedSky},
	{[]ebiten.Key{ebiten.KeyB}, actionSplats},
	{[]ebiten.Key{ebiten.KeyG}, actionColormap},
	{[]ebiten.Key{ebiten.KeySpace}, actionFlash},
	{[]ebiten.Key{ebiten.KeyP}, actionPause},
	{[]ebiten.Key{ebiten.KeyC}, actionScreenshot},
	{[]ebiten.Key{ebiten.KeySlash}, actionHUD},
}

// windowGame presents frames in a window at canvas resolution; ebiten
// scales the window.
type windowGame struct {
	ctx context.Context
	g   *game
}

// runWindow opens a window scale times the canvas size and runs until it
// closes, the viewer quits or ctx is done.
func runWindow(ctx context.Context, g *game, scale int) error {
	cv := g.r.Canvas()
	scale = max(scale, 1)
	ebiten.SetWindowSize(cv.Width*scale, cv.Height*scale)
	ebiten.SetWindowTitle("retrorender")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(&windowGame{ctx: ctx, g: g}); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

// Update polls the keyboard once per ebiten tick.
func (w *windowGame) Update() error {
	select {
	case <-w.ctx.Done():
		return ebiten.Termination
	default:
	}

	for _, wa := range windowActions {
		for _, k := range wa.keys {
			if inpututil.IsKeyJustPressed(k) && !w.g.apply(wa.act) {
				return ebiten.Termination
			}
		}
	}

	m := w.g.motion
	m.Walk.Target = axisTarget(ebiten.KeyW, ebiten.KeyArrowUp, ebiten.KeyS, ebiten.KeyArrowDown)
	m.Turn.Target = axisTarget(ebiten.KeyA, ebiten.KeyArrowLeft, ebiten.KeyD, ebiten.KeyArrowRight)
	m.Strafe.Target = axisTarget(ebiten.KeyE, ebiten.KeyE, ebiten.KeyQ, ebiten.KeyQ)
	m.Look.Target = axisTarget(ebiten.KeyR, ebiten.KeyPageUp, ebiten.KeyF, ebiten.KeyPageDown)
	return nil
}

// axisTarget is 1 while a positive key is held, -1 for a negative key and
// 0 for both or neither.
func axisTarget(pos1, pos2, neg1, neg2 ebiten.Key) float64 {
	var t float64
	if ebiten.IsKeyPressed(pos1) || ebiten.IsKeyPressed(pos2) {
		t++
	}
	if ebiten.IsKeyPressed(neg1) || ebiten.IsKeyPressed(neg2) {
		t--
	}
	return t
}

// Draw renders a frame and uploads it.
func (w *windowGame) Draw(screen *ebiten.Image) {
	g := w.g
	g.renderFrame(g.advance(time.Now()))
	screen.WritePixels(g.fb.Image.Pix)
	if g.showHUD {
		ebitenutil.DebugPrint(screen, g.status())
	}
}

// Layout keeps the logical screen at canvas resolution.
func (w *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.g.fb.Width, w.g.fb.Height
}
