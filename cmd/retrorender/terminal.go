package main

import (
	"context"
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

// terminalDecay fades held-key targets between key repeats.
const terminalDecay = 0.85

// HUD colors.
const (
	hudReset = "\x1b[0m"
	hudStyle = "\x1b[40m\x1b[92m"
)

// runTerminal presents frames as half blocks until ctx is done or the
// viewer quits.
func runTerminal(ctx context.Context, g *game, fps int) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}

	// two pixels per cell
	g.resize(width, height*2)
	g.motion.Decay = terminalDecay

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ticker := time.NewTicker(time.Second / time.Duration(max(fps, 1)))
	defer ticker.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				if err := term.Resize(width, height); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
				g.resize(width, height*2)
				g.log.Debug("terminal resized", "width", width, "height", height)

			case uv.KeyPressEvent:
				if !g.apply(terminalAction(ev)) {
					return nil
				}
				steer(g.motion, ev)
			}

		case now := <-ticker.C:
			frac := g.advance(now)
			g.renderFrame(frac)
			term.Draw(g.fb)
			if g.showHUD {
				hud := uv.NewStyledString(hudStyle + g.status() + hudReset)
				hud.Draw(term, uv.Rect(0, 0, width, 1))
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// terminalAction maps a key press to a discrete command.
func terminalAction(ev uv.KeyPressEvent) action {
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		return actionQuit
	case ev.MatchString("+", "="):
		return actionGrow
	case ev.MatchString("-", "_"):
		return actionShrink
	case ev.MatchString("tab"):
		return actionAutomap
	case ev.MatchString("t"):
		return actionTextures
	case ev.MatchString("y"):
		return actionTranslucency
	case ev.MatchString("u"):
		return actionDither
	case ev.MatchString("k"):
		return actionSkyColor
	case ev.MatchString("i"):
		return actionFlippedSky
	case ev.MatchString("b"):
		return actionSplats
	case ev.MatchString("g"):
		return actionColormap
	case ev.MatchString("space"):
		return actionFlash
	case ev.MatchString("p"):
		return actionPause
	case ev.MatchString("c"):
		return actionScreenshot
	case ev.MatchString("?", "shift+/"):
		return actionHUD
	}
	return actionNone
}

// steer sets motion targets from movement keys. Terminal key repeats keep
// a held key's target up while the motion decays it.
func steer(m *Motion, ev uv.KeyPressEvent) {
	switch {
	case ev.MatchString("w", "up"):
		m.Walk.Target = 1
	case ev.MatchString("s", "down"):
		m.Walk.Target = -1
	case ev.MatchString("a", "left"):
		m.Turn.Target = 1
	case ev.MatchString("d", "right"):
		m.Turn.Target = -1
	case ev.MatchString("q"):
		m.Strafe.Target = -1
	case ev.MatchString("e"):
		m.Strafe.Target = 1
	case ev.MatchString("r", "pgup"):
		m.Look.Target = 1
	case ev.MatchString("f", "pgdown"):
		m.Look.Target = -1
	case ev.MatchString("x"):
		m.Stop()
	}
}
