// retrorender - software first-person renderer in your terminal
// Walk a small demo level drawn column by column and span by span, with
// sector lighting, translucency, fuzz and a shrinkable view window.
//
// Controls:
//
//	W/S, Up/Down     - Walk forward/back
//	A/D, Left/Right  - Turn
//	Q/E              - Strafe left/right
//	R/F              - Look up/down
//	+/-              - Grow/shrink the view
//	Tab              - Toggle automap
//	T                - Toggle textures
//	Y                - Toggle translucency
//	U                - Toggle dithered lighting
//	K                - Toggle solid sky color
//	I                - Toggle flipped sky
//	B                - Toggle blood splat translucency
//	G                - Cycle fixed colormap (none, full bright, inverse)
//	Space            - Weapon flash
//	P                - Pause
//	C                - Screenshot
//	?                - Toggle HUD overlay
//	Esc              - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/retrorender/pkg/assets"
	"github.com/taigrr/retrorender/pkg/level"
	"github.com/taigrr/retrorender/pkg/render"
)

var (
	width          = flag.Int("width", 320, "Canvas width in pixels")
	height         = flag.Int("height", 200, "Canvas height in pixels")
	fov            = flag.Int("fov", 90, "Horizontal field of view in degrees (60-120)")
	blocks         = flag.Int("blocks", render.MaxBlocks, "View size (3-11, 11 is full screen)")
	targetFPS      = flag.Int("fps", 35, "Target FPS")
	window         = flag.Bool("window", false, "Present in a window instead of the terminal")
	scale          = flag.Int("scale", 3, "Window scale factor")
	packPath       = flag.String("pack", "", "Material pack (.glb, .gltf or a directory of images)")
	noTextures     = flag.Bool("notextures", false, "Draw solid colors instead of textures")
	noTranslucency = flag.Bool("notranslucency", false, "Draw translucent things opaque")
	noDither       = flag.Bool("nodither", false, "Disable dithered lighting")
	skyColor       = flag.Int("skycolor", -1, "Palette index for a solid sky, -1 for the sky texture")
	hom            = flag.Bool("hom", false, "Flash pixels nothing draws over")
	shadows        = flag.Bool("shadows", true, "Draw thing shadows")
	screenshot     = flag.String("screenshot", "", "Render one frame to this PNG file and exit")
	logPath        = flag.String("log", "", "Write logs to this file (the terminal presenter discards them otherwise)")
	verbose        = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "retrorender - software first-person renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: retrorender [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Walk and turn (arrows work too)\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Strafe\n")
		fmt.Fprintf(os.Stderr, "  R/F         - Look up/down\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Grow/shrink the view\n")
		fmt.Fprintf(os.Stderr, "  Tab         - Automap\n")
		fmt.Fprintf(os.Stderr, "  T/Y/U       - Textures, translucency, dithering\n")
		fmt.Fprintf(os.Stderr, "  K/I/B       - Sky color, flipped sky, splat translucency\n")
		fmt.Fprintf(os.Stderr, "  G           - Cycle fixed colormap\n")
		fmt.Fprintf(os.Stderr, "  Space       - Weapon flash\n")
		fmt.Fprintf(os.Stderr, "  P           - Pause\n")
		fmt.Fprintf(os.Stderr, "  C           - Screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, closeLog, err := newLogger(*logPath, *verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	g, err := newGame(log)
	if err != nil {
		return err
	}

	if *screenshot != "" {
		g.renderFrame(0)
		return g.saveScreenshot(*screenshot)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if *window {
		return runWindow(ctx, g, *scale)
	}
	return runTerminal(ctx, g, *targetFPS)
}

// newLogger writes text logs to stderr, or to a file since the terminal
// presenter owns the screen.
func newLogger(path string, debug bool) (*slog.Logger, func() error, error) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		w, closeFn = f, f.Close
	} else if !*window && *screenshot == "" {
		// the terminal presenter owns stderr's screen
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})), closeFn, nil
}

// newGame builds the demo level, materials and renderer from the flags.
func newGame(log *slog.Logger) (*game, error) {
	lvl, err := level.BuildRooms(render.DemoLayout())
	if err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}

	pal := render.DefaultPalette()
	mats := render.DemoMaterials(pal)
	if *packPath != "" {
		pack, err := assets.LoadPack(*packPath, pal)
		if err != nil {
			return nil, fmt.Errorf("load pack: %w", err)
		}
		n := assets.Overlay(mats, pack)
		log.Info("material pack loaded",
			"path", *packPath,
			"textures", len(pack.Textures),
			"flats", len(pack.Flats),
			"replaced", n,
		)
	}
	tables := render.NewTables(pal, render.NewColormaps(pal, render.DemoTints()...))

	cfg := render.DefaultConfig()
	cfg.Width, cfg.Height = *width, *height
	cfg.FOV = *fov
	cfg.Blocks = *blocks
	cfg.Quality.Textures = !*noTextures
	cfg.Quality.Translucency = !*noTranslucency
	cfg.Quality.DitheredLighting = !*noDither
	cfg.Quality.SkyColor = *skyColor
	cfg.HOM = *hom
	cfg.Shadows = *shadows
	cfg.BorderFlat = render.DemoBorder
	cfg.Logger = log

	r, err := render.New(cfg, lvl, mats, tables)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	scene := render.DemoScene(lvl)
	if err := r.SetScene(scene); err != nil {
		return nil, fmt.Errorf("set scene: %w", err)
	}
	return newGameState(log, r, scene), nil
}
