package render

import (
	"errors"
	"fmt"
	"log/slog"
)

// Errors returned by renderer setup.
var (
	ErrBadConfig = errors.New("invalid render config")
	ErrMidFrame  = errors.New("cannot change renderer state during a frame")
	ErrNoLevel   = errors.New("renderer needs a level")
)

// Quality holds the toggles the pixel-function selector resolves from.
type Quality struct {
	Textures               bool
	Translucency           bool
	DitheredLighting       bool
	SkyColor               int // palette index for a solid sky, or -1
	FlippedSky             bool
	BloodSplatTranslucency bool
}

// DefaultQuality enables everything except the solid sky.
func DefaultQuality() Quality {
	return Quality{
		Textures:               true,
		Translucency:           true,
		DitheredLighting:       true,
		SkyColor:               -1,
		BloodSplatTranslucency: true,
	}
}

// Config configures a Renderer.
type Config struct {
	Width  int // surface size in pixels
	Height int
	FOV    int // horizontal field of view in degrees
	Blocks int // view size, 3..11; 11 is full screen

	Quality Quality

	HOM        bool // flash unfilled view pixels
	FuzzMask   bool // fuzz things through the full-view mask pass
	Shadows    bool // draw flattened thing shadows
	Swirl      bool // animate liquid flats
	FuzzSeed   int64
	BorderFlat int // flat tiled behind a shrunk view
	Logger     *slog.Logger
}

// DefaultConfig returns a full-screen 320x200 configuration.
func DefaultConfig() Config {
	return Config{
		Width:    320,
		Height:   200,
		FOV:      90,
		Blocks:   11,
		Quality:  DefaultQuality(),
		FuzzMask: false,
		Shadows:  true,
		Swirl:    true,
		FuzzSeed: 1,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.Width < 64 || c.Width > MaxWidth || c.Height < 48 || c.Height > MaxHeight {
		return fmt.Errorf("%w: surface %dx%d outside 64x48..%dx%d",
			ErrBadConfig, c.Width, c.Height, MaxWidth, MaxHeight)
	}
	if c.FOV < 60 || c.FOV > 120 {
		return fmt.Errorf("%w: fov %d outside 60..120", ErrBadConfig, c.FOV)
	}
	if c.Blocks < MinBlocks || c.Blocks > MaxBlocks {
		return fmt.Errorf("%w: view size %d outside %d..%d",
			ErrBadConfig, c.Blocks, MinBlocks, MaxBlocks)
	}
	if c.Quality.SkyColor > 255 {
		return fmt.Errorf("%w: sky color %d", ErrBadConfig, c.Quality.SkyColor)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// LogValue renders the toggles as a log group.
func (q Quality) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("textures", q.Textures),
		slog.Bool("translucency", q.Translucency),
		slog.Bool("dither", q.DitheredLighting),
		slog.Int("skycolor", q.SkyColor),
		slog.Bool("flippedsky", q.FlippedSky),
		slog.Bool("bloodsplats", q.BloodSplatTranslucency),
	)
}
