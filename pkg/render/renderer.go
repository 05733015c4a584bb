// Package render draws a first-person view of a level into an indexed pixel
// canvas: partition traversal, wall columns, visplane spans, sprites and the
// border around a shrunk view, plus presentation to RGBA and the terminal.
package render

import (
	"fmt"
	"log/slog"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// FixedColormap overrides sector lighting for a whole frame.
type FixedColormap int

const (
	ColormapNone FixedColormap = iota
	ColormapFullBright
	ColormapInverse
)

// View is the viewer pose and frame conditions for one frame.
type View struct {
	X, Y, Z fixed.Fixed // Z is eye height
	Angle   fixed.Angle
	LookDir int // -LookDirMax..LookDirMax

	ExtraLight int // light levels added by weapon flashes
	Colormap   FixedColormap
	Time       int  // game tics, drives the HOM flash and liquid swirl
	Paused     bool // animation suspended; effects replay the last frame

	Weapon *PlayerSprite
}

// Stats counts the work of the last frame.
type Stats struct {
	Nodes           int
	Subsectors      int
	Segs            int
	DrawSegs        int
	Visplanes       int
	Spans           int
	SpanCacheMisses int
	Columns         int
	Sprites         int
}

// Renderer owns every table and per-frame buffer of the renderer.
type Renderer struct {
	cfg    Config
	log    *slog.Logger
	level  *level.Level
	mats   MaterialSource
	tables *Tables
	canvas *Canvas

	scene        *Scene
	sectorIndex  map[*level.Sector]int
	sectorThings [][]*Thing
	sectorSplats [][]*BloodSplat
	sectorSeen   []uint32

	blocks        int
	pendingBlocks int
	resize        bool
	proj          *Projection
	light         *Lighting
	planes        *Visplanes

	quality Quality
	bind    *Bindings
	fuzz    *Fuzz
	swirl   *Swirl

	frame   uint32
	inFrame bool
	stats   Stats

	// frame view
	view          View
	viewX, viewY  fixed.Fixed
	viewZ         fixed.Fixed
	viewAngle     fixed.Angle
	viewSin       fixed.Fixed
	viewCos       fixed.Fixed
	extraLight    int
	colormapSet   int
	fullColormap  []byte // every level of the active set
	fixedColormap []byte // nil unless the frame overrides lighting

	// clipping
	solidSegs    []clipRange
	floorClip    []int
	ceilingClip  []int
	negOne       []int
	screenHeight []int
	openings     []int
	drawSegs     []drawSeg
	visSprites   []visSprite
	sortedSprite []*visSprite
	clipTop      []int
	clipBottom   []int

	// walls
	seg segState

	// planes
	floorPlane   *Visplane
	ceilingPlane *Visplane
	spanStart    []int
	plane        planeState

	dc ColumnState
	ds SpanState
}

// New creates a renderer for a level.
func New(cfg Config, lvl *level.Level, mats MaterialSource, tables *Tables) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lvl == nil || len(lvl.Subsectors) == 0 {
		return nil, ErrNoLevel
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("renderer level: %w", err)
	}

	r := &Renderer{
		cfg:           cfg,
		log:           cfg.logger(),
		level:         lvl,
		mats:          mats,
		tables:        tables,
		canvas:        NewCanvas(cfg.Width, cfg.Height),
		sectorIndex:   make(map[*level.Sector]int, len(lvl.Sectors)),
		sectorThings:  make([][]*Thing, len(lvl.Sectors)),
		sectorSplats:  make([][]*BloodSplat, len(lvl.Sectors)),
		sectorSeen:    make([]uint32, len(lvl.Sectors)),
		blocks:        cfg.Blocks,
		pendingBlocks: cfg.Blocks,
		quality:       cfg.Quality,
		fuzz:          NewFuzz(cfg.FuzzSeed),
		swirl:         NewSwirl(),
		scene:         &Scene{},
	}
	for i := range lvl.Sectors {
		r.sectorIndex[&lvl.Sectors[i]] = i
	}

	r.bind = SelectBindings(r.quality, tables, r.fuzz, cfg.FuzzMask)
	r.executeSetViewSize()

	r.log.Info("renderer created",
		"width", cfg.Width,
		"height", cfg.Height,
		"fov", cfg.FOV,
		"sectors", len(lvl.Sectors),
		"subsectors", len(lvl.Subsectors),
		"colormapsets", tables.Colormaps.NumSets(),
	)
	return r, nil
}

// Canvas returns the pixel sink frames are drawn into.
func (r *Renderer) Canvas() *Canvas {
	return r.canvas
}

// Tables returns the palette-derived tables.
func (r *Renderer) Tables() *Tables {
	return r.tables
}

// Level returns the level being drawn.
func (r *Renderer) Level() *level.Level {
	return r.level
}

// Projection returns the tables of the current view size.
func (r *Renderer) Projection() *Projection {
	return r.proj
}

// Bindings returns the current drawer bindings.
func (r *Renderer) Bindings() *Bindings {
	return r.bind
}

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ViewSize returns the current view size in blocks.
func (r *Renderer) ViewSize() int {
	return r.blocks
}

// SetViewSize requests a new view size, applied at the start of the next
// frame.
func (r *Renderer) SetViewSize(blocks int) {
	r.pendingBlocks = fixed.Clamp(blocks, MinBlocks, MaxBlocks)
	r.resize = true
}

// executeSetViewSize rebuilds every table that depends on the view window.
func (r *Renderer) executeSetViewSize() {
	r.resize = false
	r.blocks = r.pendingBlocks

	x, y, w, h := ViewWindow(r.blocks, r.cfg.Width, r.cfg.Height)
	r.canvas.SetView(x, y, w, h)
	r.proj = NewProjection(w, h, r.cfg.FOV)
	if r.light == nil {
		r.light = NewLighting(r.tables.Colormaps, r.proj.FOVScale)
	}
	r.light.Resize(w)

	isSky := func(pic int) bool { return r.mats.IsSky(pic) }
	r.planes = NewVisplanes(w, isSky, r.log)

	r.floorClip = make([]int, w)
	r.ceilingClip = make([]int, w)
	r.negOne = make([]int, w)
	r.screenHeight = make([]int, w)
	for i := range w {
		r.negOne[i] = -1
		r.screenHeight[i] = h
	}
	r.clipTop = make([]int, w)
	r.clipBottom = make([]int, w)
	r.spanStart = make([]int, h)

	r.fillBackScreen()
	r.log.Info("view size set", "blocks", r.blocks, "viewwidth", w, "viewheight", h)
}

// SetQuality rebinds every drawing role and propagates the drawers onto the
// scene. It must not be called while a frame is being drawn.
func (r *Renderer) SetQuality(q Quality) error {
	if r.inFrame {
		return ErrMidFrame
	}
	r.quality = q
	r.bind = SelectBindings(q, r.tables, r.fuzz, r.cfg.FuzzMask)
	r.propagateBindings()
	r.log.Info("quality changed", "quality", q)
	return nil
}

// Quality returns the current toggles.
func (r *Renderer) Quality() Quality {
	return r.quality
}

// SetScene replaces the sprites drawn with the level and resolves their
// drawers.
func (r *Renderer) SetScene(s *Scene) error {
	if r.inFrame {
		return ErrMidFrame
	}
	if s == nil {
		s = &Scene{}
	}
	r.scene = s
	r.propagateBindings()
	return nil
}

// propagateBindings resolves the drawer pair of every class and live thing.
func (r *Renderer) propagateBindings() {
	for _, c := range r.scene.Classes {
		c.Primary, c.Alternate = r.bind.ObjectPair(c.Flags)
	}
	for _, t := range r.scene.Things {
		var flags ObjectFlags
		if t.Class != nil {
			flags = t.Class.Flags
		}
		if t.Translation > 0 {
			flags |= FlagTranslation
		}
		t.primary, t.alternate = r.bind.ObjectPair(flags)
	}
}

// RenderPlayerView draws one frame for the given view.
func (r *Renderer) RenderPlayerView(v View) {
	if r.resize {
		r.executeSetViewSize()
	}
	r.inFrame = true
	defer func() { r.inFrame = false }()

	r.stats = Stats{}
	r.setupFrame(v)

	r.clearClipSegs()
	r.clearDrawSegs()
	r.planes.Clear()
	r.clearSprites()

	if r.cfg.HOM {
		r.fillHOM()
	}
	if r.cfg.FuzzMask {
		r.fuzz.ClearMask(r.canvas)
	}

	r.renderBSPNode(r.rootNode())
	r.drawPlanes()
	r.drawMasked()

	if r.cfg.FuzzMask {
		r.fuzz.DrawMask(r.canvas, r.fullColormap)
	}
	if r.blocks < MaxBlocks {
		r.drawViewBorder()
	}
	r.stats.Visplanes = r.planes.Len()
	r.stats.DrawSegs = len(r.drawSegs)
}

func (r *Renderer) setupFrame(v View) {
	r.frame++
	r.view = v
	r.viewX, r.viewY, r.viewZ = v.X, v.Y, v.Z
	r.viewAngle = v.Angle
	r.viewSin = fixed.Sin(v.Angle)
	r.viewCos = fixed.Cos(v.Angle)
	r.extraLight = v.ExtraLight
	r.proj.SetLookDir(v.LookDir)

	set := r.level.PointInSubsector(v.X, v.Y).Sector.ColormapSet(v.Z)
	if set < 0 || set >= r.light.NumSets() {
		set = 0
	}
	r.colormapSet = set
	r.fullColormap = r.light.Colormap(set)

	switch v.Colormap {
	case ColormapFullBright:
		r.fixedColormap = ColormapTable(r.fullColormap, 0)
	case ColormapInverse:
		r.fixedColormap = ColormapTable(r.fullColormap, InverseColormap)
	default:
		r.fixedColormap = nil
	}

	r.fuzz.BeginFrame(v.Paused)
	r.dc.FullColormap = r.fullColormap
}

// fillHOM paints the view window so pixels nothing draws over flash red.
func (r *Renderer) fillHOM() {
	c := r.tables.Palette.Nearest(0, 0, 0)
	if r.view.Time%20 < 9 {
		c = r.tables.Palette.Nearest(255, 0, 0)
	}
	r.canvas.FillView(r.canvas.Screen, c)
}

func (r *Renderer) rootNode() uint32 {
	if len(r.level.Nodes) == 0 {
		return level.SubsectorFlag
	}
	return uint32(len(r.level.Nodes) - 1)
}
