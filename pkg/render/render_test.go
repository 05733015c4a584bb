package render

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

var (
	testTablesOnce sync.Once
	sharedTables   *Tables
)

// testTables builds the palette tables once; they take a while.
func testTables() *Tables {
	testTablesOnce.Do(func() {
		pal := DefaultPalette()
		sharedTables = NewTables(pal, NewColormaps(pal, DemoTints()...))
	})
	return sharedTables
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(t testing.TB, mutate func(*Config)) *Renderer {
	t.Helper()
	lvl, err := level.BuildRooms(DemoLayout())
	if err != nil {
		t.Fatalf("BuildRooms: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Logger = testLogger()
	cfg.BorderFlat = DemoBorder
	if mutate != nil {
		mutate(&cfg)
	}
	tables := testTables()
	r, err := New(cfg, lvl, DemoMaterials(tables.Palette), tables)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.SetScene(DemoScene(lvl)); err != nil {
		t.Fatalf("SetScene: %v", err)
	}
	return r
}

func startView(r *Renderer) View {
	return NewCamera(r.Level()).View(fixed.FracUnit)
}

func sameDrawer(a, b ColumnDrawer) bool {
	return reflect.DeepEqual(a, b)
}

func TestNewRejectsBadConfig(t *testing.T) {
	lvl, err := level.BuildRooms(DemoLayout())
	if err != nil {
		t.Fatalf("BuildRooms: %v", err)
	}
	tables := testTables()
	mats := DemoMaterials(tables.Palette)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"narrow", func(c *Config) { c.Width = 32 }},
		{"huge", func(c *Config) { c.Height = MaxHeight + 1 }},
		{"fov", func(c *Config) { c.FOV = 150 }},
		{"blocks low", func(c *Config) { c.Blocks = MinBlocks - 1 }},
		{"blocks high", func(c *Config) { c.Blocks = MaxBlocks + 1 }},
		{"sky color", func(c *Config) { c.Quality.SkyColor = 300 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Logger = testLogger()
			tt.mutate(&cfg)
			if _, err := New(cfg, lvl, mats, tables); !errors.Is(err, ErrBadConfig) {
				t.Errorf("New err = %v, want ErrBadConfig", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Logger = testLogger()
	if _, err := New(cfg, nil, mats, tables); !errors.Is(err, ErrNoLevel) {
		t.Errorf("nil level err = %v, want ErrNoLevel", err)
	}
}

// spanRecorder keeps a copy of every span state it draws.
type spanRecorder struct {
	next  SpanDrawer
	spans []SpanState
}

func (s *spanRecorder) DrawSpan(cv *Canvas, ds *SpanState) {
	s.spans = append(s.spans, *ds)
	s.next.DrawSpan(cv, ds)
}

func TestDrawPlanesOneSpanPerRow(t *testing.T) {
	r := newTestRenderer(t, nil)
	r.setupFrame(startView(r))
	r.planes.Clear()

	pl := r.planes.Find(0, DemoFloor, 192, 0, 0)
	pl = r.planes.CheckPlane(pl, 10, 50)
	for x := 10; x <= 50; x++ {
		pl.SetColumn(x, 100, 120)
	}

	rec := &spanRecorder{next: r.bind.span}
	r.bind.span = rec
	r.stats = Stats{}
	r.drawPlanes()

	if len(rec.spans) != 21 {
		t.Fatalf("drew %d spans, want 21", len(rec.spans))
	}
	for i, ds := range rec.spans {
		if ds.Y != 100+i {
			t.Errorf("span %d on row %d, want %d", i, ds.Y, 100+i)
		}
		if ds.X1 != 10 || ds.X2 != 50 {
			t.Errorf("span %d covers [%d, %d], want [10, 50]", i, ds.X1, ds.X2)
		}
	}
	if r.stats.Spans != 21 {
		t.Errorf("Stats.Spans = %d, want 21", r.stats.Spans)
	}
	if r.stats.SpanCacheMisses != 1 {
		t.Errorf("SpanCacheMisses = %d, want 1", r.stats.SpanCacheMisses)
	}
}

func TestDrawPlanesSharesStepsPerHeight(t *testing.T) {
	tests := []struct {
		name       string
		heights    [2]fixed.Fixed
		wantMisses int
	}{
		{"same height", [2]fixed.Fixed{0, 0}, 1},
		{"two heights", [2]fixed.Fixed{0, -16 * fixed.FracUnit}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, nil)
			r.setupFrame(startView(r))
			r.planes.Clear()

			for i, pic := range []int{DemoFloor, DemoSlime} {
				pl := r.planes.Find(tt.heights[i], pic, 160, 0, 0)
				x1 := 20 * i
				pl = r.planes.CheckPlane(pl, x1, x1+15)
				for x := x1; x <= x1+15; x++ {
					pl.SetColumn(x, 150, 160)
				}
			}
			r.stats = Stats{}
			r.drawPlanes()
			if r.stats.SpanCacheMisses != tt.wantMisses {
				t.Errorf("SpanCacheMisses = %d, want %d", r.stats.SpanCacheMisses, tt.wantMisses)
			}
			if r.stats.Spans != 22 {
				t.Errorf("Spans = %d, want 22", r.stats.Spans)
			}
		})
	}
}

// coverColumn marks the view pixels a column drawer is asked to fill.
type coverColumn struct {
	next ColumnDrawer
	hit  []bool
	w    int
}

func (c coverColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	for y := dc.YL; y <= dc.YH; y++ {
		c.hit[y*c.w+dc.X] = true
	}
	c.next.DrawColumn(cv, dc)
}

type coverSpan struct {
	next SpanDrawer
	hit  []bool
	w    int
}

func (c coverSpan) DrawSpan(cv *Canvas, ds *SpanState) {
	for x := ds.X1; x <= ds.X2; x++ {
		c.hit[ds.Y*c.w+x] = true
	}
	c.next.DrawSpan(cv, ds)
}

func TestRenderCoversView(t *testing.T) {
	views := []struct {
		name  string
		angle fixed.Angle
		look  int
	}{
		{"east", 0, 0},
		{"north", fixed.Ang90, 0},
		{"west look up", fixed.Ang180, LookDirMax},
		{"south look down", fixed.Ang270, -LookDirMax},
	}
	for _, vt := range views {
		t.Run(vt.name, func(t *testing.T) {
			r := newTestRenderer(t, nil)
			_, _, w, h := r.Canvas().View()
			hit := make([]bool, w*h)
			for role := range numRoles {
				r.bind.columns[role] = coverColumn{next: r.bind.columns[role], hit: hit, w: w}
			}
			r.bind.span = coverSpan{next: r.bind.span, hit: hit, w: w}

			v := startView(r)
			v.Angle, v.LookDir = vt.angle, vt.look
			r.RenderPlayerView(v)

			covered := 0
			for _, ok := range hit {
				if ok {
					covered++
				}
			}
			if covered*100 < len(hit)*99 {
				t.Errorf("covered %d of %d view pixels", covered, len(hit))
			}
		})
	}
}

// countColumn counts the columns a drawer is asked to draw.
type countColumn struct {
	next ColumnDrawer
	n    *int
}

func (c countColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	*c.n++
	c.next.DrawColumn(cv, dc)
}

// countRoles wraps the drawers of roles with counters.
func countRoles(r *Renderer, roles ...Role) map[Role]*int {
	counts := make(map[Role]*int)
	for _, role := range roles {
		n := new(int)
		counts[role] = n
		r.bind.columns[role] = countColumn{next: r.bind.columns[role], n: n}
	}
	return counts
}

func TestMaskedMidTextures(t *testing.T) {
	views := []struct {
		name  string
		x     int
		angle fixed.Angle
		role  Role
	}{
		{"hall grate", 192, 0, RoleSeg},
		{"translucent pit grate", 800, 0, RoleSeg50},
		{"translucent pit grate from the pit", 1100, fixed.Ang180, RoleSeg50},
	}
	for _, vt := range views {
		t.Run(vt.name, func(t *testing.T) {
			r := newTestRenderer(t, nil)
			counts := countRoles(r, RoleSeg, RoleSeg50)
			cam := NewCamera(r.Level())
			cam.Teleport(r.Level(), fixed.FromInt(vt.x), fixed.FromInt(256), vt.angle)
			r.RenderPlayerView(cam.View(fixed.FracUnit))

			if *counts[vt.role] == 0 {
				t.Errorf("no %s columns drawn", vt.role)
			}
			masked := 0
			for _, ds := range r.drawSegs {
				if ds.maskedCols == nil {
					continue
				}
				masked++
				if ds.silhouette != silBoth {
					t.Errorf("masked seg silhouette %d, want both", ds.silhouette)
				}
				for i, c := range ds.maskedCols {
					if c != maskedDrawn {
						t.Fatalf("masked column %d left undrawn", ds.x1+i)
					}
				}
			}
			if masked == 0 {
				t.Error("no masked segs recorded")
			}
		})
	}

	// without grates nothing is masked
	layout := DemoLayout()
	layout.Grates = nil
	lvl, err := level.BuildRooms(layout)
	if err != nil {
		t.Fatalf("BuildRooms: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Logger = testLogger()
	tables := testTables()
	r, err := New(cfg, lvl, DemoMaterials(tables.Palette), tables)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	counts := countRoles(r, RoleSeg, RoleSeg50)
	r.RenderPlayerView(startView(r))
	if *counts[RoleSeg]+*counts[RoleSeg50] != 0 {
		t.Error("open boundaries drew masked columns")
	}
}

func TestBrightmapWalls(t *testing.T) {
	tests := []struct {
		name     string
		colormap FixedColormap
		want     bool
	}{
		{"lit", ColormapNone, true},
		{"full bright", ColormapFullBright, false},
		{"inverse", ColormapInverse, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, nil)
			counts := countRoles(r, RoleWall, RoleBrightmapWall)
			cam := NewCamera(r.Level())
			// the yard is walled with lamp lit metal
			cam.Teleport(r.Level(), fixed.FromInt(544), fixed.FromInt(256), fixed.Ang90)
			v := cam.View(fixed.FracUnit)
			v.Colormap = tt.colormap
			r.RenderPlayerView(v)

			if got := *counts[RoleBrightmapWall] > 0; got != tt.want {
				t.Errorf("brightmap columns drawn = %v, want %v", got, tt.want)
			}
			if !tt.want && *counts[RoleWall] == 0 {
				t.Error("metal not drawn as a plain wall")
			}
		})
	}
}

func TestRenderFrontToBack(t *testing.T) {
	r := newTestRenderer(t, nil)
	v := startView(r)
	r.RenderPlayerView(v)

	if len(r.drawSegs) == 0 {
		t.Fatal("no walls drawn")
	}
	last := -1
	for i, ds := range r.drawSegs {
		sec := r.sectorIndex[ds.seg.FrontSector]
		if i == 0 && sec != 0 {
			t.Errorf("first wall belongs to sector %d, want the viewer's sector 0", sec)
		}
		if sec < last {
			t.Errorf("wall %d in sector %d drawn after sector %d", i, sec, last)
		}
		last = sec
	}
}

func TestRenderQualityMatrix(t *testing.T) {
	r := newTestRenderer(t, func(c *Config) { c.HOM = true })
	v := startView(r)

	for mask := range 1 << 5 {
		q := Quality{
			Textures:               mask&1 != 0,
			Translucency:           mask&2 != 0,
			DitheredLighting:       mask&4 != 0,
			FlippedSky:             mask&8 != 0,
			BloodSplatTranslucency: true,
			SkyColor:               -1,
		}
		if mask&16 != 0 {
			q.SkyColor = RampBlue + 3
		}
		if err := r.SetQuality(q); err != nil {
			t.Fatalf("SetQuality: %v", err)
		}
		for _, cm := range []FixedColormap{ColormapNone, ColormapFullBright, ColormapInverse} {
			v.Colormap = cm
			r.RenderPlayerView(v)
			st := r.Stats()
			if st.Columns == 0 || st.Spans == 0 {
				t.Errorf("quality %+v colormap %d: %d columns, %d spans", q, cm, st.Columns, st.Spans)
			}
		}
	}
}

func TestPausedFrameRepeats(t *testing.T) {
	for _, fuzzMask := range []bool{false, true} {
		r := newTestRenderer(t, func(c *Config) { c.FuzzMask = fuzzMask })
		cam := NewCamera(r.Level())
		// stand in the yard facing the vault
		cam.X += 200 * fixed.FracUnit
		cam.Settle(r.Level())
		cam.Tic()
		v := cam.View(fixed.FracUnit)
		v.Time = 17

		r.RenderPlayerView(v)
		live := append([]byte(nil), r.Canvas().Screen...)

		v.Paused = true
		v.Time = 40
		r.RenderPlayerView(v)
		if string(r.Canvas().Screen) != string(live) {
			t.Errorf("fuzz mask %v: paused frame differs from the last live frame", fuzzMask)
		}
	}
}

func TestSetQualityMidFrame(t *testing.T) {
	r := newTestRenderer(t, nil)
	q := r.Quality()
	q.Textures = false

	r.inFrame = true
	if err := r.SetQuality(q); !errors.Is(err, ErrMidFrame) {
		t.Errorf("SetQuality mid-frame err = %v, want ErrMidFrame", err)
	}
	if err := r.SetScene(nil); !errors.Is(err, ErrMidFrame) {
		t.Errorf("SetScene mid-frame err = %v, want ErrMidFrame", err)
	}
	if !r.Bindings().Quality().Textures {
		t.Error("bindings changed by a rejected SetQuality")
	}

	r.inFrame = false
	if err := r.SetQuality(q); err != nil {
		t.Fatalf("SetQuality: %v", err)
	}
	if r.Bindings().Quality() != q {
		t.Errorf("bindings quality = %+v, want %+v", r.Bindings().Quality(), q)
	}
}

func TestPropagateBindings(t *testing.T) {
	r := newTestRenderer(t, nil)

	check := func(t *testing.T) {
		t.Helper()
		b := r.Bindings()
		for _, c := range r.scene.Classes {
			p, a := ObjectRoles(c.Flags)
			if !sameDrawer(c.Primary, b.Column(p)) || !sameDrawer(c.Alternate, b.Column(a)) {
				t.Errorf("class %s drawers not bound to (%s, %s)", c.Name, p, a)
			}
		}
		for i, th := range r.scene.Things {
			flags := th.Class.Flags
			if th.Translation > 0 {
				flags |= FlagTranslation
			}
			want, _ := b.ObjectPair(flags)
			got, _ := th.Drawers()
			if !sameDrawer(got, want) {
				t.Errorf("thing %d (%s) primary drawer not rebound", i, th.Class.Name)
			}
		}
	}

	t.Run("initial", check)
	q := r.Quality()
	q.Translucency = false
	q.DitheredLighting = false
	if err := r.SetQuality(q); err != nil {
		t.Fatalf("SetQuality: %v", err)
	}
	t.Run("after quality change", check)
}

func TestSetViewSizeDeferred(t *testing.T) {
	r := newTestRenderer(t, nil)
	r.SetViewSize(7)
	if r.ViewSize() != MaxBlocks {
		t.Fatalf("view size changed before the next frame: %d", r.ViewSize())
	}
	r.RenderPlayerView(startView(r))
	if r.ViewSize() != 7 {
		t.Fatalf("view size = %d, want 7", r.ViewSize())
	}
	x, y, w, h := r.Canvas().View()
	wx, wy, ww, wh := ViewWindow(7, r.cfg.Width, r.cfg.Height)
	if x != wx || y != wy || w != ww || h != wh {
		t.Errorf("view window (%d,%d %dx%d), want (%d,%d %dx%d)", x, y, w, h, wx, wy, ww, wh)
	}
	if r.Projection().Width != w || r.Projection().Height != h {
		t.Errorf("projection %dx%d, want %dx%d", r.Projection().Width, r.Projection().Height, w, h)
	}

	cv := r.Canvas()
	if cv.Screen[0] != cv.Back[0] {
		t.Error("border was not copied from the back screen")
	}

	for _, tt := range []struct{ in, want int }{{99, MaxBlocks}, {0, MinBlocks}} {
		r.SetViewSize(tt.in)
		r.RenderPlayerView(startView(r))
		if r.ViewSize() != tt.want {
			t.Errorf("SetViewSize(%d) gave %d, want %d", tt.in, r.ViewSize(), tt.want)
		}
	}
}

func BenchmarkRenderPlayerView(b *testing.B) {
	r := newTestRenderer(b, nil)
	v := startView(r)
	for b.Loop() {
		v.Time++
		r.RenderPlayerView(v)
	}
}

func BenchmarkRenderPlayerViewFuzzMask(b *testing.B) {
	r := newTestRenderer(b, func(c *Config) { c.FuzzMask = true })
	v := startView(r)
	for b.Loop() {
		v.Time++
		r.RenderPlayerView(v)
	}
}
