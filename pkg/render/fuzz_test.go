package render

import (
	"testing"
)

// noisyCanvas fills the screen with a repeatable pattern so fuzz reads
// differ from row to row.
func noisyCanvas() *Canvas {
	cv := NewCanvas(32, 48)
	for i := range cv.Screen {
		cv.Screen[i] = byte(i*37 + i/7)
	}
	return cv
}

func TestFuzzColumnPausedReplay(t *testing.T) {
	fz := NewFuzz(42)
	full := testTables().Colormaps.Colormap(0)
	draw := func(paused bool) []byte {
		cv := noisyCanvas()
		fz.BeginFrame(paused)
		for x := range 32 {
			dc := &ColumnState{X: x, YL: x % 5, YH: 40 - x%3, FullColormap: full}
			fuzzColumn{fuzz: fz}.DrawColumn(cv, dc)
		}
		return cv.Screen
	}

	live := draw(false)
	for i := range 3 {
		if got := draw(true); string(got) != string(live) {
			t.Fatalf("paused frame %d differs from the live frame", i)
		}
	}
	if !fz.Paused() {
		t.Error("Paused() = false during a paused frame")
	}

	// a live frame draws new offsets and a pause replays those
	next := draw(false)
	if got := draw(true); string(got) != string(next) {
		t.Error("paused frame does not replay the latest live frame")
	}
}

func TestFuzzReplayOutrunsRecord(t *testing.T) {
	fz := NewFuzz(1)
	fz.BeginFrame(false)
	fz.offset(-1, 1)
	fz.BeginFrame(true)
	fz.offset(-1, 1)
	// more decisions than recorded fall back to no offset
	for range 10 {
		if v := fz.offset(-1, 1); v != 0 {
			t.Fatalf("unrecorded decision = %d, want 0", v)
		}
	}
}

func TestFuzzOffsetsInRange(t *testing.T) {
	fz := NewFuzz(7)
	fz.BeginFrame(false)
	seen := map[int]bool{}
	for range 1000 {
		v := fz.offset(-1, 1)
		if v < -1 || v > 1 {
			t.Fatalf("offset %d outside [-1, 1]", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("saw offsets %v, want all of -1, 0, 1", seen)
	}
	for range 1000 {
		if v := fz.offset(0, 1); v < 0 {
			t.Fatalf("top row offset %d reads above the view", v)
		}
	}
}

func TestFuzzColumnDarkens(t *testing.T) {
	tables := testTables()
	full := tables.Colormaps.Colormap(0)
	cv := NewCanvas(8, 16)
	white := tables.Palette.Nearest(255, 255, 255)
	for i := range cv.Screen {
		cv.Screen[i] = white
	}
	fz := NewFuzz(1)
	fz.BeginFrame(false)
	fuzzColumn{fuzz: fz}.DrawColumn(cv, &ColumnState{X: 3, YL: 0, YH: 15, FullColormap: full})

	for y := range 16 {
		got := cv.Screen[cv.ViewOffset(3, y)]
		if tables.Palette.Luminance(got) >= tables.Palette.Luminance(white) {
			t.Errorf("row %d not darkened", y)
		}
	}
}

func TestFuzzMaskPass(t *testing.T) {
	tables := testTables()
	full := tables.Colormaps.Colormap(0)
	fz := NewFuzz(3)

	draw := func(paused bool) []byte {
		cv := noisyCanvas()
		cv.SetView(4, 4, 24, 36)
		fz.BeginFrame(paused)
		fz.ClearMask(cv)
		for x := 6; x < 14; x++ {
			drawFuzzMaskColumn(cv, &ColumnState{X: x, YL: 5, YH: 30})
		}
		fz.DrawMask(cv, full)
		return cv.Screen
	}

	before := noisyCanvas().Screen
	live := draw(false)
	cv := noisyCanvas()
	cv.SetView(4, 4, 24, 36)
	changed := 0
	for i := range live {
		if live[i] != before[i] {
			changed++
			x, y := i%cv.Pitch-4, i/cv.Pitch-4
			if x < 6 || x >= 14 || y < 5 || y > 30 {
				t.Fatalf("unmasked pixel (%d, %d) fuzzed", x, y)
			}
		}
	}
	if changed == 0 {
		t.Fatal("mask pass changed nothing")
	}
	if got := draw(true); string(got) != string(live) {
		t.Error("paused mask pass differs from the live pass")
	}
}

func TestSwirl(t *testing.T) {
	s := NewSwirl()
	flat := NewFlat("NUKAGE")
	flat.Liquid = true
	for i := range flat.Pixels {
		flat.Pixels[i] = byte(i % 61)
	}

	for _, step := range []int{0, 1, SwirlSteps - 1} {
		for i, off := range s.Offsets(step) {
			if int(off) >= FlatSize*FlatSize {
				t.Fatalf("step %d texel %d offset %d outside the tile", step, i, off)
			}
		}
	}
	if &s.Offsets(5)[0] != &s.Offsets(5 + SwirlSteps)[0] {
		t.Error("time steps a period apart do not share an offset table")
	}
	if string(u16bytes(s.Offsets(0))) == string(u16bytes(s.Offsets(SwirlSteps/4))) {
		t.Error("offsets do not move over time")
	}

	tile := s.Distort(flat, 5, false)
	want := append([]byte(nil), tile...)
	for i, off := range s.Offsets(5) {
		if want[i] != flat.Pixels[off] {
			t.Fatalf("texel %d = %d, want flat pixel %d", i, want[i], off)
		}
	}

	paused := s.Distort(flat, 9, true)
	if &paused[0] != &tile[0] || string(paused) != string(want) {
		t.Error("paused distortion rebuilt the tile")
	}
	again := s.Distort(flat, 5, false)
	if string(again) != string(want) {
		t.Error("same time step gave a different tile")
	}
}

func u16bytes(s []uint16) []byte {
	b := make([]byte, 0, 2*len(s))
	for _, v := range s {
		b = append(b, byte(v), byte(v>>8))
	}
	return b
}

func BenchmarkSwirlDistort(b *testing.B) {
	s := NewSwirl()
	flat := NewFlat("NUKAGE")
	time := 0
	for b.Loop() {
		time++
		s.Distort(flat, time, false)
	}
}
