package render

import "math/rand/v2"

// NoFuzz marks mask pixels the fuzz pass leaves alone.
const NoFuzz = 251

// Colormap levels the fuzz effect darkens through.
const (
	fuzzLevelMiddle = 6
	fuzzLevelEdge   = 12
	fuzzLevelBottom = 5
)

// Fuzz produces the random row offsets of the fuzz effect. Every decision of
// a live frame is recorded; a paused frame replays the record so the effect
// stays still while the game is paused.
type Fuzz struct {
	rng    *rand.Rand
	record []int8
	pos    int
	paused bool
}

// NewFuzz creates a fuzz source with a fixed seed.
func NewFuzz(seed int64) *Fuzz {
	return &Fuzz{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// BeginFrame rewinds the record. A live frame discards it and records anew.
func (f *Fuzz) BeginFrame(paused bool) {
	f.paused = paused
	f.pos = 0
	if !paused {
		f.record = f.record[:0]
	}
}

// Paused reports whether the current frame replays.
func (f *Fuzz) Paused() bool {
	return f.paused
}

func (f *Fuzz) replay() (int, bool) {
	if !f.paused {
		return 0, false
	}
	if f.pos < len(f.record) {
		v := f.record[f.pos]
		f.pos++
		return int(v), true
	}
	// more decisions than the live frame made
	return 0, true
}

// offset returns a row offset in [lo, hi].
func (f *Fuzz) offset(lo, hi int) int {
	if v, ok := f.replay(); ok {
		return v
	}
	v := lo + f.rng.IntN(hi-lo+1)
	f.record = append(f.record, int8(v))
	return v
}

// gate reports whether an edge pixel is fuzzed, one time in four.
func (f *Fuzz) gate() bool {
	if v, ok := f.replay(); ok {
		return v != 0
	}
	g := f.rng.Uint32()&3 == 0
	var v int8
	if g {
		v = 1
	}
	f.record = append(f.record, v)
	return g
}

// fuzzColumn darkens the screen under the column with pixels borrowed from
// the rows around each one.
type fuzzColumn struct {
	fuzz *Fuzz
}

func (fc fuzzColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	f := fc.fuzz
	screen, pitch := cv.Screen, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	full := dc.FullColormap

	// top row never reads above the view
	lo := -1
	if dc.YL == 0 {
		lo = 0
	}
	if dc.YL == dc.YH {
		screen[dest] = full[fuzzLevelEdge<<8|int(screen[dest+f.offset(lo, 0)*pitch])]
		return
	}
	screen[dest] = full[fuzzLevelEdge<<8|int(screen[dest+f.offset(lo, 1)*pitch])]
	dest += pitch

	for n := dc.YH - dc.YL - 1; n > 0; n-- {
		screen[dest] = full[fuzzLevelMiddle<<8|int(screen[dest+f.offset(-1, 1)*pitch])]
		dest += pitch
	}

	screen[dest] = full[fuzzLevelBottom<<8|int(screen[dest+f.offset(-1, 0)*pitch])]
}

// drawFuzzMaskColumn marks the column in the mask for the full-view pass.
func drawFuzzMaskColumn(cv *Canvas, dc *ColumnState) {
	mask, pitch := cv.Mask, cv.Pitch
	dest := cv.ViewOffset(dc.X, dc.YL)
	for n := dc.YH - dc.YL; n >= 0; n-- {
		mask[dest] = 0
		dest += pitch
	}
}

// ClearMask resets the view window of the mask.
func (f *Fuzz) ClearMask(cv *Canvas) {
	cv.FillView(cv.Mask, NoFuzz)
}

// DrawMask fuzzes every masked view pixel. Edges of masked areas are fuzzed
// sparsely so silhouettes shimmer.
func (f *Fuzz) DrawMask(cv *Canvas, full []byte) {
	screen, mask, pitch := cv.Screen, cv.Mask, cv.Pitch
	_, _, w, h := cv.View()
	for x := range w {
		for y := range h {
			i := cv.ViewOffset(x, y)
			if mask[i] == NoFuzz {
				continue
			}
			lo, hi := -1, 1
			if y == 0 {
				lo = 0
			}
			if y == h-1 {
				hi = 0
			}

			var level int
			switch {
			case y == 0 || mask[i-pitch] == NoFuzz:
				if !f.gate() {
					continue
				}
				level = fuzzLevelEdge
			case y == h-1:
				level = fuzzLevelBottom
			case mask[i+pitch] == NoFuzz:
				if !f.gate() {
					continue
				}
				level = fuzzLevelEdge
			case (x > 0 && mask[i-1] == NoFuzz) || (x < w-1 && mask[i+1] == NoFuzz):
				if !f.gate() {
					continue
				}
				level = fuzzLevelEdge
			default:
				level = fuzzLevelMiddle
			}
			screen[i] = full[level<<8|int(screen[i+f.offset(lo, hi)*pitch])]
		}
	}
}
