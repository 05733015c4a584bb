package render

import (
	"log/slog"

	"github.com/taigrr/retrorender/pkg/fixed"
)

// VisplaneBuckets is the size of the visplane hash.
const VisplaneBuckets = 1024

// SentinelTop marks a visplane column with no recorded extent.
const SentinelTop = 0xffff

const noPlane int32 = -1

// PlaneKey is the identity of a visplane.
type PlaneKey struct {
	Height  fixed.Fixed
	Pic     int
	Light   int
	XOffset fixed.Fixed
	YOffset fixed.Fixed
}

func (k PlaneKey) hash() int {
	return int((uint32(k.Pic)*3 + uint32(k.Light) + uint32(k.Height)*7) & (VisplaneBuckets - 1))
}

// Visplane is the screen footprint of one floor or ceiling surface.
// Top and Bottom are indexed by column+1 so the sentinels either side of
// [Left, Right] fit.
type Visplane struct {
	PlaneKey
	Left, Right int
	Modified    bool
	Top, Bottom []uint16

	next int32
}

// SetColumn records the visible rows of column x.
func (pl *Visplane) SetColumn(x, top, bottom int) {
	pl.Top[x+1] = uint16(top)
	pl.Bottom[x+1] = uint16(bottom)
	pl.Modified = true
}

// Column returns the recorded rows of column x and whether any are recorded.
func (pl *Visplane) Column(x int) (top, bottom int, ok bool) {
	t := pl.Top[x+1]
	return int(t), int(pl.Bottom[x+1]), t != SentinelTop
}

// Visplanes is the per-frame visplane registry. Records live in an arena
// and are linked into hash buckets by index; Clear moves every bucket onto
// the free list at once, so records are reused across frames.
type Visplanes struct {
	width int
	isSky func(pic int) bool
	log   *slog.Logger

	arena []*Visplane
	head  [VisplaneBuckets]int32
	tail  [VisplaneBuckets]int32
	free  int32
	live  int
}

// NewVisplanes creates a registry for a view width.
func NewVisplanes(width int, isSky func(pic int) bool, log *slog.Logger) *Visplanes {
	if log == nil {
		log = slog.Default()
	}
	v := &Visplanes{width: width, isSky: isSky, log: log, free: noPlane}
	for i := range v.head {
		v.head[i], v.tail[i] = noPlane, noPlane
	}
	return v
}

// Clear releases every visplane for the next frame.
func (v *Visplanes) Clear() {
	for i, h := range v.head {
		if h == noPlane {
			continue
		}
		v.arena[v.tail[i]].next = v.free
		v.free = h
		v.head[i], v.tail[i] = noPlane, noPlane
	}
	v.live = 0
}

// Len returns the number of live visplanes this frame.
func (v *Visplanes) Len() int {
	return v.live
}

// Allocated returns the number of visplane records ever allocated.
func (v *Visplanes) Allocated() int {
	return len(v.arena)
}

func (v *Visplanes) alloc(key PlaneKey) *Visplane {
	var idx int32
	if v.free != noPlane {
		idx = v.free
		v.free = v.arena[idx].next
	} else {
		idx = int32(len(v.arena))
		v.arena = append(v.arena, &Visplane{
			Top:    make([]uint16, v.width+2),
			Bottom: make([]uint16, v.width+2),
		})
		v.log.Debug("visplane arena grew", "planes", len(v.arena))
	}
	pl := v.arena[idx]
	pl.PlaneKey = key
	pl.Left, pl.Right = v.width, -1
	pl.Modified = false
	for i := range pl.Top {
		pl.Top[i] = SentinelTop
	}

	h := key.hash()
	pl.next = v.head[h]
	v.head[h] = idx
	if v.tail[h] == noPlane {
		v.tail[h] = idx
	}
	v.live++
	return pl
}

// Find returns the visplane with the given identity, allocating an empty
// one if none exists this frame. Sky surfaces share one identity whatever
// their height and light.
func (v *Visplanes) Find(height fixed.Fixed, pic, light int, xoffset, yoffset fixed.Fixed) *Visplane {
	if v.isSky != nil && v.isSky(pic) {
		height, light = 0, 0
	}
	key := PlaneKey{Height: height, Pic: pic, Light: light, XOffset: xoffset, YOffset: yoffset}
	for i := v.head[key.hash()]; i != noPlane; i = v.arena[i].next {
		if v.arena[i].PlaneKey == key {
			return v.arena[i]
		}
	}
	return v.alloc(key)
}

// CheckPlane prepares pl to receive columns [start, stop]. If no column the
// two ranges share holds data, pl grows to their union and is returned;
// otherwise a duplicate with the same identity covering exactly
// [start, stop] is returned.
func (v *Visplanes) CheckPlane(pl *Visplane, start, stop int) *Visplane {
	var intrl, intrh, unionl, unionh int
	if start < pl.Left {
		intrl, unionl = pl.Left, start
	} else {
		unionl, intrl = pl.Left, start
	}
	if stop > pl.Right {
		intrh, unionh = pl.Right, stop
	} else {
		unionh, intrh = pl.Right, stop
	}

	x := intrl
	for x <= intrh && pl.Top[x+1] == SentinelTop {
		x++
	}
	if x > intrh {
		pl.Left, pl.Right = unionl, unionh
		return pl
	}

	dup := v.alloc(pl.PlaneKey)
	dup.Left, dup.Right = start, stop
	return dup
}

// Each calls fn for every live visplane.
func (v *Visplanes) Each(fn func(pl *Visplane)) {
	for _, h := range v.head {
		for i := h; i != noPlane; i = v.arena[i].next {
			fn(v.arena[i])
		}
	}
}
