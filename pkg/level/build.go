package level

import (
	"errors"
	"fmt"

	"github.com/taigrr/retrorender/pkg/fixed"
)

// ErrBadLayout is returned for room layouts that cannot form a map.
var ErrBadLayout = errors.New("invalid room layout")

// Room is one rectangular room of a chain. Heights are in map units.
type Room struct {
	Width         int
	FloorHeight   int
	CeilingHeight int
	FloorPic      int
	CeilingPic    int
	Light         int
	WallTexture   int
	Transfer      *HeightTransfer
}

// Grate hangs a masked texture in the opening between rooms Boundary-1 and
// Boundary.
type Grate struct {
	Boundary    int
	Texture     int
	Translucent bool
}

// Layout is a chain of rooms placed side by side along the x axis, all
// Depth units deep. Neighbouring rooms share an open two-sided wall.
type Layout struct {
	Depth  int
	Rooms  []Room
	Grates []Grate
}

// BuildRooms builds a level and its partition tree from a layout. Each room
// becomes one subsector; every node splits the chain at a room boundary.
func BuildRooms(layout Layout) (*Level, error) {
	rooms := layout.Rooms
	n := len(rooms)
	if n == 0 {
		return nil, fmt.Errorf("no rooms: %w", ErrBadLayout)
	}
	if layout.Depth <= 0 {
		return nil, fmt.Errorf("depth %d: %w", layout.Depth, ErrBadLayout)
	}

	xs := make([]int, n+1)
	for i, r := range rooms {
		if r.Width <= 0 {
			return nil, fmt.Errorf("room %d width %d: %w", i, r.Width, ErrBadLayout)
		}
		if r.CeilingHeight < r.FloorHeight {
			return nil, fmt.Errorf("room %d ceiling below floor: %w", i, ErrBadLayout)
		}
		xs[i+1] = xs[i] + r.Width
	}
	for _, g := range layout.Grates {
		if g.Boundary < 1 || g.Boundary >= n {
			return nil, fmt.Errorf("grate on boundary %d: %w", g.Boundary, ErrBadLayout)
		}
	}

	depth := fixed.FromInt(layout.Depth)
	l := &Level{
		Vertices:   make([]Vertex, 2*(n+1)),
		Sectors:    make([]Sector, n),
		Sides:      make([]Side, 4*n),
		Lines:      make([]Line, 3*n+1),
		Segs:       make([]Seg, 0, 4*n),
		Subsectors: make([]Subsector, n),
		Nodes:      make([]Node, 0, n-1),
	}

	for k, x := range xs {
		l.Vertices[2*k] = Vertex{X: fixed.FromInt(x)}
		l.Vertices[2*k+1] = Vertex{X: fixed.FromInt(x), Y: depth}
	}
	bottomVertex := func(k int) *Vertex { return &l.Vertices[2*k] }
	topVertex := func(k int) *Vertex { return &l.Vertices[2*k+1] }

	for i, r := range rooms {
		l.Sectors[i] = Sector{
			FloorHeight:   fixed.FromInt(r.FloorHeight),
			CeilingHeight: fixed.FromInt(r.CeilingHeight),
			FloorPic:      r.FloorPic,
			CeilingPic:    r.CeilingPic,
			LightLevel:    r.Light,
			Transfer:      r.Transfer,
		}
	}

	nextSide, nextLine := 0, 0
	addSide := func(sec *Sector, tex int, twoSided bool) *Side {
		s := &l.Sides[nextSide]
		nextSide++
		*s = Side{TopTexture: tex, BottomTexture: tex, MidTexture: tex, Sector: sec}
		if twoSided {
			s.MidTexture = NoTexture
		}
		return s
	}
	addLine := func(v1, v2 *Vertex, front, back *Sector, frontTex, backTex int) *Line {
		ln := &l.Lines[nextLine]
		nextLine++
		*ln = Line{
			V1:          v1,
			V2:          v2,
			DX:          v2.X - v1.X,
			DY:          v2.Y - v1.Y,
			Flags:       LineBlocking,
			FrontSector: front,
			BackSector:  back,
		}
		ln.Sides[0] = addSide(front, frontTex, back != nil)
		if back != nil {
			ln.Flags = LineTwoSided
			ln.Sides[1] = addSide(back, backTex, true)
		}
		return ln
	}
	addSeg := func(ln *Line, side int, front, back *Sector) {
		v1, v2 := ln.V1, ln.V2
		if side == 1 {
			v1, v2 = v2, v1
		}
		l.Segs = append(l.Segs, Seg{
			V1:          v1,
			V2:          v2,
			Angle:       fixed.PointToAngle2(v1.X, v1.Y, v2.X, v2.Y),
			Side:        ln.Sides[side],
			Line:        ln,
			FrontSector: front,
			BackSector:  back,
		})
	}

	// Boundaries between rooms, oriented so their front faces +x
	bounds := make([]*Line, n+1)
	for k := 0; k <= n; k++ {
		switch k {
		case 0:
			bounds[k] = addLine(bottomVertex(0), topVertex(0), &l.Sectors[0], nil, rooms[0].WallTexture, 0)
		case n:
			bounds[k] = addLine(topVertex(n), bottomVertex(n), &l.Sectors[n-1], nil, rooms[n-1].WallTexture, 0)
		default:
			bounds[k] = addLine(bottomVertex(k), topVertex(k), &l.Sectors[k], &l.Sectors[k-1],
				rooms[k].WallTexture, rooms[k-1].WallTexture)
		}
	}

	for _, g := range layout.Grates {
		ln := bounds[g.Boundary]
		ln.Sides[0].MidTexture = g.Texture
		ln.Sides[1].MidTexture = g.Texture
		if g.Translucent {
			ln.Flags |= LineTranslucent
		}
	}

	// Each room's segs run clockwise so the room is on their right
	for i := range rooms {
		sec := &l.Sectors[i]
		top := addLine(topVertex(i), topVertex(i+1), sec, nil, rooms[i].WallTexture, 0)
		bottom := addLine(bottomVertex(i+1), bottomVertex(i), sec, nil, rooms[i].WallTexture, 0)

		first := len(l.Segs)
		if i == 0 {
			addSeg(bounds[0], 0, sec, nil)
		} else {
			addSeg(bounds[i], 0, sec, &l.Sectors[i-1])
		}
		addSeg(top, 0, sec, nil)
		if i == n-1 {
			addSeg(bounds[n], 0, sec, nil)
		} else {
			addSeg(bounds[i+1], 1, sec, &l.Sectors[i+1])
		}
		addSeg(bottom, 0, sec, nil)
		l.Subsectors[i] = Subsector{Sector: sec, FirstSeg: first, NumSegs: len(l.Segs) - first}
	}

	roomBox := func(lo, hi int) BBox {
		var b BBox
		b.ClearBox()
		b.AddPoint(fixed.FromInt(xs[lo]), 0)
		b.AddPoint(fixed.FromInt(xs[hi+1]), depth)
		return b
	}
	var build func(lo, hi int) uint32
	build = func(lo, hi int) uint32 {
		if lo == hi {
			return SubsectorFlag | uint32(lo)
		}
		mid := (lo + hi + 1) / 2
		front := build(mid, hi)
		back := build(lo, mid-1)
		l.Nodes = append(l.Nodes, Node{
			X:        fixed.FromInt(xs[mid]),
			DY:       depth,
			BBox:     [2]BBox{roomBox(mid, hi), roomBox(lo, mid-1)},
			Children: [2]uint32{front, back},
		})
		return uint32(len(l.Nodes) - 1)
	}
	build(0, n-1)

	l.StartX = fixed.FromInt((xs[0] + xs[1]) / 2)
	l.StartY = depth / 2
	l.CalculateBounds()

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("build rooms: %w", err)
	}
	return l, nil
}
