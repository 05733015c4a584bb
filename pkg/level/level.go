// Package level holds the static geometry of a map: sectors, walls and the
// binary space partition the renderer walks front to back.
package level

import (
	"errors"
	"fmt"

	"github.com/taigrr/retrorender/pkg/fixed"
)

// NoTexture marks an empty wall texture slot.
const NoTexture = -1

// SubsectorFlag marks a node child that refers to a subsector instead of
// another node.
const SubsectorFlag uint32 = 0x80000000

var (
	ErrEmptyLevel   = errors.New("level has no subsectors")
	ErrBadSubsector = errors.New("subsector refers to missing segs")
	ErrBadNode      = errors.New("node child out of range")
	ErrBadSeg       = errors.New("seg is missing vertices, side or sector")
)

// Vertex is a map point.
type Vertex struct {
	X, Y fixed.Fixed
}

// HeightTransfer selects a colormap set by comparing the viewer height
// against two thresholds, e.g. for deep water.
type HeightTransfer struct {
	Floor   fixed.Fixed // below this the bottom map applies
	Ceiling fixed.Fixed // above this the top map applies

	BottomMap int
	MidMap    int
	TopMap    int
}

// Sector is a region of constant floor and ceiling.
type Sector struct {
	FloorHeight   fixed.Fixed
	CeilingHeight fixed.Fixed
	FloorPic      int
	CeilingPic    int
	LightLevel    int // 0..255

	FloorXOffset, FloorYOffset     fixed.Fixed
	CeilingXOffset, CeilingYOffset fixed.Fixed

	Transfer *HeightTransfer // optional
}

// ColormapSet returns the colormap set for a viewer at height viewZ.
func (s *Sector) ColormapSet(viewZ fixed.Fixed) int {
	t := s.Transfer
	if t == nil {
		return 0
	}
	switch {
	case viewZ < t.Floor:
		return t.BottomMap
	case viewZ > t.Ceiling:
		return t.TopMap
	default:
		return t.MidMap
	}
}

// Side is one face of a line.
type Side struct {
	TextureOffset fixed.Fixed
	RowOffset     fixed.Fixed
	TopTexture    int
	BottomTexture int
	MidTexture    int
	Sector        *Sector
}

// LineFlags are the drawing relevant line attributes.
type LineFlags uint16

const (
	LineBlocking LineFlags = 1 << iota
	LineBlockMonsters
	LineTwoSided
	LineDontPegTop
	LineDontPegBottom
	LineSecret
	LineSoundBlock
	LineDontDraw
	LineMapped
	LineTranslucent // masked mid texture is blended
)

// Line is a wall between two vertices. Sides[0] faces right of V1→V2.
type Line struct {
	V1, V2      *Vertex
	DX, DY      fixed.Fixed
	Flags       LineFlags
	Sides       [2]*Side
	FrontSector *Sector
	BackSector  *Sector // nil for one-sided lines
}

// Seg is the part of a line bounding one subsector.
type Seg struct {
	V1, V2      *Vertex
	Offset      fixed.Fixed
	Angle       fixed.Angle
	Side        *Side
	Line        *Line
	FrontSector *Sector
	BackSector  *Sector
}

// Subsector is a convex leaf of the partition.
type Subsector struct {
	Sector   *Sector
	FirstSeg int
	NumSegs  int
}

// BBox indices.
const (
	BoxTop = iota
	BoxBottom
	BoxLeft
	BoxRight
)

// BBox is an axis aligned box stored top, bottom, left, right.
type BBox [4]fixed.Fixed

// ClearBox resets b so any added point becomes its extent.
func (b *BBox) ClearBox() {
	b[BoxTop], b[BoxRight] = fixed.MinFixed, fixed.MinFixed
	b[BoxBottom], b[BoxLeft] = fixed.MaxFixed, fixed.MaxFixed
}

// AddPoint grows b to include (x, y).
func (b *BBox) AddPoint(x, y fixed.Fixed) {
	if x < b[BoxLeft] {
		b[BoxLeft] = x
	}
	if x > b[BoxRight] {
		b[BoxRight] = x
	}
	if y < b[BoxBottom] {
		b[BoxBottom] = y
	}
	if y > b[BoxTop] {
		b[BoxTop] = y
	}
}

// Node is a partition line with the bounding boxes of its two children.
// Children[0] is the front (right) side.
type Node struct {
	X, Y     fixed.Fixed
	DX, DY   fixed.Fixed
	BBox     [2]BBox
	Children [2]uint32
}

// Level is a complete map. The root node is the last one.
type Level struct {
	Vertices   []Vertex
	Sectors    []Sector
	Sides      []Side
	Lines      []Line
	Segs       []Seg
	Subsectors []Subsector
	Nodes      []Node

	// Player start
	StartX, StartY fixed.Fixed
	StartAngle     fixed.Angle

	// Bounds of all vertices
	Bounds BBox
}

// PointOnSide returns 0 when (x, y) is in front of the node's partition and
// 1 when it is behind.
func PointOnSide(x, y fixed.Fixed, n *Node) int {
	if n.DX == 0 {
		if x <= n.X {
			return b2i(n.DY > 0)
		}
		return b2i(n.DY < 0)
	}
	if n.DY == 0 {
		if y <= n.Y {
			return b2i(n.DX < 0)
		}
		return b2i(n.DX > 0)
	}

	dx := int64(x) - int64(n.X)
	dy := int64(y) - int64(n.Y)
	left := int64(n.DY) * dx
	right := dy * int64(n.DX)
	if right < left {
		return 0
	}
	return 1
}

// PointOnSegSide returns 0 when (x, y) is in front of the seg and 1 when it
// is behind.
func PointOnSegSide(x, y fixed.Fixed, s *Seg) int {
	n := Node{X: s.V1.X, Y: s.V1.Y, DX: s.V2.X - s.V1.X, DY: s.V2.Y - s.V1.Y}
	return PointOnSide(x, y, &n)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PointInSubsector returns the subsector containing (x, y).
func (l *Level) PointInSubsector(x, y fixed.Fixed) *Subsector {
	if len(l.Nodes) == 0 {
		return &l.Subsectors[0]
	}
	child := uint32(len(l.Nodes) - 1)
	for child&SubsectorFlag == 0 {
		n := &l.Nodes[child]
		child = n.Children[PointOnSide(x, y, n)]
	}
	return &l.Subsectors[child&^SubsectorFlag]
}

// SegsOf returns the segs of a subsector.
func (l *Level) SegsOf(ss *Subsector) []Seg {
	return l.Segs[ss.FirstSeg : ss.FirstSeg+ss.NumSegs]
}

// CalculateBounds computes the bounding box of all vertices.
func (l *Level) CalculateBounds() {
	l.Bounds.ClearBox()
	for _, v := range l.Vertices {
		l.Bounds.AddPoint(v.X, v.Y)
	}
}

// Validate checks the references the renderer relies on.
func (l *Level) Validate() error {
	if len(l.Subsectors) == 0 {
		return ErrEmptyLevel
	}
	for i, ss := range l.Subsectors {
		if ss.Sector == nil || ss.FirstSeg < 0 || ss.NumSegs < 0 || ss.FirstSeg+ss.NumSegs > len(l.Segs) {
			return fmt.Errorf("subsector %d: %w", i, ErrBadSubsector)
		}
	}
	for i, n := range l.Nodes {
		for _, c := range n.Children {
			if c&SubsectorFlag != 0 {
				if int(c&^SubsectorFlag) >= len(l.Subsectors) {
					return fmt.Errorf("node %d: %w", i, ErrBadNode)
				}
			} else if int(c) >= len(l.Nodes) {
				return fmt.Errorf("node %d: %w", i, ErrBadNode)
			}
		}
	}
	for i, s := range l.Segs {
		if s.V1 == nil || s.V2 == nil || s.Side == nil || s.Line == nil || s.FrontSector == nil {
			return fmt.Errorf("seg %d: %w", i, ErrBadSeg)
		}
	}
	return nil
}
