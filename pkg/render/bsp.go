package render

import (
	"math"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// clipRange is an inclusive run of columns fully occluded by solid walls.
type clipRange struct {
	first, last int
}

func (r *Renderer) clearClipSegs() {
	r.solidSegs = append(r.solidSegs[:0],
		clipRange{math.MinInt32, -1},
		clipRange{r.proj.Width, math.MaxInt32},
	)
	for i := range r.floorClip {
		r.floorClip[i] = r.proj.Height
		r.ceilingClip[i] = -1
	}
}

// clipSolidWallSegment draws the visible parts of [first, last] and marks
// the whole range occluded.
func (r *Renderer) clipSolidWallSegment(first, last int) {
	segs := r.solidSegs
	start := 0
	for segs[start].last < first-1 {
		start++
	}

	if first < segs[start].first {
		if last < segs[start].first-1 {
			// entirely visible: insert a new range
			r.storeWallRange(first, last)
			r.solidSegs = append(r.solidSegs, clipRange{})
			copy(r.solidSegs[start+1:], r.solidSegs[start:])
			r.solidSegs[start] = clipRange{first, last}
			return
		}
		r.storeWallRange(first, segs[start].first-1)
		segs[start].first = first
	}

	if last <= segs[start].last {
		return
	}

	next := start
	for last >= segs[next+1].first-1 {
		r.storeWallRange(segs[next].last+1, segs[next+1].first-1)
		next++
		if last <= segs[next].last {
			segs[start].last = segs[next].last
			r.crunchSolidSegs(start, next)
			return
		}
	}

	r.storeWallRange(segs[next].last+1, last)
	segs[start].last = last
	r.crunchSolidSegs(start, next)
}

// crunchSolidSegs removes the ranges start swallowed.
func (r *Renderer) crunchSolidSegs(start, next int) {
	if next == start {
		return
	}
	r.solidSegs = append(r.solidSegs[:start+1], r.solidSegs[next+1:]...)
}

// clipPassWallSegment draws the visible parts of [first, last] without
// occluding them, for walls that can be seen past.
func (r *Renderer) clipPassWallSegment(first, last int) {
	segs := r.solidSegs
	start := 0
	for segs[start].last < first-1 {
		start++
	}

	if first < segs[start].first {
		if last < segs[start].first-1 {
			r.storeWallRange(first, last)
			return
		}
		r.storeWallRange(first, segs[start].first-1)
	}

	if last <= segs[start].last {
		return
	}

	for last >= segs[start+1].first-1 {
		r.storeWallRange(segs[start].last+1, segs[start+1].first-1)
		start++
		if last <= segs[start].last {
			return
		}
	}
	r.storeWallRange(segs[start].last+1, last)
}

// clipAngles clips a view-relative angle pair to the field of view. It
// reports false when the pair lies entirely outside it.
func (r *Renderer) clipAngles(angle1, angle2 fixed.Angle) (fixed.Angle, fixed.Angle, bool) {
	clip := r.proj.ClipAngle
	span := angle1 - angle2

	tspan := angle1 + clip
	if tspan > 2*clip {
		tspan -= 2 * clip
		if tspan >= span {
			return 0, 0, false
		}
		angle1 = clip
	}
	tspan = clip - angle2
	if tspan > 2*clip {
		tspan -= 2 * clip
		if tspan >= span {
			return 0, 0, false
		}
		angle2 = -clip
	}
	return angle1, angle2, true
}

// addLine clips a seg to the view and hands its visible columns to the
// wall clipper.
func (r *Renderer) addLine(seg *level.Seg) {
	angle1 := fixed.PointToAngle(seg.V1.X-r.viewX, seg.V1.Y-r.viewY)
	angle2 := fixed.PointToAngle(seg.V2.X-r.viewX, seg.V2.Y-r.viewY)

	// back side
	if angle1-angle2 >= fixed.Ang180 {
		return
	}

	r.seg.curLine = seg
	r.seg.angle1 = angle1

	var ok bool
	angle1, angle2, ok = r.clipAngles(angle1-r.viewAngle, angle2-r.viewAngle)
	if !ok {
		return
	}

	x1 := r.proj.AngleToX(angle1)
	x2 := r.proj.AngleToX(angle2)
	if x1 == x2 {
		return
	}

	front, back := seg.FrontSector, seg.BackSector
	r.seg.backSector = back
	switch {
	case back == nil,
		back.CeilingHeight <= front.FloorHeight,
		back.FloorHeight >= front.CeilingHeight:
		r.clipSolidWallSegment(x1, x2-1)
	case back.CeilingHeight != front.CeilingHeight,
		back.FloorHeight != front.FloorHeight,
		back.CeilingPic != front.CeilingPic,
		back.FloorPic != front.FloorPic,
		back.LightLevel != front.LightLevel,
		seg.Side.MidTexture != level.NoTexture:
		r.clipPassWallSegment(x1, x2-1)
	}
}

// checkCoord lists the box corners that bound the view of a box for each
// position of the viewer relative to it.
var checkCoord = [12][4]int{
	{3, 0, 2, 1},
	{3, 0, 2, 0},
	{3, 1, 2, 0},
	{0},
	{2, 0, 2, 1},
	{0, 0, 0, 0},
	{3, 1, 3, 0},
	{0},
	{2, 0, 3, 1},
	{2, 1, 3, 1},
	{2, 1, 3, 0},
}

// checkBBox reports whether any part of a box may be visible: it lies in
// the field of view and is not entirely behind solid walls.
func (r *Renderer) checkBBox(box *level.BBox) bool {
	var boxx, boxy int
	switch {
	case r.viewX <= box[level.BoxLeft]:
		boxx = 0
	case r.viewX < box[level.BoxRight]:
		boxx = 1
	default:
		boxx = 2
	}
	switch {
	case r.viewY >= box[level.BoxTop]:
		boxy = 0
	case r.viewY > box[level.BoxBottom]:
		boxy = 1
	default:
		boxy = 2
	}

	boxpos := boxy<<2 + boxx
	if boxpos == 5 {
		return true
	}

	cc := checkCoord[boxpos]
	x1, y1 := box[cc[0]], box[cc[1]]
	x2, y2 := box[cc[2]], box[cc[3]]

	angle1 := fixed.PointToAngle(x1-r.viewX, y1-r.viewY) - r.viewAngle
	angle2 := fixed.PointToAngle(x2-r.viewX, y2-r.viewY) - r.viewAngle

	// sitting on a line
	if angle1-angle2 >= fixed.Ang180 {
		return true
	}

	angle1, angle2, ok := r.clipAngles(angle1, angle2)
	if !ok {
		return false
	}

	sx1 := r.proj.AngleToX(angle1)
	sx2 := r.proj.AngleToX(angle2)
	if sx1 == sx2 {
		return false
	}
	sx2--

	start := 0
	for r.solidSegs[start].last < sx2 {
		start++
	}
	return sx1 < r.solidSegs[start].first || sx2 > r.solidSegs[start].last
}

// subsector registers the flats and sprites of a leaf and draws its walls.
func (r *Renderer) subsector(num int) {
	r.stats.Subsectors++
	ss := &r.level.Subsectors[num]
	front := ss.Sector
	r.seg.frontSector = front

	r.floorPlane, r.ceilingPlane = nil, nil
	if front.FloorHeight < r.viewZ {
		r.floorPlane = r.planes.Find(front.FloorHeight, front.FloorPic, front.LightLevel,
			front.FloorXOffset, front.FloorYOffset)
	}
	if front.CeilingHeight > r.viewZ || r.mats.IsSky(front.CeilingPic) {
		r.ceilingPlane = r.planes.Find(front.CeilingHeight, front.CeilingPic, front.LightLevel,
			front.CeilingXOffset, front.CeilingYOffset)
	}

	r.addSprites(front)

	segs := r.level.SegsOf(ss)
	for i := range segs {
		r.stats.Segs++
		r.addLine(&segs[i])
	}
}

// renderBSPNode walks the tree front to back from the viewer, skipping
// back children whose boxes cannot be seen.
func (r *Renderer) renderBSPNode(num uint32) {
	for num&level.SubsectorFlag == 0 {
		r.stats.Nodes++
		node := &r.level.Nodes[num]
		side := level.PointOnSide(r.viewX, r.viewY, node)
		r.renderBSPNode(node.Children[side])
		if !r.checkBBox(&node.BBox[side^1]) {
			return
		}
		num = node.Children[side^1]
	}
	r.subsector(int(num &^ level.SubsectorFlag))
}
