package render

import (
	"math"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// Silhouette bits of a draw seg.
const (
	silBottom = 1 << iota
	silTop
	silBoth = silBottom | silTop
)

// Wall edge heights are stepped with 4 fewer fraction bits to keep the
// products in range.
const (
	heightBits = 12
	heightUnit = 1 << heightBits
)

// maxDrawSegs bounds the walls recorded for sprite clipping per frame.
const maxDrawSegs = 2048

// maskedDrawn marks a masked column that has been drawn this frame.
const maskedDrawn = math.MaxInt32

// drawSeg records a drawn wall range for clipping sprites.
type drawSeg struct {
	seg            *level.Seg
	x1, x2         int
	scale1, scale2 fixed.Fixed
	scaleStep      fixed.Fixed
	silhouette     int
	bsilHeight     fixed.Fixed // don't clip sprites above this
	tsilHeight     fixed.Fixed // don't clip sprites below this
	sprTopClip     []int       // indexed x-x1
	sprBottomClip  []int

	// masked mid texture of a two-sided line
	maskedTexture *Texture
	maskedCols    []int // texture column per x-x1, maskedDrawn once drawn
	maskedMid     fixed.Fixed
	maskedLight   int
}

// segState is the wall being drawn.
type segState struct {
	curLine     *level.Seg
	frontSector *level.Sector
	backSector  *level.Sector
	angle1      fixed.Angle

	normalAngle fixed.Angle
	centerAngle fixed.Angle
	distance    fixed.Fixed
	offset      fixed.Fixed

	x, stopX  int
	scale     fixed.Fixed
	scaleStep fixed.Fixed

	topFrac, topStep       fixed.Fixed
	bottomFrac, bottomStep fixed.Fixed
	pixHigh, pixHighStep   fixed.Fixed
	pixLow, pixLowStep     fixed.Fixed

	midTexture, topTexture, bottomTexture *Texture
	maskedTexture                         *Texture
	maskedCols                            []int
	startX                                int
	midTextureMid                         fixed.Fixed
	topTextureMid                         fixed.Fixed
	bottomTextureMid                      fixed.Fixed

	markFloor, markCeiling bool
	textured               bool
	lightNum               int
}

func (r *Renderer) clearDrawSegs() {
	r.drawSegs = r.drawSegs[:0]
	r.openings = r.openings[:0]
}

// allocOpening returns n ints of sprite clip storage that stay valid for the
// rest of the frame.
func (r *Renderer) allocOpening(n int) []int {
	if len(r.openings)+n > cap(r.openings) {
		r.openings = make([]int, 0, max(n, r.proj.Width*64))
	}
	start := len(r.openings)
	r.openings = r.openings[:start+n]
	return r.openings[start : start+n : start+n]
}

// scaleFromGlobalAngle returns the projected scale of the current wall at
// a view angle.
func (r *Renderer) scaleFromGlobalAngle(visAngle fixed.Angle) fixed.Fixed {
	anglea := fixed.Ang90 + (visAngle - r.viewAngle)
	angleb := fixed.Ang90 + (visAngle - r.seg.normalAngle)
	sinea := fixed.FineSine[anglea>>fixed.AngleToFineShift]
	sineb := fixed.FineSine[angleb>>fixed.AngleToFineShift]
	num := fixed.Mul(r.proj.Focal, sineb)
	den := fixed.Mul(r.seg.distance, sinea)

	if den > num>>fixed.FracBits {
		scale := fixed.Div(num, den)
		switch {
		case scale > 64*fixed.FracUnit:
			return 64 * fixed.FracUnit
		case scale < 256:
			return 256
		}
		return scale
	}
	return 64 * fixed.FracUnit
}

// textureHeight returns the height of a texture in fixed point, 0 for none.
func textureHeight(t *Texture) fixed.Fixed {
	if t == nil {
		return 0
	}
	return fixed.FromInt(t.Height)
}

// storeWallRange draws columns [start, stop] of the current seg, marks the
// floor and ceiling planes around it and records a draw seg.
func (r *Renderer) storeWallRange(start, stop int) {
	if len(r.drawSegs) >= maxDrawSegs {
		return
	}
	s := &r.seg
	line := s.curLine
	side := line.Side
	front, back := s.frontSector, s.backSector
	var flags level.LineFlags
	if line.Line != nil {
		line.Line.Flags |= level.LineMapped
		flags = line.Line.Flags
	}

	s.normalAngle = line.Angle + fixed.Ang90
	offsetAngle := s.normalAngle - s.angle1
	if offsetAngle > fixed.Ang180 {
		offsetAngle = -offsetAngle
	}
	if offsetAngle > fixed.Ang90 {
		offsetAngle = fixed.Ang90
	}
	distAngle := fixed.Ang90 - offsetAngle
	hyp := fixed.PointToDist(line.V1.X-r.viewX, line.V1.Y-r.viewY)
	s.distance = fixed.Mul(hyp, fixed.FineSine[distAngle>>fixed.AngleToFineShift])

	ds := drawSeg{seg: line, x1: start, x2: stop}
	s.x, s.stopX = start, stop+1
	s.startX = start

	s.scale = r.scaleFromGlobalAngle(r.viewAngle + r.proj.XToViewAngle[start])
	ds.scale1 = s.scale
	if stop > start {
		ds.scale2 = r.scaleFromGlobalAngle(r.viewAngle + r.proj.XToViewAngle[stop])
		s.scaleStep = (ds.scale2 - s.scale) / fixed.Fixed(stop-start)
		ds.scaleStep = s.scaleStep
	} else {
		ds.scale2 = ds.scale1
		s.scaleStep = 0
	}

	worldTop := front.CeilingHeight - r.viewZ
	worldBottom := front.FloorHeight - r.viewZ
	var worldHigh, worldLow fixed.Fixed

	s.midTexture, s.topTexture, s.bottomTexture = nil, nil, nil
	s.maskedTexture, s.maskedCols = nil, nil

	if back == nil {
		s.midTexture = r.mats.Texture(side.MidTexture)
		s.markFloor, s.markCeiling = true, true
		if flags&level.LineDontPegBottom != 0 {
			s.midTextureMid = front.FloorHeight + textureHeight(s.midTexture) - r.viewZ
		} else {
			s.midTextureMid = worldTop
		}
		s.midTextureMid += side.RowOffset

		ds.silhouette = silBoth
		ds.sprTopClip = r.screenHeight[start : stop+1]
		ds.sprBottomClip = r.negOne[start : stop+1]
		ds.bsilHeight = math.MaxInt32
		ds.tsilHeight = math.MinInt32
	} else {
		if front.FloorHeight > back.FloorHeight {
			ds.silhouette = silBottom
			ds.bsilHeight = front.FloorHeight
		} else if back.FloorHeight > r.viewZ {
			ds.silhouette = silBottom
			ds.bsilHeight = math.MaxInt32
		}
		if front.CeilingHeight < back.CeilingHeight {
			ds.silhouette |= silTop
			ds.tsilHeight = front.CeilingHeight
		} else if back.CeilingHeight < r.viewZ {
			ds.silhouette |= silTop
			ds.tsilHeight = math.MinInt32
		}
		if back.CeilingHeight <= front.FloorHeight {
			ds.sprBottomClip = r.negOne[start : stop+1]
			ds.bsilHeight = math.MaxInt32
			ds.silhouette |= silBottom
		}
		if back.FloorHeight >= front.CeilingHeight {
			ds.sprTopClip = r.screenHeight[start : stop+1]
			ds.tsilHeight = math.MinInt32
			ds.silhouette |= silTop
		}

		worldHigh = back.CeilingHeight - r.viewZ
		worldLow = back.FloorHeight - r.viewZ

		// sky above sky: let the ceiling height change without a wall
		if r.mats.IsSky(front.CeilingPic) && r.mats.IsSky(back.CeilingPic) {
			worldTop = worldHigh
		}

		s.markFloor = worldLow != worldBottom ||
			back.FloorPic != front.FloorPic ||
			back.LightLevel != front.LightLevel ||
			back.FloorXOffset != front.FloorXOffset ||
			back.FloorYOffset != front.FloorYOffset
		s.markCeiling = worldHigh != worldTop ||
			back.CeilingPic != front.CeilingPic ||
			back.LightLevel != front.LightLevel ||
			back.CeilingXOffset != front.CeilingXOffset ||
			back.CeilingYOffset != front.CeilingYOffset
		if back.CeilingHeight <= front.FloorHeight || back.FloorHeight >= front.CeilingHeight {
			s.markCeiling, s.markFloor = true, true
		}

		if worldHigh < worldTop {
			s.topTexture = r.mats.Texture(side.TopTexture)
			if flags&level.LineDontPegTop != 0 {
				s.topTextureMid = worldTop
			} else {
				s.topTextureMid = back.CeilingHeight + textureHeight(s.topTexture) - r.viewZ
			}
		}
		if worldLow > worldBottom {
			s.bottomTexture = r.mats.Texture(side.BottomTexture)
			if flags&level.LineDontPegBottom != 0 {
				s.bottomTextureMid = worldTop
			} else {
				s.bottomTextureMid = worldLow
			}
		}
		s.topTextureMid += side.RowOffset
		s.bottomTextureMid += side.RowOffset

		if tex := r.mats.Texture(side.MidTexture); tex != nil {
			s.maskedTexture = tex
			s.maskedCols = r.allocOpening(stop - start + 1)
			ds.maskedTexture, ds.maskedCols = tex, s.maskedCols
			if flags&level.LineDontPegBottom != 0 {
				ds.maskedMid = max(front.FloorHeight, back.FloorHeight) + textureHeight(tex) - r.viewZ
			} else {
				ds.maskedMid = min(front.CeilingHeight, back.CeilingHeight) - r.viewZ
			}
			ds.maskedMid += side.RowOffset
		}
	}

	s.textured = s.midTexture != nil || s.topTexture != nil || s.bottomTexture != nil ||
		s.maskedTexture != nil
	if s.textured {
		offsetAngle := s.normalAngle - s.angle1
		if offsetAngle > fixed.Ang180 {
			offsetAngle = -offsetAngle
		}
		if offsetAngle > fixed.Ang90 {
			offsetAngle = fixed.Ang90
		}
		s.offset = fixed.Mul(hyp, fixed.FineSine[offsetAngle>>fixed.AngleToFineShift])
		if s.normalAngle-s.angle1 < fixed.Ang180 {
			s.offset = -s.offset
		}
		s.offset += side.TextureOffset + line.Offset
		s.centerAngle = fixed.Ang90 + r.viewAngle - s.normalAngle

		// fake contrast on axis aligned walls
		s.lightNum = front.LightLevel>>LightSegShift + r.extraLight
		switch {
		case line.V1.Y == line.V2.Y:
			s.lightNum--
		case line.V1.X == line.V2.X:
			s.lightNum++
		}
		ds.maskedLight = s.lightNum
	}

	// planes on the far side of the view plane cannot be seen
	if front.FloorHeight >= r.viewZ {
		s.markFloor = false
	}
	if front.CeilingHeight <= r.viewZ && !r.mats.IsSky(front.CeilingPic) {
		s.markCeiling = false
	}

	centerY := r.proj.CenterYFrac >> 4
	worldTop >>= 4
	worldBottom >>= 4
	s.topStep = -fixed.Mul(s.scaleStep, worldTop)
	s.topFrac = centerY - fixed.Mul(worldTop, s.scale)
	s.bottomStep = -fixed.Mul(s.scaleStep, worldBottom)
	s.bottomFrac = centerY - fixed.Mul(worldBottom, s.scale)

	if back != nil {
		worldHigh >>= 4
		worldLow >>= 4
		if worldHigh < worldTop {
			s.pixHigh = centerY - fixed.Mul(worldHigh, s.scale)
			s.pixHighStep = -fixed.Mul(s.scaleStep, worldHigh)
		}
		if worldLow > worldBottom {
			s.pixLow = centerY - fixed.Mul(worldLow, s.scale)
			s.pixLowStep = -fixed.Mul(s.scaleStep, worldLow)
		}
	}

	if s.markCeiling && r.ceilingPlane != nil {
		r.ceilingPlane = r.planes.CheckPlane(r.ceilingPlane, s.x, s.stopX-1)
	} else {
		s.markCeiling = false
	}
	if s.markFloor && r.floorPlane != nil {
		r.floorPlane = r.planes.CheckPlane(r.floorPlane, s.x, s.stopX-1)
	} else {
		s.markFloor = false
	}

	r.renderSegLoop()

	// masked columns are clipped to the opening on both sides
	if ds.maskedCols != nil {
		if ds.silhouette&silTop == 0 {
			ds.silhouette |= silTop
			ds.tsilHeight = math.MinInt32
		}
		if ds.silhouette&silBottom == 0 {
			ds.silhouette |= silBottom
			ds.bsilHeight = math.MaxInt32
		}
	}

	// save sprite clipping info
	if ds.silhouette&silTop != 0 && ds.sprTopClip == nil {
		ds.sprTopClip = r.allocOpening(stop - start + 1)
		copy(ds.sprTopClip, r.ceilingClip[start:stop+1])
	}
	if ds.silhouette&silBottom != 0 && ds.sprBottomClip == nil {
		ds.sprBottomClip = r.allocOpening(stop - start + 1)
		copy(ds.sprBottomClip, r.floorClip[start:stop+1])
	}
	r.drawSegs = append(r.drawSegs, ds)
}

// renderSegLoop draws the wall columns of the current seg and records the
// plane extents above and below them.
func (r *Renderer) renderSegLoop() {
	s := &r.seg
	dc := &r.dc
	wall, bright := r.bind.Column(RoleWall), r.bind.Column(RoleBrightmapWall)
	if r.fixedColormap != nil {
		bright = wall
	}
	drawer := func(tex *Texture) ColumnDrawer {
		if tex.Brightmap != nil {
			return bright
		}
		return wall
	}
	viewHeight := r.proj.Height
	set := r.colormapSet

	for ; s.x < s.stopX; s.x++ {
		x := s.x
		yl := int((s.topFrac + heightUnit - 1) >> heightBits)
		if yl < r.ceilingClip[x]+1 {
			yl = r.ceilingClip[x] + 1
		}

		if s.markCeiling {
			top := r.ceilingClip[x] + 1
			bottom := yl - 1
			if bottom >= r.floorClip[x] {
				bottom = r.floorClip[x] - 1
			}
			if top <= bottom {
				r.ceilingPlane.SetColumn(x, top, bottom)
			}
		}

		yh := int(s.bottomFrac >> heightBits)
		if yh >= r.floorClip[x] {
			yh = r.floorClip[x] - 1
		}

		if s.markFloor {
			top := yh + 1
			bottom := r.floorClip[x] - 1
			if top <= r.ceilingClip[x] {
				top = r.ceilingClip[x] + 1
			}
			if top <= bottom {
				r.floorPlane.SetColumn(x, top, bottom)
			}
		}

		var texColumn int
		if s.textured {
			angle := (s.centerAngle + r.proj.XToViewAngle[x]) >> fixed.AngleToFineShift
			texColumn = int((s.offset - fixed.Mul(fixed.FineTangent[angle&(fixed.FineAngles/2-1)], s.distance)) >> fixed.FracBits)

			index := int(s.scale >> LightScaleShift)
			if r.fixedColormap != nil {
				dc.Colormap, dc.NextColormap = r.fixedColormap, r.fixedColormap
			} else {
				dc.Colormap = r.light.ScaleLight(set, s.lightNum, index)
				dc.NextColormap = r.light.ScaleLight(set, s.lightNum, index+1)
				dc.DitherZ = int(s.scale>>(LightScaleShift-8)) & 255
			}
			dc.X = x
			dc.Step = fixed.Fixed(0xffffffff / uint32(s.scale))
			dc.Color = NoTextureColor
			if s.maskedCols != nil {
				s.maskedCols[x-s.startX] = texColumn
			}
		}

		if s.midTexture != nil {
			r.wallColumn(drawer(s.midTexture), s.midTexture, texColumn, s.midTextureMid, yl, yh)
			r.ceilingClip[x] = viewHeight
			r.floorClip[x] = -1
		} else {
			if s.topTexture != nil {
				mid := int(s.pixHigh >> heightBits)
				s.pixHigh += s.pixHighStep
				if mid >= r.floorClip[x] {
					mid = r.floorClip[x] - 1
				}
				if mid >= yl {
					r.wallColumn(drawer(s.topTexture), s.topTexture, texColumn, s.topTextureMid, yl, mid)
					r.ceilingClip[x] = mid
				} else {
					r.ceilingClip[x] = yl - 1
				}
			} else if s.markCeiling {
				r.ceilingClip[x] = yl - 1
			}

			if s.bottomTexture != nil {
				mid := int((s.pixLow + heightUnit - 1) >> heightBits)
				s.pixLow += s.pixLowStep
				if mid <= r.ceilingClip[x] {
					mid = r.ceilingClip[x] + 1
				}
				if mid <= yh {
					r.wallColumn(drawer(s.bottomTexture), s.bottomTexture, texColumn, s.bottomTextureMid, mid, yh)
					r.floorClip[x] = mid
				} else {
					r.floorClip[x] = yh + 1
				}
			} else if s.markFloor {
				r.floorClip[x] = yh + 1
			}
		}

		s.scale += s.scaleStep
		s.topFrac += s.topStep
		s.bottomFrac += s.bottomStep
	}
}

// wallColumn draws rows [yl, yh] of one wall texture column.
func (r *Renderer) wallColumn(d ColumnDrawer, tex *Texture, col int, textureMid fixed.Fixed, yl, yh int) {
	if yl > yh {
		return
	}
	dc := &r.dc
	dc.YL, dc.YH = yl, yh
	dc.Source = tex.Column(col)
	dc.TexHeight = tex.Height
	dc.Brightmap = tex.Brightmap
	dc.Frac = textureMid + fixed.Fixed(yl-r.proj.CenterY)*dc.Step
	d.DrawColumn(r.canvas, dc)
	r.stats.Columns++
}

// drawMaskedSeg draws columns [x1, x2] of the masked mid texture of a draw
// seg inside the opening it left, skipping columns already drawn.
func (r *Renderer) drawMaskedSeg(ds *drawSeg, x1, x2 int) {
	dc := &r.dc
	role := RoleSeg
	if ds.seg.Line != nil && ds.seg.Line.Flags&level.LineTranslucent != 0 {
		role = RoleSeg50
	}
	vis := visSprite{
		drawer: r.bind.Column(role),
		mid:    ds.maskedMid,
		trans:  identityTranslation[:],
	}
	dc.Translation = vis.trans
	dc.Color = NoTextureColor
	dc.Brightmap = nil

	scale := ds.scale1 + fixed.Fixed(x1-ds.x1)*ds.scaleStep
	for x := x1; x <= x2; x, scale = x+1, scale+ds.scaleStep {
		i := x - ds.x1
		col := ds.maskedCols[i]
		if col == maskedDrawn {
			continue
		}
		ds.maskedCols[i] = maskedDrawn

		if r.fixedColormap != nil {
			dc.Colormap, dc.NextColormap = r.fixedColormap, r.fixedColormap
		} else {
			index := int(scale >> LightScaleShift)
			dc.Colormap = r.light.ScaleLight(r.colormapSet, ds.maskedLight, index)
			dc.NextColormap = r.light.ScaleLight(r.colormapSet, ds.maskedLight, index+1)
			dc.DitherZ = int(scale>>(LightScaleShift-8)) & 255
		}
		vis.yscale = scale
		dc.X = x
		dc.Step = fixed.Fixed(0xffffffff / uint32(scale))
		top := r.proj.CenterYFrac - fixed.Mul(ds.maskedMid, scale)
		r.drawMaskedColumn(&vis, ds.maskedTexture.Posts(col), top, ds.sprTopClip[i], ds.sprBottomClip[i])
	}
}
