package render

import (
	"cmp"
	"slices"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// minZ is the nearest depth a sprite is drawn at.
const minZ = 4 * fixed.FracUnit

// flatSquash is how much shadows and blood splats are flattened.
const flatSquash = 10

// Colormap levels shadows darken the floor with; the top and bottom rows
// are lighter.
const (
	shadowLevel     = 24
	shadowEdgeLevel = 20
)

// visSprite is a sprite projected this frame.
type visSprite struct {
	x1, x2   int
	gx, gy   fixed.Fixed // world position for seg side tests
	gz, gzt  fixed.Fixed // world bottom and top
	scale    fixed.Fixed // depth scale, sorts sprites
	yscale   fixed.Fixed // vertical pixels per texel
	xiscale  fixed.Fixed // texels per column, negative when flipped
	start    fixed.Fixed // texture column of x1
	mid      fixed.Fixed // texture row on the horizon
	patch    *Patch
	drawer   ColumnDrawer
	colormap []byte
	next     []byte
	ditherZ  int
	trans    []byte
	color    byte
}

// clearSprites drops last frame's sprites and files the scene's things and
// splats under the sectors they stand in.
func (r *Renderer) clearSprites() {
	r.visSprites = r.visSprites[:0]
	r.sortedSprite = r.sortedSprite[:0]
	for i := range r.sectorThings {
		r.sectorThings[i] = r.sectorThings[i][:0]
		r.sectorSplats[i] = r.sectorSplats[i][:0]
	}
	for _, t := range r.scene.Things {
		if i, ok := r.sectorOf(t.X, t.Y); ok {
			r.sectorThings[i] = append(r.sectorThings[i], t)
		}
	}
	for _, s := range r.scene.Splats {
		if i, ok := r.sectorOf(s.X, s.Y); ok {
			r.sectorSplats[i] = append(r.sectorSplats[i], s)
		}
	}
}

func (r *Renderer) sectorOf(x, y fixed.Fixed) (int, bool) {
	ss := r.level.PointInSubsector(x, y)
	if ss == nil || ss.Sector == nil {
		return 0, false
	}
	i, ok := r.sectorIndex[ss.Sector]
	return i, ok
}

// addSprites projects the things of a sector once per frame.
func (r *Renderer) addSprites(sec *level.Sector) {
	i, ok := r.sectorIndex[sec]
	if !ok || r.sectorSeen[i] == r.frame {
		return
	}
	r.sectorSeen[i] = r.frame

	lightNum := sec.LightLevel>>LightSegShift + r.extraLight
	for _, s := range r.sectorSplats[i] {
		r.projectSplat(s, sec, lightNum)
	}
	for _, t := range r.sectorThings[i] {
		if r.cfg.Shadows && t.Class != nil && t.Class.Flags&FlagShadow != 0 {
			r.projectShadow(t, sec)
		}
		r.projectSprite(t, lightNum)
	}
}

// transform returns the view-space depth and lateral offset of a point.
func (r *Renderer) transform(x, y fixed.Fixed) (tz, tx fixed.Fixed) {
	trX, trY := x-r.viewX, y-r.viewY
	tz = fixed.Mul(trX, r.viewCos) + fixed.Mul(trY, r.viewSin)
	tx = fixed.Mul(trX, r.viewSin) - fixed.Mul(trY, r.viewCos)
	return tz, tx
}

// spriteColumns projects a patch at lateral offset tx and the given scale
// onto columns, returning false when it is off screen.
func (r *Renderer) spriteColumns(vis *visSprite, tx fixed.Fixed, flip bool) bool {
	p := vis.patch
	tx -= fixed.FromInt(p.LeftOffset)
	x1 := int((r.proj.CenterXFrac + fixed.Mul(tx, vis.scale)) >> fixed.FracBits)
	if x1 > r.proj.Width {
		return false
	}
	tx += fixed.FromInt(p.Width)
	x2 := int((r.proj.CenterXFrac+fixed.Mul(tx, vis.scale))>>fixed.FracBits) - 1
	if x2 < 0 {
		return false
	}

	vis.x1, vis.x2 = max(x1, 0), min(x2, r.proj.Width-1)
	iscale := fixed.Div(fixed.FracUnit, vis.scale)
	if flip {
		vis.start = fixed.FromInt(p.Width) - 1
		vis.xiscale = -iscale
	} else {
		vis.start = 0
		vis.xiscale = iscale
	}
	if vis.x1 > x1 {
		vis.start += vis.xiscale * fixed.Fixed(vis.x1-x1)
	}
	return vis.x1 <= vis.x2
}

// spriteLight fills the lighting of a sprite from its depth scale.
func (r *Renderer) spriteLight(vis *visSprite, lightNum int, fullBright bool) {
	switch {
	case r.fixedColormap != nil:
		vis.colormap, vis.next = r.fixedColormap, r.fixedColormap
	case fullBright:
		vis.colormap = ColormapTable(r.fullColormap, 0)
		vis.next = vis.colormap
	default:
		index := int(vis.scale >> LightScaleShift)
		vis.colormap = r.light.ScaleLight(r.colormapSet, lightNum, index)
		vis.next = r.light.ScaleLight(r.colormapSet, lightNum, index+1)
		vis.ditherZ = int(vis.scale>>(LightScaleShift-8)) & 255
	}
}

// projectSprite adds a thing to the sprites drawn this frame.
func (r *Renderer) projectSprite(t *Thing, lightNum int) {
	if t.Class == nil {
		return
	}
	tz, tx := r.transform(t.X, t.Y)
	if tz < minZ || fixed.Abs(tx) > tz<<2 {
		return
	}

	frame := r.scene.frame(t.Class.Sprite, t.Frame)
	if frame == nil {
		return
	}
	rot := 0
	if frame.Rotate {
		ang := fixed.PointToAngle(t.X-r.viewX, t.Y-r.viewY)
		rot = int((ang - t.Angle + fixed.Ang45/2*9) >> 29)
	}
	patch := frame.Patches[rot]
	if patch == nil {
		return
	}

	vis := visSprite{
		gx:     t.X,
		gy:     t.Y,
		gz:     t.Z,
		gzt:    t.Z + fixed.FromInt(patch.TopOffset),
		scale:  fixed.Div(r.proj.Focal, tz),
		patch:  patch,
		color:  t.Class.Color,
		drawer: t.primary,
	}
	vis.yscale = vis.scale
	vis.mid = vis.gzt - r.viewZ
	if !r.spriteColumns(&vis, tx, frame.Flip[rot]) {
		return
	}

	bright := t.FullBright || t.Class.Flags&FlagFullBright != 0
	if !bright && t.alternate != nil {
		vis.drawer = t.alternate
	}
	if vis.drawer == nil {
		vis.drawer = r.bind.Column(RoleColumn)
	}
	if t.Translation > 0 && t.Translation <= NumTranslations {
		vis.trans = r.tables.Translations[t.Translation-1][:]
	} else {
		vis.trans = identityTranslation[:]
	}
	r.spriteLight(&vis, lightNum, bright)
	r.visSprites = append(r.visSprites, vis)
}

// projectFlattened adds a patch lying on a floor, squashed vertically.
func (r *Renderer) projectFlattened(x, y, floorZ fixed.Fixed, patch *Patch, drawer ColumnDrawer) *visSprite {
	if patch == nil || floorZ >= r.viewZ {
		return nil
	}
	tz, tx := r.transform(x, y)
	if tz < minZ || fixed.Abs(tx) > tz<<2 {
		return nil
	}
	vis := visSprite{
		gx:     x,
		gy:     y,
		gz:     floorZ,
		gzt:    floorZ + 1,
		scale:  fixed.Div(r.proj.Focal, tz),
		patch:  patch,
		drawer: drawer,
		trans:  identityTranslation[:],
	}
	vis.yscale = vis.scale / flatSquash
	if vis.yscale <= 0 {
		return nil
	}
	// the patch bottom lands on the floor
	vis.mid = fixed.FromInt(patch.Height) + (floorZ-r.viewZ)*flatSquash
	if !r.spriteColumns(&vis, tx, false) {
		return nil
	}
	r.visSprites = append(r.visSprites, vis)
	return &r.visSprites[len(r.visSprites)-1]
}

// projectShadow adds the flattened shadow of a thing on its sector floor.
func (r *Renderer) projectShadow(t *Thing, sec *level.Sector) {
	frame := r.scene.frame(t.Class.Sprite, t.Frame)
	if frame == nil {
		return
	}
	vis := r.projectFlattened(t.X, t.Y, sec.FloorHeight, frame.Patches[0], r.bind.Column(RoleShadow))
	if vis == nil {
		return
	}
	vis.colormap = ColormapTable(r.fullColormap, shadowLevel)
	vis.next = ColormapTable(r.fullColormap, shadowEdgeLevel)
	vis.color = ColormapTable(r.fullColormap, BlackColormap)[0]
}

// projectSplat adds a blood splat on its sector floor.
func (r *Renderer) projectSplat(s *BloodSplat, sec *level.Sector, lightNum int) {
	vis := r.projectFlattened(s.X, s.Y, sec.FloorHeight, s.Patch, r.bind.Column(RoleBloodSplat))
	if vis == nil {
		return
	}
	vis.color = s.Color
	r.spriteLight(vis, lightNum, false)
}

var identityTranslation = func() (t [256]byte) {
	for i := range t {
		t[i] = byte(i)
	}
	return t
}()

// drawMasked draws the sprites far to near, then the weapon.
func (r *Renderer) drawMasked() {
	for i := range r.visSprites {
		r.sortedSprite = append(r.sortedSprite, &r.visSprites[i])
	}
	slices.SortStableFunc(r.sortedSprite, func(a, b *visSprite) int {
		return cmp.Compare(a.scale, b.scale)
	})
	for _, vis := range r.sortedSprite {
		r.drawSprite(vis)
	}
	// masked mids no sprite drew first, far to near
	for i := len(r.drawSegs) - 1; i >= 0; i-- {
		if ds := &r.drawSegs[i]; ds.maskedCols != nil {
			r.drawMaskedSeg(ds, ds.x1, ds.x2)
		}
	}
	if r.view.Weapon != nil {
		r.drawPlayerSprite(r.view.Weapon)
	}
}

// drawSprite clips a sprite against the walls drawn in front of it.
func (r *Renderer) drawSprite(spr *visSprite) {
	clipTop, clipBottom := r.clipTop, r.clipBottom
	for x := spr.x1; x <= spr.x2; x++ {
		clipTop[x], clipBottom[x] = -2, -2
	}

	// newest segs carry the tightest clips
	for i := len(r.drawSegs) - 1; i >= 0; i-- {
		ds := &r.drawSegs[i]
		if ds.x1 > spr.x2 || ds.x2 < spr.x1 || (ds.silhouette == 0 && ds.maskedCols == nil) {
			continue
		}
		r1, r2 := max(ds.x1, spr.x1), min(ds.x2, spr.x2)

		lowScale, scale := ds.scale1, ds.scale2
		if ds.scale1 > ds.scale2 {
			lowScale, scale = ds.scale2, ds.scale1
		}
		if scale < spr.scale ||
			(lowScale < spr.scale && level.PointOnSegSide(spr.gx, spr.gy, ds.seg) == 0) {
			// seg is behind the sprite
			if ds.maskedCols != nil {
				r.drawMaskedSeg(ds, r1, r2)
			}
			continue
		}

		sil := ds.silhouette
		if spr.gz >= ds.bsilHeight {
			sil &^= silBottom
		}
		if spr.gzt <= ds.tsilHeight {
			sil &^= silTop
		}
		for x := r1; x <= r2; x++ {
			if sil&silBottom != 0 && clipBottom[x] == -2 {
				clipBottom[x] = ds.sprBottomClip[x-ds.x1]
			}
			if sil&silTop != 0 && clipTop[x] == -2 {
				clipTop[x] = ds.sprTopClip[x-ds.x1]
			}
		}
	}

	for x := spr.x1; x <= spr.x2; x++ {
		if clipBottom[x] == -2 {
			clipBottom[x] = r.proj.Height
		}
		if clipTop[x] == -2 {
			clipTop[x] = -1
		}
	}
	r.drawVisSprite(spr, clipTop, clipBottom)
}

// drawVisSprite draws the posts of every column of a sprite inside the
// clip bounds.
func (r *Renderer) drawVisSprite(vis *visSprite, clipTop, clipBottom []int) {
	dc := &r.dc
	dc.Colormap, dc.NextColormap, dc.DitherZ = vis.colormap, vis.next, vis.ditherZ
	dc.Translation = vis.trans
	dc.Color = vis.color
	dc.Step = fixed.Div(fixed.FracUnit, vis.yscale)
	top := r.proj.CenterYFrac - fixed.Mul(vis.mid, vis.yscale)

	p := vis.patch
	frac := vis.start
	for x := vis.x1; x <= vis.x2; x, frac = x+1, frac+vis.xiscale {
		col := fixed.Clamp(int(frac>>fixed.FracBits), 0, p.Width-1)
		dc.X = x
		r.drawMaskedColumn(vis, p.Columns[col], top, clipTop[x], clipBottom[x])
	}
	r.stats.Sprites++
}

// drawMaskedColumn draws the posts of one patch column between the
// exclusive clip rows.
func (r *Renderer) drawMaskedColumn(vis *visSprite, posts []Post, sprTop fixed.Fixed, ceilingClip, floorClip int) {
	dc := &r.dc
	for _, post := range posts {
		n := len(post.Pixels)
		topScreen := sprTop + vis.yscale*fixed.Fixed(post.TopDelta)
		bottomScreen := topScreen + vis.yscale*fixed.Fixed(n)

		yl := int((topScreen + fixed.FracUnit - 1) >> fixed.FracBits)
		yh := int((bottomScreen - 1) >> fixed.FracBits)
		yl = max(yl, ceilingClip+1, 0)
		yh = min(yh, floorClip-1, r.proj.Height-1)
		if yl > yh {
			continue
		}

		// keep the texel index inside the post
		frac := vis.mid - fixed.FromInt(post.TopDelta) + fixed.Fixed(yl-r.proj.CenterY)*dc.Step
		for yl <= yh && frac < 0 {
			yl++
			frac += dc.Step
		}
		limit := int64(n) << fixed.FracBits
		for yl <= yh && int64(frac)+int64(yh-yl)*int64(dc.Step) >= limit {
			yh--
		}
		if yl > yh {
			continue
		}

		dc.YL, dc.YH = yl, yh
		dc.Frac = frac
		dc.Source = post.Pixels
		dc.TexHeight = n
		vis.drawer.DrawColumn(r.canvas, dc)
		r.stats.Columns++
	}
}

// drawPlayerSprite draws the first-person weapon, unclipped by the world.
func (r *Renderer) drawPlayerSprite(psp *PlayerSprite) {
	frame := r.scene.frame(psp.Sprite, psp.Frame)
	if frame == nil || frame.Patches[0] == nil {
		return
	}
	patch := frame.Patches[0]
	flip := frame.Flip[0]

	tx := psp.SX - fixed.FromInt(OrigWidth/2) - fixed.FromInt(patch.LeftOffset)
	x1 := int((r.proj.CenterXFrac + fixed.Mul(tx, r.proj.PSpriteScale)) >> fixed.FracBits)
	if x1 > r.proj.Width {
		return
	}
	tx += fixed.FromInt(patch.Width)
	x2 := int((r.proj.CenterXFrac+fixed.Mul(tx, r.proj.PSpriteScale))>>fixed.FracBits) - 1
	if x2 < 0 {
		return
	}

	vis := visSprite{
		x1:     max(x1, 0),
		x2:     min(x2, r.proj.Width-1),
		scale:  r.proj.PSpriteScale,
		yscale: r.proj.PSpriteScale,
		patch:  patch,
		drawer: r.bind.Column(RolePlayerSprite),
		trans:  identityTranslation[:],
		color:  NoTextureColor,
		mid: fixed.FromInt(OrigHeight/2) + fixed.HalfFracUnit -
			(psp.SY - fixed.FromInt(patch.TopOffset)),
	}
	if flip {
		vis.xiscale = -r.proj.PSpriteIScale
		vis.start = fixed.FromInt(patch.Width) - 1
	} else {
		vis.xiscale = r.proj.PSpriteIScale
	}
	if vis.x1 > x1 {
		vis.start += vis.xiscale * fixed.Fixed(vis.x1-x1)
	}

	switch {
	case r.fixedColormap != nil:
		vis.colormap = r.fixedColormap
	case psp.FullBright:
		vis.colormap = ColormapTable(r.fullColormap, 0)
	default:
		sec := r.level.PointInSubsector(r.viewX, r.viewY).Sector
		lightNum := sec.LightLevel>>OldLightSegShift + r.extraLight
		vis.colormap = r.light.PSprLight(r.colormapSet, lightNum, OldMaxLightScale-1)
	}
	vis.next = vis.colormap
	r.drawVisSprite(&vis, r.negOne, r.screenHeight)
}
