package render

// Role is a semantic drawing role a concrete drawer is bound to.
type Role int

const (
	RoleColumn Role = iota // plain sprite column
	RoleTranslated
	RoleWall
	RoleBrightmapWall
	RoleSeg   // masked mid texture
	RoleSeg50 // masked mid texture on a translucent line
	RoleSky
	RoleFuzz
	RoleShadow
	RoleBloodSplat
	RolePlayerSprite
	RoleTranslucent
	RoleTranslucent33
	RoleTranslucent50
	RoleRed
	RoleRed33
	RoleGreen
	RoleGreen33
	RoleBlue
	RoleBlue25
	RoleRedWhite1
	RoleRedWhite2
	RoleRedWhite50
	RoleRedToBlue
	RoleRedToGreen
	RoleRedToBlue33
	RoleRedToGreen33
	numRoles
)

var roleNames = [numRoles]string{
	"column", "translated", "wall", "brightmapwall", "seg", "seg50",
	"sky", "fuzz", "shadow", "bloodsplat",
	"playersprite", "translucent", "translucent33", "translucent50",
	"red", "red33", "green", "green33", "blue", "blue25",
	"redwhite1", "redwhite2", "redwhite50",
	"redtoblue", "redtogreen", "redtoblue33", "redtogreen33",
}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return "unknown"
	}
	return roleNames[r]
}

// Roles returns every drawing role.
func Roles() []Role {
	roles := make([]Role, numRoles)
	for i := range roles {
		roles[i] = Role(i)
	}
	return roles
}

// ObjectFlags select how a thing is composited.
type ObjectFlags uint32

const (
	FlagTranslucent ObjectFlags = 1 << iota
	FlagTranslucent33
	FlagTranslucent50
	FlagRed
	FlagGreen
	FlagBlue
	FlagRedWhite
	FlagRedWhite50
	FlagRedToGreen33
	FlagRedToBlue33
	FlagBlue25
	FlagFuzz
	FlagTranslation
	FlagFullBright // every frame is unlit
	FlagShadow     // casts a flattened shadow
)

// Bindings maps each role to a concrete drawer for one set of quality
// toggles. Build with SelectBindings; never change it mid-frame.
type Bindings struct {
	quality Quality
	columns [numRoles]ColumnDrawer
	names   [numRoles]string
	span    SpanDrawer
	spanNm  string
}

type namedColumn struct {
	name string
	fn   func(cv *Canvas, dc *ColumnState)
}

func (n *namedColumn) DrawColumn(cv *Canvas, dc *ColumnState) {
	n.fn(cv, dc)
}

func (n *namedColumn) String() string {
	return n.name
}

var (
	plainColumn        = &namedColumn{"column", drawColumn}
	ditherColumn       = &namedColumn{"dither-column", drawDitherColumn}
	translatedColumn   = &namedColumn{"translated", drawTranslatedColumn}
	ditherTranslated   = &namedColumn{"dither-translated", drawDitherTranslatedColumn}
	wallColumnDrawer   = &namedColumn{"wall", drawWallColumn}
	ditherWallColumn   = &namedColumn{"dither-wall", drawDitherWallColumn}
	brightmapWall      = &namedColumn{"brightmap-wall", drawBrightmapWallColumn}
	ditherBrightmap    = &namedColumn{"dither-brightmap-wall", drawBrightmapDitherWallColumn}
	flippedSkyColumn   = &namedColumn{"flipped-sky", drawFlippedSkyColumn}
	skyColorColumn     = &namedColumn{"sky-color", drawSkyColorColumn}
	colorColumn        = &namedColumn{"color", drawColorColumn}
	ditherColorColumn  = &namedColumn{"dither-color", drawDitherColorColumn}
	shadowColumn       = &namedColumn{"shadow", drawShadowColumn}
	solidShadowColumn  = &namedColumn{"solid-shadow", drawSkyColorColumn}
	fuzzMaskColumn     = &namedColumn{"fuzz-mask", drawFuzzMaskColumn}
	plainSpanDrawer    = SpanFunc(drawSpan)
	ditherSpanDrawer   = SpanFunc(drawDitherSpan)
	colorSpanDrawer    = SpanFunc(drawColorSpan)
	ditherColorSpanDrw = SpanFunc(drawDitherColorSpan)
)

func (b *Bindings) bind(r Role, name string, d ColumnDrawer) {
	b.columns[r] = d
	b.names[r] = name
}

func (b *Bindings) bindNamed(r Role, d *namedColumn) {
	b.bind(r, d.name, d)
}

// SelectBindings resolves every role for q. With fuzzMask set, fuzz things
// draw into the mask for the full-view fuzz pass instead of the screen.
func SelectBindings(q Quality, t *Tables, fz *Fuzz, fuzzMask bool) *Bindings {
	b := &Bindings{quality: q}
	dither := q.DitheredLighting

	pick := func(plain, dithered *namedColumn) *namedColumn {
		if dither {
			return dithered
		}
		return plain
	}

	blended := []struct {
		role  Role
		name  string
		table BlendTable
	}{
		{RoleTranslucent, "tint75", t.Tint75},
		{RoleTranslucent33, "tint33", t.Tint33},
		{RoleTranslucent50, "tint50", t.Tint50},
		{RoleRed, "red", t.Red},
		{RoleRed33, "red33", t.Red33},
		{RoleGreen, "green", t.Green},
		{RoleGreen33, "green33", t.Green33},
		{RoleBlue, "blue", t.Blue},
		{RoleBlue25, "blue25", t.Blue25},
		{RoleRedWhite1, "redwhite1", t.RedWhite1},
		{RoleRedWhite2, "redwhite2", t.RedWhite2},
		{RoleRedWhite50, "redwhite50", t.RedWhite50},
	}

	if !q.Textures {
		solid := pick(colorColumn, ditherColorColumn)
		for r := range numRoles {
			b.bindNamed(r, solid)
		}
		if q.SkyColor >= 0 {
			b.bindNamed(RoleSky, skyColorColumn)
		} else {
			b.bindNamed(RoleSky, colorColumn)
		}
		b.bind(RoleFuzz, "color-blend:tint50", colorBlendColumn{table: t.Tint50})
		if q.Translucency {
			for _, bl := range blended {
				b.bind(bl.role, "color-blend:"+bl.name, colorBlendColumn{table: bl.table})
			}
			b.bind(RoleSeg50, "color-blend:tint50", colorBlendColumn{table: t.Tint50})
			b.bind(RoleRedToBlue33, "color-blend:tint33", colorBlendColumn{table: t.Tint33})
			b.bind(RoleRedToGreen33, "color-blend:tint33", colorBlendColumn{table: t.Tint33})
			b.bindNamed(RoleShadow, shadowColumn)
		} else {
			b.bindNamed(RoleShadow, solidShadowColumn)
		}
		if dither {
			b.span, b.spanNm = ditherColorSpanDrw, "dither-color-span"
		} else {
			b.span, b.spanNm = colorSpanDrawer, "color-span"
		}
		return b
	}

	base := pick(plainColumn, ditherColumn)
	b.bindNamed(RoleColumn, base)
	b.bindNamed(RolePlayerSprite, base)
	b.bindNamed(RoleTranslated, pick(translatedColumn, ditherTranslated))
	b.bindNamed(RoleWall, pick(wallColumnDrawer, ditherWallColumn))
	b.bindNamed(RoleBrightmapWall, pick(brightmapWall, ditherBrightmap))
	b.bindNamed(RoleSeg, base)

	switch {
	case q.SkyColor >= 0:
		b.bindNamed(RoleSky, skyColorColumn)
	case q.FlippedSky:
		b.bindNamed(RoleSky, flippedSkyColumn)
	default:
		b.bindNamed(RoleSky, wallColumnDrawer)
	}

	if fuzzMask {
		b.bindNamed(RoleFuzz, fuzzMaskColumn)
	} else {
		b.bind(RoleFuzz, "fuzz", fuzzColumn{fuzz: fz})
	}

	prefix := ""
	if dither {
		prefix = "dither-"
	}
	b.bind(RoleRedToBlue, prefix+"remap:redtoblue", remapColumn{remap: &t.RedToBlue, dither: dither})
	b.bind(RoleRedToGreen, prefix+"remap:redtogreen", remapColumn{remap: &t.RedToGreen, dither: dither})

	if q.Translucency {
		for _, bl := range blended {
			b.bind(bl.role, prefix+"blend:"+bl.name, blendColumn{table: bl.table, dither: dither})
		}
		b.bind(RoleRedToBlue33, prefix+"remap-blend:redtoblue33",
			remapBlendColumn{table: t.Tint33, remap: &t.RedToBlue, dither: dither})
		b.bind(RoleRedToGreen33, prefix+"remap-blend:redtogreen33",
			remapBlendColumn{table: t.Tint33, remap: &t.RedToGreen, dither: dither})
		b.bind(RoleSeg50, prefix+"blend:tint50", blendColumn{table: t.Tint50, dither: dither})
		b.bindNamed(RoleShadow, shadowColumn)
	} else {
		for _, bl := range blended {
			b.bindNamed(bl.role, base)
		}
		b.bindNamed(RoleSeg50, base)
		b.bind(RoleRedToBlue33, "remap:redtoblue", remapColumn{remap: &t.RedToBlue})
		b.bind(RoleRedToGreen33, "remap:redtogreen", remapColumn{remap: &t.RedToGreen})
		b.bindNamed(RoleShadow, solidShadowColumn)
	}

	if q.BloodSplatTranslucency {
		b.bind(RoleBloodSplat, "color-blend:tint50", colorBlendColumn{table: t.Tint50})
	} else {
		b.bindNamed(RoleBloodSplat, colorColumn)
	}

	if dither {
		b.span, b.spanNm = ditherSpanDrawer, "dither-span"
	} else {
		b.span, b.spanNm = plainSpanDrawer, "span"
	}
	return b
}

// Quality returns the toggles the bindings were selected for.
func (b *Bindings) Quality() Quality {
	return b.quality
}

// Column returns the drawer bound to a role.
func (b *Bindings) Column(r Role) ColumnDrawer {
	return b.columns[r]
}

// Name describes the drawer bound to a role.
func (b *Bindings) Name(r Role) string {
	return b.names[r]
}

// Span returns the bound span drawer.
func (b *Bindings) Span() SpanDrawer {
	return b.span
}

// SpanName describes the bound span drawer.
func (b *Bindings) SpanName() string {
	return b.spanNm
}

// ObjectRoles resolves the (primary, alternate) roles for object flags.
// The first matching flag wins: full translucency, then the red, green and
// blue channels, then the partial translucencies and remaps, then fuzz,
// then translation, then plain.
func ObjectRoles(f ObjectFlags) (primary, alternate Role) {
	switch {
	case f&FlagTranslucent != 0:
		return RoleTranslucent, RoleTranslucent50
	case f&FlagRed != 0:
		return RoleRed, RoleRed33
	case f&FlagGreen != 0:
		return RoleGreen, RoleGreen33
	case f&FlagBlue != 0:
		return RoleBlue, RoleBlue25
	case f&FlagTranslucent33 != 0:
		return RoleTranslucent33, RoleTranslucent33
	case f&FlagTranslucent50 != 0:
		return RoleTranslucent50, RoleTranslucent50
	case f&FlagRedWhite != 0:
		return RoleRedWhite1, RoleRed33
	case f&FlagRedWhite50 != 0:
		return RoleRedWhite50, RoleRedWhite50
	case f&FlagRedToGreen33 != 0:
		return RoleRedToGreen33, RoleRedToGreen33
	case f&FlagRedToBlue33 != 0:
		return RoleRedToBlue33, RoleRedToBlue33
	case f&FlagBlue25 != 0:
		return RoleBlue25, RoleBlue25
	case f&FlagFuzz != 0:
		return RoleFuzz, RoleFuzz
	case f&FlagTranslation != 0:
		return RoleTranslated, RoleTranslated
	}
	return RoleColumn, RoleColumn
}

// ObjectPair resolves the (primary, alternate) drawers for object flags.
func (b *Bindings) ObjectPair(f ObjectFlags) (primary, alternate ColumnDrawer) {
	p, a := ObjectRoles(f)
	return b.columns[p], b.columns[a]
}
