package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/retrorender/pkg/fixed"
	"github.com/taigrr/retrorender/pkg/level"
)

// Demo material ids.
const (
	DemoBrick = iota
	DemoMetal
	DemoStone
	DemoGrate
)

const (
	DemoFloor = iota
	DemoCeiling
	DemoSlime
	DemoSkyFlat
	DemoBorder
)

// Demo sprite ids.
const (
	demoPillarSprite = iota
	demoCreatureSprite
	demoWeaponSprite
)

// DemoMaterials builds a small procedural material set: three wall
// textures (one with a height that is not a power of two, one with lamps
// on a brightmap) and a masked grate, floor, ceiling, an animated liquid,
// the sky and a border tile.
func DemoMaterials(pal *Palette) *MaterialSet {
	brick := NewTexture("BRICK", 64, 128)
	for x := range 64 {
		for y := range 128 {
			c := byte(RampBrown + 3 + (x*7+y*3)%3)
			row := y / 16
			if y%16 == 15 || (x+row%2*16)%32 == 31 {
				c = RampGray + 10
			}
			brick.SetPixel(x, y, c)
		}
	}

	metal := NewTexture("METAL", 64, 64)
	for x := range 64 {
		for y := range 64 {
			c := byte(RampSteel + 2 + x%8/2)
			switch {
			case y%32 < 2 && x%16 >= 6 && x%16 < 10:
				c = RampYellow + 1
			case y%32 < 2:
				c = RampSteel + 10
			}
			metal.SetPixel(x, y, c)
		}
	}
	metal.Brightmap = new([256]byte)
	metal.Brightmap[RampYellow+1] = 1

	const hole = 0xff
	grate := NewTexture("GRATE", 64, 64)
	for x := range 64 {
		for y := range 64 {
			c := byte(hole)
			if x%16 < 3 || y%32 < 3 || y >= 60 {
				c = byte(RampUmber + 4 + y%3)
			}
			grate.SetPixel(x, y, c)
		}
	}
	grate.Mask(hole)

	stone := NewCheckerTexture("STONE", 64, 72, 12, RampStone+3, RampStone+6)

	slime := NewFlat("SLIME")
	slime.Liquid = true
	for y := range FlatSize {
		for x := range FlatSize {
			v := math32.Sin(float32(x)/5) + math32.Cos(float32(y)/7)
			slime.Pixels[y*FlatSize+x] = byte(RampGreen + 4 + int((v+2)*2))
		}
	}

	border := NewCheckerFlat("BORDER", 8, RampUmber+6, RampUmber+8)
	sky := NewFlat("SKY")

	skyTex := NewTexture("SKY", 256, 128)
	for x := range 256 {
		for y := range 128 {
			shade := y * RampShades / 128
			c := byte(RampBlue + min(shade, RampShades-1))
			// distant hills
			hill := 100 + int(12*math32.Sin(float32(x)*math32.Pi/32))
			if y > hill {
				c = RampOlive + 9
			}
			skyTex.SetPixel(x, y, c)
		}
	}

	return &MaterialSet{
		Textures: []*Texture{brick, metal, stone, grate},
		Flats: []*Flat{
			NewCheckerFlat("FLOOR", 16, RampStone+5, RampStone+7),
			NewCheckerFlat("CEIL", 32, RampSteel+6, RampSteel+8),
			slime,
			sky,
			border,
		},
		SkyTexture: skyTex,
		SkyFlat:    DemoSkyFlat,
	}
}

// DemoLayout is a chain of rooms using the demo materials: a lit hall, an
// open air yard with a slime pit, a dim vault, and a flooded pit that
// selects colormap set 1 while the eye is below its surface. Grates hang
// in the hall exit and, translucent, in the pit entrance.
func DemoLayout() level.Layout {
	return level.Layout{
		Depth: 512,
		Rooms: []level.Room{
			{Width: 384, FloorHeight: 0, CeilingHeight: 128, FloorPic: DemoFloor, CeilingPic: DemoCeiling, Light: 192, WallTexture: DemoBrick},
			{Width: 320, FloorHeight: -16, CeilingHeight: 256, FloorPic: DemoSlime, CeilingPic: DemoSkyFlat, Light: 224, WallTexture: DemoMetal},
			{Width: 256, FloorHeight: 16, CeilingHeight: 96, FloorPic: DemoFloor, CeilingPic: DemoCeiling, Light: 112, WallTexture: DemoStone},
			{
				Width: 256, FloorHeight: -48, CeilingHeight: 128, FloorPic: DemoSlime, CeilingPic: DemoCeiling, Light: 160, WallTexture: DemoBrick,
				Transfer: &level.HeightTransfer{Floor: 0, Ceiling: fixed.FromInt(1024), BottomMap: 1},
			},
		},
		Grates: []level.Grate{
			{Boundary: 1, Texture: DemoGrate},
			{Boundary: 3, Texture: DemoGrate, Translucent: true},
		},
	}
}

// DemoTints are the extra colormap sets DemoLayout refers to.
func DemoTints() []Tint {
	return []Tint{{Name: "water", Color: RGB(0, 64, 160), Strength: 0.45}}
}

// newPatchFunc builds a patch whose pixels come from f; f reports false
// for transparent pixels.
func newPatchFunc(w, h int, f func(x, y int) (byte, bool)) *Patch {
	const hole = 0xff
	pix := make([]byte, w*h)
	for y := range h {
		for x := range w {
			c, ok := f(x, y)
			if !ok || c == hole {
				c = hole
			}
			pix[y*w+x] = c
		}
	}
	return NewPatch(w, h, pix, hole)
}

// ellipse reports whether (x, y) lies inside the ellipse inscribed in a
// w by h box.
func ellipse(x, y, w, h int) bool {
	dx := (float32(x) + 0.5 - float32(w)/2) / (float32(w) / 2)
	dy := (float32(y) + 0.5 - float32(h)/2) / (float32(h) / 2)
	return dx*dx+dy*dy <= 1
}

// DemoScene places a few things of every drawing style in a level built
// from DemoLayout.
func DemoScene(lvl *level.Level) *Scene {
	pillar := newPatchFunc(16, 56, func(x, y int) (byte, bool) {
		return byte(RampStone + 2 + x/4), true
	})

	var creature SpriteFrame
	creature.Rotate = true
	for rot := range 8 {
		// the eye slides across the body as the creature turns
		eye := 16 + int(10*math32.Sin(float32(rot)*math32.Pi/4))
		creature.Patches[rot] = newPatchFunc(32, 48, func(x, y int) (byte, bool) {
			if !ellipse(x, y, 32, 48) {
				return 0, false
			}
			switch {
			case y >= 10 && y < 16 && x >= eye-3 && x < eye+3:
				return RampYellow + 2, true
			case y > 30:
				return byte(RampGreen + 4 + (y-30)/4), true
			}
			return byte(RampRed + 3 + y/8), true
		})
	}

	weapon := newPatchFunc(48, 40, func(x, y int) (byte, bool) {
		inset := (40 - y) / 3
		if x < inset || x >= 48-inset {
			return 0, false
		}
		return byte(RampSteel + 4 + y/8), true
	})
	weapon.LeftOffset, weapon.TopOffset = 0, 0

	splat := newPatchFunc(24, 12, func(x, y int) (byte, bool) {
		return RampRed + 6, ellipse(x, y, 24, 12)
	})

	s := &Scene{
		Sprites: []*SpriteDef{
			{Name: "PILR", Frames: []SpriteFrame{{Patches: [8]*Patch{pillar}}}},
			{Name: "CRTR", Frames: []SpriteFrame{creature}},
			{Name: "WEAP", Frames: []SpriteFrame{{Patches: [8]*Patch{weapon}}}},
		},
	}
	classes := map[string]*ObjectClass{
		"pillar":  {Name: "pillar", Sprite: demoPillarSprite, Flags: FlagShadow, Color: RampStone + 4},
		"imp":     {Name: "imp", Sprite: demoCreatureSprite, Flags: FlagShadow, Color: RampRed + 4},
		"spectre": {Name: "spectre", Sprite: demoCreatureSprite, Flags: FlagFuzz, Color: RampGray + 8},
		"lamp":    {Name: "lamp", Sprite: demoPillarSprite, Flags: FlagTranslucent | FlagFullBright, Color: RampYellow + 2},
		"marine":  {Name: "marine", Sprite: demoCreatureSprite, Flags: FlagShadow, Color: RampGreen + 4},
		"skull":   {Name: "skull", Sprite: demoCreatureSprite, Flags: FlagRedToBlue33, Color: RampBlue + 4},
	}
	for _, name := range []string{"pillar", "imp", "spectre", "lamp", "marine", "skull"} {
		s.Classes = append(s.Classes, classes[name])
	}

	at := func(room int) (fixed.Fixed, fixed.Fixed) {
		ss := &lvl.Subsectors[min(room, len(lvl.Subsectors)-1)]
		segs := lvl.SegsOf(ss)
		var box level.BBox
		box.ClearBox()
		for _, sg := range segs {
			box.AddPoint(sg.V1.X, sg.V1.Y)
		}
		return (box[level.BoxLeft] + box[level.BoxRight]) / 2, (box[level.BoxBottom] + box[level.BoxTop]) / 2
	}
	place := func(class string, room int, dx, dy int, angle fixed.Angle, translation int) {
		x, y := at(room)
		x += fixed.FromInt(dx)
		y += fixed.FromInt(dy)
		sec := lvl.PointInSubsector(x, y).Sector
		s.Things = append(s.Things, &Thing{
			X: x, Y: y, Z: sec.FloorHeight,
			Angle:       angle,
			Class:       classes[class],
			Translation: translation,
		})
	}
	place("pillar", 0, 96, 160, 0, 0)
	place("pillar", 0, 96, -160, 0, 0)
	place("imp", 1, 0, 0, fixed.Ang180, 0)
	place("marine", 1, -64, 96, fixed.Ang90, 1)
	place("marine", 1, -64, -96, fixed.Ang270, 2)
	place("spectre", 2, 0, 64, fixed.Ang180, 0)
	place("lamp", 2, 64, -128, 0, 0)
	place("skull", 3, 0, 0, fixed.Ang180, 0)

	x, y := at(0)
	s.Splats = append(s.Splats,
		&BloodSplat{X: x + fixed.FromInt(140), Y: y + fixed.FromInt(20), Patch: splat, Color: RampRed + 6},
		&BloodSplat{X: x + fixed.FromInt(170), Y: y - fixed.FromInt(40), Patch: splat, Color: RampRed + 8},
	)
	return s
}

// DemoWeapon is the first-person sprite for a scene built by DemoScene.
func DemoWeapon() *PlayerSprite {
	return &PlayerSprite{
		Sprite: demoWeaponSprite,
		SX:     fixed.FromInt(OrigWidth/2 - 24),
		SY:     fixed.FromInt(OrigHeight - 40),
	}
}
