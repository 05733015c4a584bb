package render

import (
	"image"

	"github.com/taigrr/retrorender/pkg/fixed"
)

// Post is a vertical run of opaque patch pixels starting TopDelta rows
// below the top of the patch.
type Post struct {
	TopDelta int
	Pixels   []byte
}

// Patch is a masked sprite image stored as posts per column.
type Patch struct {
	Width, Height int
	LeftOffset    int // pixels left of the origin
	TopOffset     int // pixels above the origin
	Columns       [][]Post
}

// NewPatch builds a patch from row-major pixels, treating transparent as
// empty. The origin sits at the bottom center.
func NewPatch(width, height int, pixels []byte, transparent byte) *Patch {
	p := &Patch{
		Width:      width,
		Height:     height,
		LeftOffset: width / 2,
		TopOffset:  height,
		Columns:    make([][]Post, width),
	}
	for x := range width {
		var posts []Post
		for y := 0; y < height; {
			if pixels[y*width+x] == transparent {
				y++
				continue
			}
			start := y
			var run []byte
			for y < height && pixels[y*width+x] != transparent {
				run = append(run, pixels[y*width+x])
				y++
			}
			posts = append(posts, Post{TopDelta: start, Pixels: run})
		}
		p.Columns[x] = posts
	}
	return p
}

// PatchFromImage quantizes an image into a patch. Pixels with alpha below
// half are transparent.
func PatchFromImage(img image.Image, pal *Palette) *Patch {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h)
	mask := make([]bool, w*h)
	for y := range h {
		for x := range w {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			_, _, _, a := c.RGBA()
			if a < 0x8000 {
				continue
			}
			pix[y*w+x] = pal.NearestColor(c)
			mask[y*w+x] = true
		}
	}
	p := &Patch{Width: w, Height: h, LeftOffset: w / 2, TopOffset: h, Columns: make([][]Post, w)}
	for x := range w {
		for y := 0; y < h; {
			if !mask[y*w+x] {
				y++
				continue
			}
			post := Post{TopDelta: y}
			for y < h && mask[y*w+x] {
				post.Pixels = append(post.Pixels, pix[y*w+x])
				y++
			}
			p.Columns[x] = append(p.Columns[x], post)
		}
	}
	return p
}

// SpriteFrame is one animation frame, either a single patch or eight
// rotations. Flip mirrors a rotation horizontally.
type SpriteFrame struct {
	Rotate  bool
	Patches [8]*Patch
	Flip    [8]bool
}

// SpriteDef is a named sequence of frames.
type SpriteDef struct {
	Name   string
	Frames []SpriteFrame
}

// ObjectClass is the template a thing is spawned from. Primary and
// Alternate are resolved by the renderer whenever the bindings change.
type ObjectClass struct {
	Name   string
	Sprite int
	Flags  ObjectFlags
	Color  byte // used when textures are off

	Primary   ColumnDrawer
	Alternate ColumnDrawer
}

// Thing is a live object in the world.
type Thing struct {
	X, Y, Z     fixed.Fixed
	Angle       fixed.Angle
	Class       *ObjectClass
	Frame       int
	FullBright  bool // this frame ignores sector light
	Translation int  // 1..NumTranslations recolors, 0 keeps colors

	primary   ColumnDrawer
	alternate ColumnDrawer
}

// Drawers returns the cached (primary, alternate) drawers.
func (t *Thing) Drawers() (primary, alternate ColumnDrawer) {
	return t.primary, t.alternate
}

// BloodSplat is a flat decal lying on a floor.
type BloodSplat struct {
	X, Y  fixed.Fixed
	Patch *Patch
	Color byte
}

// PlayerSprite is the first-person weapon overlay. SX and SY are offsets
// on the reference screen.
type PlayerSprite struct {
	Sprite     int
	Frame      int
	SX, SY     fixed.Fixed
	FullBright bool
}

// Scene is the set of sprites drawn with the level.
type Scene struct {
	Sprites []*SpriteDef
	Classes []*ObjectClass
	Things  []*Thing
	Splats  []*BloodSplat
}

// frame resolves the patch of a sprite frame seen from a rotation.
func (s *Scene) frame(sprite, frame int) *SpriteFrame {
	if s == nil || sprite < 0 || sprite >= len(s.Sprites) {
		return nil
	}
	def := s.Sprites[sprite]
	if len(def.Frames) == 0 {
		return nil
	}
	return &def.Frames[frame%len(def.Frames)]
}
