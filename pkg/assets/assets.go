// Package assets loads material packs for the renderer: wall textures,
// floor and ceiling flats and the sky, read from images embedded in a GLB
// or GLTF file or from a directory of PNG and JPEG files, and quantized to
// a palette.
//
// Images are sorted by name:
//
//	SKY       the sky texture
//	F_<name>  a flat named <name>, resampled to 64x64
//	L_<name>  a liquid flat, animated by the swirl effect
//	<name>    a wall texture
package assets

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"golang.org/x/image/draw"

	"github.com/taigrr/retrorender/pkg/render"
)

// Errors returned by the loaders.
var (
	ErrEmptyPack   = errors.New("material pack has no images")
	ErrUnsupported = errors.New("unsupported material pack")
)

// Name prefixes and the sky name.
const (
	FlatPrefix   = "F_"
	LiquidPrefix = "L_"
	SkyName      = "SKY"
)

// MaxTextureSize bounds both dimensions of a wall or sky texture.
const MaxTextureSize = 256

// skyFlatName is the flat that marks sky ceilings.
const skyFlatName = "F_SKY"

// entry is a decoded pack image.
type entry struct {
	name string
	img  image.Image
}

// LoadPack loads a material pack from a .glb/.gltf file or a directory of
// images.
func LoadPack(path string, pal *render.Palette) (*render.MaterialSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat pack")
	}

	var entries []entry
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case info.IsDir():
		entries, err = readDir(path)
	case ext == ".glb" || ext == ".gltf":
		var doc *gltf.Document
		doc, err = gltf.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open gltf %s", path)
		}
		entries, err = readDocument(doc, filepath.Dir(path))
	default:
		return nil, errors.Wrapf(ErrUnsupported, "%s (use .glb, .gltf or a directory)", path)
	}
	if err != nil {
		return nil, err
	}
	return buildSet(entries, pal)
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", path)
	}
	return img, nil
}

func readDir(dir string) ([]entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read pack directory")
	}
	var entries []entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(f.Name())) {
		case ".png", ".jpg", ".jpeg":
		default:
			continue
		}
		img, err := LoadImage(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: imageName(f.Name()), img: img})
	}
	return entries, nil
}

// readDocument decodes every image of a GLTF document, embedded in a
// buffer view, a data URI or a file next to the document.
func readDocument(doc *gltf.Document, dir string) ([]entry, error) {
	var entries []entry
	for i, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			if *img.BufferView >= len(doc.BufferViews) {
				return nil, errors.Errorf("image %d: buffer view %d out of range", i, *img.BufferView)
			}
			bv := doc.BufferViews[*img.BufferView]
			if bv.Buffer >= len(doc.Buffers) {
				return nil, errors.Errorf("image %d: buffer %d out of range", i, bv.Buffer)
			}
			buf := doc.Buffers[bv.Buffer]
			start, end := bv.ByteOffset, bv.ByteOffset+bv.ByteLength
			if end > len(buf.Data) {
				return nil, errors.Errorf("image %d: buffer view past end of buffer", i)
			}
			data = buf.Data[start:end]
		case strings.HasPrefix(img.URI, "data:"):
			_, payload, ok := strings.Cut(img.URI, ";base64,")
			if !ok {
				return nil, errors.Errorf("image %d: data uri is not base64", i)
			}
			var err error
			data, err = base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return nil, errors.Wrapf(err, "image %d data uri", i)
			}
		case img.URI != "":
			var err error
			data, err = os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				return nil, errors.Wrapf(err, "image %d", i)
			}
		default:
			continue
		}

		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "decode image %d", i)
		}
		name := img.Name
		if name == "" && !strings.HasPrefix(img.URI, "data:") {
			name = imageName(img.URI)
		}
		if name == "" {
			return nil, errors.Errorf("image %d has no name", i)
		}
		entries = append(entries, entry{name: name, img: decoded})
	}
	return entries, nil
}

// imageName is a file name without directory or extension.
func imageName(file string) string {
	base := filepath.Base(file)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// buildSet sorts entries into textures, flats and the sky. Entries are
// ordered by name so ids are stable across loads.
func buildSet(entries []entry, pal *render.Palette) (*render.MaterialSet, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPack
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.name, b.name) })

	set := &render.MaterialSet{SkyFlat: -1}
	for _, e := range entries {
		upper := strings.ToUpper(e.name)
		switch {
		case upper == SkyName:
			set.SkyTexture = render.TextureFromImage(SkyName, fitTexture(e.img), pal)
		case upper == skyFlatName:
			set.SkyFlat = len(set.Flats)
			set.Flats = append(set.Flats, render.NewFlat(strings.TrimPrefix(upper, FlatPrefix)))
		case strings.HasPrefix(upper, FlatPrefix):
			set.Flats = append(set.Flats, render.FlatFromImage(upper[len(FlatPrefix):], e.img, pal))
		case strings.HasPrefix(upper, LiquidPrefix):
			f := render.FlatFromImage(upper[len(LiquidPrefix):], e.img, pal)
			f.Liquid = true
			set.Flats = append(set.Flats, f)
		default:
			set.Textures = append(set.Textures, render.TextureFromImage(upper, fitTexture(e.img), pal))
		}
	}
	if set.SkyFlat < 0 {
		set.SkyFlat = len(set.Flats)
		set.Flats = append(set.Flats, render.NewFlat("SKY"))
	}
	return set, nil
}

// fitTexture resamples an image so its width is a power of two and
// neither side exceeds MaxTextureSize. Heights may stay any size.
func fitTexture(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	fw := min(floorPow2(w), MaxTextureSize)
	fh := min(h, MaxTextureSize)
	if fw == w && fh == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, fw, fh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func floorPow2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// Overlay replaces the materials of dst with same-named materials from
// src, so a pack can reskin a level built against dst's ids. It returns
// the number of materials replaced.
func Overlay(dst, src *render.MaterialSet) int {
	n := 0
	for _, t := range src.Textures {
		if id := dst.TextureID(t.Name); id >= 0 {
			dst.Textures[id] = t
			n++
		}
	}
	for i, f := range src.Flats {
		if i == src.SkyFlat {
			continue
		}
		if id := dst.FlatID(f.Name); id >= 0 && id != dst.SkyFlat {
			dst.Flats[id] = f
			n++
		}
	}
	if src.SkyTexture != nil {
		dst.SkyTexture = src.SkyTexture
		n++
	}
	return n
}
