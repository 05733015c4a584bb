package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/retrorender/pkg/render"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.WriteFile(path, encodePNG(t, img), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadPackDirectory(t *testing.T) {
	pal := render.DefaultPalette()
	red := pal.Colors[render.RampRed+4]
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "brick.png"), solidImage(64, 128, red))
	writePNG(t, filepath.Join(dir, "wide.png"), solidImage(100, 300, red))
	writePNG(t, filepath.Join(dir, "F_FLOOR.png"), solidImage(32, 32, red))
	writePNG(t, filepath.Join(dir, "L_NUKAGE.png"), solidImage(64, 64, red))
	writePNG(t, filepath.Join(dir, "sky.png"), solidImage(256, 128, red))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadPack(dir, pal)
	if err != nil {
		t.Fatalf("LoadPack: %v", err)
	}

	if got := len(set.Textures); got != 2 {
		t.Fatalf("textures = %d, want 2", got)
	}
	if id := set.TextureID("BRICK"); id < 0 {
		t.Error("BRICK texture missing")
	}
	wide := set.Texture(set.TextureID("WIDE"))
	if wide == nil {
		t.Fatal("WIDE texture missing")
	}
	if wide.Width != 64 || wide.Height != MaxTextureSize {
		t.Errorf("WIDE resampled to %dx%d, want 64x%d", wide.Width, wide.Height, MaxTextureSize)
	}

	floor := set.Flat(set.FlatID("FLOOR"))
	if floor == nil || floor.Liquid {
		t.Fatalf("FLOOR flat = %+v", floor)
	}
	if got := pal.Colors[floor.Pixels[0]]; got != red {
		t.Errorf("FLOOR pixel color = %v, want %v", got, red)
	}
	nukage := set.Flat(set.FlatID("NUKAGE"))
	if nukage == nil || !nukage.Liquid {
		t.Error("NUKAGE should load as a liquid flat")
	}

	if set.Sky() == nil {
		t.Error("sky texture missing")
	}
	if !set.IsSky(set.SkyFlat) || set.Flat(set.SkyFlat) == nil {
		t.Error("sky flat marker missing")
	}
}

func TestLoadPackErrors(t *testing.T) {
	pal := render.DefaultPalette()
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want error
	}{
		{"empty directory", dir, ErrEmptyPack},
		{"unsupported file", filepath.Join(dir, "level.wad"), ErrUnsupported},
	}
	if err := os.WriteFile(filepath.Join(dir, "level.wad"), []byte("PWAD"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if tt.want == ErrEmptyPack {
				path = t.TempDir()
			}
			_, err := LoadPack(path, pal)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadPack(%s) error = %v, want %v", path, err, tt.want)
			}
		})
	}

	t.Run("missing path", func(t *testing.T) {
		if _, err := LoadPack(filepath.Join(dir, "missing.glb"), pal); err == nil {
			t.Error("expected error for missing pack")
		}
	})
}

func TestReadDocument(t *testing.T) {
	pal := render.DefaultPalette()
	blue := pal.Colors[render.RampBlue+2]
	floor := encodePNG(t, solidImage(64, 64, blue))
	sky := encodePNG(t, solidImage(128, 64, blue))

	view := 0
	doc := &gltf.Document{
		Buffers:     []*gltf.Buffer{{Data: floor}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteOffset: 0, ByteLength: len(floor)}},
		Images: []*gltf.Image{
			{Name: "F_FLOOR", MimeType: "image/png", BufferView: &view},
			{Name: "SKY", URI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(sky)},
			{Name: "unused"},
		},
	}

	entries, err := readDocument(doc, t.TempDir())
	if err != nil {
		t.Fatalf("readDocument: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	set, err := buildSet(entries, pal)
	if err != nil {
		t.Fatalf("buildSet: %v", err)
	}
	if set.FlatID("FLOOR") < 0 {
		t.Error("FLOOR flat missing")
	}
	if s := set.Sky(); s == nil || s.Width != 128 || s.Height != 64 {
		t.Errorf("sky = %+v, want 128x64", s)
	}
}

func TestReadDocumentBadView(t *testing.T) {
	view := 3
	doc := &gltf.Document{
		Images: []*gltf.Image{{Name: "BROKEN", BufferView: &view}},
	}
	if _, err := readDocument(doc, t.TempDir()); err == nil {
		t.Error("expected error for out of range buffer view")
	}
}

func TestOverlay(t *testing.T) {
	pal := render.DefaultPalette()
	dst := render.DemoMaterials(pal)
	oldStone := dst.Texture(render.DemoStone)

	src := &render.MaterialSet{
		Textures: []*render.Texture{
			render.NewTexture("BRICK", 64, 64),
			render.NewTexture("UNKNOWN", 64, 64),
		},
		Flats:   []*render.Flat{render.NewFlat("FLOOR"), render.NewFlat("SKY")},
		SkyFlat: 1,
	}

	if n := Overlay(dst, src); n != 2 {
		t.Errorf("Overlay replaced %d materials, want 2", n)
	}
	if dst.Texture(render.DemoBrick) != src.Textures[0] {
		t.Error("BRICK not replaced")
	}
	if dst.Texture(render.DemoStone) != oldStone {
		t.Error("STONE should be untouched")
	}
	if dst.Flat(render.DemoFloor) != src.Flats[0] {
		t.Error("FLOOR not replaced")
	}
	if dst.Flat(render.DemoSkyFlat) == src.Flats[1] {
		t.Error("sky marker flat should not be replaced")
	}
}

func TestFloorPow2(t *testing.T) {
	tests := []struct{ in, want int }{
		{1, 1}, {2, 2}, {3, 2}, {64, 64}, {100, 64}, {255, 128}, {256, 256},
	}
	for _, tt := range tests {
		if got := floorPow2(tt.in); got != tt.want {
			t.Errorf("floorPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
