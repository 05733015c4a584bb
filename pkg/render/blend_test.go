package render

import (
	"testing"
)

// near reports whether two colors are within tol on every channel.
// Nearest matches through a coarse cache, so exact hits are not guaranteed.
func near(a, b Color, tol int) bool {
	d := func(x, y uint8) int { return abs(int(x) - int(y)) }
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}

func TestDefaultPalette(t *testing.T) {
	pal := DefaultPalette()
	if c := pal.Colors[RampGray]; c != RGB(255, 255, 255) {
		t.Errorf("brightest gray = %v, want white", c)
	}
	if c := pal.Colors[RampGray+RampShades-1]; c != RGB(0, 0, 0) {
		t.Errorf("darkest gray = %v, want black", c)
	}
	for r := range NumRamps {
		for s := 1; s < RampShades; s++ {
			i := byte(r*RampShades + s)
			if pal.Luminance(i) > pal.Luminance(i-1) {
				t.Errorf("ramp %s shade %d brighter than shade %d", DefaultRamps[r].Name, s, s-1)
			}
		}
	}
	for i, c := range pal.Colors {
		if got := pal.Nearest(c.R, c.G, c.B); !near(pal.Colors[got], c, 24) {
			t.Errorf("Nearest(%v) = %v, far from entry %d", c, pal.Colors[got], i)
		}
	}
	if got := pal.NearestColor(RGB(0, 0, 0)); pal.Colors[got] != RGB(0, 0, 0) {
		t.Errorf("NearestColor(black) = %v", pal.Colors[got])
	}
	if len(pal.ColorPalette()) != 256 {
		t.Errorf("ColorPalette has %d entries", len(pal.ColorPalette()))
	}
}

func TestBlendTables(t *testing.T) {
	tables := testTables()
	pal := tables.Palette

	for _, i := range []byte{RampGray + 2, RampRed + 5, RampGreen + 8, RampBlue + 1, RampFire + 3} {
		if got := tables.Tint50.Blend(i, i); !near(pal.Colors[got], pal.Colors[i], 24) {
			t.Errorf("Tint50 of %d over itself = %v, want ~%v", i, pal.Colors[got], pal.Colors[i])
		}
	}

	black, white := byte(RampGray+RampShades-1), byte(RampGray)
	if got := tables.Tint75.Blend(black, white); pal.Luminance(got) < 0.6 {
		t.Errorf("Tint75 white over black too dark: %v", pal.Colors[got])
	}
	if got := tables.Tint25.Blend(black, white); pal.Luminance(got) > 0.4 {
		t.Errorf("Tint25 white over black too bright: %v", pal.Colors[got])
	}
	if got := tables.Additive.Blend(white, RampRed+4); pal.Colors[got] != pal.Colors[white] {
		t.Errorf("additive over white = %v, want white", pal.Colors[got])
	}

	if got, want := tables.Tint50.Blend(RampBlue, RampYellow), tables.Tint50[RampBlue<<8|RampYellow]; got != want {
		t.Errorf("Blend indexes dst<<8|src: got %d want %d", got, want)
	}
}

func TestFilterBlends(t *testing.T) {
	tables := testTables()
	dst := byte(RampSteel + 6)
	tests := []struct {
		name  string
		table BlendTable
		base  BlendTable
		kept  byte
		other byte
	}{
		{"red", tables.Red, tables.Additive, RampRed + 2, RampGreen + 2},
		{"green", tables.Green, tables.Additive, RampGreen + 2, RampRed + 2},
		{"blue", tables.Blue, tables.Additive, RampBlue + 2, RampYellow + 2},
		{"red white", tables.RedWhite1, tables.Additive, RampGray, RampBlue + 2},
		{"red white 50", tables.RedWhite50, tables.Tint50, RampRed + 2, RampTeal + 4},
		{"red 33", tables.Red33, tables.Tint33, RampRed + 2, RampSteel + 1},
		{"blue 25", tables.Blue25, tables.Tint25, RampBlue + 2, RampOlive + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.table.Blend(dst, tt.kept); got != tt.base.Blend(dst, tt.kept) {
				t.Errorf("filtered color %d not blended", tt.kept)
			}
			if got := tt.table.Blend(dst, tt.other); got != tt.other {
				t.Errorf("unfiltered color %d drawn as %d, want opaque", tt.other, got)
			}
		})
	}
}

func TestRemapsAndTranslations(t *testing.T) {
	tables := testTables()
	for i := range RampShades {
		if got := tables.RedToBlue[RampRed+i]; got != byte(RampBlue+i) {
			t.Errorf("RedToBlue[red %d] = %d", i, got)
		}
		if got := tables.RedToGreen[RampRed+i]; got != byte(RampGreen+i) {
			t.Errorf("RedToGreen[red %d] = %d", i, got)
		}
	}
	for _, i := range []int{RampGray, RampGreen + 3, RampBlue + 15, RampFire} {
		if tables.RedToBlue[i] != byte(i) || tables.RedToGreen[i] != byte(i) {
			t.Errorf("remaps change non-red index %d", i)
		}
	}

	targets := []int{RampSteel, RampOlive, RampTan}
	for n, base := range targets {
		tr := tables.Translations[n]
		for i := range RampShades {
			if tr[RampGreen+i] != byte(base+i) {
				t.Errorf("translation %d green %d = %d, want %d", n, i, tr[RampGreen+i], base+i)
			}
		}
		if tr[RampRed+3] != RampRed+3 {
			t.Errorf("translation %d changes red", n)
		}
	}
}

func TestColormaps(t *testing.T) {
	tables := testTables()
	pal := tables.Palette
	cms, ok := tables.Colormaps.(*Colormaps)
	if !ok {
		t.Fatalf("Colormaps is %T", tables.Colormaps)
	}
	if cms.NumSets() != 2 {
		t.Fatalf("NumSets = %d, want 2", cms.NumSets())
	}
	if cms.Name(0) != "normal" || cms.Name(1) != "water" || cms.Name(2) != "" {
		t.Errorf("names %q %q %q", cms.Name(0), cms.Name(1), cms.Name(2))
	}
	normal := cms.Colormap(0)
	if len(normal) != ColormapSize {
		t.Fatalf("set size %d, want %d", len(normal), ColormapSize)
	}
	for _, set := range []int{-1, 2, 100} {
		if &cms.Colormap(set)[0] != &normal[0] {
			t.Errorf("Colormap(%d) not clamped to set 0", set)
		}
	}

	full := ColormapTable(normal, 0)
	dark := ColormapTable(normal, NumColormaps-1)
	for i := range 256 {
		if !near(pal.Colors[full[i]], pal.Colors[i], 24) {
			t.Errorf("full bright maps %d to %v, want ~%v", i, pal.Colors[full[i]], pal.Colors[i])
		}
		if pal.Luminance(dark[i]) > pal.Luminance(full[i])+0.01 {
			t.Errorf("darkest level brightens %d", i)
		}
	}
	black := pal.Nearest(0, 0, 0)
	for i, c := range ColormapTable(normal, BlackColormap) {
		if c != black {
			t.Fatalf("black map entry %d = %d", i, c)
		}
	}
	white := byte(RampGray)
	if inv := ColormapTable(normal, InverseColormap)[white]; pal.Luminance(inv) > 0.1 {
		t.Errorf("inverse of white = %v, want dark", pal.Colors[inv])
	}

	water := ColormapTable(cms.Colormap(1), 0)
	if c := pal.Colors[water[white]]; c.B <= c.R {
		t.Errorf("water tint of white = %v, want bluish", c)
	}
}

func TestLighting(t *testing.T) {
	tables := testTables()
	p := NewProjection(320, 200, 90)
	l := NewLighting(tables.Colormaps, p.FOVScale)
	l.Resize(320)

	if l.NumSets() != 2 {
		t.Errorf("NumSets = %d", l.NumSets())
	}
	for _, set := range []int{-3, 2, 9} {
		if &l.Colormap(set)[0] != &l.Colormap(0)[0] {
			t.Errorf("set %d not clamped to 0", set)
		}
	}

	for light := range LightLevels {
		for z := 1; z < MaxLightZ; z++ {
			if l.ZLevel(light, z) < l.ZLevel(light, z-1) {
				t.Fatalf("light %d brightens with depth at %d", light, z)
			}
		}
		for s := 1; s < MaxLightScale; s++ {
			if l.ScaleLevel(light, s) > l.ScaleLevel(light, s-1) {
				t.Fatalf("light %d darkens with scale at %d", light, s)
			}
		}
	}
	if got := l.ZLevel(LightLevels-1, 0); got != 0 {
		t.Errorf("brightest light near the eye = level %d, want 0", got)
	}
	if got := l.ZLevel(0, MaxLightZ-1); got != NumColormaps-1 {
		t.Errorf("darkest light far away = level %d, want %d", got, NumColormaps-1)
	}

	clamps := []struct {
		name      string
		got, want int
	}{
		{"z light below", l.ZLevel(-4, 10), l.ZLevel(0, 10)},
		{"z light above", l.ZLevel(99, 10), l.ZLevel(LightLevels-1, 10)},
		{"z depth above", l.ZLevel(12, 5000), l.ZLevel(12, MaxLightZ-1)},
		{"scale above", l.ScaleLevel(12, 9999), l.ScaleLevel(12, MaxLightScale-1)},
		{"weapon above", l.PSprLevel(99, 99), l.PSprLevel(OldLightLevels-1, OldMaxLightScale-1)},
	}
	for _, c := range clamps {
		if c.got != c.want {
			t.Errorf("%s: level %d, want %d", c.name, c.got, c.want)
		}
	}

	want := ColormapTable(tables.Colormaps.Colormap(1), l.ZLevel(20, 40))
	if got := l.ZLight(1, 20, 40); &got[0] != &want[0] || len(got) != 256 {
		t.Error("ZLight does not index the requested set")
	}
	want = ColormapTable(tables.Colormaps.Colormap(0), l.ScaleLevel(20, 40))
	if got := l.ScaleLight(7, 20, 40); &got[0] != &want[0] {
		t.Error("ScaleLight with a bad set does not fall back to set 0")
	}
}

func BenchmarkNewTables(b *testing.B) {
	pal := DefaultPalette()
	cms := NewColormaps(pal)
	for b.Loop() {
		NewTables(pal, cms)
	}
}
