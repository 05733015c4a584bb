package render

import (
	"testing"

	"github.com/taigrr/retrorender/pkg/fixed"
)

func TestViewAngleMapping(t *testing.T) {
	sizes := []struct {
		w, h, fov int
	}{
		{320, 200, 90},
		{320, 168, 90},
		{96, 48, 90},
		{640, 400, 60},
		{1280, 800, 120},
	}
	for _, sz := range sizes {
		p := NewProjection(sz.w, sz.h, sz.fov)
		for x := 0; x <= sz.w; x++ {
			a := p.XToViewAngle[x]
			i := int((a + fixed.Ang90) >> fixed.AngleToFineShift)
			if got := p.AngleToX(a); got > x {
				t.Errorf("%dx%d fov %d: AngleToX(XToViewAngle[%d]) = %d", sz.w, sz.h, sz.fov, x, got)
			}
			// the previous fine angle lands right of x
			if x < sz.w && i > 0 && p.ViewAngleToX[i-1] <= x {
				t.Errorf("%dx%d fov %d: column %d angle is not the smallest", sz.w, sz.h, sz.fov, x)
			}
		}
		for x := 1; x <= sz.w; x++ {
			if int32(p.XToViewAngle[x]) > int32(p.XToViewAngle[x-1]) {
				t.Errorf("%dx%d fov %d: view angles increase at column %d", sz.w, sz.h, sz.fov, x)
			}
		}
		if p.ClipAngle != p.XToViewAngle[0] {
			t.Errorf("ClipAngle %v, want XToViewAngle[0] %v", p.ClipAngle, p.XToViewAngle[0])
		}
		for x, d := range p.DistScale {
			if d < fixed.FracUnit {
				t.Errorf("%dx%d fov %d: DistScale[%d] = %v below one", sz.w, sz.h, sz.fov, x, d)
			}
		}
	}
}

func TestClipAngleMatchesFOV(t *testing.T) {
	for _, fov := range []int{60, 90, 120} {
		p := NewProjection(320, 200, fov)
		want := int64(fixed.FromDegrees(float64(fov) / 2))
		got := int64(p.ClipAngle)
		const slack = 4 << fixed.AngleToFineShift
		if got < want-slack || got > want+slack {
			t.Errorf("fov %d: ClipAngle %.2f degrees, want %d", fov, p.ClipAngle.Degrees(), fov/2)
		}
	}
}

func TestYSlopes(t *testing.T) {
	p := NewProjection(320, 200, 90)
	for _, dir := range []int{-LookDirMax, -50, 0, 37, LookDirMax} {
		p.SetLookDir(dir)
		center := p.centerFor(dir)
		if p.CenterY != center {
			t.Errorf("dir %d: CenterY %d, want %d", dir, p.CenterY, center)
		}
		for y, s := range p.YSlope {
			if s <= 0 {
				t.Fatalf("dir %d: slope at row %d is %v", dir, y, s)
			}
			if y == 0 {
				continue
			}
			prev := p.YSlope[y-1]
			if y > center && s > prev {
				t.Errorf("dir %d: slope grows below the horizon at row %d", dir, y)
			}
			if y < center && s < prev {
				t.Errorf("dir %d: slope shrinks above the horizon at row %d", dir, y)
			}
		}
		// rows mirrored about the horizon see the plane at the same depth
		for k := range 20 {
			above, below := center-1-k, center+k
			if above < 0 || below >= p.Height {
				break
			}
			if p.YSlope[above] != p.YSlope[below] {
				t.Errorf("dir %d: rows %d and %d differ", dir, above, below)
			}
		}
	}

	if p.centerFor(0) != 100 {
		t.Errorf("level horizon at row %d, want 100", p.centerFor(0))
	}
	p.SetLookDir(10 * LookDirMax)
	if p.CenterY != p.centerFor(LookDirMax) {
		t.Errorf("look dir not clamped: CenterY %d", p.CenterY)
	}
}

func TestViewWindow(t *testing.T) {
	tests := []struct {
		blocks     int
		x, y, w, h int
	}{
		{11, 0, 0, 320, 200},
		{10, 0, 0, 320, 168},
		{7, 48, 28, 224, 112},
		{3, 112, 60, 96, 48},
	}
	for _, tt := range tests {
		x, y, w, h := ViewWindow(tt.blocks, 320, 200)
		if x != tt.x || y != tt.y || w != tt.w || h != tt.h {
			t.Errorf("ViewWindow(%d) = (%d,%d %dx%d), want (%d,%d %dx%d)",
				tt.blocks, x, y, w, h, tt.x, tt.y, tt.w, tt.h)
		}
		if tt.blocks < MaxBlocks && (w%8 != 0 || h%8 != 0) {
			t.Errorf("ViewWindow(%d) size %dx%d not a multiple of 8", tt.blocks, w, h)
		}
	}

	if got := StatusBarHeight(200); got != 32 {
		t.Errorf("StatusBarHeight(200) = %d, want 32", got)
	}
	if got := StatusBarHeight(400); got != 64 {
		t.Errorf("StatusBarHeight(400) = %d, want 64", got)
	}
}

func TestProjectionScales(t *testing.T) {
	p := NewProjection(640, 400, 90)
	if p.PSpriteScale != 2*fixed.FracUnit {
		t.Errorf("PSpriteScale = %v, want 2", p.PSpriteScale)
	}
	if p.SkyIScale != fixed.FracUnit/2 {
		t.Errorf("SkyIScale = %v, want 1/2", p.SkyIScale)
	}
	if p.CenterX != 320 || p.CenterXFrac != fixed.FromInt(320) {
		t.Errorf("CenterX = %d", p.CenterX)
	}
}

func BenchmarkNewProjection(b *testing.B) {
	for b.Loop() {
		NewProjection(320, 200, 90)
	}
}
