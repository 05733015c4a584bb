package fixed

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name string
		a, b Fixed
		mul  Fixed
		div  Fixed
	}{
		{"units", FracUnit, FracUnit, FracUnit, FracUnit},
		{"two by half", 2 * FracUnit, FracUnit / 2, FracUnit, 4 * FracUnit},
		{"negative", -3 * FracUnit, FracUnit, -3 * FracUnit, -3 * FracUnit},
		{"both negative", -2 * FracUnit, -4 * FracUnit, 8 * FracUnit, FracUnit / 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Mul(tc.a, tc.b); got != tc.mul {
				t.Errorf("Mul = %d, want %d", got, tc.mul)
			}
			if got := Div(tc.a, tc.b); got != tc.div {
				t.Errorf("Div = %d, want %d", got, tc.div)
			}
		})
	}
}

func TestDivSaturates(t *testing.T) {
	tests := []struct {
		name string
		a, b Fixed
		want Fixed
	}{
		{"by zero", FracUnit, 0, MaxFixed},
		{"negative by zero", -FracUnit, 0, MinFixed},
		{"overflow", FromInt(30000), 1, MaxFixed},
		{"negative overflow", FromInt(-30000), 1, MinFixed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Div(tc.a, tc.b); got != tc.want {
				t.Errorf("Div(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestAbs(t *testing.T) {
	if Abs(-FracUnit) != FracUnit {
		t.Error("Abs(-1) != 1")
	}
	if Abs(MinFixed) != MaxFixed {
		t.Error("Abs(MinFixed) should saturate")
	}
}

func TestSineTables(t *testing.T) {
	const tol = 2

	if d := FineSine[FineAngles/4] - FracUnit; d < -tol || d > tol {
		t.Errorf("sin(90) = %d, want ~%d", FineSine[FineAngles/4], FracUnit)
	}
	if FineSine[0] < 0 || FineSine[0] > 64 {
		t.Errorf("sin(0) = %d, want ~0", FineSine[0])
	}
	if &FineCosine[0] != &FineSine[FineAngles/4] {
		t.Error("FineCosine should alias FineSine shifted by a quarter turn")
	}
	if len(FineCosine) != FineAngles {
		t.Errorf("len(FineCosine) = %d, want %d", len(FineCosine), FineAngles)
	}

	// tan(45 degrees) sits at three eighths of the fine range
	tan45 := FineTangent[FineAngles/4+FineAngles/8]
	if tan45 < FracUnit || tan45 > FracUnit+FracUnit/100 {
		t.Errorf("tan(45) = %d, want just above %d", tan45, FracUnit)
	}

	for i := 1; i < len(FineTangent); i++ {
		if FineTangent[i] < FineTangent[i-1] {
			t.Fatalf("FineTangent not monotone at %d", i)
		}
	}
}

func TestTanToAngle(t *testing.T) {
	if TanToAngle[0] != 0 {
		t.Errorf("TanToAngle[0] = %#x, want 0", TanToAngle[0])
	}
	d := int64(TanToAngle[SlopeRange]) - int64(Ang45)
	if d < -4 || d > 4 {
		t.Errorf("TanToAngle[SlopeRange] = %#x, want ~%#x", TanToAngle[SlopeRange], Ang45)
	}
}

func TestSlopeDiv(t *testing.T) {
	if got := SlopeDiv(100, 10); got != SlopeRange {
		t.Errorf("tiny denominator = %d, want %d", got, SlopeRange)
	}
	if got := SlopeDiv(uint32(FracUnit), uint32(2*FracUnit)); got != SlopeRange/2 {
		t.Errorf("slope 1/2 = %d, want %d", got, SlopeRange/2)
	}
	if got := SlopeDiv(uint32(FromInt(10000)), uint32(FracUnit)); got != SlopeRange {
		t.Errorf("steep slope = %d, want clamp to %d", got, SlopeRange)
	}
}

func TestPointToAngle(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
	}{
		{"east", 10, 0},
		{"north east", 10, 10},
		{"north", 0, 10},
		{"octant 1", 3, 7},
		{"octant 2", -3, 7},
		{"octant 3", -7, 3},
		{"octant 4", -7, -3},
		{"octant 5", -3, -7},
		{"octant 6", 3, -7},
		{"octant 7", 7, -3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PointToAngle(FromFloat(tc.x), FromFloat(tc.y)).Degrees()
			want := math.Atan2(tc.y, tc.x) * 180 / math.Pi
			if want < 0 {
				want += 360
			}
			diff := math.Abs(got - want)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > 0.1 {
				t.Errorf("PointToAngle(%v, %v) = %.3f, want %.3f", tc.x, tc.y, got, want)
			}
		})
	}
}

func TestPointToDist(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   float64
	}{
		{3, 4, 5},
		{-30, 40, 50},
		{100, 0, 100},
		{0, 0, 0},
	}

	for _, tc := range tests {
		got := PointToDist(FromFloat(tc.dx), FromFloat(tc.dy)).Float()
		if math.Abs(got-tc.want) > tc.want*0.01+0.01 {
			t.Errorf("PointToDist(%v, %v) = %v, want %v", tc.dx, tc.dy, got, tc.want)
		}
	}
}

func TestInterpolateAngle(t *testing.T) {
	tests := []struct {
		name     string
		old, cur Angle
		frac     Fixed
		want     Angle
	}{
		{"start", Ang45, Ang90, 0, Ang45},
		{"end", Ang45, Ang90, FracUnit, Ang90},
		{"half", 0, Ang90, FracUnit / 2, Ang45},
		{"half backwards", Ang90, 0, FracUnit / 2, Ang45},
		{"across zero forwards", AngleMax - Ang45 + 1, Ang45, FracUnit / 2, 0},
		{"across zero backwards", Ang45, AngleMax - Ang45 + 1, FracUnit / 2, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := InterpolateAngle(tc.old, tc.cur, tc.frac)
			d := int64(int32(got - tc.want))
			if d < -2 || d > 2 {
				t.Errorf("got %#x, want %#x", got, tc.want)
			}
		})
	}
}

func TestDegrees(t *testing.T) {
	if got := FromDegrees(90); got != Ang90 {
		t.Errorf("FromDegrees(90) = %#x, want %#x", got, Ang90)
	}
	if got := FromDegrees(-90); got != Ang270 {
		t.Errorf("FromDegrees(-90) = %#x, want %#x", got, Ang270)
	}
	if got := Ang180.Degrees(); got != 180 {
		t.Errorf("Ang180.Degrees() = %v, want 180", got)
	}
}

func BenchmarkPointToAngle(b *testing.B) {
	x, y := FromInt(-120), FromInt(75)
	for b.Loop() {
		_ = PointToAngle(x, y)
	}
}

func BenchmarkMul(b *testing.B) {
	a, c := FromFloat(1.5), FromFloat(-2.25)
	for b.Loop() {
		_ = Mul(a, c)
	}
}
