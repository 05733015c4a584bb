package fixed

import "math"

var (
	// FineSine covers one and a quarter turns so FineCosine can alias it.
	FineSine [5 * FineAngles / 4]Fixed

	// FineCosine is FineSine shifted by a quarter turn.
	FineCosine []Fixed

	// FineTangent covers the half turn from -90 to +90 degrees.
	FineTangent [FineAngles / 2]Fixed

	// TanToAngle maps a slope index in [0, SlopeRange] to an angle in
	// [0, 45] degrees.
	TanToAngle [SlopeRange + 1]Angle
)

func init() {
	for i := range FineSine {
		a := (float64(i) + 0.5) * 2 * math.Pi / FineAngles
		FineSine[i] = Fixed(float64(FracUnit) * math.Sin(a))
	}
	FineCosine = FineSine[FineAngles/4:]

	for i := range FineTangent {
		a := (float64(i-FineAngles/4) + 0.5) * 2 * math.Pi / FineAngles
		FineTangent[i] = Fixed(float64(FracUnit) * math.Tan(a))
	}

	for i := range TanToAngle {
		a := math.Atan(float64(i)/SlopeRange) / (2 * math.Pi)
		TanToAngle[i] = Angle(uint32(a * 0xffffffff))
	}
}

// Sin returns the sine of a.
func Sin(a Angle) Fixed {
	return FineSine[a>>AngleToFineShift]
}

// Cos returns the cosine of a.
func Cos(a Angle) Fixed {
	return FineCosine[a>>AngleToFineShift]
}
