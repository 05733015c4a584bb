// Package fixed implements the 16.16 fixed-point numbers and 32-bit binary
// angles the renderer does all of its geometry in.
package fixed

import "math"

// Fixed is a signed 16.16 fixed-point number.
type Fixed int32

const (
	FracBits           = 16
	FracUnit     Fixed = 1 << FracBits
	MaxFixed     Fixed = math.MaxInt32
	MinFixed     Fixed = math.MinInt32
	HalfFracUnit       = FracUnit / 2
)

// FromInt converts a whole number to fixed point.
func FromInt(i int) Fixed {
	return Fixed(i << FracBits)
}

// FromFloat converts a float to fixed point, truncating toward zero.
func FromFloat(v float64) Fixed {
	return Fixed(v * float64(FracUnit))
}

// Int returns the integer part, rounding toward negative infinity.
func (f Fixed) Int() int {
	return int(f >> FracBits)
}

// Float returns f as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / float64(FracUnit)
}

// Abs returns the absolute value of f. Abs(MinFixed) is MaxFixed.
func Abs(f Fixed) Fixed {
	if f < 0 {
		if f == MinFixed {
			return MaxFixed
		}
		return -f
	}
	return f
}

// Mul multiplies two fixed-point numbers.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FracBits)
}

// Div divides a by b. Results that would not fit, including division by
// zero, saturate to MaxFixed or MinFixed depending on the sign.
func Div(a, b Fixed) Fixed {
	if abs64(int64(a))>>14 >= abs64(int64(b)) {
		if (a ^ b) < 0 {
			return MinFixed
		}
		return MaxFixed
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
