package fixed

import "math"

// Angle is a binary angle: the full circle maps onto the 32-bit range and
// wraps naturally on overflow.
type Angle uint32

const (
	Ang45    Angle = 0x20000000
	Ang90    Angle = 0x40000000
	Ang180   Angle = 0x80000000
	Ang270   Angle = 0xc0000000
	AngleMax Angle = 0xffffffff
	Ang1           = Ang45 / 45

	// FineAngles is the resolution of the trigonometric tables.
	FineAngles       = 8192
	FineMask         = FineAngles - 1
	AngleToFineShift = 19

	// SlopeRange is the resolution of the slope to angle table.
	SlopeRange = 2048
	SlopeBits  = 11
	DBits      = FracBits - SlopeBits
)

// Fine returns the fine table index of a.
func (a Angle) Fine() int {
	return int(a >> AngleToFineShift)
}

// Degrees returns a in degrees in [0, 360).
func (a Angle) Degrees() float64 {
	return float64(a) * 360 / 4294967296.0
}

// FromDegrees converts degrees to a binary angle.
func FromDegrees(d float64) Angle {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return Angle(uint64(d*4294967296.0/360) & 0xffffffff)
}

// SlopeDiv returns the slope index num/den scaled to [0, SlopeRange].
func SlopeDiv(num, den uint32) int {
	if den < 512 {
		return SlopeRange
	}
	ans := (uint64(num) << 3) / uint64(den>>8)
	if ans > SlopeRange {
		return SlopeRange
	}
	return int(ans)
}

// PointToAngle returns the angle of the vector (x, y) from the origin,
// measured counterclockwise from the positive x axis.
func PointToAngle(x, y Fixed) Angle {
	if x == 0 && y == 0 {
		return 0
	}
	ux, uy := uint32(x), uint32(y)
	if x >= 0 {
		if y >= 0 {
			if ux > uy {
				return TanToAngle[SlopeDiv(uy, ux)]
			}
			return Ang90 - 1 - TanToAngle[SlopeDiv(ux, uy)]
		}
		uy = -uy
		if ux > uy {
			return -TanToAngle[SlopeDiv(uy, ux)]
		}
		return Ang270 + TanToAngle[SlopeDiv(ux, uy)]
	}
	ux = -ux
	if y >= 0 {
		if ux > uy {
			return Ang180 - 1 - TanToAngle[SlopeDiv(uy, ux)]
		}
		return Ang90 + TanToAngle[SlopeDiv(ux, uy)]
	}
	uy = -uy
	if ux > uy {
		return Ang180 + TanToAngle[SlopeDiv(uy, ux)]
	}
	return Ang270 - 1 - TanToAngle[SlopeDiv(ux, uy)]
}

// PointToAngle2 returns the angle of the vector from (x1, y1) to (x2, y2).
func PointToAngle2(x1, y1, x2, y2 Fixed) Angle {
	return PointToAngle(x2-x1, y2-y1)
}

// PointToDist returns the length of the vector (dx, dy).
func PointToDist(dx, dy Fixed) Fixed {
	dx, dy = Abs(dx), Abs(dy)
	if dy > dx {
		dx, dy = dy, dx
	}
	if dx == 0 {
		return 0
	}
	slope := Div(dy, dx) >> DBits
	if slope > SlopeRange {
		slope = SlopeRange
	}
	angle := (TanToAngle[slope] + Ang90) >> AngleToFineShift
	return Div(dx, FineSine[angle])
}

// InterpolateAngle blends from old toward cur by frac in [0, FracUnit],
// taking the short way around the circle.
func InterpolateAngle(old, cur Angle, frac Fixed) Angle {
	if frac <= 0 {
		return old
	}
	if frac >= FracUnit || old == cur {
		return cur
	}
	scale := func(d Angle) Angle {
		return Angle((uint64(d) * uint64(frac)) >> FracBits)
	}
	if cur > old {
		if cur-old < Ang270 {
			return old + scale(cur-old)
		}
		return old - scale(old-cur)
	}
	if old-cur < Ang270 {
		return old - scale(old-cur)
	}
	return old + scale(cur-old)
}
