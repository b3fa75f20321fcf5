package fixed

// Angle is a binary angle: the full circle maps onto the uint32 range and
// addition wraps.
type Angle uint32

const (
	Ang45  Angle = 0x20000000
	Ang90  Angle = 0x40000000
	Ang180 Angle = 0x80000000
	Ang270 Angle = 0xc0000000

	FineAngles       = 8192
	FineMask         = FineAngles - 1
	AngleToFineShift = 19

	SlopeRange = 2048
	slopeBits  = 11
	dBits      = FracBits - slopeBits
)

// Fine returns the fine-angle index for a.
func (a Angle) Fine() int { return int(a >> AngleToFineShift) }

// Sin and Cos read the fine tables.
func (a Angle) Sin() Fixed { return FineSine[a.Fine()] }
func (a Angle) Cos() Fixed { return FineCosine[a.Fine()] }

// SlopeDiv returns num/den scaled into [0, SlopeRange] for indexing
// TanToAngle. Small denominators saturate.
func SlopeDiv(num, den uint32) int {
	if den < 512 {
		return SlopeRange
	}
	ans := (num << 3) / (den >> 8)
	if ans <= SlopeRange {
		return int(ans)
	}
	return SlopeRange
}

// PointToAngle returns the angle of the vector (x, y) using an octant
// decomposition over TanToAngle.
func PointToAngle(x, y Fixed) Angle {
	if x == 0 && y == 0 {
		return 0
	}
	if x >= 0 {
		if y >= 0 {
			if x > y {
				return TanToAngle[SlopeDiv(uint32(y), uint32(x))]
			}
			return Ang90 - 1 - TanToAngle[SlopeDiv(uint32(x), uint32(y))]
		}
		y = -y
		if x > y {
			return -TanToAngle[SlopeDiv(uint32(y), uint32(x))]
		}
		return Ang270 + TanToAngle[SlopeDiv(uint32(x), uint32(y))]
	}
	x = -x
	if y >= 0 {
		if x > y {
			return Ang180 - 1 - TanToAngle[SlopeDiv(uint32(y), uint32(x))]
		}
		return Ang90 + TanToAngle[SlopeDiv(uint32(x), uint32(y))]
	}
	y = -y
	if x > y {
		return Ang180 + TanToAngle[SlopeDiv(uint32(y), uint32(x))]
	}
	return Ang270 - 1 - TanToAngle[SlopeDiv(uint32(x), uint32(y))]
}

// PointToAngle2 returns the angle from (x1, y1) to (x2, y2).
func PointToAngle2(x1, y1, x2, y2 Fixed) Angle {
	return PointToAngle(x2-x1, y2-y1)
}

// PointToDist approximates the length of (dx, dy) through the angle tables.
func PointToDist(dx, dy Fixed) Fixed {
	dx, dy = dx.Abs(), dy.Abs()
	if dy > dx {
		dx, dy = dy, dx
	}
	if dx == 0 {
		return 0
	}
	angle := (TanToAngle[Div(dy, dx)>>dBits] + Ang90) >> AngleToFineShift
	return Div(dx, FineSine[angle])
}
