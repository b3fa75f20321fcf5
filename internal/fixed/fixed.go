// Package fixed implements 16.16 fixed-point arithmetic and binary angle
// measurement, together with the trigonometric lookup tables the renderer
// indexes on every column and span.
package fixed

import "math"

const (
	FracBits = 16
	// FracUnit is 1.0.
	FracUnit Fixed = 1 << FracBits

	MaxFixed Fixed = math.MaxInt32
	MinFixed Fixed = math.MinInt32
)

// Fixed is a signed 16.16 fixed-point number. Arithmetic wraps on overflow.
type Fixed int32

// FromInt converts an integer to fixed point.
func FromInt(i int) Fixed { return Fixed(int32(i) << FracBits) }

// Int truncates toward negative infinity.
func (f Fixed) Int() int { return int(f >> FracBits) }

// Float is for diagnostics only.
func (f Fixed) Float() float64 { return float64(f) / float64(FracUnit) }

// Abs returns |f|. Abs(MinFixed) wraps to itself.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Mul returns a*b using a 64-bit intermediate product.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FracBits)
}

// Div returns a/b. When the quotient would not fit, the result saturates to
// MaxFixed or MinFixed with the sign of a*b. Division by zero saturates the
// same way.
func Div(a, b Fixed) Fixed {
	if a.Abs()>>14 >= b.Abs() {
		if a^b < 0 {
			return MinFixed
		}
		return MaxFixed
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}
