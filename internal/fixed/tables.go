package fixed

import "math"

var (
	// FineSine covers five quarter circles so FineCosine can alias it.
	FineSine [5 * FineAngles / 4]Fixed
	// FineCosine is FineSine shifted by a quarter turn.
	FineCosine []Fixed
	// FineTangent spans (-90, 90) degrees.
	FineTangent [FineAngles / 2]Fixed
	// TanToAngle maps SlopeDiv results in [0, 1] to [0, 45] degrees.
	TanToAngle [SlopeRange + 1]Angle
)

func init() {
	unit := float64(FracUnit)
	for i := range FineSine {
		a := (float64(i) + 0.5) * 2 * math.Pi / FineAngles
		FineSine[i] = Fixed(math.Floor(math.Sin(a) * unit))
	}
	FineCosine = FineSine[FineAngles/4:]

	for i := range FineTangent {
		a := (float64(i-FineAngles/4) + 0.5) * 2 * math.Pi / FineAngles
		t := math.Tan(a) * unit
		switch {
		case t > math.MaxInt32:
			t = math.MaxInt32
		case t < math.MinInt32:
			t = math.MinInt32
		}
		FineTangent[i] = Fixed(t)
	}

	for i := range TanToAngle {
		a := math.Atan(float64(i)/SlopeRange) / (2 * math.Pi) * 4294967296.0
		TanToAngle[i] = Angle(uint32(math.Round(a)))
	}
}
