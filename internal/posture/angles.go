package posture

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/tadasana/internal/detector"
)

// angleToVertical returns the angle in degrees, in [0, 180], between the
// vector from a to b and the upward image direction (0, -1). Only x and y
// participate; depth is ignored. Returns false when the two points coincide
// and no direction exists.
func angleToVertical(a, b detector.Point3D) (float64, bool) {
	dx := b.X - a.X
	dy := b.Y - a.Y

	magnitude := math.Sqrt(dx*dx + dy*dy)
	if magnitude == 0 {
		return 0, false
	}

	// Dot product with (0, -1) reduces to -dy. Clamp before acos to guard
	// against rounding pushing the ratio out of [-1, 1].
	cos := -dy / magnitude
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180 / math.Pi, true
}

// cvaAngle returns the craniovertebral angle in degrees: the angle of the
// neck to mid-ear vector measured from the horizontal axis. The vertical
// component is negated because image Y grows downward.
func cvaAngle(neck, midEar detector.Point3D) float64 {
	rad := math.Atan2(-(midEar.Y - neck.Y), midEar.X-neck.X)
	return math.Abs(rad * 180 / math.Pi)
}

// fixedMeanVisibility averages visibility over all given landmark slots,
// counting an absent landmark as zero visibility. The denominator is always
// the number of slots, so a missing landmark drags the mean down instead of
// being excluded from it.
func fixedMeanVisibility(landmarks ...*detector.Landmark) float64 {
	if len(landmarks) == 0 {
		return 0
	}

	values := make([]float64, len(landmarks))
	for i, lm := range landmarks {
		if lm != nil {
			values[i] = lm.Visibility
		}
	}

	return stat.Mean(values, nil)
}

// presentMeanVisibility averages visibility over only the landmarks actually
// present, dividing by the present count. Returns 0 when none are present.
func presentMeanVisibility(landmarks ...*detector.Landmark) float64 {
	values := make([]float64, 0, len(landmarks))
	for _, lm := range landmarks {
		if lm != nil {
			values = append(values, lm.Visibility)
		}
	}

	if len(values) == 0 {
		return 0
	}

	return stat.Mean(values, nil)
}
