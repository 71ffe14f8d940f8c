package facepose

import (
	"fmt"
	"math"
)

// Metrics holds the face distances measured on a single frame.
type Metrics struct {
	EyesDistance float64
	LipsDistance float64
	// Ratio is LipsDistance / EyesDistance. It is zero and meaningless
	// when the measurement returned ErrDegenerateScale.
	Ratio float64
}

// EyesDistance returns the 3D euclidean distance between the two eye points, depth included.
func EyesDistance(eyeL, eyeR Point3) float64 {
	return eyeL.Distance(eyeR)
}

// LipsDistance returns the distance between the upper and lower lip measured
// in the image plane. The depth component is ignored.
func LipsDistance(upper, lower Point3) float64 {
	return math.Hypot(upper.X-lower.X, upper.Y-lower.Y)
}

// Ratio returns the lips distance normalized by the eyes distance.
// A zero (or non finite) eyes distance yields ErrDegenerateScale.
func Ratio(lipsDist, eyesDist float64) (float64, error) {
	if eyesDist == 0 || math.IsNaN(eyesDist) || math.IsInf(eyesDist, 0) {
		return 0, ErrDegenerateScale
	}
	return lipsDist / eyesDist, nil
}

// Measure computes the face metrics. The returned error wraps ErrEmptyRegion or
// ErrKeypointIndex if the face misses a required point, in which case the metrics are
// not usable. ErrDegenerateScale leaves the distances valid and only the ratio unset.
func Measure(face *Face, l Layout) (Metrics, error) {
	left, err := SelectEyeEnds(face.LeftEye)
	if err != nil {
		return Metrics{}, fmt.Errorf("left eye: %w", err)
	}
	right, err := SelectEyeEnds(face.RightEye)
	if err != nil {
		return Metrics{}, fmt.Errorf("right eye: %w", err)
	}
	gap, err := SelectLipGap(face, l)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		EyesDistance: EyesDistance(left.Last, right.Last),
		LipsDistance: LipsDistance(gap.Upper, gap.Lower),
	}
	m.Ratio, err = Ratio(m.LipsDistance, m.EyesDistance)

	return m, err
}
