package facepose

import (
	"errors"
)

// Estimator turns face records into directions and metrics.
// It holds no per frame state, so the same face always gives the same Estimate.
type Estimator struct {
	Layout            Layout
	PitchCompensation float64
}

// Estimate is the per frame result computed for a single face.
type Estimate struct {
	Direction Direction
	Metrics   Metrics

	// DirErr is ErrDegenerateGeometry in case the normal could not be computed.
	DirErr error
	// ScaleErr is ErrDegenerateScale in case the ratio could not be computed.
	ScaleErr error
}

// NewEstimator creates an estimator for face mesh layouts with the default pitch compensation.
func NewEstimator() *Estimator {
	return &Estimator{
		Layout:            MeshLayout,
		PitchCompensation: DefaultPitchCompensation,
	}
}

// Valid reports whether both the direction and the ratio are usable.
func (e Estimate) Valid() bool {
	return e.DirErr == nil && e.ScaleErr == nil
}

// Err returns the first degenerate case recorded in the estimate, if any.
func (e Estimate) Err() error {
	if e.DirErr != nil {
		return e.DirErr
	}
	return e.ScaleErr
}

// Estimate computes the direction and the metrics of a face.
//
// A face missing one of the required regions or keypoints yields an error wrapping
// ErrEmptyRegion or ErrKeypointIndex. Degenerate geometry and scale are not
// returned as error: they are recorded in the Estimate, so the valid parts can still be used.
func (est *Estimator) Estimate(face *Face) (Estimate, error) {
	var res Estimate

	anchors, err := SelectAnchors(face, est.Layout)
	if err != nil {
		return res, err
	}
	res.Direction, res.DirErr = NewDirection(anchors, est.PitchCompensation)

	res.Metrics, err = Measure(face, est.Layout)
	if err != nil {
		if !errors.Is(err, ErrDegenerateScale) {
			return Estimate{}, err
		}
		res.ScaleErr = err
	}
	return res, nil
}

// EstimateAll computes the estimates of every delivered face, in order.
// The returned errors slice is aligned with faces and holds nil for the faces estimated successfully.
func (est *Estimator) EstimateAll(faces []Face) ([]Estimate, []error) {
	res := make([]Estimate, len(faces))
	errs := make([]error, len(faces))

	for i := range faces {
		res[i], errs[i] = est.Estimate(&faces[i])
	}
	return res, errs
}
