package facepose

import "errors"

var (
	// ErrDegenerateGeometry is returned when the eye and nose anchors are collinear
	// or coincident, so the face plane has no normal.
	ErrDegenerateGeometry = errors.New("degenerate geometry: anchors do not span a plane")

	// ErrDegenerateScale is returned when the eye separation is zero and the
	// lips to eyes ratio has no denominator.
	ErrDegenerateScale = errors.New("degenerate scale: eye separation is zero")

	// ErrEmptyRegion is returned when a region required by the extractor has no keypoints.
	ErrEmptyRegion = errors.New("empty face region")

	// ErrKeypointIndex is returned when a layout index falls outside the keypoint sequence.
	ErrKeypointIndex = errors.New("keypoint index out of range")
)
