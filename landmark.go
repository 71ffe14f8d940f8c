package facepose

import "fmt"

// Anchors are the three points spanning the face plane.
type Anchors struct {
	EyeL Point3
	EyeR Point3
	Nose Point3
}

// LipGap holds the upper and lower lip points used for measuring the mouth opening.
type LipGap struct {
	Upper Point3
	Lower Point3
}

// EyeEnds holds the first and last keypoint of a region.
type EyeEnds struct {
	First Point3
	Last  Point3
}

// SelectAnchors picks the last point of both eye regions and the nose keypoint.
func SelectAnchors(face *Face, l Layout) (Anchors, error) {
	left, err := SelectEyeEnds(face.LeftEye)
	if err != nil {
		return Anchors{}, fmt.Errorf("left eye: %w", err)
	}
	right, err := SelectEyeEnds(face.RightEye)
	if err != nil {
		return Anchors{}, fmt.Errorf("right eye: %w", err)
	}
	nose, err := keypointAt(face.Keypoints, l.Nose)
	if err != nil {
		return Anchors{}, fmt.Errorf("nose: %w", err)
	}

	return Anchors{
		EyeL: left.Last,
		EyeR: right.Last,
		Nose: nose,
	}, nil
}

// SelectLipGap picks the upper and lower lip points of the lips region.
func SelectLipGap(face *Face, l Layout) (LipGap, error) {
	upper, err := keypointAt(face.Lips.Keypoints, l.LipUpper)
	if err != nil {
		return LipGap{}, fmt.Errorf("upper lip: %w", err)
	}
	lower, err := keypointAt(face.Lips.Keypoints, l.LipLower)
	if err != nil {
		return LipGap{}, fmt.Errorf("lower lip: %w", err)
	}
	return LipGap{Upper: upper, Lower: lower}, nil
}

// SelectEyeEnds returns the first and the last point of a region.
func SelectEyeEnds(r Region) (EyeEnds, error) {
	n := len(r.Keypoints)
	if n == 0 {
		return EyeEnds{}, ErrEmptyRegion
	}
	return EyeEnds{
		First: r.Keypoints[0],
		Last:  r.Keypoints[n-1],
	}, nil
}

func keypointAt(pts []Point3, idx int) (Point3, error) {
	if idx < 0 || idx >= len(pts) {
		return Point3{}, fmt.Errorf("%w: index %d, have %d keypoints", ErrKeypointIndex, idx, len(pts))
	}
	return pts[idx], nil
}
