package facepose

import "math"

// DefaultPitchCompensationDegrees corrects the pitch for a camera looking slightly
// down at a seated face. It is an empirical value and may need recalibration
// for a different camera placement.
const DefaultPitchCompensationDegrees = -35.0

// DefaultPitchCompensation is DefaultPitchCompensationDegrees expressed in radians.
var DefaultPitchCompensation = Radians(DefaultPitchCompensationDegrees)

// Direction is the facing direction of a face: the unit normal of the plane
// spanned by the eye and nose anchors and its decomposition in angles (radians).
type Direction struct {
	Normal Point3
	Yaw    float64
	Pitch  float64
	Roll   float64
}

// NewDirection computes the face direction from the anchors.
// pitchComp is added to the pitch after the wrap around.
//
// The anchors must span a plane: in case they are collinear or coincident
// the zero Direction and ErrDegenerateGeometry is returned.
func NewDirection(a Anchors, pitchComp float64) (Direction, error) {
	ab := a.EyeR.Sub(a.EyeL)
	ac := a.Nose.Sub(a.EyeL)
	n := ab.Cross(ac)

	mag := n.Norm()
	if mag == 0 || math.IsNaN(mag) || math.IsInf(mag, 0) {
		return Direction{}, ErrDegenerateGeometry
	}
	unit := Point3{
		X: n.X / mag,
		Y: n.Y / mag,
		Z: n.Z / mag,
	}

	return Direction{
		Normal: unit,
		Yaw:    yaw(unit),
		Pitch:  pitch(unit) + pitchComp,
		Roll:   roll(ab),
	}, nil
}

// yaw is the left-right turn, reading close to zero when facing the camera.
func yaw(n Point3) float64 {
	raw := math.Atan2(-n.X, n.Z)
	if raw < 0 {
		return math.Pi + raw
	}
	return -math.Pi + raw
}

// pitch is the up-down tilt, without the camera angle compensation.
func pitch(n Point3) float64 {
	raw := math.Atan2(-n.Y, n.Z)
	if raw < 0 {
		return -math.Pi - raw
	}
	return math.Pi - raw
}

// roll is the head tilt, computed from the eye line alone.
func roll(ab Point3) float64 {
	raw := math.Atan2(ab.Y, ab.X)
	if -raw < 0 {
		return -math.Pi + raw
	}
	return math.Pi + raw
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * (180 / math.Pi)
}
