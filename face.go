package facepose

import (
	"math"

	"github.com/golang/geo/r3"
)

// Point3 is a single facial landmark. Depending on the detector Z is
// a relative depth estimate rather than a metric distance.
type Point3 = r3.Vector

// Box is the axis aligned bounding box of a detected face.
type Box struct {
	XMin   float64 `json:"xMin"`
	XMax   float64 `json:"xMax"`
	YMin   float64 `json:"yMin"`
	YMax   float64 `json:"yMax"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RegionBox is the box enclosing the keypoints of a single region.
type RegionBox struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
}

// Region is a named subset of keypoints (eye, eyebrow, lips) with its own ordering.
type Region struct {
	Keypoints []Point3 `json:"keypoints"`
	RegionBox
}

// Face holds one detected face of the current frame.
type Face struct {
	Keypoints    []Point3 `json:"keypoints"`
	Box          Box      `json:"box"`
	LeftEye      Region   `json:"leftEye"`
	RightEye     Region   `json:"rightEye"`
	LeftEyebrow  Region   `json:"leftEyebrow"`
	RightEyebrow Region   `json:"rightEyebrow"`
	Lips         Region   `json:"lips"`
}

// Layout holds the detector defined keypoint indices the estimator relies on.
// Nose indexes Face.Keypoints, LipUpper and LipLower index Face.Lips.
type Layout struct {
	Nose     int
	LipUpper int
	LipLower int
}

// MeshLayout is the index layout of face mesh detectors (468 keypoints, 40 lip points).
var MeshLayout = Layout{Nose: 2, LipUpper: 36, LipLower: 26}

// PigoLayout is the index layout of the faces produced by PigoDetector.
var PigoLayout = Layout{Nose: 2, LipUpper: 1, LipLower: 3}

// NewRegion creates a region from the provided keypoints and computes its enclosing box.
func NewRegion(pts ...Point3) Region {
	r := Region{Keypoints: pts}
	if len(pts) == 0 {
		return r
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	r.RegionBox = RegionBox{
		X:       minX,
		Y:       minY,
		Width:   maxX - minX,
		Height:  maxY - minY,
		CenterX: (minX + maxX) / 2,
		CenterY: (minY + maxY) / 2,
	}
	return r
}

// NewBox returns the bounding box of a square detection centered at (x, y).
func NewBox(x, y, size float64) Box {
	half := size / 2
	return Box{
		XMin:   x - half,
		XMax:   x + half,
		YMin:   y - half,
		YMax:   y + half,
		Width:  size,
		Height: size,
	}
}
