package facepose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newMeshFace builds a face following MeshLayout with the provided anchors and lip points.
func newMeshFace(eyeL, eyeR, nose, upper, lower Point3) Face {
	lips := make([]Point3, 40)
	for i := range lips {
		lips[i] = Point3{X: float64(i), Y: 50}
	}
	lips[MeshLayout.LipUpper] = upper
	lips[MeshLayout.LipLower] = lower

	return Face{
		Keypoints:    []Point3{{X: 10, Y: 10}, {X: 11, Y: 11}, nose, {X: 12, Y: 12}},
		Box:          NewBox(50, 50, 100),
		LeftEye:      NewRegion(Point3{X: -5, Y: 1}, eyeL),
		RightEye:     NewRegion(Point3{X: 5, Y: 1}, eyeR),
		LeftEyebrow:  NewRegion(Point3{X: -5, Y: -5}, Point3{X: -1, Y: -6}),
		RightEyebrow: NewRegion(Point3{X: 1, Y: -6}, Point3{X: 5, Y: -5}),
		Lips:         NewRegion(lips...),
	}
}

// fixtureFace is the face whose anchors span the z = 0 plane.
func fixtureFace() Face {
	return newMeshFace(
		Point3{X: 0, Y: 0, Z: 0},
		Point3{X: 1, Y: 0, Z: 0},
		Point3{X: 0, Y: 1, Z: 0},
		Point3{X: 0, Y: 0, Z: 0},
		Point3{X: 0, Y: 0.5, Z: 0},
	)
}

func TestFace_NewRegion(t *testing.T) {
	assert := assert.New(t)

	r := NewRegion(
		Point3{X: 2, Y: 4},
		Point3{X: 6, Y: 1},
		Point3{X: 4, Y: 9},
	)
	assert.Len(r.Keypoints, 3)
	assert.Equal(RegionBox{
		X:       2,
		Y:       1,
		Width:   4,
		Height:  8,
		CenterX: 4,
		CenterY: 5,
	}, r.RegionBox)

	empty := NewRegion()
	assert.Empty(empty.Keypoints)
	assert.Equal(RegionBox{}, empty.RegionBox)
}

func TestFace_NewBox(t *testing.T) {
	b := NewBox(100, 50, 40)
	assert.Equal(t, Box{XMin: 80, XMax: 120, YMin: 30, YMax: 70, Width: 40, Height: 40}, b)
}

func TestFace_DecodeRecord(t *testing.T) {
	assert := assert.New(t)

	data := `{
		"keypoints": [{"x": 1, "y": 2, "z": -3}],
		"box": {"xMin": 1, "xMax": 3, "yMin": 2, "yMax": 6, "width": 2, "height": 4},
		"lips": {"keypoints": [{"x": 4, "y": 5, "z": 0}], "centerX": 4, "centerY": 5, "width": 0, "height": 0}
	}`
	var face Face
	err := json.Unmarshal([]byte(data), &face)
	assert.NoError(err)
	assert.Equal([]Point3{{X: 1, Y: 2, Z: -3}}, face.Keypoints)
	assert.Equal(3.0, face.Box.XMax)
	assert.Equal(4.0, face.Box.Height)
	assert.Equal(4.0, face.Lips.CenterX)
	assert.Empty(face.LeftEye.Keypoints)
}
