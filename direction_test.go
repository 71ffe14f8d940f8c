package facepose

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func TestDirection_Fixture(t *testing.T) {
	assert := assert.New(t)

	a := Anchors{
		EyeL: Point3{X: 0, Y: 0, Z: 0},
		EyeR: Point3{X: 1, Y: 0, Z: 0},
		Nose: Point3{X: 0, Y: 1, Z: 0},
	}
	dir, err := NewDirection(a, 0)
	assert.NoError(err)
	assert.Equal(Point3{X: 0, Y: 0, Z: 1}, dir.Normal)

	// atan2(-0, 1) is -0, which is not below zero.
	assert.InDelta(-math.Pi, dir.Yaw, epsilon)
	assert.InDelta(math.Pi, dir.Pitch, epsilon)
	assert.InDelta(math.Pi, dir.Roll, epsilon)

	dir, err = NewDirection(a, DefaultPitchCompensation)
	assert.NoError(err)
	assert.InDelta(math.Pi-Radians(35), dir.Pitch, epsilon)
	assert.InDelta(145.0, Degrees(dir.Pitch), 1e-6)
}

func TestDirection_Angles(t *testing.T) {
	cases := map[string]struct {
		anchors Anchors
		yaw     float64
		pitch   float64
		roll    float64
	}{
		"tilted": {
			anchors: Anchors{
				EyeL: Point3{X: 0, Y: 0, Z: 0},
				EyeR: Point3{X: 1, Y: 0.1, Z: 0.2},
				Nose: Point3{X: 0.5, Y: 0.6, Z: -0.4},
			},
			// N = (-0.16, 0.5, 0.55)
			yaw:   -math.Pi + math.Atan2(0.16, 0.55),
			pitch: -math.Pi - math.Atan2(-0.5, 0.55),
			roll:  -math.Pi + math.Atan2(0.1, 1),
		},
		"facing away": {
			anchors: Anchors{
				EyeL: Point3{X: 0, Y: 0, Z: 0},
				EyeR: Point3{X: 1, Y: -0.2, Z: 0},
				Nose: Point3{X: 0.5, Y: 0.5, Z: 0.5},
			},
			// N = (-0.1, -0.5, 0.6)
			yaw:   -math.Pi + math.Atan2(0.1, 0.6),
			pitch: math.Pi - math.Atan2(0.5, 0.6),
			roll:  math.Pi + math.Atan2(-0.2, 1),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir, err := NewDirection(tc.anchors, 0)
			assert.NoError(t, err)
			assert.InDelta(t, tc.yaw, dir.Yaw, epsilon)
			assert.InDelta(t, tc.pitch, dir.Pitch, epsilon)
			assert.InDelta(t, tc.roll, dir.Roll, epsilon)
		})
	}
}

func TestDirection_UnitNormal(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	pt := func() Point3 {
		return Point3{
			X: rnd.Float64()*640 - 320,
			Y: rnd.Float64()*480 - 240,
			Z: rnd.Float64()*100 - 50,
		}
	}

	for i := 0; i < 1000; i++ {
		a := Anchors{EyeL: pt(), EyeR: pt(), Nose: pt()}
		dir, err := NewDirection(a, DefaultPitchCompensation)
		if err != nil {
			assert.ErrorIs(t, err, ErrDegenerateGeometry)
			continue
		}
		assert.InDelta(t, 1.0, dir.Normal.Norm(), 1e-9)
		assert.True(t, dir.Yaw >= -math.Pi && dir.Yaw <= math.Pi)
		assert.True(t, dir.Roll >= -math.Pi && dir.Roll <= math.Pi)
	}
}

func TestDirection_Continuity(t *testing.T) {
	assert := assert.New(t)

	base := Anchors{
		EyeL: Point3{X: 0, Y: 0, Z: 0},
		EyeR: Point3{X: 1, Y: 0.1, Z: 0.2},
		Nose: Point3{X: 0.5, Y: 0.6, Z: -0.4},
	}
	ref, err := NewDirection(base, 0)
	assert.NoError(err)

	const delta = 1e-7
	shifts := []Point3{
		{X: delta}, {Y: delta}, {Z: delta},
		{X: -delta}, {Y: -delta}, {Z: -delta},
	}
	for _, s := range shifts {
		moved := base
		moved.Nose = moved.Nose.Add(s)
		moved.EyeR = moved.EyeR.Add(s)

		dir, err := NewDirection(moved, 0)
		assert.NoError(err)
		assert.InDelta(ref.Yaw, dir.Yaw, 1e-4)
		assert.InDelta(ref.Pitch, dir.Pitch, 1e-4)
		assert.InDelta(ref.Roll, dir.Roll, 1e-4)
	}
}

func TestDirection_Degenerate(t *testing.T) {
	cases := map[string]Anchors{
		"coincident": {
			EyeL: Point3{X: 3, Y: 3, Z: 3},
			EyeR: Point3{X: 3, Y: 3, Z: 3},
			Nose: Point3{X: 3, Y: 3, Z: 3},
		},
		"collinear": {
			EyeL: Point3{X: 0, Y: 0, Z: 0},
			EyeR: Point3{X: 1, Y: 1, Z: 1},
			Nose: Point3{X: 2, Y: 2, Z: 2},
		},
		"not finite": {
			EyeL: Point3{X: 0, Y: 0, Z: 0},
			EyeR: Point3{X: 1, Y: 0, Z: 0},
			Nose: Point3{X: math.NaN(), Y: 1, Z: 0},
		},
	}

	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			dir, err := NewDirection(a, DefaultPitchCompensation)
			assert.ErrorIs(t, err, ErrDegenerateGeometry)
			assert.Equal(t, Direction{}, dir)
		})
	}
}

func TestDirection_Conversion(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(math.Pi, Radians(180), epsilon)
	assert.InDelta(-90.0, Degrees(-math.Pi/2), epsilon)
	assert.InDelta(-35.0, Degrees(DefaultPitchCompensation), epsilon)
}
