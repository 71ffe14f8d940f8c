package facepose

import (
	"fmt"
	"image/color"
	"math"

	"github.com/esimov/facepose/utils"
	"github.com/golang/geo/r2"
)

// Overlay sizes, in frame pixels.
const (
	normalLength    = 100.0
	endDiameter     = 10.0
	milestoneDiam   = 2.0
	selectedDiam    = 5.0
	labelSize       = 8.0
	readoutSize     = 12.0
	readoutX        = 16.0
	readoutLeading  = 16.0
	indicatorSide   = 300.0
	indicatorWeight = 50.0
)

// Colors used by the overlay.
var (
	ColorGreen = color.NRGBA{G: 0xff, A: 0xff}
	ColorRed   = color.NRGBA{R: 0xff, A: 0xff}
	ColorBlue  = color.NRGBA{B: 0xff, A: 0xff}
	ColorCyan  = color.NRGBA{G: 0xff, B: 0xff, A: 0xff}
	ColorWhite = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorBlack = color.NRGBA{A: 0xff}
)

// Segment is a stroked line.
type Segment struct {
	From, To r2.Point
	Color    color.NRGBA
}

// Rect is an axis aligned rectangle, stroked or filled.
type Rect struct {
	Min, Max r2.Point
	Color    color.NRGBA
	Fill     bool
}

// Marker is a filled circle.
type Marker struct {
	Center   r2.Point
	Diameter float64
	Color    color.NRGBA
}

// Text is a single line of text, Pos being the baseline origin.
type Text struct {
	Pos   r2.Point
	Size  float64
	Color color.NRGBA
	Value string
}

// Scene holds everything drawn over a frame. It has no dependency on the
// rendering backend, the Gui translates it to paint operations.
type Scene struct {
	Width, Height float64

	Segments []Segment
	Rects    []Rect
	Markers  []Marker
	Texts    []Text
	// Indicator holds the outer and the inner square of the mouth opening indicator.
	Indicator []Rect
}

// NewScene builds the overlay of the faces of a frame. ests and errs are the
// results of Estimator.EstimateAll over the same faces. The cursor is clamped
// to the keypoint count of each face.
func NewScene(width, height float64, faces []Face, ests []Estimate, errs []error, cur *Cursor) Scene {
	sc := Scene{Width: width, Height: height}

	for i := range faces {
		face := &faces[i]
		var (
			est Estimate
			err error
		)
		if i < len(ests) {
			est = ests[i]
		}
		if i < len(errs) {
			err = errs[i]
		}
		valid := err == nil

		if valid && est.DirErr == nil {
			center := r2.Point{X: width * 0.5, Y: height * 0.5}
			sc.Segments = append(sc.Segments, Segment{
				From:  center,
				To:    center.Add(r2.Point{X: est.Direction.Normal.X, Y: est.Direction.Normal.Y}.Mul(normalLength)),
				Color: ColorGreen,
			})
		}
		sc.Rects = append(sc.Rects, Rect{
			Min:   r2.Point{X: face.Box.XMin, Y: face.Box.YMin},
			Max:   r2.Point{X: face.Box.XMax, Y: face.Box.YMax},
			Color: ColorGreen,
		})
		for _, r := range []Region{face.LeftEye, face.RightEye, face.LeftEyebrow, face.RightEyebrow} {
			sc.addRegionEnds(r)
		}
		sc.addMilestones(face.Lips)
		if len(face.Lips.Keypoints) > 0 {
			sc.Rects = append(sc.Rects, centeredRect(
				face.Lips.CenterX, face.Lips.CenterY,
				face.Lips.Width, face.Lips.Height,
				ColorGreen, false,
			))
		}

		sc.addReadout(i, est, valid)

		if idx, ok := cur.Index(len(face.Keypoints)); ok {
			kp := face.Keypoints[idx]
			sc.Markers = append(sc.Markers, Marker{
				Center:   r2.Point{X: kp.X, Y: kp.Y},
				Diameter: selectedDiam,
				Color:    ColorCyan,
			})
		}

		if valid && est.ScaleErr == nil && sc.Indicator == nil {
			sc.Indicator = Indicator(width, height, est.Metrics.Ratio)
		}
	}
	return sc
}

// Indicator returns the squares of the mouth opening indicator placed in the
// bottom right corner. The inner square shrinks while the ratio grows.
func Indicator(width, height, ratio float64) []Rect {
	cx, cy := width-indicatorSide/2, height-indicatorSide/2
	inner := utils.Clamp(indicatorSide-indicatorWeight*ratio, 0, indicatorSide)

	return []Rect{
		centeredRect(cx, cy, indicatorSide, indicatorSide, ColorGreen, true),
		centeredRect(cx, cy, inner, inner, ColorWhite, true),
	}
}

// Readout returns the text lines describing an estimate.
func Readout(est Estimate, valid bool) []string {
	na := "n/a"
	f := func(v float64) string { return fmt.Sprintf("%.2f", v) }

	eyes, lips, ratio := na, na, na
	pitch, yaw, roll := na, na, na
	if valid {
		eyes, lips = f(est.Metrics.EyesDistance), f(est.Metrics.LipsDistance)
		if est.ScaleErr == nil {
			ratio = f(est.Metrics.Ratio)
		}
		if est.DirErr == nil {
			pitch = f(Degrees(est.Direction.Pitch))
			yaw = f(Degrees(est.Direction.Yaw))
			roll = f(Degrees(est.Direction.Roll))
		}
	}
	return []string{
		"eyesDist: " + eyes,
		"pitch: " + pitch,
		"yaw: " + yaw,
		"roll: " + roll,
		"lipsDist: " + lips,
		"lipsDist / eyesDist: " + ratio,
	}
}

func (sc *Scene) addReadout(face int, est Estimate, valid bool) {
	lines := Readout(est, valid)
	top := float64(face*len(lines)) * readoutLeading

	for i, line := range lines {
		col := ColorBlack
		if i == len(lines)-1 {
			col = ColorCyan
		}
		sc.Texts = append(sc.Texts, Text{
			Pos:   r2.Point{X: readoutX, Y: top + float64(i+1)*readoutLeading},
			Size:  readoutSize,
			Color: col,
			Value: line,
		})
	}
}

// addRegionEnds marks the first point of a region in red and the last one in blue.
func (sc *Scene) addRegionEnds(r Region) {
	ends, err := SelectEyeEnds(r)
	if err != nil {
		return
	}
	sc.Markers = append(sc.Markers,
		Marker{Center: r2.Point{X: ends.First.X, Y: ends.First.Y}, Diameter: endDiameter, Color: ColorRed},
		Marker{Center: r2.Point{X: ends.Last.X, Y: ends.Last.Y}, Diameter: endDiameter, Color: ColorBlue},
	)
}

// addMilestones marks every point of a region with its index,
// the color fading from blue to red along the region.
func (sc *Scene) addMilestones(r Region) {
	n := len(r.Keypoints)
	for i, kp := range r.Keypoints {
		var t float64
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		sc.Markers = append(sc.Markers, Marker{
			Center:   r2.Point{X: kp.X, Y: kp.Y},
			Diameter: milestoneDiam,
			Color: color.NRGBA{
				R: uint8(math.Round(t * 0xff)),
				B: uint8(math.Round((1 - t) * 0xff)),
				A: 0xff,
			},
		})
		sc.Texts = append(sc.Texts, Text{
			Pos:   r2.Point{X: kp.X, Y: kp.Y},
			Size:  labelSize,
			Color: ColorWhite,
			Value: fmt.Sprint(i),
		})
	}
}

func centeredRect(cx, cy, w, h float64, col color.NRGBA, fill bool) Rect {
	return Rect{
		Min:   r2.Point{X: cx - w/2, Y: cy - h/2},
		Max:   r2.Point{X: cx + w/2, Y: cy + h/2},
		Color: col,
		Fill:  fill,
	}
}
