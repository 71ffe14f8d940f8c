package facepose

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/esimov/facepose/utils"
	pigo "github.com/esimov/pigo/core"
)

// Detector finds the faces of a frame and returns their landmarks.
type Detector interface {
	Detect(img image.Image) ([]Face, error)
}

// LandmarkCascades holds the names of the facial landmark point cascades
// (the file names inside the cascade directory) used for each landmark.
// The cascades localize the left side point, the right side point is
// obtained by running the same cascade on the vertically flipped region.
type LandmarkCascades struct {
	EyeOuter    string
	EyeInner    string
	Eyebrow     string
	Nose        string
	MouthCorner string
	LipUpper    string
	LipLower    string
}

// DetectorConfig holds the options of the pigo based face detector.
type DetectorConfig struct {
	FaceFinder  string // face finder cascade file
	Puploc      string // pupil localization cascade file
	LandmarkDir string // directory holding the landmark point cascades

	MinSize      int
	MaxSize      int // zero means the image's largest side
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	QThreshold   float32
	Perturbs     int
	MaxFaces     int

	// NoseDepth is the depth assigned to the nose, as a fraction of the pupil
	// distance. The cascades only locate points in the image plane, so this is
	// what gives the face plane a tilt when the nose moves relative to the eyes.
	NoseDepth float64

	Cascades LandmarkCascades
}

// DefaultDetectorConfig returns the detector options tuned for webcam frames.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinSize:      60,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		QThreshold:   5.0,
		Perturbs:     63,
		MaxFaces:     1,
		NoseDepth:    0.5,
		Cascades: LandmarkCascades{
			EyeOuter:    "lp46",
			EyeInner:    "lp44",
			Eyebrow:     "lp38",
			Nose:        "lp312",
			MouthCorner: "lp84",
			LipUpper:    "lp93",
			LipLower:    "lp81",
		},
	}
}

// PigoDetector localizes the faces, the pupils and the facial landmark
// points with the pigo cascade classifiers. The faces it returns follow PigoLayout.
type PigoDetector struct {
	cfg        DetectorConfig
	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
	flpcs      map[string][]*pigo.FlpCascade
}

var _ Detector = (*PigoDetector)(nil)

// NewPigoDetector unpacks the cascade files referenced by the configuration.
func NewPigoDetector(cfg DetectorConfig) (*PigoDetector, error) {
	if len(cfg.FaceFinder) == 0 || len(cfg.Puploc) == 0 || len(cfg.LandmarkDir) == 0 {
		return nil, errors.New("the face finder, pupil and landmark cascades are all required")
	}

	ff, err := os.ReadFile(cfg.FaceFinder)
	if err != nil {
		return nil, fmt.Errorf("could not read the face finder cascade: %w", err)
	}
	// Unpack the binary file. This will return the number of cascade trees,
	// the tree depth, the threshold and the prediction from tree's leaf nodes.
	classifier, err := pigo.NewPigo().Unpack(ff)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the face finder cascade: %w", err)
	}

	pl, err := os.ReadFile(cfg.Puploc)
	if err != nil {
		return nil, fmt.Errorf("could not read the pupil cascade: %w", err)
	}
	plc := pigo.NewPuplocCascade()
	puploc, err := plc.UnpackCascade(pl)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the pupil cascade: %w", err)
	}

	flpcs, err := puploc.ReadCascadeDir(cfg.LandmarkDir)
	if err != nil {
		return nil, fmt.Errorf("error reading the landmark cascades: %w", err)
	}

	d := &PigoDetector{
		cfg:        cfg,
		classifier: classifier,
		puploc:     puploc,
		flpcs:      flpcs,
	}
	for _, name := range d.cascadeNames() {
		if !d.hasCascade(name) {
			return nil, fmt.Errorf("landmark cascade %q not found in %s", name, cfg.LandmarkDir)
		}
	}
	return d, nil
}

// Detect runs the face finder over the frame and localizes the landmarks of every
// detection scoring above the quality threshold, best scores first.
func (d *PigoDetector) Detect(img image.Image) ([]Face, error) {
	bounds := img.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	if cols == 0 || rows == 0 {
		return nil, errors.New("empty frame")
	}

	maxSize := d.cfg.MaxSize
	if maxSize <= 0 {
		maxSize = utils.Max(cols, rows)
	}

	imgParams := pigo.ImageParams{
		Pixels: pigo.RgbToGrayscale(img),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	cParams := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: imgParams,
	}

	// Run the classifier over the obtained leaf nodes and return the detection results.
	// The result contains quadruplets representing the row, column, scale and detection score.
	dets := d.classifier.RunCascade(cParams, 0.0)

	// Calculate the intersection over union (IoU) of two clusters.
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)

	faces := make([]Face, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.cfg.QThreshold {
			continue
		}
		if face, ok := d.landmarks(det, imgParams); ok {
			faces = append(faces, face)
		}
		if d.cfg.MaxFaces > 0 && len(faces) == d.cfg.MaxFaces {
			break
		}
	}
	return faces, nil
}

// landmarks builds the face record of a detection. It returns false if one of
// the points required by PigoLayout could not be localized.
func (d *PigoDetector) landmarks(det pigo.Detection, img pigo.ImageParams) (Face, bool) {
	scale := float32(det.Scale)

	leftEye := d.puploc.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.075*scale),
		Col:      det.Col - int(0.175*scale),
		Scale:    scale * 0.25,
		Perturbs: d.cfg.Perturbs,
	}, img, 0.0, false)

	rightEye := d.puploc.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.075*scale),
		Col:      det.Col + int(0.175*scale),
		Scale:    scale * 0.25,
		Perturbs: d.cfg.Perturbs,
	}, img, 0.0, false)

	if leftEye.Row <= 0 || leftEye.Col <= 0 || rightEye.Row <= 0 || rightEye.Col <= 0 {
		return Face{}, false
	}

	var (
		c   = d.cfg.Cascades
		ok  = true
		get = func(name string, flip bool) Point3 {
			p, found := d.point(name, leftEye, rightEye, img, flip)
			ok = ok && found
			return p
		}
	)

	lp := pupilPoint(leftEye)
	rp := pupilPoint(rightEye)
	lOuter, rOuter := get(c.EyeOuter, false), get(c.EyeOuter, true)
	lInner, rInner := get(c.EyeInner, false), get(c.EyeInner, true)
	lBrow, rBrow := get(c.Eyebrow, false), get(c.Eyebrow, true)
	nose := get(c.Nose, false)
	mouthL, mouthR := get(c.MouthCorner, false), get(c.MouthCorner, true)
	lipUp := get(c.LipUpper, false)
	lipLow := get(c.LipLower, false)

	if !ok {
		return Face{}, false
	}
	nose.Z = -d.cfg.NoseDepth * lp.Distance(rp)

	return Face{
		Keypoints: []Point3{
			lp, rp, nose,
			lOuter, rOuter, lInner, rInner,
			lBrow, rBrow,
			mouthL, lipUp, mouthR, lipLow,
		},
		Box:          NewBox(float64(det.Col), float64(det.Row), float64(det.Scale)),
		LeftEye:      NewRegion(lInner, lp, lOuter),
		RightEye:     NewRegion(rInner, rp, rOuter),
		LeftEyebrow:  NewRegion(lBrow),
		RightEyebrow: NewRegion(rBrow),
		Lips:         NewRegion(mouthL, lipUp, mouthR, lipLow),
	}, true
}

// point localizes a single landmark relative to the pupils.
func (d *PigoDetector) point(name string, l, r *pigo.Puploc, img pigo.ImageParams, flip bool) (Point3, bool) {
	flp := d.flpcs[name][0].GetLandmarkPoint(l, r, img, d.cfg.Perturbs, flip)
	if flp == nil || flp.Row <= 0 || flp.Col <= 0 {
		return Point3{}, false
	}
	return Point3{X: float64(flp.Col), Y: float64(flp.Row)}, true
}

func (d *PigoDetector) hasCascade(name string) bool {
	cs, ok := d.flpcs[name]
	return ok && len(cs) > 0 && cs[0].PuplocCascade != nil
}

func (d *PigoDetector) cascadeNames() []string {
	c := d.cfg.Cascades
	return []string{c.EyeOuter, c.EyeInner, c.Eyebrow, c.Nose, c.MouthCorner, c.LipUpper, c.LipLower}
}

func pupilPoint(p *pigo.Puploc) Point3 {
	return Point3{X: float64(p.Col), Y: float64(p.Row)}
}
