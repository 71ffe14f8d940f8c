package facepose

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/esimov/facepose/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// landmarkExtensions are the file types read as landmark streams instead of images.
var landmarkExtensions = []string{".json", ".jsonl", ".ndjson"}

// Ops holds the options of a face pose session.
type Ops struct {
	// Source is an image file or directory, a landmark stream file
	// or PipeName for a landmark stream read from stdin.
	Source   string
	PipeName string
	// Camera is the capture device id. A negative value disables the webcam.
	Camera int
	// Capture opens the capture device. Leaving it nil disables the webcam support.
	Capture func(device, width, height int) (FrameSource, error)

	Detector          DetectorConfig
	PitchCompensation float64 // radians

	Width, Height int
	Mirror        bool
	Headless      bool
	FPS           float64

	Log *logrus.Logger
}

// Execute runs the session until the source is exhausted (headless mode),
// the window is closed or the context is cancelled.
func (op *Ops) Execute(ctx context.Context) error {
	if op.Log == nil {
		op.Log = logrus.StandardLogger()
	}
	if op.Width <= 0 || op.Height <= 0 {
		op.Width, op.Height = DefaultWidth, DefaultHeight
	}

	src, landmarks, err := op.openSource()
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			op.Log.WithError(err).Warn("could not close the source")
		}
	}()

	est := &Estimator{
		Layout:            MeshLayout,
		PitchCompensation: op.PitchCompensation,
	}

	var det Detector
	if !landmarks {
		if det, err = op.loadDetector(); err != nil {
			return err
		}
		est.Layout = PigoLayout
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := NewFeed()
	now := time.Now()

	errc := make(chan error, 1)
	go func() {
		errc <- op.produce(ctx, src, det, feed)
	}()

	if op.Headless {
		err = op.report(ctx, feed, est, errc)
	} else {
		err = NewGUI(op.Width, op.Height, feed, est, op.Log).Run(ctx)
		cancel()
		if perr := <-errc; err == nil {
			err = perr
		}
	}

	elapsed := time.Since(now)
	op.Log.WithFields(logrus.Fields{
		"frames":  feed.Published(),
		"dropped": feed.Dropped(),
		"rate":    utils.FormatRate(feed.Published(), elapsed),
	}).Infof("session finished in %s", utils.FormatTime(elapsed))

	return err
}

// openSource creates the frame source from the options. It reports
// whether the source delivers landmarks instead of images.
func (op *Ops) openSource() (FrameSource, bool, error) {
	switch {
	case op.Camera >= 0:
		if op.Capture == nil {
			return nil, false, errors.New("this build has no capture device support")
		}
		src, err := op.Capture(op.Camera, op.Width, op.Height)
		return src, false, err
	case op.Source == op.PipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, false, errors.New("`-` should be used with a pipe for stdin")
		}
		return NewLandmarkStream(os.Stdin), true, nil
	case isValidExtension(filepath.Ext(op.Source), landmarkExtensions):
		f, err := os.Open(op.Source)
		if err != nil {
			return nil, false, fmt.Errorf("unable to open the landmark file: %w", err)
		}
		return NewLandmarkStream(f), true, nil
	default:
		src, err := NewImageSource(op.Source)
		return src, false, err
	}
}

// loadDetector unpacks the cascade files while showing a progress indicator.
func (op *Ops) loadDetector() (Detector, error) {
	msg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ FACEPOSE", utils.StatusMessage),
		utils.DecorateText("⇢ unpacking the cascade files...", utils.DefaultMessage),
	)
	spinner := utils.NewSpinner(os.Stderr, msg, time.Millisecond*80, true)
	spinner.Start()

	det, err := NewPigoDetector(op.Detector)
	if err != nil {
		spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ FACEPOSE", utils.StatusMessage),
			utils.DecorateText("loading the cascades failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
		spinner.Stop()
		return nil, err
	}
	spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
		utils.DecorateText("⚡ FACEPOSE", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the cascades have been loaded ✔", utils.SuccessMessage),
	)
	spinner.Stop()

	return det, nil
}

// produce reads the frames of the source, runs the detector over them and
// publishes the results until the source is exhausted or the context is cancelled.
func (op *Ops) produce(ctx context.Context, src FrameSource, det Detector, feed *Feed) error {
	var tick <-chan time.Time
	if op.FPS > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / op.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		fr, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if fr.Image != nil {
			fr.Image = op.prepare(fr.Image)
			if det != nil {
				faces, err := det.Detect(fr.Image)
				if err != nil {
					op.Log.WithError(err).Warn("face detection failed")
					continue
				}
				fr.Faces = faces
			}
		}
		feed.Publish(fr)

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

// prepare fits the frame into the window size and mirrors it if requested.
// The detector runs on the prepared frame, so the landmarks share its coordinates.
func (op *Ops) prepare(img image.Image) image.Image {
	var dst *image.NRGBA

	b := img.Bounds()
	if b.Dx() != op.Width || b.Dy() != op.Height {
		dst = imaging.Fit(img, op.Width, op.Height, imaging.Lanczos)
	} else {
		dst = imaging.Clone(img)
	}
	if op.Mirror {
		dst = imaging.FlipH(dst)
	}
	return dst
}

// report logs the estimates of every consumed frame. It returns when the
// producer finished, after the last pending frame was reported.
func (op *Ops) report(ctx context.Context, feed *Feed, est *Estimator, errc <-chan error) error {
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return <-errc
		case fr := <-feed.C():
			op.reportFrame(fr, est)
			last = fr.Seq
		case err := <-errc:
			if fr := feed.Latest(Frame{}); fr.Seq > last {
				op.reportFrame(fr, est)
			}
			return err
		}
	}
}

func (op *Ops) reportFrame(fr Frame, est *Estimator) {
	entry := op.Log.WithField("frame", fr.Seq)
	if len(fr.Faces) == 0 {
		entry.Debug("no face detected")
		return
	}

	ests, errs := est.EstimateAll(fr.Faces)
	for i, e := range ests {
		fields := logrus.Fields{"face": i}
		if errs[i] != nil {
			entry.WithFields(fields).WithError(errs[i]).Warn("face skipped")
			continue
		}
		fields["eyesDist"] = e.Metrics.EyesDistance
		fields["lipsDist"] = e.Metrics.LipsDistance
		if e.DirErr == nil {
			fields["pitch"] = Degrees(e.Direction.Pitch)
			fields["yaw"] = Degrees(e.Direction.Yaw)
			fields["roll"] = Degrees(e.Direction.Roll)
		}
		if e.ScaleErr == nil {
			fields["ratio"] = e.Metrics.Ratio
		}
		if err := e.Err(); err != nil {
			entry.WithFields(fields).WithError(err).Warn("degenerate estimate")
			continue
		}
		entry.WithFields(fields).Info("face pose")
	}
}

