// Package capture reads the frames of a video capture device through OpenCV.
// It is kept apart from the facepose package, so the estimator builds without cgo.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/esimov/facepose"
	"gocv.io/x/gocv"
)

// Webcam grabs the frames of a video capture device.
type Webcam struct {
	cam *gocv.VideoCapture
	mat gocv.Mat
}

var _ facepose.FrameSource = (*Webcam)(nil)

// NewWebcam opens the capture device. A positive width and height
// are requested from the device, which is free to ignore them.
func NewWebcam(device, width, height int) (*Webcam, error) {
	cam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("error opening the capture device %d: %w", device, err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return nil, fmt.Errorf("capture device %d is not available", device)
	}
	if width > 0 && height > 0 {
		cam.Set(gocv.VideoCaptureFrameWidth, float64(width))
		cam.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Webcam{
		cam: cam,
		mat: gocv.NewMat(),
	}, nil
}

// Open has the signature of facepose.Ops.Capture.
func Open(device, width, height int) (facepose.FrameSource, error) {
	w, err := NewWebcam(device, width, height)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Next grabs the next frame. It returns io.EOF when the device stops delivering frames.
func (w *Webcam) Next(ctx context.Context) (facepose.Frame, error) {
	if err := ctx.Err(); err != nil {
		return facepose.Frame{}, err
	}
	if ok := w.cam.Read(&w.mat); !ok {
		return facepose.Frame{}, io.EOF
	}
	if w.mat.Empty() {
		return facepose.Frame{}, errors.New("empty frame grabbed from the capture device")
	}
	img, err := w.mat.ToImage()
	if err != nil {
		return facepose.Frame{}, fmt.Errorf("could not convert the captured frame: %w", err)
	}
	return facepose.Frame{Time: time.Now(), Image: img}, nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	if err := w.mat.Close(); err != nil {
		return err
	}
	return w.cam.Close()
}
