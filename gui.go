package facepose

import (
	"context"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/sirupsen/logrus"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// Default window size, matching the capture size requested from the webcam.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

var defaultBkgColor = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}

// Gui is the overlay window. It receives the frames transferred through the feed
// by the detector goroutine and redraws on every new frame.
type Gui struct {
	cfg struct {
		window struct {
			w     float64
			h     float64
			title string
		}
		color struct {
			background color.NRGBA
		}
	}
	proc struct {
		frame Frame
		ests  []Estimate
		errs  []error
	}
	feed   *Feed
	est    *Estimator
	log    *logrus.Logger
	cursor Cursor
	theme  *material.Theme
	ops    op.Ops
}

// NewGUI initializes the Gio interface.
func NewGUI(w, h int, feed *Feed, est *Estimator, log *logrus.Logger) *Gui {
	gui := &Gui{
		feed:  feed,
		est:   est,
		log:   log,
		theme: material.NewTheme(gofont.Collection()),
	}
	gui.initWindow(w, h)

	return gui
}

// initWindow sets up the window defaults.
func (g *Gui) initWindow(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	g.cfg.window.w, g.cfg.window.h = float64(w), float64(h)
	g.cfg.window.title = "Face pose"
	g.cfg.color.background = defaultBkgColor
}

// Run is the core method of the Gio GUI application. It updates the window
// with the latest frame received from the feed and returns when the window is
// closed. Cancelling the context closes the window.
func (g *Gui) Run(ctx context.Context) error {
	w := app.NewWindow(app.Title(g.cfg.window.title), app.Size(
		unit.Dp(g.cfg.window.w),
		unit.Dp(g.cfg.window.h),
	))

	done := ctx.Done()
	for {
		select {
		case <-done:
			// Wait for the DestroyEvent.
			done = nil
			w.Perform(system.ActionClose)
		case fr := <-g.feed.C():
			g.update(fr)
			w.Invalidate()
		case e := <-w.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				gtx := layout.NewContext(&g.ops, e)
				g.handleInput(w, gtx)
				g.draw(gtx)
				e.Frame(gtx.Ops)
			case system.DestroyEvent:
				return e.Err
			}
		}
	}
}

// update replaces the displayed frame and computes the estimates of its faces.
func (g *Gui) update(fr Frame) {
	if fr.Image == nil && g.proc.frame.Image != nil {
		// Landmark only frames keep the last image.
		fr.Image = g.proc.frame.Image
	}
	g.proc.frame = fr
	g.proc.ests, g.proc.errs = g.est.EstimateAll(fr.Faces)

	for i, err := range g.proc.errs {
		if err != nil {
			g.log.WithFields(logrus.Fields{"frame": fr.Seq, "face": i}).Debug(err)
		}
	}
}

// handleInput processes the key and pointer events collected since the last frame
// and registers the input handlers for the next one.
func (g *Gui) handleInput(w *app.Window, gtx C) {
	for _, ev := range gtx.Events(g) {
		switch e := ev.(type) {
		case key.Event:
			if e.State != key.Press {
				continue
			}
			if e.Name == key.NameEscape {
				w.Perform(system.ActionClose)
				continue
			}
			g.moveCursor(e.Name)
		case pointer.Event:
			if e.Type == pointer.Press {
				g.dumpFaces()
			}
		}
	}

	area := clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops)
	pointer.InputOp{Tag: g, Types: pointer.Press}.Add(gtx.Ops)
	key.InputOp{
		Tag:  g,
		Keys: key.Set(key.NameLeftArrow + "|" + key.NameRightArrow + "|" + key.NameEscape),
	}.Add(gtx.Ops)
	key.FocusOp{Tag: g}.Add(gtx.Ops)
	area.Pop()
}

// moveCursor changes the selected keypoint on arrow key presses and logs
// the index as it is drawn on the first face.
func (g *Gui) moveCursor(name string) {
	switch name {
	case key.NameLeftArrow:
		g.cursor.Prev()
	case key.NameRightArrow:
		g.cursor.Next()
	default:
		return
	}

	entry := g.log.WithField("frame", g.proc.frame.Seq)
	if faces := g.proc.frame.Faces; len(faces) > 0 {
		if idx, ok := g.cursor.Index(len(faces[0].Keypoints)); ok {
			entry.WithField("selIdx", idx).Debug("keypoint selection changed")
			return
		}
	}
	entry.Debug("no keypoint to select")
}

// dumpFaces logs the face records of the displayed frame.
func (g *Gui) dumpFaces() {
	faces := g.proc.frame.Faces
	b, err := json.Marshal(faces)
	if err != nil {
		g.log.WithError(err).Error("could not encode the faces")
		return
	}
	g.log.WithFields(logrus.Fields{
		"frame": g.proc.frame.Seq,
		"faces": len(faces),
	}).Info(string(b))
}

// frameSize returns the size of the displayed frame, which is the
// coordinate space of the landmarks.
func (g *Gui) frameSize() (float64, float64) {
	if img := g.proc.frame.Image; img != nil {
		b := img.Bounds()
		return float64(b.Dx()), float64(b.Dy())
	}
	return g.cfg.window.w, g.cfg.window.h
}
