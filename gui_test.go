package facepose

import (
	"image"
	"testing"

	"gioui.org/io/key"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func newTestGUI() (*Gui, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewGUI(0, 0, NewFeed(), NewEstimator(), logger), hook
}

func TestGui_Update(t *testing.T) {
	assert := assert.New(t)

	g, hook := newTestGUI()
	assert.Equal(float64(DefaultWidth), g.cfg.window.w)

	w, h := g.frameSize()
	assert.Equal(float64(DefaultWidth), w)
	assert.Equal(float64(DefaultHeight), h)

	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	g.update(Frame{Seq: 1, Image: img, Faces: []Face{fixtureFace()}})
	assert.Len(g.proc.ests, 1)
	assert.NoError(g.proc.errs[0])

	w, h = g.frameSize()
	assert.Equal(32.0, w)
	assert.Equal(24.0, h)

	// Landmark only frames keep the last image.
	broken := fixtureFace()
	broken.LeftEye = Region{}
	g.update(Frame{Seq: 2, Faces: []Face{broken}})
	assert.Equal(uint64(2), g.proc.frame.Seq)
	assert.Same(img, g.proc.frame.Image)
	assert.ErrorIs(g.proc.errs[0], ErrEmptyRegion)

	entry := hook.LastEntry()
	assert.Equal(logrus.DebugLevel, entry.Level)
	assert.Equal(uint64(2), entry.Data["frame"])
	assert.Equal(0, entry.Data["face"])

	// A new image replaces the kept one.
	next := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	g.update(Frame{Seq: 3, Image: next})
	assert.Same(next, g.proc.frame.Image)
	assert.Empty(g.proc.ests)
}

func TestGui_MoveCursor(t *testing.T) {
	assert := assert.New(t)

	g, hook := newTestGUI()
	g.moveCursor(key.NameRightArrow)
	assert.Equal("no keypoint to select", hook.LastEntry().Message)

	g.update(Frame{Seq: 1, Faces: []Face{fixtureFace()}})
	n := len(fixtureFace().Keypoints)
	for i := 0; i < n+3; i++ {
		g.moveCursor(key.NameRightArrow)
	}
	entry := hook.LastEntry()
	assert.Equal("keypoint selection changed", entry.Message)
	assert.Equal(n-1, entry.Data["selIdx"])

	g.moveCursor(key.NameLeftArrow)
	assert.Equal(n-2, hook.LastEntry().Data["selIdx"])

	// Other keys leave the cursor alone.
	hook.Reset()
	g.moveCursor(key.NameEscape)
	assert.Empty(hook.AllEntries())
}

func TestGui_DumpFaces(t *testing.T) {
	assert := assert.New(t)

	g, hook := newTestGUI()
	faces := []Face{fixtureFace()}
	g.update(Frame{Seq: 7, Faces: faces})
	g.dumpFaces()

	entry := hook.LastEntry()
	assert.Equal(logrus.InfoLevel, entry.Level)
	assert.Equal(uint64(7), entry.Data["frame"])
	assert.Equal(1, entry.Data["faces"])

	var decoded []Face
	assert.NoError(json.Unmarshal([]byte(entry.Message), &decoded))
	assert.Equal(faces, decoded)

	// An empty frame dumps an empty record.
	g.update(Frame{Seq: 8})
	g.dumpFaces()
	assert.Equal("null", hook.LastEntry().Message)
	assert.Equal(0, hook.LastEntry().Data["faces"])
}
