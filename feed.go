package facepose

import (
	"image"
	"sync/atomic"
	"time"
)

// Frame is a single detector result handed over to the render loop.
// Image is nil when the faces come from a landmark stream.
type Frame struct {
	Seq   uint64
	Time  time.Time
	Image image.Image
	Faces []Face
}

// Feed transfers frames from the detector to the render loop.
// Only the latest frame is kept: publishing never blocks and a frame not yet
// consumed is replaced by the newer one.
type Feed struct {
	ch      chan Frame
	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewFeed initializes a new Feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan Frame, 1)}
}

// Publish hands over the frame, discarding the pending one if the consumer was slower.
func (f *Feed) Publish(fr Frame) {
	fr.Seq = f.seq.Add(1)
	if fr.Time.IsZero() {
		fr.Time = time.Now()
	}
	for {
		select {
		case f.ch <- fr:
			return
		default:
			select {
			case <-f.ch:
				f.dropped.Add(1)
			default:
			}
		}
	}
}

// C returns the channel the consumer receives the frames from.
func (f *Feed) C() <-chan Frame {
	return f.ch
}

// Latest returns the pending frame if there is one, otherwise prev.
func (f *Feed) Latest(prev Frame) Frame {
	select {
	case fr := <-f.ch:
		return fr
	default:
		return prev
	}
}

// Published returns the number of frames published so far.
func (f *Feed) Published() uint64 {
	return f.seq.Load()
}

// Dropped returns the number of frames replaced before being consumed.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}
