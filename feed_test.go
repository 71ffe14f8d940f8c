package facepose

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeed_LastValueWins(t *testing.T) {
	assert := assert.New(t)

	feed := NewFeed()
	for i := 0; i < 3; i++ {
		feed.Publish(Frame{Faces: make([]Face, i)})
	}
	assert.Equal(uint64(3), feed.Published())
	assert.Equal(uint64(2), feed.Dropped())

	fr := feed.Latest(Frame{})
	assert.Equal(uint64(3), fr.Seq)
	assert.Len(fr.Faces, 2)
	assert.False(fr.Time.IsZero())

	// Nothing pending: the previous frame is reused.
	again := feed.Latest(fr)
	assert.Equal(fr, again)
}

func TestFeed_KeepsTime(t *testing.T) {
	feed := NewFeed()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	feed.Publish(Frame{Time: ts})

	fr := <-feed.C()
	assert.Equal(t, ts, fr.Time)
	assert.Equal(t, uint64(1), fr.Seq)
}

func TestFeed_PublishNeverBlocks(t *testing.T) {
	assert := assert.New(t)

	const (
		publishers = 4
		frames     = 100
	)
	feed := NewFeed()

	var wg sync.WaitGroup
	wg.Add(publishers)
	for i := 0; i < publishers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < frames; j++ {
				feed.Publish(Frame{})
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing blocked without a consumer")
	}

	assert.Equal(uint64(publishers*frames), feed.Published())
	assert.Equal(uint64(publishers*frames-1), feed.Dropped())

	fr := feed.Latest(Frame{})
	assert.NotZero(fr.Seq)
	assert.Equal(Frame{}, feed.Latest(Frame{}))
}

func TestFeed_ConcurrentConsumer(t *testing.T) {
	assert := assert.New(t)

	feed := NewFeed()
	done := make(chan struct{})

	var (
		last     uint64
		received int
	)
	go func() {
		defer close(done)
		for fr := range feed.C() {
			assert.Greater(fr.Seq, last)
			last = fr.Seq
			received++
			if fr.Seq == 500 {
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		feed.Publish(Frame{})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		// The last frame is always delivered.
		t.Fatal("the last published frame was not received")
	}
	assert.Equal(uint64(500), last)
	assert.Equal(uint64(500), uint64(received)+feed.Dropped())
}
