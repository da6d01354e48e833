// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"sync"
)

// FeedSource is a live source whose blocks are handed in by the test.
// ReadSamples blocks until a block is fed or the source is closed.
type FeedSource struct {
	rate     int
	channels int

	blocks chan []float32
	done   chan struct{}
	once   sync.Once

	pending []float32
}

func NewFeedSource(rate, channels int) *FeedSource {
	return &FeedSource{
		rate:     rate,
		channels: channels,
		blocks:   make(chan []float32, 16),
		done:     make(chan struct{}),
	}
}

func (f *FeedSource) SampleRate() int { return f.rate }
func (f *FeedSource) Channels() int   { return f.channels }

// Feed queues interleaved samples for the reader.
func (f *FeedSource) Feed(block []float32) {
	select {
	case f.blocks <- block:
	case <-f.done:
	}
}

// Frames queues frames of constant value per channel: channel c gets
// base+c.
func (f *FeedSource) Frames(frames int, base float32) {
	block := make([]float32, frames*f.channels)
	for i := range block {
		block[i] = base + float32(i%f.channels)
	}
	f.Feed(block)
}

func (f *FeedSource) ReadSamples(dst []float32) (int, error) {
	if len(f.pending) == 0 {
		select {
		case b := <-f.blocks:
			f.pending = b
		case <-f.done:
			return 0, io.EOF
		}
	}

	n := copy(dst, f.pending)
	f.pending = f.pending[n:]

	return n, nil
}

func (f *FeedSource) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}
