// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"github.com/ik5/audbridge/audio"
)

// Handler is told about the channels a splitter finds.
type Handler interface {
	// HandleChannelAdded is called once per channel, in channel order,
	// and returns the pull point for that channel.
	HandleChannelAdded(pos audio.ChannelPosition) *PullPoint
	// HandleNoMoreChannels closes the discovery.
	HandleNoMoreChannels()
	// HandleBlock takes one buffer per channel, in announce order, all
	// cut from the same captured block. They must reach the pull points
	// together so that a reader never sees half a block.
	HandleBlock(bufs []*audio.Buffer)
}

// Splitter turns interleaved blocks into one pooled buffer per channel.
// The channel layout is announced to the handler when the first block
// arrives.
type Splitter struct {
	channels int
	pool     *audio.BufferPool
	handler  Handler

	discovered bool
	bufs       []*audio.Buffer
}

func NewSplitter(channels int, pool *audio.BufferPool, h Handler) *Splitter {
	return &Splitter{
		channels: channels,
		pool:     pool,
		handler:  h,
	}
}

// Discovered reports whether the layout has been announced.
func (s *Splitter) Discovered() bool { return s.discovered }

// Process splits one block of pool.FrameCount() frames.
func (s *Splitter) Process(block []float32) error {
	frames := s.pool.FrameCount()
	if len(block) != frames*s.channels {
		return audio.ErrInvalidDstSize
	}

	if !s.discovered {
		s.discover()
	}

	s.bufs = s.bufs[:0]
	for c := range s.channels {
		buf := s.pool.Get(audio.PositionForIndex(c))
		for f := range frames {
			buf.Samples[f] = block[f*s.channels+c]
		}
		s.bufs = append(s.bufs, buf)
	}
	s.handler.HandleBlock(s.bufs)
	clear(s.bufs)

	return nil
}

func (s *Splitter) discover() {
	for c := range s.channels {
		pos := audio.PositionForIndex(c)
		log.Debugf("Discovered input channel %d (%s)", c, pos)
		s.handler.HandleChannelAdded(pos)
	}
	s.handler.HandleNoMoreChannels()
	s.discovered = true
	s.bufs = make([]*audio.Buffer, 0, s.channels)
}
