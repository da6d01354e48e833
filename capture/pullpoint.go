// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"sync/atomic"

	"github.com/ik5/audbridge/audio"
)

// DefaultQueueDepth is the number of blocks a pull point holds before it
// starts dropping the oldest one.
const DefaultQueueDepth = 4

// PullPoint is the consumer end of one captured channel. The splitter
// offers blocks, the bridge takes them without blocking.
type PullPoint struct {
	pos     audio.ChannelPosition
	queue   chan *audio.Buffer
	dropped atomic.Uint64
}

func newPullPoint(pos audio.ChannelPosition, depth int) *PullPoint {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}

	return &PullPoint{
		pos:   pos,
		queue: make(chan *audio.Buffer, depth),
	}
}

func (p *PullPoint) Position() audio.ChannelPosition { return p.pos }

// Dropped counts blocks discarded because nobody pulled them in time.
func (p *PullPoint) Dropped() uint64 { return p.dropped.Load() }

// Queued is the number of blocks waiting.
func (p *PullPoint) Queued() int { return len(p.queue) }

// Offer queues b, evicting the oldest block when the queue is full.
// Ownership of b moves to the pull point.
func (p *PullPoint) Offer(b *audio.Buffer) {
	for {
		select {
		case p.queue <- b:
			return
		default:
		}

		select {
		case old := <-p.queue:
			old.Release()
			p.dropped.Add(1)
		default:
		}
	}
}

// TryPull returns the oldest queued block, if any.
func (p *PullPoint) TryPull() (*audio.Buffer, bool) {
	select {
	case b := <-p.queue:
		return b, true
	default:
		return nil, false
	}
}

func (p *PullPoint) flush() {
	for {
		b, ok := p.TryPull()
		if !ok {
			return
		}
		b.Release()
	}
}
