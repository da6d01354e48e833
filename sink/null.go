// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ik5/audbridge/internal/pacing"
)

// Null discards everything. With Realtime set it blocks like a device would,
// which is handy for running a live bridge without audio hardware.
type Null struct {
	Realtime bool

	channels int
	pacer    *pacing.Pacer
	frames   atomic.Int64
}

func (n *Null) Configure(rate, channels int) error {
	n.channels = channels
	if n.Realtime {
		n.pacer = pacing.New(rate)
	}
	return nil
}

func (n *Null) Write(ctx context.Context, frames []float32) error {
	if n.channels == 0 {
		return ErrNotConfigured
	}

	count := len(frames) / n.channels
	n.frames.Add(int64(count))

	if n.pacer != nil && !n.pacer.Wait(ctx.Done(), count) {
		return ctx.Err()
	}

	return nil
}

func (n *Null) Close() error           { return nil }
func (n *Null) Latency() time.Duration { return 0 }

// Discarded is the number of frames written.
func (n *Null) Discarded() int64 { return n.frames.Load() }
