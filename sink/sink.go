// SPDX-License-Identifier: EPL-2.0

// Package sink defines where the multiplexed output of a bridge goes.
//
// A Sink receives frame-major float32 blocks from a single writer. Write
// may block; that is how real-time sinks pace the producer. A sink must
// not retain the frames slice after Write returns.
package sink

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotConfigured = errors.New("sink not configured")
	ErrClosed        = errors.New("sink closed")
	ErrBadBlock      = errors.New("block is not a whole number of frames")
)

type Sink interface {
	// Configure fixes the stream format. It is called once, before the
	// first Write.
	Configure(rate, channels int) error
	// Write hands over one interleaved block.
	Write(ctx context.Context, frames []float32) error
	Close() error
	// Latency is the delay between Write and the samples being heard or
	// stored.
	Latency() time.Duration
}

// Options carries the settings a registered sink type may need.
type Options struct {
	BitDepth int
	Latency  time.Duration
}
