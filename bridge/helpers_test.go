// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/sink"
)

type tapEvent struct {
	Branch   int
	Position audio.ChannelPosition
	Len      int
}

type tapRecorder struct {
	mtx    sync.Mutex
	events []tapEvent
}

func (r *tapRecorder) tap(branch int, pos audio.ChannelPosition, samples []float32) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.events = append(r.events, tapEvent{branch, pos, len(samples)})
}

func (r *tapRecorder) Events() []tapEvent {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]tapEvent(nil), r.events...)
}

type errorRecorder struct {
	mtx  sync.Mutex
	errs []error
}

func (r *errorRecorder) HandleError(err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.errs = append(r.errs, err)
}

func (r *errorRecorder) Errors() []error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]error(nil), r.errs...)
}

var errDiskFull = errors.New("disk full")

type failingSink struct {
	sink.Memory
}

func (f *failingSink) Write(context.Context, []float32) error { return errDiskFull }

// blockingSink parks in Write until the context ends.
type blockingSink struct {
	sink.Memory
	entered chan struct{}
}

func (s *blockingSink) Write(ctx context.Context, _ []float32) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func offlineConfig(channels int) Config {
	return Config{SampleRate: 44100, OutputChannels: channels, FrameCount: 128}
}

func newBridge(t *testing.T, cfg Config, render RenderCallback, s sink.Sink, opts ...Option) *Bridge {
	t.Helper()

	b, err := New(cfg, render, s, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return b
}

func setState(t *testing.T, b *Bridge, s State) StateChangeReturn {
	t.Helper()

	ret, err := b.SetState(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, s, b.State())

	return ret
}

const waitFor = 2 * time.Second
