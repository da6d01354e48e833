// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"sync"
	"time"
)

// Memory keeps every block it receives.
type Memory struct {
	mtx      sync.Mutex
	rate     int
	channels int
	frames   []float32
	blocks   int
	closed   bool
}

func (m *Memory) Configure(rate, channels int) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.rate, m.channels = rate, channels
	return nil
}

func (m *Memory) Write(ctx context.Context, frames []float32) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	switch {
	case m.closed:
		return ErrClosed
	case m.channels == 0:
		return ErrNotConfigured
	case len(frames)%m.channels != 0:
		return ErrBadBlock
	}

	m.frames = append(m.frames, frames...)
	m.blocks++

	return nil
}

func (m *Memory) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.closed = true
	return nil
}

func (m *Memory) Latency() time.Duration { return 0 }

// Format returns the configured rate and channel count.
func (m *Memory) Format() (rate, channels int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.rate, m.channels
}

// Frames returns a copy of everything written so far.
func (m *Memory) Frames() []float32 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return append([]float32(nil), m.frames...)
}

// Channel extracts one channel from the recorded frames.
func (m *Memory) Channel(c int) []float32 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.channels == 0 || c < 0 || c >= m.channels {
		return nil
	}

	out := make([]float32, 0, len(m.frames)/m.channels)
	for i := c; i < len(m.frames); i += m.channels {
		out = append(out, m.frames[i])
	}

	return out
}

// Blocks is the number of Write calls accepted.
func (m *Memory) Blocks() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.blocks
}

func (m *Memory) Closed() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.closed
}
