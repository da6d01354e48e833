// SPDX-License-Identifier: EPL-2.0

package pulse

import (
	"io"
	"sync"
)

// ring holds captured samples between the pulse callback and the reader.
// When full it overwrites the oldest whole frame.
type ring struct {
	mtx  sync.Mutex
	cond *sync.Cond

	channels int
	buf      []float32
	start    int
	size     int
	closed   bool
	dropped  uint64
}

func newRing(frames, channels int) *ring {
	r := &ring{
		channels: channels,
		buf:      make([]float32, frames*channels),
	}
	r.cond = sync.NewCond(&r.mtx)

	return r
}

func (r *ring) write(p []float32) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.closed {
		return
	}

	for _, s := range p {
		if r.size == len(r.buf) {
			r.start = (r.start + r.channels) % len(r.buf)
			r.size -= r.channels
			r.dropped++
		}
		r.buf[(r.start+r.size)%len(r.buf)] = s
		r.size++
	}

	r.cond.Broadcast()
}

// read blocks until there is at least one frame or the ring is closed.
func (r *ring) read(dst []float32) (int, error) {
	want := len(dst) - len(dst)%r.channels
	if want == 0 {
		return 0, nil
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for r.size < r.channels && !r.closed {
		r.cond.Wait()
	}
	if r.size < r.channels {
		return 0, io.EOF
	}

	n := min(want, r.size-r.size%r.channels)
	for i := range n {
		dst[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	r.start = (r.start + n) % len(r.buf)
	r.size -= n

	return n, nil
}

func (r *ring) close() {
	r.mtx.Lock()
	r.closed = true
	r.mtx.Unlock()

	r.cond.Broadcast()
}

// Dropped counts frames overwritten before they were read.
func (r *ring) Dropped() uint64 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.dropped
}
