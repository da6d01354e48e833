// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"
	"sync/atomic"
)

// Renderer is a deterministic render callback. Each call fills output
// channel c with Fill(c, call), where call counts from zero. A nil Fill
// writes channel index + 1.
type Renderer struct {
	Fill func(channel, call int) float32

	mtx    sync.Mutex
	calls  int
	inputs []int
	frames []int
}

func (r *Renderer) Render(input, output [][]float32, frameCount int) {
	r.mtx.Lock()
	call := r.calls
	r.calls++
	r.inputs = append(r.inputs, len(input))
	r.frames = append(r.frames, frameCount)
	r.mtx.Unlock()

	for c, ch := range output {
		v := float32(c + 1)
		if r.Fill != nil {
			v = r.Fill(c, call)
		}
		for i := range ch {
			ch[i] = v
		}
	}
}

// Calls returns how many times Render ran.
func (r *Renderer) Calls() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.calls
}

// InputCounts returns the number of input channels seen on each call.
func (r *Renderer) InputCounts() []int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]int(nil), r.inputs...)
}

// FrameCounts returns the frameCount argument of each call.
func (r *Renderer) FrameCounts() []int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]int(nil), r.frames...)
}

// BlockingRenderer parks inside Render until Release is called. It is used
// to stop a bridge while a tick is in flight.
type BlockingRenderer struct {
	entered  chan struct{}
	release  chan struct{}
	once     sync.Once
	calls    atomic.Int64
	returned atomic.Int64
}

func NewBlockingRenderer() *BlockingRenderer {
	return &BlockingRenderer{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *BlockingRenderer) Render(_, output [][]float32, _ int) {
	b.calls.Add(1)
	select {
	case b.entered <- struct{}{}:
	default:
	}

	<-b.release

	for _, ch := range output {
		for i := range ch {
			ch[i] = 1
		}
	}
	b.returned.Add(1)
}

// Entered fires once the first call is inside Render.
func (b *BlockingRenderer) Entered() <-chan struct{} { return b.entered }

// Release lets the current and every later call return.
func (b *BlockingRenderer) Release() {
	b.once.Do(func() { close(b.release) })
}

func (b *BlockingRenderer) Calls() int64    { return b.calls.Load() }
func (b *BlockingRenderer) Returned() int64 { return b.returned.Load() }
