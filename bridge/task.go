// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audbridge/audio"
)

// inputSource is the part of the capture graph the pull task uses.
type inputSource interface {
	PullChannelBuffers(dst []*audio.Buffer) (int, []*audio.Buffer)
}

type tickResult int

const (
	tickRendered tickResult = iota
	tickSkipped
	tickIdle
)

// PullTask runs the render callback one block at a time on its own
// goroutine and pushes the result into the output branches.
type PullTask struct {
	frameCount int
	inputs     int
	threshold  int
	blockDur   time.Duration

	render  RenderCallback
	input   inputSource
	pool    *audio.BufferPool
	il      *Interleaver
	tap     TapFunc
	onFatal func(error)
	onWarn  func(error)

	inBufs    []*audio.Buffer
	inPlanes  [][]float32
	outBufs   []*audio.Buffer
	outPlanes [][]float32

	starved int

	// tickMtx serialises ticks from the worker and from Tick.
	tickMtx sync.Mutex

	ticks       atomic.Uint64
	skipped     atomic.Uint64
	starvations atomic.Uint64

	mtx        sync.Mutex
	quit       chan struct{}
	terminated chan struct{}
	cancel     context.CancelFunc
}

func newPullTask(cfg Config, render RenderCallback, il *Interleaver) *PullTask {
	outputs := len(il.branches)

	return &PullTask{
		frameCount: cfg.FrameCount,
		inputs:     cfg.InputChannels,
		threshold:  cfg.StarvationThreshold,
		blockDur:   time.Duration(cfg.FrameCount) * time.Second / time.Duration(cfg.SampleRate),
		render:     render,
		pool:       audio.NewBufferPool(cfg.FrameCount),
		il:         il,
		inBufs:     make([]*audio.Buffer, 0, audio.MaxPositionedChannels),
		inPlanes:   make([][]float32, 0, audio.MaxPositionedChannels),
		outBufs:    make([]*audio.Buffer, outputs),
		outPlanes:  make([][]float32, outputs),
	}
}

// Running reports whether the worker goroutine is active.
func (t *PullTask) Running() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.quit != nil
}

// Start launches the worker. Starting a running task does nothing.
func (t *PullTask) Start(ctx context.Context) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.quit != nil {
		return
	}

	ctx, t.cancel = context.WithCancel(ctx)
	t.quit = make(chan struct{})
	t.terminated = make(chan struct{})

	go t.run(ctx, t.quit, t.terminated)
}

// Stop asks the worker to finish and waits for the tick in flight, so no
// push happens once Stop has returned. That includes a tick made through
// Tick. Stopping a stopped task does nothing else.
func (t *PullTask) Stop() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.quit != nil {
		close(t.quit)
		t.cancel()
		<-t.terminated

		t.quit, t.terminated, t.cancel = nil, nil, nil
	}

	t.tickMtx.Lock()
	defer t.tickMtx.Unlock()
}

func (t *PullTask) run(ctx context.Context, quit, terminated chan struct{}) {
	defer close(terminated)
	log.Debugf("Pull task started")

	wait := time.NewTimer(t.blockDur)
	wait.Stop()
	defer wait.Stop()

	for {
		t.tickMtx.Lock()
		select {
		case <-quit:
			t.tickMtx.Unlock()
			log.Debugf("Pull task stopped")
			return
		default:
		}

		res, err := t.tick(ctx)
		t.tickMtx.Unlock()
		if err != nil {
			return
		}

		if res != tickRendered {
			// Nothing flowed; give capture or the host one block of time.
			wait.Reset(t.blockDur)
			select {
			case <-quit:
				log.Debugf("Pull task stopped")
				return
			case <-wait.C:
			}
		}
	}
}

// Tick runs one iteration: pull input, render, push. The worker calls it
// in a loop; it may be called directly while the worker is stopped. Ticks
// never overlap, whoever runs them.
func (t *PullTask) Tick(ctx context.Context) error {
	t.tickMtx.Lock()
	defer t.tickMtx.Unlock()

	_, err := t.tick(ctx)
	return err
}

func (t *PullTask) tick(ctx context.Context) (tickResult, error) {
	if t.render == nil {
		return tickIdle, nil
	}

	var input [][]float32
	if t.input != nil && t.inputs > 0 {
		var n int
		n, t.inBufs = t.input.PullChannelBuffers(t.inBufs)
		if n < t.inputs {
			audio.ReleaseAll(t.inBufs[:n])
			t.starve()
			return tickSkipped, nil
		}

		t.inPlanes = t.inPlanes[:0]
		for _, b := range t.inBufs[:t.inputs] {
			t.inPlanes = append(t.inPlanes, b.Samples)
		}
		input = t.inPlanes
	}

	for i, br := range t.il.branches {
		t.outBufs[i] = t.pool.Get(br.position)
		t.outPlanes[i] = t.outBufs[i].Samples
	}

	t.render.Render(input, t.outPlanes, t.frameCount)

	if input != nil {
		audio.ReleaseAll(t.inBufs)
		clear(t.inBufs)
		clear(t.inPlanes)
	}

	for i, br := range t.il.branches {
		if err := br.push(ctx, t.outBufs[i], t.tap); err != nil {
			audio.ReleaseAll(t.outBufs[i:])
			t.il.flush()
			clear(t.outBufs)

			if !errors.Is(err, ErrFlushing) && t.onFatal != nil {
				t.onFatal(err)
			}
			return tickRendered, err
		}
	}
	clear(t.outBufs)
	clear(t.outPlanes)

	t.starved = 0
	t.ticks.Add(1)

	return tickRendered, nil
}

func (t *PullTask) starve() {
	t.skipped.Add(1)
	t.starved++

	if t.starved == t.threshold {
		t.starvations.Add(1)
		if t.onWarn != nil {
			t.onWarn(&StarvationError{Ticks: t.starved})
		}
	}
}
