// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/capture"
	"github.com/ik5/audbridge/sink"
)

var errMissing = errors.New("missing")

// Bridge connects a render callback to a sink. All methods are safe for
// concurrent use; the render callback only ever runs on the pull task.
type Bridge struct {
	id    uuid.UUID
	cfg   Config
	graph *Graph

	ctx    context.Context
	cancel context.CancelFunc

	mtx        sync.Mutex
	state      State
	closed     bool
	configured bool
	capStarted bool

	failed  atomic.Bool
	failMtx sync.Mutex
	failErr error

	sink     sink.Sink
	branches []*branch
	il       *Interleaver
	capture  *capture.Graph
	task     *PullTask
	handler  ErrorHandler
}

// New builds the bridge in the Null state: one branch per output channel,
// the interleaver, and the capture graph when the bridge is live with
// input channels. The topology is validated as a whole before any of it
// is created.
func New(cfg Config, render RenderCallback, s sink.Sink, opts ...Option) (*Bridge, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fail := func(element string, err error) (*Bridge, error) {
		if o.captureSrc != nil {
			o.captureSrc.Close()
		}
		return nil, &ConstructionError{Element: element, Err: err}
	}

	if err := cfg.validate(); err != nil {
		return fail("config", err)
	}

	graph := o.graph
	if graph == nil {
		graph = NewGraph(cfg.OutputChannels, cfg.captures())
	}
	if err := graph.Validate(); err != nil {
		return fail("graph", err)
	}
	if n := len(graph.Branches()); n != cfg.OutputChannels {
		return fail("graph", fmt.Errorf("%w: %d branches for %d output channels",
			ErrInvalidConfig, n, cfg.OutputChannels))
	}

	b := &Bridge{
		id:      uuid.New(),
		cfg:     cfg,
		graph:   graph,
		sink:    s,
		handler: o.handler,
	}
	if b.handler == nil {
		b.handler = LogErrorHandler{}
	}

	// The interleaver takes its inputs in branch order, whatever order
	// the links were declared in.
	linked := make(map[string]bool, len(graph.Links))
	for _, l := range graph.Links {
		linked[l.From] = true
	}
	b.il = newInterleaver(s, cfg.OutputChannels, cfg.FrameCount)
	for i, st := range graph.Branches() {
		br := newBranch(i)
		b.branches = append(b.branches, br)
		if linked[st.Name] {
			b.il.link(br)
		}
	}

	if cfg.captures() && o.captureSrc != nil {
		g, err := capture.New(o.captureSrc, o.captureConfig(cfg))
		if err != nil {
			return fail("capture", err)
		}
		b.capture = g
	}

	b.task = newPullTask(cfg, render, b.il)
	b.task.tap = o.tap
	b.task.onFatal = b.fail
	b.task.onWarn = b.handler.HandleError
	if b.capture != nil {
		b.task.input = b.capture
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())
	log.Debugf("Bridge %s created: %d Hz, %d out, %d in, %s, %d frames",
		b.id, cfg.SampleRate, cfg.OutputChannels, cfg.InputChannels, cfg.Mode(), cfg.FrameCount)

	return b, nil
}

// ID identifies the bridge in logs and host bookkeeping.
func (b *Bridge) ID() uuid.UUID { return b.id }

func (b *Bridge) Mode() Mode { return b.cfg.Mode() }

func (b *Bridge) Config() Config { return b.cfg }

func (b *Bridge) State() State {
	if b.failed.Load() {
		return Error
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.state
}

// Err is the push failure that put the bridge in the Error state.
func (b *Bridge) Err() error {
	b.failMtx.Lock()
	defer b.failMtx.Unlock()

	return b.failErr
}

// Capture is the live capture graph, or nil. Its HandleChannelAdded and
// HandleNoMoreChannels hooks are driven by the graph's own splitter.
func (b *Bridge) Capture() *capture.Graph {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.capture
}

// TaskRunning reports whether the pull task goroutine is active.
func (b *Bridge) TaskRunning() bool { return b.task.Running() }

func (b *Bridge) Branches() []BranchInfo {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	out := make([]BranchInfo, len(b.branches))
	for i, br := range b.branches {
		out[i] = BranchInfo{Index: br.index, Position: br.position, Linked: br.linked()}
	}

	return out
}

// fail runs on the pull task goroutine. It must not take b.mtx: a
// concurrent SetState may hold it while joining the task.
func (b *Bridge) fail(err error) {
	b.failMtx.Lock()
	b.failErr = err
	b.failMtx.Unlock()

	b.failed.Store(true)
	b.handler.HandleError(err)
}

// SetState moves the bridge to target one step at a time. The returned
// StateChangeReturn belongs to the last step taken.
func (b *Bridge) SetState(ctx context.Context, target State) (StateChangeReturn, error) {
	if target < Null || target > Playing {
		return Failure, fmt.Errorf("%w: to %s", ErrInvalidTransition, target)
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.closed {
		return Failure, ErrClosed
	}

	if b.failed.Load() {
		if target != Ready && target != Null {
			return Failure, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, Error, target)
		}
		b.task.Stop()
		b.il.flush()
		b.failed.Store(false)
		log.Infof("Bridge %s leaving error state", b.id)
	}

	ret := Success
	for b.state != target {
		if err := ctx.Err(); err != nil {
			return Failure, err
		}

		next := b.state + 1
		if target < b.state {
			next = b.state - 1
		}

		var err error
		ret, err = b.step(b.state, next)
		if err != nil {
			log.Errorf("Bridge %s: %s to %s: %v", b.id, b.state, next, err)
			return Failure, err
		}

		log.Debugf("Bridge %s: %s to %s (%s)", b.id, b.state, next, ret)
		b.state = next
	}

	return ret, nil
}

func (b *Bridge) step(from, to State) (StateChangeReturn, error) {
	live := b.cfg.Live

	switch {
	case from == Null && to == Ready:
		return Success, b.prepare()

	case from == Ready && to == Paused:
		if live {
			return NoPreroll, nil
		}
		b.task.Start(b.ctx)
		return Success, nil

	case from == Paused && to == Playing:
		if live {
			b.task.Start(b.ctx)
		}
		return Success, nil

	case from == Playing && to == Paused:
		if live {
			b.task.Stop()
		}
		return Success, nil

	case from == Paused && to == Ready:
		b.task.Stop()
		b.il.flush()
		return Success, nil

	case from == Ready && to == Null:
		return Success, b.release()
	}

	return Failure, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}

// prepare checks that every element is present and configures the sink
// and capture graph. Nothing is retried.
func (b *Bridge) prepare() error {
	switch {
	case b.sink == nil:
		return &ConstructionError{Element: "sink", Err: errMissing}
	case b.il == nil:
		return &ConstructionError{Element: "interleaver", Err: errMissing}
	case len(b.branches) != b.cfg.OutputChannels:
		return &ConstructionError{Element: "branches", Err: errMissing}
	case b.cfg.captures() && b.capture == nil:
		return &ConstructionError{Element: "capture", Err: errMissing}
	}

	if !b.configured {
		if err := b.sink.Configure(b.cfg.SampleRate, b.cfg.OutputChannels); err != nil {
			return &ConstructionError{Element: "sink", Err: err}
		}
		b.configured = true
	}

	if b.capture != nil && !b.capStarted {
		if err := b.capture.Start(b.ctx); err != nil {
			return &ConstructionError{Element: "capture", Err: err}
		}
		b.capStarted = true
	}

	return nil
}

// release tears everything down after the task has been joined. A
// released bridge cannot go back to Ready.
func (b *Bridge) release() error {
	b.task.Stop()
	b.il.unlinkAll()

	var errs []error
	if b.capture != nil {
		if err := b.capture.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close capture: %w", err))
		}
		b.capture = nil
		b.task.input = nil
	}
	if b.sink != nil {
		if err := b.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
		b.sink = nil
	}
	b.configured = false

	return errors.Join(errs...)
}

// Start brings the bridge to Playing.
func (b *Bridge) Start(ctx context.Context) error {
	_, err := b.SetState(ctx, Playing)
	return err
}

// Stop brings the bridge back to Ready, joining the pull task. It is a
// no-op on a bridge that is not running.
func (b *Bridge) Stop() error {
	b.mtx.Lock()
	idle := b.closed || b.state <= Ready
	b.mtx.Unlock()

	if idle && !b.failed.Load() {
		return nil
	}

	_, err := b.SetState(context.Background(), Ready)
	return err
}

// Close tears the bridge down to Null and releases the capture graph and
// the sink. Further calls return nil.
func (b *Bridge) Close() error {
	b.mtx.Lock()
	closed := b.closed
	b.mtx.Unlock()
	if closed {
		return nil
	}

	_, err := b.SetState(context.Background(), Null)

	// Elements that were never prepared, or a failed walk down, still
	// need releasing.
	b.mtx.Lock()
	err = errors.Join(err, b.release())
	b.failed.Store(false)
	b.state = Null
	b.closed = true
	b.mtx.Unlock()

	b.cancel()

	return err
}

// Tick runs a single iteration on the calling goroutine. The bridge must
// be at least Ready with the pull task stopped.
func (b *Bridge) Tick(ctx context.Context) error {
	b.mtx.Lock()
	state, closed := b.state, b.closed
	b.mtx.Unlock()

	switch {
	case closed:
		return ErrClosed
	case b.failed.Load():
		return fmt.Errorf("%w: tick in %s", ErrInvalidTransition, Error)
	case state == Null:
		return fmt.Errorf("%w: tick in %s", ErrInvalidTransition, state)
	case b.task.Running():
		return ErrTaskRunning
	}

	return b.task.Tick(ctx)
}

// Latency is the range of delay between rendering a block and it
// reaching the sink.
type Latency struct {
	Live     bool
	Min, Max time.Duration
}

// Latency answers with one block for offline bridges. Live bridges add
// the sink latency and, when capturing, the capture graph latency, which
// is unknown until the graph is Ready.
func (b *Bridge) Latency() (Latency, error) {
	block := time.Duration(b.cfg.FrameCount) * time.Second / time.Duration(b.cfg.SampleRate)
	l := Latency{Live: b.cfg.Live, Min: block, Max: block}
	if !b.cfg.Live {
		return l, nil
	}

	b.mtx.Lock()
	s, g := b.sink, b.capture
	b.mtx.Unlock()

	if s != nil {
		l.Min += s.Latency()
		l.Max += s.Latency()
	}
	if g != nil {
		lo, hi, err := g.Latency()
		if err != nil {
			return Latency{}, err
		}
		l.Min += lo
		l.Max += hi
	}

	return l, nil
}

type Stats struct {
	Ticks       uint64
	Skipped     uint64
	Starvations uint64
	Blocks      uint64
	// CaptureDropped counts captured blocks nobody pulled in time.
	CaptureDropped uint64
	// Outstanding output buffers; zero whenever the task is idle.
	Outstanding int64
}

func (b *Bridge) Stats() Stats {
	st := Stats{
		Ticks:       b.task.ticks.Load(),
		Skipped:     b.task.skipped.Load(),
		Starvations: b.task.starvations.Load(),
		Blocks:      b.il.Blocks(),
		Outstanding: b.task.pool.Outstanding(),
	}

	b.mtx.Lock()
	if b.capture != nil {
		st.CaptureDropped = b.capture.Dropped()
	}
	b.mtx.Unlock()

	return st
}

// BufferPool is where output buffers come from.
func (b *Bridge) BufferPool() *audio.BufferPool { return b.task.pool }
