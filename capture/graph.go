// SPDX-License-Identifier: EPL-2.0

// Package capture feeds live input into a bridge.
//
// A Graph reads a hardware source on its own goroutine, converts it to the
// bridge rate and channel count, and splits it into one queue per channel.
// Channels are discovered from the first block, so the graph starts out
// Building and becomes Ready once the splitter has announced every
// channel. The bridge pulls from it without ever blocking.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/internal/pacing"
)

// Config describes what the graph delivers.
type Config struct {
	SampleRate int
	Channels   int
	FrameCount int
	QueueDepth int
}

// Latencier is implemented by sources that know their device latency.
type Latencier interface {
	Latency() time.Duration
}

type Readiness int32

const (
	Building Readiness = iota
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "ready"
	}
	return "building"
}

type Graph struct {
	cfg Config

	hw     audio.Source
	stream audio.Source
	pool   *audio.BufferPool

	mtx    sync.RWMutex
	points []*PullPoint
	ready  atomic.Bool

	started   atomic.Bool
	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
	closeErr  error
	runErr    error
}

// New builds the conversion chain hw → resampler → channel mapper →
// splitter. Nothing runs until Start.
func New(hw audio.Source, cfg Config) (*Graph, error) {
	if hw == nil {
		return nil, fmt.Errorf("%w: no source", ErrInvalidConfig)
	}
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.FrameCount <= 0 {
		return nil, fmt.Errorf("%w: rate %d, channels %d, frames %d",
			ErrInvalidConfig, cfg.SampleRate, cfg.Channels, cfg.FrameCount)
	}
	if hw.SampleRate() <= 0 || hw.Channels() <= 0 {
		return nil, fmt.Errorf("%w: source reports %d Hz, %d channels",
			ErrInvalidConfig, hw.SampleRate(), hw.Channels())
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultQueueDepth
	}

	stream := hw
	if hw.SampleRate() != cfg.SampleRate {
		stream = audio.NewResampler(stream, cfg.SampleRate)
	}
	if stream.Channels() != cfg.Channels {
		stream = audio.NewChannelMapper(stream, cfg.Channels)
	}

	return &Graph{
		cfg:    cfg,
		hw:     hw,
		stream: stream,
		pool:   audio.NewBufferPool(cfg.FrameCount),
	}, nil
}

func (g *Graph) Config() Config { return g.cfg }

// Pool is where captured buffers come from.
func (g *Graph) Pool() *audio.BufferPool { return g.pool }

func (g *Graph) Readiness() Readiness {
	if g.ready.Load() {
		return Ready
	}
	return Building
}

// HandleChannelAdded appends a pull point for a newly discovered channel.
func (g *Graph) HandleChannelAdded(pos audio.ChannelPosition) *PullPoint {
	pp := newPullPoint(pos, g.cfg.QueueDepth)

	g.mtx.Lock()
	g.points = append(g.points, pp)
	n := len(g.points)
	g.mtx.Unlock()

	if g.ready.Load() {
		log.Warnf("Channel %s added after discovery finished", pos)
	}
	log.Debugf("Pull point %d attached for %s", n-1, pos)

	return pp
}

// HandleNoMoreChannels flips the graph to Ready.
func (g *Graph) HandleNoMoreChannels() {
	g.mtx.RLock()
	n := len(g.points)
	g.mtx.RUnlock()

	if g.ready.CompareAndSwap(false, true) {
		log.Infof("Capture ready with %d channels", n)
	}
}

// HandleBlock offers one captured block to every pull point under the
// write lock, so PullChannelBuffers sees all of it or none of it. Extra
// buffers with no pull point are released.
func (g *Graph) HandleBlock(bufs []*audio.Buffer) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	for i, b := range bufs {
		if i >= len(g.points) {
			b.Release()
			continue
		}
		g.points[i].Offer(b)
	}
}

// PullPoints returns the pull points in discovery order.
func (g *Graph) PullPoints() []*PullPoint {
	g.mtx.RLock()
	defer g.mtx.RUnlock()

	return append([]*PullPoint(nil), g.points...)
}

// PullChannelBuffers takes at most one block from every pull point, in
// discovery order, appending them to dst[:0]. It never blocks. Blocks
// are offered to all pull points at once, so the buffers returned always
// come from the same captured block.
//
// Only front-left and front-right blocks are kept; blocks for any other
// position are released on the spot. The returned count is the number of
// buffers in the returned slice. While the graph is Building the count
// is 0 and dst is returned untouched.
func (g *Graph) PullChannelBuffers(dst []*audio.Buffer) (int, []*audio.Buffer) {
	if !g.ready.Load() {
		return 0, dst
	}

	dst = dst[:0]

	g.mtx.RLock()
	for _, pp := range g.points {
		b, ok := pp.TryPull()
		if !ok {
			continue
		}
		if !b.Position.IsFront() {
			b.Release()
			continue
		}
		dst = append(dst, b)
	}
	g.mtx.RUnlock()

	return len(dst), dst
}

// Latency is the device latency plus up to a full queue of blocks.
func (g *Graph) Latency() (minLatency, maxLatency time.Duration, err error) {
	if !g.ready.Load() {
		return 0, 0, ErrNotReady
	}

	if l, ok := g.hw.(Latencier); ok {
		minLatency = l.Latency()
	}
	block := pacing.BlockDuration(g.cfg.FrameCount, g.cfg.SampleRate)
	minLatency += block
	maxLatency = minLatency + time.Duration(g.cfg.QueueDepth-1)*block

	return minLatency, maxLatency, nil
}

// Dropped sums the blocks dropped by every pull point.
func (g *Graph) Dropped() uint64 {
	g.mtx.RLock()
	defer g.mtx.RUnlock()

	var n uint64
	for _, pp := range g.points {
		n += pp.Dropped()
	}

	return n
}

// Start runs the capture loop until ctx is done, the source ends, or
// Close is called.
func (g *Graph) Start(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		return ErrStarted
	}

	ctx, g.cancel = context.WithCancel(ctx)
	eg, gctx := errgroup.WithContext(ctx)
	g.group = eg

	eg.Go(func() error { return g.captureLoop(gctx) })
	eg.Go(func() error {
		// Unblocks a read waiting on the device.
		<-gctx.Done()
		return g.closeSource()
	})

	return nil
}

func (g *Graph) captureLoop(ctx context.Context) error {
	block := make([]float32, g.cfg.FrameCount*g.cfg.Channels)
	split := NewSplitter(g.cfg.Channels, g.pool, g)

	defer func() {
		// Wake the closer when the source ended on its own.
		g.cancel()
	}()

	for {
		filled := 0
		var err error
		for filled < len(block) && err == nil {
			var n int
			n, err = g.stream.ReadSamples(block[filled:])
			filled += n
		}

		if ctx.Err() != nil {
			return nil
		}
		if filled == len(block) {
			if perr := split.Process(block); perr != nil {
				return perr
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			log.Infof("Capture source ended")
			return nil
		case err != nil:
			log.Errorf("Capture source failed: %v", err)
			return fmt.Errorf("capture read: %w", err)
		}
	}
}

func (g *Graph) closeSource() error {
	g.closeOnce.Do(func() {
		g.closeErr = g.hw.Close()
	})
	return g.closeErr
}

// Err is the error that ended the capture loop, if any. It is only
// meaningful after Close.
func (g *Graph) Err() error { return g.runErr }

// Close stops the capture loop, closes the source and releases every
// queued block. It is safe to call more than once.
func (g *Graph) Close() error {
	if g.started.Load() && g.group != nil {
		g.cancel()
		g.runErr = g.group.Wait()
	}

	err := g.closeSource()

	g.mtx.RLock()
	for _, pp := range g.points {
		pp.flush()
	}
	g.mtx.RUnlock()

	return err
}
