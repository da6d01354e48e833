// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/sink"
)

// Interleaver is the multiplexing stage. Once every branch holds a
// buffer it writes them to the sink as one frame-major block, then
// releases them.
type Interleaver struct {
	branches []*branch
	sink     sink.Sink

	frames []float32
	planes [][]float32
	bufs   []*audio.Buffer

	blocks atomic.Uint64
}

func newInterleaver(s sink.Sink, channels, frameCount int) *Interleaver {
	return &Interleaver{
		sink:   s,
		frames: make([]float32, channels*frameCount),
		planes: make([][]float32, channels),
		bufs:   make([]*audio.Buffer, channels),
	}
}

// link attaches b as an input.
func (il *Interleaver) link(b *branch) {
	b.consumer = il
	il.branches = append(il.branches, b)
}

func (il *Interleaver) unlinkAll() {
	for _, b := range il.branches {
		b.flush()
		b.consumer = nil
	}
}

// chain is called after a push into branch index. It only writes when
// the last branch has been filled.
func (il *Interleaver) chain(ctx context.Context, index int) error {
	if index != len(il.branches)-1 {
		return nil
	}

	for i, b := range il.branches {
		select {
		case buf := <-b.queue:
			il.bufs[i] = buf
			il.planes[i] = buf.Samples
		default:
			audio.ReleaseAll(il.bufs[:i])
			clear(il.bufs)
			return &PushError{Branch: i, Position: b.position, Err: ErrIncompleteBlock}
		}
	}

	err := audio.Interleave(il.frames, il.planes)
	audio.ReleaseAll(il.bufs)
	clear(il.bufs)
	clear(il.planes)
	if err != nil {
		return il.pushError(err)
	}

	if err := il.sink.Write(ctx, il.frames); err != nil {
		if ctx.Err() != nil && (errors.Is(err, ctx.Err()) || errors.Is(err, sink.ErrClosed)) {
			return ErrFlushing
		}
		return il.pushError(err)
	}
	il.blocks.Add(1)

	return nil
}

func (il *Interleaver) pushError(err error) error {
	last := il.branches[len(il.branches)-1]
	return &PushError{Branch: last.index, Position: last.position, Err: err}
}

// flush drops whatever an aborted tick left in the branches.
func (il *Interleaver) flush() {
	for _, b := range il.branches {
		b.flush()
	}
}

// Blocks is the number of blocks written to the sink.
func (il *Interleaver) Blocks() uint64 { return il.blocks.Load() }
