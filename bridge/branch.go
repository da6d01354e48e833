// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"context"

	"github.com/ik5/audbridge/audio"
)

// TapFunc sees every block pushed into a branch, in push order. samples
// is only valid during the call.
type TapFunc func(branch int, pos audio.ChannelPosition, samples []float32)

// branch carries one output channel from the pull task to the
// interleaver. Its queue holds a single buffer.
type branch struct {
	index    int
	position audio.ChannelPosition
	queue    chan *audio.Buffer
	consumer *Interleaver
}

func newBranch(index int) *branch {
	return &branch{
		index:    index,
		position: audio.PositionForIndex(index),
		queue:    make(chan *audio.Buffer, 1),
	}
}

func (b *branch) linked() bool { return b.consumer != nil }

// push hands buf to the branch. On success the branch owns buf; on error
// the caller still does.
func (b *branch) push(ctx context.Context, buf *audio.Buffer, tap TapFunc) error {
	if !b.linked() {
		return &PushError{Branch: b.index, Position: b.position, Err: ErrNotLinked}
	}
	if ctx.Err() != nil {
		return ErrFlushing
	}

	select {
	case b.queue <- buf:
	case <-ctx.Done():
		return ErrFlushing
	}

	if tap != nil {
		tap(b.index, b.position, buf.Samples)
	}

	return b.consumer.chain(ctx, b.index)
}

func (b *branch) flush() {
	for {
		select {
		case buf := <-b.queue:
			buf.Release()
		default:
			return
		}
	}
}

// BranchInfo describes one output branch.
type BranchInfo struct {
	Index    int
	Position audio.ChannelPosition
	Linked   bool
}
