// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"
	"sync/atomic"
)

// Buffer is one block of single-channel float32 samples.
//
// A Buffer has exactly one owner at a time. Whoever holds it last calls
// Release, which hands the backing array back to the pool it came from.
type Buffer struct {
	Samples  []float32
	Position ChannelPosition

	pool     *BufferPool
	released atomic.Bool
}

// NewBuffer allocates a pool-less buffer of frames samples.
func NewBuffer(frames int, pos ChannelPosition) *Buffer {
	return &Buffer{
		Samples:  make([]float32, frames),
		Position: pos,
	}
}

func (b *Buffer) Len() int { return len(b.Samples) }

// Release returns the buffer to its pool. Extra calls are no-ops.
func (b *Buffer) Release() {
	if b == nil || !b.released.CompareAndSwap(false, true) {
		return
	}

	if b.pool != nil {
		b.pool.put(b)
	}
}

// Released reports whether Release was already called.
func (b *Buffer) Released() bool {
	return b.released.Load()
}

// ReleaseAll releases every non-nil buffer in bufs.
func ReleaseAll(bufs []*Buffer) {
	for _, b := range bufs {
		b.Release()
	}
}

// BufferPool hands out zeroed Buffers of a fixed frame count and keeps
// track of how many are still owned by someone.
type BufferPool struct {
	frames      int
	pool        sync.Pool
	outstanding atomic.Int64
}

func NewBufferPool(frames int) *BufferPool {
	p := &BufferPool{frames: frames}
	p.pool.New = func() any {
		return &Buffer{Samples: make([]float32, frames), pool: p}
	}

	return p
}

func (p *BufferPool) FrameCount() int { return p.frames }

// Get returns a zeroed buffer tagged with pos.
func (p *BufferPool) Get(pos ChannelPosition) *Buffer {
	b := p.pool.Get().(*Buffer)
	clear(b.Samples)
	b.Position = pos
	b.released.Store(false)
	p.outstanding.Add(1)

	return b
}

// Outstanding is the number of buffers handed out and not yet released.
func (p *BufferPool) Outstanding() int64 {
	return p.outstanding.Load()
}

func (p *BufferPool) put(b *Buffer) {
	p.outstanding.Add(-1)
	p.pool.Put(b)
}
