// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audbridge/audio"
)

type recordingHandler struct {
	events []string
	points []*PullPoint
}

func (h *recordingHandler) HandleChannelAdded(pos audio.ChannelPosition) *PullPoint {
	h.events = append(h.events, pos.String())
	pp := newPullPoint(pos, 2)
	h.points = append(h.points, pp)
	return pp
}

func (h *recordingHandler) HandleNoMoreChannels() {
	h.events = append(h.events, "no-more-channels")
}

func (h *recordingHandler) HandleBlock(bufs []*audio.Buffer) {
	h.events = append(h.events, "block")
	for i, b := range bufs {
		h.points[i].Offer(b)
	}
}

func TestSplitterAnnouncesOnce(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	pool := audio.NewBufferPool(2)
	s := NewSplitter(2, pool, h)
	assert.False(t, s.Discovered())

	require.NoError(t, s.Process([]float32{1, 2, 3, 4}))
	require.NoError(t, s.Process([]float32{5, 6, 7, 8}))
	assert.True(t, s.Discovered())

	assert.Equal(t, []string{"front-left", "front-right", "no-more-channels", "block", "block"}, h.events)

	b, ok := h.points[0].TryPull()
	require.True(t, ok)
	assert.Equal(t, []float32{1, 3}, b.Samples)
	b.Release()

	b, ok = h.points[1].TryPull()
	require.True(t, ok)
	assert.Equal(t, []float32{2, 4}, b.Samples)
	b.Release()

	assert.Equal(t, 1, h.points[0].Queued())
}

func TestSplitterRejectsShortBlock(t *testing.T) {
	t.Parallel()

	s := NewSplitter(2, audio.NewBufferPool(4), &recordingHandler{})
	assert.ErrorIs(t, s.Process(make([]float32, 6)), audio.ErrInvalidDstSize)
	assert.False(t, s.Discovered())
}

func TestPullPointDropsOldest(t *testing.T) {
	t.Parallel()

	pool := audio.NewBufferPool(1)
	pp := newPullPoint(audio.FrontLeft, 2)

	for i := range 5 {
		b := pool.Get(audio.FrontLeft)
		b.Samples[0] = float32(i)
		pp.Offer(b)
	}

	assert.Equal(t, uint64(3), pp.Dropped())
	assert.Equal(t, 2, pp.Queued())
	assert.Equal(t, int64(2), pool.Outstanding())

	b, ok := pp.TryPull()
	require.True(t, ok)
	assert.Equal(t, float32(3), b.Samples[0])
	b.Release()

	pp.flush()
	assert.Zero(t, pool.Outstanding())

	_, ok = pp.TryPull()
	assert.False(t, ok)
}

func TestPullPointDefaultDepth(t *testing.T) {
	t.Parallel()

	pp := newPullPoint(audio.FrontRight, 0)
	assert.Equal(t, DefaultQueueDepth, cap(pp.queue))
}
