// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_BuiltinTypes(t *testing.T) {
	s, err := Open("memory:", Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open("null:realtime", Options{})
	require.NoError(t, err)
	require.IsType(t, &Null{}, s)
	assert.True(t, s.(*Null).Realtime)

	assert.Contains(t, Types(), "null")
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open("carrier-pigeon:/dev/bird", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestOpen_WrapsOpenError(t *testing.T) {
	boom := errors.New("boom")
	Register("broken-test", func(string, Options) (Sink, error) { return nil, boom })

	_, err := Open("broken-test:x", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	ctx := context.Background()

	assert.ErrorIs(t, m.Write(ctx, []float32{1}), ErrNotConfigured)

	require.NoError(t, m.Configure(48000, 2))
	require.NoError(t, m.Write(ctx, []float32{1, 2, 3, 4}))
	require.NoError(t, m.Write(ctx, []float32{5, 6}))
	assert.ErrorIs(t, m.Write(ctx, []float32{7}), ErrBadBlock)

	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, m.Frames())
	assert.Equal(t, []float32{2, 4, 6}, m.Channel(1))
	assert.Nil(t, m.Channel(2))
	assert.Equal(t, 2, m.Blocks())

	rate, channels := m.Format()
	assert.Equal(t, 48000, rate)
	assert.Equal(t, 2, channels)

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	assert.ErrorIs(t, m.Write(ctx, []float32{1, 2}), ErrClosed)
}

func TestNull_Realtime(t *testing.T) {
	n := &Null{Realtime: true}
	require.NoError(t, n.Configure(1000, 1))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.Write(ctx, make([]float32, 10000))) // ten seconds ahead

	cancel()
	assert.ErrorIs(t, n.Write(ctx, make([]float32, 10)), context.Canceled)
	assert.Equal(t, int64(10010), n.Discarded())
}
