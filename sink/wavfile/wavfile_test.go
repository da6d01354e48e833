// SPDX-License-Identifier: EPL-2.0

package wavfile

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audbridge/formats/wav"
	"github.com/ik5/audbridge/sink"
)

func TestSink_WritesDecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	s, err := sink.Open("wav:"+path, sink.Options{BitDepth: 24})
	require.NoError(t, err)
	require.NoError(t, s.Configure(16000, 2))

	block := make([]float32, 2*128)
	for i := range 128 {
		block[2*i] = 0.5
		block[2*i+1] = -0.25
	}
	for range 4 {
		require.NoError(t, s.Write(context.Background(), block))
	}
	assert.Equal(t, 512, s.(*Sink).Frames())
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16000, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	var got []float32
	buf := make([]float32, 300)
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	require.Len(t, got, 1024)
	assert.InDelta(t, 0.5, got[0], 1e-4)
	assert.InDelta(t, -0.25, got[1023], 1e-4)
}

func TestSink_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := Create(path, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Write(context.Background(), []float32{0}), sink.ErrNotConfigured)

	require.NoError(t, s.Configure(8000, 1))
	assert.Error(t, s.Configure(8000, 1))

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write(context.Background(), []float32{0}), sink.ErrClosed)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sink.Open("wav:", sink.Options{})
	assert.Error(t, err)
}
