// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type mockAiffReader struct {
	format *goaudio.Format
	data   []int
	pos    int
}

func (m *mockAiffReader) Format() *goaudio.Format { return m.format }

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("not an aiff file at all")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode(empty) returned no error")
	}
}

func TestSource_SignedEightBit(t *testing.T) {
	t.Parallel()

	dec := &mockAiffReader{
		format: &goaudio.Format{SampleRate: 11025, NumChannels: 1},
		data:   []int{64, -128},
	}

	src, err := newSource(dec, 8)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]float32, 4)
	n, err := src.ReadSamples(buf)
	if !errors.Is(err, io.EOF) || n != 2 {
		t.Fatalf("ReadSamples() = %d, %v", n, err)
	}
	if buf[0] != 0.5 || buf[1] != -1 {
		t.Errorf("samples = %v, want [0.5 -1]", buf[:2])
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockAiffReader{format: &goaudio.Format{SampleRate: 48000, NumChannels: 2}}, 16)
	if err != nil {
		t.Fatal(err)
	}
	if src.SampleRate() != 48000 || src.Channels() != 2 {
		t.Errorf("format = %d Hz %d ch", src.SampleRate(), src.Channels())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSource_Validation(t *testing.T) {
	t.Parallel()

	if _, err := newSource(&mockAiffReader{format: &goaudio.Format{SampleRate: 8000, NumChannels: 1}}, 12); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("12 bit: %v", err)
	}
	if _, err := newSource(&mockAiffReader{}, 16); !errors.Is(err, ErrUnsupportedAiffLayout) {
		t.Errorf("nil format: %v", err)
	}
}
