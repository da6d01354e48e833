// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type mockOggVorbisReader struct {
	data       []float32
	pos        int
	sampleRate int
	channels   int
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(buf)%m.channels != 0 {
		return 0, errors.New("partial frame")
	}
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but not really"))); err == nil {
		t.Error("Decode() of garbage returned no error")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	dec := &mockOggVorbisReader{data: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, sampleRate: 48000, channels: 2}
	s := &source{dec: dec, channels: 2}

	// An odd-length dst is trimmed to whole frames.
	buf := make([]float32, 5)
	n, err := s.ReadSamples(buf)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v; want 4, nil", n, err)
	}
	if buf[3] != 0.4 {
		t.Errorf("buf[3] = %v, want 0.4", buf[3])
	}

	n, err = s.ReadSamples(buf)
	if err != nil || n != 2 {
		t.Fatalf("second ReadSamples() = %d, %v", n, err)
	}

	if n, err = s.ReadSamples(buf); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("at end = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOggVorbisReader{sampleRate: 22050, channels: 1}, channels: 1}
	if s.SampleRate() != 22050 || s.Channels() != 1 {
		t.Errorf("format = %d Hz %d ch", s.SampleRate(), s.Channels())
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := &source{dec: &mockOggVorbisReader{err: boom, channels: 1}, channels: 1}

	if _, err := s.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}
