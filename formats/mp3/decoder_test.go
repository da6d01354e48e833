// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

type mockMP3Reader struct {
	data       []byte
	pos        int
	sampleRate int
	chunk      int // max bytes per Read, 0 means unlimited
	err        error
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	if m.chunk > 0 && len(buf) > m.chunk {
		buf = buf[:m.chunk]
	}
	n := copy(buf, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func pcm16(values ...int16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

func readAll(t *testing.T, s *source, bufSize int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, bufSize)
	for {
		n, err := s.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("no frames here"))); err == nil {
		t.Error("Decode() of garbage returned no error")
	}
}

func TestSource_Conversion(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockMP3Reader{data: pcm16(0, 16384, -32768, 32767), sampleRate: 44100}, sampleRate: 44100}

	got := readAll(t, s, 4)
	want := []float32{0, 0.5, -1, 32767.0 / 32768.0}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
	if s.Channels() != 2 || s.SampleRate() != 44100 {
		t.Errorf("format = %d Hz %d ch", s.SampleRate(), s.Channels())
	}
}

func TestSource_OddByteReads(t *testing.T) {
	t.Parallel()

	// Three-byte reads split samples across calls.
	s := &source{dec: &mockMP3Reader{data: pcm16(100, 200, 300, 400, 500, 600), sampleRate: 8000, chunk: 3}}

	got := readAll(t, s, 2)
	if len(got) != 6 {
		t.Fatalf("got %d samples, want 6", len(got))
	}
	for i, v := range []int16{100, 200, 300, 400, 500, 600} {
		if want := float32(v) / 32768.0; got[i] != want {
			t.Errorf("sample %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := &source{dec: &mockMP3Reader{err: boom, sampleRate: 8000}}

	if _, err := s.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	data := make([]byte, 1<<20)
	s := &source{dec: &mockMP3Reader{data: data, sampleRate: 44100}}
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := s.ReadSamples(buf); err != nil {
			s.dec.(*mockMP3Reader).pos = 0
		}
	}
}
