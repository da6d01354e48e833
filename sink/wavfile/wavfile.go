// SPDX-License-Identifier: EPL-2.0

// Package wavfile is the offline sink: it encodes the bridge output into a
// WAV file as fast as the bridge renders.
package wavfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ik5/audbridge/formats/wav"
	"github.com/ik5/audbridge/sink"
)

const DefaultBitDepth = 16

// Sink writes integer PCM to an io.WriteSeeker.
type Sink struct {
	w        io.WriteSeeker
	closer   io.Closer
	bitDepth int

	mtx sync.Mutex
	enc *wav.Encoder
}

// New wraps w. The caller keeps ownership of w.
func New(w io.WriteSeeker, bitDepth int) *Sink {
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}

	return &Sink{w: w, bitDepth: bitDepth}
}

// Create opens path for writing; Close also closes the file.
func Create(path string, bitDepth int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavfile: %w", err)
	}

	s := New(f, bitDepth)
	s.closer = f

	return s, nil
}

func (s *Sink) Configure(rate, channels int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.enc != nil {
		return fmt.Errorf("wavfile: already configured")
	}

	enc, err := wav.NewEncoder(s.w, rate, channels, s.bitDepth)
	if err != nil {
		return fmt.Errorf("wavfile: %w", err)
	}
	s.enc = enc

	return nil
}

func (s *Sink) Write(_ context.Context, frames []float32) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.enc == nil {
		return sink.ErrNotConfigured
	}

	if err := s.enc.Write(frames); err != nil {
		if err == wav.ErrEncoderClosed {
			return sink.ErrClosed
		}
		return fmt.Errorf("wavfile: %w", err)
	}

	return nil
}

// Frames is the number of frames encoded so far.
func (s *Sink) Frames() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.enc == nil {
		return 0
	}

	return s.enc.Frames()
}

// Close finalises the header and closes the file when Create opened it.
func (s *Sink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var err error
	if s.enc != nil {
		err = s.enc.Close()
	}

	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}

	return err
}

func (s *Sink) Latency() time.Duration { return 0 }

func init() {
	sink.Register("wav", func(path string, opts sink.Options) (sink.Sink, error) {
		if path == "" {
			return nil, fmt.Errorf("wavfile: empty path")
		}
		return Create(path, opts.BitDepth)
	})
}
