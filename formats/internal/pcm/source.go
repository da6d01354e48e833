// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer decoders to audio.Source.
package pcm

import (
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audbridge/utils"
)

// Reader is the part of the go-audio wav and aiff decoders used here.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source converts integer PCM into float32 samples in [-1, 1].
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	bitDepth   int
	// WAV stores 8-bit samples unsigned, AIFF signed.
	unsigned8 bool

	intBuf *goaudio.IntBuffer
	scale  float32
}

func NewSource(dec Reader, format *goaudio.Format, bitDepth int, unsigned8 bool) *Source {
	scale := float32(1)
	if bitDepth > 1 && bitDepth <= 32 {
		scale = 1 / float32(int64(1)<<(bitDepth-1))
	}

	return &Source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		unsigned8:  unsigned8 && bitDepth == 8,
		scale:      scale,
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BitDepth() int   { return s.bitDepth }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: &goaudio.Format{SampleRate: s.sampleRate, NumChannels: s.channels},
		}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		if s.unsigned8 {
			v -= 128
		}
		dst[i] = utils.Clamp(float32(v) * s.scale)
	}

	if n < want && err == nil {
		return n, io.EOF
	}

	return n, err
}
