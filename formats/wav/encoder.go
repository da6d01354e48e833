// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audbridge/utils"
)

const pcmFormat = 1

// Encoder writes interleaved float32 frames as integer PCM. The header is
// finalised by Close, which is why the writer must be seekable.
type Encoder struct {
	enc      *gowav.Encoder
	channels int
	bitDepth int
	buf      *goaudio.IntBuffer
	frames   int
	closed   bool
}

func NewEncoder(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Encoder, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedWavLayout, sampleRate, channels)
	}

	return &Encoder{
		enc:      gowav.NewEncoder(w, sampleRate, bitDepth, channels, pcmFormat),
		channels: channels,
		bitDepth: bitDepth,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write encodes frame-major samples. len(frames) must be a multiple of the
// channel count.
func (e *Encoder) Write(frames []float32) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if len(frames)%e.channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrUnsupportedWavLayout, len(frames), e.channels)
	}

	if cap(e.buf.Data) < len(frames) {
		e.buf.Data = make([]int, len(frames))
	}
	e.buf.Data = e.buf.Data[:len(frames)]

	for i, s := range frames {
		e.buf.Data[i] = utils.FloatToInt(s, e.bitDepth)
	}

	if err := e.enc.Write(e.buf); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
	e.frames += len(frames) / e.channels

	return nil
}

// Frames is the number of frames written so far.
func (e *Encoder) Frames() int { return e.frames }

// Close patches the RIFF sizes. The underlying writer stays open.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if e.frames == 0 {
		// Emit the header and an empty data chunk.
		e.buf.Data = e.buf.Data[:0]
		if err := e.enc.Write(e.buf); err != nil {
			return fmt.Errorf("wav write: %w", err)
		}
	}

	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}

	return nil
}
