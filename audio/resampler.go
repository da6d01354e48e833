// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audbridge/utils"
)

// maxEmptyReads bounds how many times a source may return (0, nil) in a
// row before the resampler gives up with io.ErrNoProgress.
const maxEmptyReads = 100

// Resampler streams from src to a target sample rate using Catmull-Rom
// interpolation over a four frame history. Channel count is preserved.
// When downsampling a one-pole low-pass runs on the input frames.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame
	channels int

	// hist[1] is the frame at pos 0, hist[2] at pos 1.
	hist   [4][]float32
	valid  [4]bool
	primed bool
	pos    float64

	in    []float32
	inPos int
	inLen int
	eof   bool

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		in:       make([]float32, 1024*channels),
		lowpass:  ratio > 1.0,
		alpha:    0.5,
		state:    make([]float32, channels),
	}

	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

// Ratio is the number of source frames consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Reset drops interpolation history so the next read starts fresh from
// the source's current position.
func (r *Resampler) Reset() {
	r.primed = false
	r.valid = [4]bool{}
	r.pos = 0
	r.inPos, r.inLen = 0, 0
	r.eof = false
	clear(r.state)
}

// readFrame copies the next source frame into dst. It returns false once
// the source is exhausted.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	empty := 0
	for r.inPos >= r.inLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels

		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			return false, fmt.Errorf("%w", err)
		}

		if r.inLen == 0 && !r.eof {
			empty++
			if empty >= maxEmptyReads {
				return false, io.ErrNoProgress
			}
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		if !r.primed && !r.valid[1] {
			// Seed the filter with the first frame to avoid a warm-up ramp.
			copy(r.state, dst)
		}
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.hist[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}

	copy(r.hist[0], r.hist[1])
	r.valid[0], r.valid[1] = true, true

	for i := 2; i < len(r.hist); i++ {
		ok, err := r.readFrame(r.hist[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.hist[i], r.hist[i-1])
		}
		r.valid[i] = ok
	}

	r.primed = true

	return nil
}

// advance shifts the history by one frame, rotating the slices instead of
// copying them.
func (r *Resampler) advance() error {
	oldest := r.hist[0]
	r.hist[0], r.hist[1], r.hist[2] = r.hist[1], r.hist[2], r.hist[3]
	r.hist[3] = oldest
	r.valid[0], r.valid[1], r.valid[2] = r.valid[1], r.valid[2], r.valid[3]

	ok, err := r.readFrame(r.hist[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.hist[3], r.hist[2])
	}
	r.valid[3] = ok

	return nil
}

// ReadSamples produces interleaved samples at the target rate. dst length
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.ratio == 1 && !r.primed {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	done := false

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] {
			done = true
			break
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}

		written++
		r.pos += r.ratio
	}

	if done {
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
