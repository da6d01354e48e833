// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Interleave writes planar channels into dst frame by frame. Every plane
// must have the same length and dst must hold len(planes)*len(planes[0])
// samples.
func Interleave(dst []float32, planes [][]float32) error {
	if len(planes) == 0 {
		return ErrInvalidChannels
	}

	frames := len(planes[0])
	for _, p := range planes[1:] {
		if len(p) != frames {
			return ErrPlanarMismatch
		}
	}
	if len(dst) < frames*len(planes) {
		return ErrInvalidDstSize
	}

	channels := len(planes)
	switch channels {
	case 1:
		copy(dst, planes[0])
	case 2:
		l, r := planes[0], planes[1]
		for f := range frames {
			dst[f<<1] = l[f]
			dst[f<<1+1] = r[f]
		}
	default:
		for c, p := range planes {
			for f, s := range p {
				dst[f*channels+c] = s
			}
		}
	}

	return nil
}

// Deinterleave splits frame-major src into planes. len(src) must be a
// multiple of len(planes) and each plane must hold the frame count.
func Deinterleave(planes [][]float32, src []float32) error {
	channels := len(planes)
	if channels == 0 {
		return ErrInvalidChannels
	}
	if len(src)%channels != 0 {
		return ErrInvalidDstSize
	}

	frames := len(src) / channels
	for _, p := range planes {
		if len(p) < frames {
			return ErrPlanarMismatch
		}
	}

	for f := range frames {
		for c := range channels {
			planes[c][f] = src[f*channels+c]
		}
	}

	return nil
}

// ReadPlanar drains src completely, converting it to targetRate when it
// differs from the source rate, and returns one slice per channel.
func ReadPlanar(src Source, targetRate int, bufferSize int) ([][]float32, error) {
	if targetRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	var stream Source = src
	if src.SampleRate() != targetRate {
		stream = NewResampler(src, targetRate)
	}

	channels := stream.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		bufferSize = 4096 * channels
	}

	planes := make([][]float32, channels)
	buf := make([]float32, bufferSize)

	for {
		n, err := stream.ReadSamples(buf)
		for f := range n / channels {
			for c := range channels {
				planes[c] = append(planes[c], buf[f*channels+c])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read planar: %w", err)
		}
	}

	return planes, nil
}
