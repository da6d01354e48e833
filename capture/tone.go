// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"io"
	"math"
	"sync"

	"github.com/ik5/audbridge/internal/pacing"
)

// ToneSource is a live sine generator. Reads return no faster than real
// time, like a microphone would.
type ToneSource struct {
	rate      int
	channels  int
	freq      float64
	amplitude float32

	phase float64
	pacer *pacing.Pacer

	done chan struct{}
	once sync.Once
}

func NewToneSource(rate, channels int, freq float64, amplitude float32) *ToneSource {
	return &ToneSource{
		rate:      rate,
		channels:  channels,
		freq:      freq,
		amplitude: amplitude,
		pacer:     pacing.New(rate),
		done:      make(chan struct{}),
	}
}

func (t *ToneSource) SampleRate() int { return t.rate }
func (t *ToneSource) Channels() int   { return t.channels }

func (t *ToneSource) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / t.channels
	if frames == 0 {
		return 0, nil
	}

	if !t.pacer.Wait(t.done, frames) {
		return 0, io.EOF
	}

	step := 2 * math.Pi * t.freq / float64(t.rate)
	for f := range frames {
		v := t.amplitude * float32(math.Sin(t.phase))
		for c := range t.channels {
			dst[f*t.channels+c] = v
		}
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}

	return frames * t.channels, nil
}

func (t *ToneSource) Close() error {
	t.once.Do(func() { close(t.done) })
	return nil
}
