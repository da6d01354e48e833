// SPDX-License-Identifier: EPL-2.0

package pulse

import (
	"fmt"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/capture"
)

// ringSeconds is how much audio the capture ring keeps before it starts
// overwriting.
const ringSeconds = 1

// CaptureSource records from the default PulseAudio source.
type CaptureSource struct {
	rate     int
	channels int
	latency  time.Duration

	ring *ring

	client *pulse.Client
	stream *pulse.RecordStream
	once   sync.Once
}

var _ audio.Source = (*CaptureSource)(nil)

// NewCaptureSource connects to the server and starts recording.
func NewCaptureSource(rate, channels int, latency time.Duration) (*CaptureSource, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}

	c := newCaptureSource(rate, channels, latency)

	client, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse connect: %w", err)
	}

	layout := pulse.RecordMono
	if channels == 2 {
		layout = pulse.RecordStereo
	}

	stream, err := client.NewRecord(pulse.Float32Writer(c.record),
		layout,
		pulse.RecordSampleRate(rate),
		pulse.RecordLatency(latency.Seconds()),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("pulse record: %w", err)
	}

	c.client, c.stream = client, stream
	stream.Start()
	log.Infof("Recording %d Hz, %d channels", rate, channels)

	return c, nil
}

func newCaptureSource(rate, channels int, latency time.Duration) *CaptureSource {
	return &CaptureSource{
		rate:     rate,
		channels: channels,
		latency:  latency,
		ring:     newRing(rate*ringSeconds, channels),
	}
}

func (c *CaptureSource) record(p []float32) (int, error) {
	c.ring.write(p)
	return len(p), nil
}

func (c *CaptureSource) SampleRate() int { return c.rate }
func (c *CaptureSource) Channels() int   { return c.channels }

// ReadSamples blocks until the device has delivered at least one frame.
func (c *CaptureSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%c.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	return c.ring.read(dst)
}

func (c *CaptureSource) Latency() time.Duration { return c.latency }

// Overruns counts frames lost because the reader fell behind.
func (c *CaptureSource) Overruns() uint64 { return c.ring.Dropped() }

func (c *CaptureSource) Close() error {
	c.once.Do(func() {
		c.ring.close()
		if c.stream != nil {
			c.stream.Stop()
			c.stream.Close()
		}
		if c.client != nil {
			c.client.Close()
		}
		if n := c.ring.Dropped(); n > 0 {
			log.Warnf("Capture overran by %d frames", n)
		}
	})

	return nil
}

func init() {
	capture.Register("pulse", func(_ string, opts capture.Options) (audio.Source, error) {
		channels := min(max(opts.Channels, 1), 2)
		rate := opts.SampleRate
		if rate <= 0 {
			rate = 44100
		}
		return NewCaptureSource(rate, channels, opts.Latency)
	})
}
