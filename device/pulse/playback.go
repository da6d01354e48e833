// SPDX-License-Identifier: EPL-2.0

// Package pulse plays and records through a PulseAudio (or PipeWire) server.
package pulse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfreymuth/pulse"

	"github.com/ik5/audbridge/internal/pacing"
	"github.com/ik5/audbridge/sink"
)

var ErrUnsupportedChannels = errors.New("pulse: only mono and stereo are supported")

// queueLatency is the minimum audio held between Write and the server.
const queueLatency = 40 * time.Millisecond

// PlaybackSink writes blocks to the default PulseAudio sink. Write blocks
// while the queue is full, which paces the producer at device speed.
type PlaybackSink struct {
	latency time.Duration

	rate     int
	channels int
	cur      []float32
	playing  atomic.Bool

	// blocks is made by the first Write, once the block size is known.
	blocks     atomic.Pointer[chan []float32]
	blocksOnce sync.Once

	queued    atomic.Int64
	underruns atomic.Uint64

	client *pulse.Client
	stream *pulse.PlaybackStream

	closed    chan struct{}
	closeOnce sync.Once
}

var _ sink.Sink = (*PlaybackSink)(nil)

func NewPlaybackSink(latency time.Duration) *PlaybackSink {
	return &PlaybackSink{
		latency: latency,
		closed:  make(chan struct{}),
	}
}

// Configure connects to the server and starts a playback stream.
func (p *PlaybackSink) Configure(rate, channels int) error {
	if err := p.prepare(rate, channels); err != nil {
		return err
	}

	client, err := pulse.NewClient()
	if err != nil {
		return fmt.Errorf("pulse connect: %w", err)
	}

	layout := pulse.PlaybackMono
	if channels == 2 {
		layout = pulse.PlaybackStereo
	}

	stream, err := client.NewPlayback(pulse.Float32Reader(p.fill),
		layout,
		pulse.PlaybackSampleRate(rate),
		pulse.PlaybackLatency(p.latency.Seconds()),
	)
	if err != nil {
		client.Close()
		return fmt.Errorf("pulse playback: %w", err)
	}

	p.client, p.stream = client, stream
	stream.Start()
	log.Infof("Playing %d Hz, %d channels, latency %v", rate, channels, p.latency)

	return nil
}

func (p *PlaybackSink) prepare(rate, channels int) error {
	if channels < 1 || channels > 2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
	if p.channels != 0 {
		return errors.New("pulse: already configured")
	}

	p.rate, p.channels = rate, channels

	return nil
}

// queueDepth is the number of blocks of the given size that hold at least
// queueLatency of audio, and never fewer than two.
func queueDepth(frames, rate int) int {
	if frames <= 0 {
		return 2
	}

	budget := int(queueLatency.Seconds() * float64(rate))
	return max((budget+frames-1)/frames, 2)
}

func (p *PlaybackSink) queue(frames int) chan []float32 {
	p.blocksOnce.Do(func() {
		depth := queueDepth(frames, p.rate)
		blocks := make(chan []float32, depth)
		p.blocks.Store(&blocks)
		log.Debugf("Playback queue holds %d blocks of %d frames", depth, frames)
	})

	return *p.blocks.Load()
}

// fill is the server's read callback. It never blocks; when the bridge
// falls behind the rest of out is silence.
func (p *PlaybackSink) fill(out []float32) (int, error) {
	n := 0
	for n < len(out) {
		if len(p.cur) == 0 {
			if blocks := p.blocks.Load(); blocks != nil {
				select {
				case b := <-*blocks:
					p.cur = b
				default:
				}
			}
		}
		if len(p.cur) == 0 {
			break
		}

		c := copy(out[n:], p.cur)
		p.cur = p.cur[c:]
		p.queued.Add(-int64(c))
		n += c
	}

	if n < len(out) {
		select {
		case <-p.closed:
			if n == 0 {
				return 0, pulse.EndOfData
			}
			return n, nil
		default:
		}

		if p.playing.Load() {
			p.underruns.Add(1)
		}
		clear(out[n:])
	}

	return len(out), nil
}

func (p *PlaybackSink) Write(ctx context.Context, frames []float32) error {
	if p.channels == 0 {
		return sink.ErrNotConfigured
	}
	if len(frames)%p.channels != 0 {
		return sink.ErrBadBlock
	}
	blocks := p.queue(len(frames) / p.channels)

	block := append([]float32(nil), frames...)

	select {
	case <-p.closed:
		return sink.ErrClosed
	default:
	}

	p.queued.Add(int64(len(block)))

	select {
	case blocks <- block:
		p.playing.Store(true)
		return nil
	case <-ctx.Done():
		p.queued.Add(-int64(len(block)))
		return ctx.Err()
	case <-p.closed:
		p.queued.Add(-int64(len(block)))
		return sink.ErrClosed
	}
}

// Latency is the requested device latency plus whatever is queued.
func (p *PlaybackSink) Latency() time.Duration {
	if p.channels == 0 {
		return p.latency
	}

	frames := int(p.queued.Load()) / p.channels
	return p.latency + pacing.BlockDuration(frames, p.rate)
}

// Underruns counts callbacks that had to be padded with silence.
func (p *PlaybackSink) Underruns() uint64 { return p.underruns.Load() }

func (p *PlaybackSink) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		if p.stream != nil {
			p.stream.Stop()
			p.stream.Close()
		}
		if p.client != nil {
			p.client.Close()
		}
		if n := p.underruns.Load(); n > 0 {
			log.Warnf("Playback underran %d times", n)
		}
	})

	return nil
}

func init() {
	sink.Register("pulse", func(_ string, opts sink.Options) (sink.Sink, error) {
		return NewPlaybackSink(opts.Latency), nil
	})
}
