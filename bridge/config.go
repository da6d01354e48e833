// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"fmt"

	"github.com/ik5/audbridge/audio"
)

// DefaultStarvationThreshold is used when Config leaves it at zero.
const DefaultStarvationThreshold = 50

type Config struct {
	SampleRate     int
	OutputChannels int
	// InputChannels is the number of captured channels handed to the
	// render callback. Only live bridges capture.
	InputChannels int
	Live          bool
	// FrameCount is the block size of every tick.
	FrameCount int

	// StarvationThreshold is the number of consecutive skipped ticks after
	// which a StarvationError is reported.
	StarvationThreshold int
}

func (c Config) Mode() Mode {
	if c.Live {
		return Live
	}
	return Offline
}

func (c Config) captures() bool { return c.Live && c.InputChannels > 0 }

func (c *Config) validate() error {
	if c.StarvationThreshold == 0 {
		c.StarvationThreshold = DefaultStarvationThreshold
	}

	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.FrameCount <= 0:
		return fmt.Errorf("%w: frame count %d", ErrInvalidConfig, c.FrameCount)
	case c.OutputChannels < 1 || c.OutputChannels > audio.MaxPositionedChannels:
		return fmt.Errorf("%w: %d output channels, want 1 to %d",
			ErrInvalidConfig, c.OutputChannels, audio.MaxPositionedChannels)
	case c.InputChannels < 0 || c.InputChannels > audio.MaxPositionedChannels:
		return fmt.Errorf("%w: %d input channels", ErrInvalidConfig, c.InputChannels)
	case c.InputChannels > 0 && !c.Live:
		return fmt.Errorf("%w: input channels need a live bridge", ErrInvalidConfig)
	case c.StarvationThreshold < 0:
		return fmt.Errorf("%w: starvation threshold %d", ErrInvalidConfig, c.StarvationThreshold)
	}

	return nil
}
