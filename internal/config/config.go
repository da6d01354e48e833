// SPDX-License-Identifier: EPL-2.0

// Package config loads the host settings for the audbridge command from
// the environment and validates them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "AUDBRIDGE_"

const (
	MinSampleRate = 8000
	MaxSampleRate = 384000
	MinFrameCount = 64
	MaxFrameCount = 8192
	MaxChannels   = 6
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	SampleRate     int
	OutputChannels int
	InputChannels  int
	Live           bool
	FrameCount     int

	// Consecutive skipped ticks before the host is told about starvation.
	StarvationThreshold int

	// Sink and Capture are "tag:path" specs.
	Sink    string
	Capture string

	// Bit depth for file sinks.
	BitDepth int

	// Device latency target for live sinks and sources.
	DeviceLatency time.Duration

	// ResourceCacheSize bounds the decoded resource cache (entries).
	ResourceCacheSize int

	LogLevel string
}

func Default() Config {
	return Config{
		SampleRate:          44100,
		OutputChannels:      2,
		InputChannels:       0,
		FrameCount:          128,
		StarvationThreshold: 50,
		Sink:                "wav:out.wav",
		BitDepth:            16,
		DeviceLatency:       20 * time.Millisecond,
		ResourceCacheSize:   16,
		LogLevel:            "info",
	}
}

// LoadFromEnv overlays AUDBRIDGE_* variables on Default and validates the
// result. Malformed numbers fall back to the default.
func LoadFromEnv() (Config, error) {
	def := Default()

	cfg := Config{
		SampleRate:          envIntOr("SAMPLE_RATE", def.SampleRate),
		OutputChannels:      envIntOr("CHANNELS", def.OutputChannels),
		InputChannels:       envIntOr("INPUT_CHANNELS", def.InputChannels),
		Live:                envBoolOr("LIVE", def.Live),
		FrameCount:          envIntOr("FRAMES", def.FrameCount),
		StarvationThreshold: envIntOr("STARVATION_THRESHOLD", def.StarvationThreshold),
		Sink:                envOr("SINK", def.Sink),
		Capture:             envOr("CAPTURE", def.Capture),
		BitDepth:            envIntOr("BIT_DEPTH", def.BitDepth),
		DeviceLatency:       envDurationOr("DEVICE_LATENCY", def.DeviceLatency),
		ResourceCacheSize:   envIntOr("RESOURCE_CACHE", def.ResourceCacheSize),
		LogLevel:            envOr("LOGLEVEL", def.LogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.SampleRate >= MinSampleRate && c.SampleRate <= MaxSampleRate,
		"sample rate %d outside [%d, %d]", c.SampleRate, MinSampleRate, MaxSampleRate)
	check(c.FrameCount >= MinFrameCount && c.FrameCount <= MaxFrameCount,
		"frame count %d outside [%d, %d]", c.FrameCount, MinFrameCount, MaxFrameCount)
	check(c.OutputChannels >= 1 && c.OutputChannels <= MaxChannels,
		"output channels %d outside [1, %d]", c.OutputChannels, MaxChannels)
	check(c.InputChannels >= 0 && c.InputChannels <= MaxChannels,
		"input channels %d outside [0, %d]", c.InputChannels, MaxChannels)
	check(c.InputChannels == 0 || c.Live,
		"input channels require live mode")
	check(c.StarvationThreshold > 0,
		"starvation threshold %d must be positive", c.StarvationThreshold)
	check(c.BitDepth == 16 || c.BitDepth == 24 || c.BitDepth == 32,
		"bit depth %d not one of 16, 24, 32", c.BitDepth)
	check(c.DeviceLatency >= 0,
		"device latency %s is negative", c.DeviceLatency)
	check(c.ResourceCacheSize > 0,
		"resource cache size %d must be positive", c.ResourceCacheSize)

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
