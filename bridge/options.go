// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/capture"
)

type options struct {
	captureSrc   audio.Source
	captureDepth int
	handler      ErrorHandler
	tap          TapFunc
	graph        *Graph
}

type Option func(*options)

// WithCapture sets the hardware source of a live bridge with input
// channels. The bridge owns it from then on.
func WithCapture(src audio.Source) Option {
	return func(o *options) { o.captureSrc = src }
}

// WithCaptureQueueDepth sets how many blocks each captured channel keeps.
func WithCaptureQueueDepth(n int) Option {
	return func(o *options) { o.captureDepth = n }
}

// WithErrorHandler receives push failures and starvation reports.
// LogErrorHandler is used otherwise.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.handler = h }
}

// WithTap observes every pushed output block.
func WithTap(tap TapFunc) Option {
	return func(o *options) { o.tap = tap }
}

// WithGraph replaces the standard topology.
func WithGraph(g *Graph) Option {
	return func(o *options) { o.graph = g }
}

func (o *options) captureConfig(cfg Config) capture.Config {
	return capture.Config{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.InputChannels,
		FrameCount: cfg.FrameCount,
		QueueDepth: o.captureDepth,
	}
}
