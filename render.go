// SPDX-License-Identifier: EPL-2.0

package audbridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audbridge/bridge"
	"github.com/ik5/audbridge/sink"
	"github.com/ik5/audbridge/sink/wavfile"
)

// Render runs an offline bridge over s for exactly blocks ticks on the
// calling goroutine, then closes it (and with it s). It returns the number
// of frames rendered.
//
// cfg.Live must be false: nothing paces an offline render.
func Render(ctx context.Context, cfg bridge.Config, render bridge.RenderCallback, s sink.Sink, blocks int) (frames int, err error) {
	if cfg.Live {
		return 0, fmt.Errorf("%w: offline render of a live config", bridge.ErrInvalidConfig)
	}
	if blocks < 0 {
		return 0, fmt.Errorf("%w: %d blocks", bridge.ErrInvalidConfig, blocks)
	}

	b, err := bridge.New(cfg, render, s)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, b.Close())
	}()

	if _, err := b.SetState(ctx, bridge.Ready); err != nil {
		return 0, err
	}

	for i := range blocks {
		if err := b.Tick(ctx); err != nil {
			return i * cfg.FrameCount, err
		}
	}

	return blocks * cfg.FrameCount, nil
}

// RenderToWAV renders blocks ticks into a 16-bit WAV stream written to w.
// w is finalised but not closed.
func RenderToWAV(ctx context.Context, cfg bridge.Config, render bridge.RenderCallback, w io.WriteSeeker, blocks int) (int, error) {
	return Render(ctx, cfg, render, wavfile.New(w, 16), blocks)
}
