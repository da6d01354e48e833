// Command audbridge drives a renderer through a bridge into a file, a
// PulseAudio device or a websocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decred/slog"
	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audbridge/bridge"
	"github.com/ik5/audbridge/capture"
	"github.com/ik5/audbridge/device/pulse"
	"github.com/ik5/audbridge/internal/config"
	"github.com/ik5/audbridge/internal/logging"
	"github.com/ik5/audbridge/resource"
	"github.com/ik5/audbridge/sink"
	"github.com/ik5/audbridge/sink/ws"

	// Registers the wav sink.
	_ "github.com/ik5/audbridge/sink/wavfile"
)

var log = slog.Disabled

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fail(err)
	}

	o, err := parseFlags(os.Args[1:], cfg)
	if errors.Is(err, flag.ErrHelp) || (o != nil && o.help) {
		help()
		os.Exit(0)
	}
	if err != nil {
		fail(err)
	}
	if o.list {
		fmt.Println("sinks:  ", sink.Types())
		fmt.Println("capture:", capture.Types())
		os.Exit(0)
	}

	if err := setupLogging(o.cfg.LogLevel); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		fail(err)
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, "audbridge:", err)
	os.Exit(1)
}

func setupLogging(levels string) error {
	mgr := logging.New(os.Stderr)
	if err := mgr.SetLevels(levels); err != nil {
		return err
	}
	if err := mgr.SetLevels(os.Getenv(logging.EnvVar)); err != nil {
		return err
	}

	log = mgr.Logger(logging.TagMain)
	bridge.UseLogger(mgr.Logger(logging.TagBridge))
	capture.UseLogger(mgr.Logger(logging.TagCapture))
	sink.UseLogger(mgr.Logger(logging.TagSink))
	ws.UseLogger(mgr.Logger(logging.TagSink))
	pulse.UseLogger(mgr.Logger(logging.TagPulse))
	resource.UseLogger(mgr.Logger(logging.TagResource))

	return nil
}

// renderer picks the file player or the tone. done reports the end of a
// non-looping file.
func renderer(o *options) (r bridge.RenderCallback, done func() bool, err error) {
	if o.play == "" {
		t := &tone{freq: o.tone, rate: o.cfg.SampleRate, gain: 0.5, monitor: o.monitor}
		return t, func() bool { return false }, nil
	}

	bus, err := resource.NewLoader(nil, o.cfg.ResourceCacheSize).Load(o.play, o.cfg.SampleRate)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("Playing %s: %d channels, %v", o.play, bus.Channels(), bus.Duration())

	p := resource.NewPlayer(bus)
	p.Loop = o.loop
	p.Monitor = o.monitor

	return p, p.Done, nil
}

func run(ctx context.Context, o *options) error {
	cfg := o.cfg

	render, done, err := renderer(o)
	if err != nil {
		return err
	}

	out, err := sink.Open(cfg.Sink, sink.Options{BitDepth: cfg.BitDepth, Latency: cfg.DeviceLatency})
	if err != nil {
		return err
	}

	var opts []bridge.Option
	if cfg.Live && cfg.InputChannels > 0 {
		src, err := capture.OpenSource(cfg.Capture, capture.Options{
			SampleRate: cfg.SampleRate,
			Channels:   cfg.InputChannels,
			Latency:    cfg.DeviceLatency,
		})
		if err != nil {
			out.Close()
			return err
		}
		opts = append(opts, bridge.WithCapture(src))
	}

	b, err := bridge.New(bridge.Config{
		SampleRate:          cfg.SampleRate,
		OutputChannels:      cfg.OutputChannels,
		InputChannels:       cfg.InputChannels,
		Live:                cfg.Live,
		FrameCount:          cfg.FrameCount,
		StarvationThreshold: cfg.StarvationThreshold,
	}, render, out, opts...)
	if err != nil {
		out.Close()
		return err
	}
	defer b.Close()

	status := color.New(color.FgGreen)
	status.Printf("Bridge %s: %s, %d Hz, %d channels -> %s\n",
		b.ID(), b.Mode(), cfg.SampleRate, cfg.OutputChannels, cfg.Sink)

	// Offline runs count the duration in blocks instead.
	if cfg.Live && o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Live {
		g.Go(func() error {
			defer cancel()
			return runLive(gctx, b, done)
		})
		g.Go(func() error { return report(gctx, b) })
	} else {
		g.Go(func() error { return runOffline(gctx, b, o.duration, done) })
	}

	err = g.Wait()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = nil
	}
	if cerr := b.Close(); cerr != nil && err == nil {
		err = cerr
	}

	st := b.Stats()
	status.Printf("Done: %d blocks, %d skipped ticks, %d starvations\n", st.Blocks, st.Skipped, st.Starvations)

	return err
}

// runLive plays until the context ends, the file ends or the bridge fails.
func runLive(ctx context.Context, b *bridge.Bridge, done func() bool) error {
	if err := b.Start(ctx); err != nil {
		return err
	}

	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.Stop()
		case <-t.C:
		}

		if b.State() == bridge.Error {
			return b.Err()
		}
		if done() {
			return b.Stop()
		}
	}
}

// runOffline ticks on this goroutine so the output length is exact.
func runOffline(ctx context.Context, b *bridge.Bridge, d time.Duration, done func() bool) error {
	if _, err := b.SetState(ctx, bridge.Ready); err != nil {
		return err
	}

	cfg := b.Config()
	blocks := -1
	if d > 0 {
		blocks = int(d * time.Duration(cfg.SampleRate) / time.Second / time.Duration(cfg.FrameCount))
	}

	for i := 0; blocks < 0 || i < blocks; i++ {
		if done() || ctx.Err() != nil {
			break
		}
		if err := b.Tick(ctx); err != nil {
			return err
		}
	}

	return nil
}

func report(ctx context.Context, b *bridge.Bridge) error {
	y := color.New(color.FgYellow)
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		st := b.Stats()
		lat, err := b.Latency()
		if err != nil {
			y.Printf("%s: %d blocks, capture %v\n", b.State(), st.Blocks, err)
			continue
		}
		y.Printf("%s: %d blocks, %d skipped, latency %v..%v\n",
			b.State(), st.Blocks, st.Skipped, lat.Min.Round(time.Millisecond), lat.Max.Round(time.Millisecond))
	}
}
