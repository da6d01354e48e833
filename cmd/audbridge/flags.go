package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/ik5/audbridge/internal/config"
)

type options struct {
	cfg config.Config

	play     string
	tone     float64
	duration time.Duration
	loop     bool
	monitor  bool
	list     bool
	help     bool
}

// parseFlags overlays command line flags on cfg, which already holds the
// environment settings.
func parseFlags(args []string, cfg config.Config) (*options, error) {
	o := &options{cfg: cfg}
	fs := flag.NewFlagSet("audbridge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVarP(&o.cfg.SampleRate, "rate", "r", cfg.SampleRate, "Sample rate, in Hz")
	fs.IntVarP(&o.cfg.OutputChannels, "channels", "c", cfg.OutputChannels, "Output channels")
	fs.IntVarP(&o.cfg.InputChannels, "input-channels", "i", cfg.InputChannels, "Captured channels handed to the renderer")
	fs.BoolVarP(&o.cfg.Live, "live", "l", cfg.Live, "Run at device speed")
	fs.IntVarP(&o.cfg.FrameCount, "frames", "f", cfg.FrameCount, "Frames per block")
	fs.StringVarP(&o.cfg.Sink, "sink", "o", cfg.Sink, "Output, as tag:path")
	fs.StringVar(&o.cfg.Capture, "capture", cfg.Capture, "Capture source, as tag:path")
	fs.IntVar(&o.cfg.BitDepth, "bit-depth", cfg.BitDepth, "Bit depth of file output")
	fs.DurationVar(&o.cfg.DeviceLatency, "latency", cfg.DeviceLatency, "Device latency target")
	fs.StringVar(&o.cfg.LogLevel, "log-level", cfg.LogLevel, "Log levels, as level,TAG=level")

	fs.StringVarP(&o.play, "play", "p", "", "Audio file to play")
	fs.Float64VarP(&o.tone, "tone", "t", 440, "Tone frequency when no file is played")
	fs.DurationVarP(&o.duration, "duration", "d", 0, "Stop after this long (default: end of file, or 5s for a tone)")
	fs.BoolVar(&o.loop, "loop", false, "Loop the played file")
	fs.BoolVarP(&o.monitor, "monitor", "m", false, "Mix captured input into the output")
	fs.BoolVar(&o.list, "list", false, "List sink and capture types and exit")
	fs.BoolVarP(&o.help, "help", "h", false, "Print usage information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.help || o.list {
		return o, nil
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.tone <= 0 && o.play == "" {
		return nil, fmt.Errorf("%w: tone frequency %v", config.ErrInvalidConfig, o.tone)
	}
	if o.duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", config.ErrInvalidConfig)
	}
	if o.duration == 0 && o.play == "" {
		o.duration = 5 * time.Second
	}
	if o.cfg.InputChannels > 0 && o.cfg.Capture == "" {
		o.cfg.Capture = "pulse:"
	}

	return o, nil
}

const helpString = `Drive a renderer into a file, a device or a websocket

Usage: audbridge [OPTION]...

Stream:
  -r, --rate=NUM            Sample rate, in Hz (default: 44100)
  -c, --channels=NUM        Output channels, 1 to 6 (default: 2)
  -f, --frames=NUM          Frames per block (default: 128)
  -l, --live                Run at device speed instead of as fast as possible

Output:
  -o, --sink=TAG:PATH       wav:FILE, pulse:, ws:ADDR, null:, null:realtime
                            (default: wav:out.wav)
      --bit-depth=NUM       16, 24 or 32 for wav output (default: 16)
      --latency=DURATION    Device latency target (default: 20ms)

Input (live only):
  -i, --input-channels=NUM  Captured channels, 0 to disable (default: 0)
      --capture=TAG:PATH    pulse:, tone:HZ, file:FILE (default: pulse:)
  -m, --monitor             Mix captured input into the output

Renderer:
  -p, --play=FILE           Play a wav, mp3, ogg or aiff file
      --loop                Loop the file
  -t, --tone=HZ             Play a sine tone instead (default: 440)
  -d, --duration=DURATION   Stop after this long

Miscellaneous:
      --log-level=SPEC      level[,TAG=level]... tags: BRDG CAPT SINK PULS RSRC MAIN
      --list                List sink and capture types and exit
  -h, --help                Print this help message and exit

Every setting also reads AUDBRIDGE_* environment variables.`

func help() {
	color.New(color.FgCyan, color.Bold).Println("audbridge")
	fmt.Println(helpString)
}
