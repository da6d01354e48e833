// SPDX-License-Identifier: EPL-2.0

package audbridge_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ik5/audbridge"
	"github.com/ik5/audbridge/bridge"
	"github.com/ik5/audbridge/formats/wav"
	"github.com/ik5/audbridge/sink"
)

// sine renders a 440 Hz tone on every output channel.
type sine struct {
	rate  int
	phase float64
}

func (s *sine) Render(_, output [][]float32, frameCount int) {
	step := 2 * math.Pi * 440 / float64(s.rate)
	for i := range frameCount {
		v := float32(0.5 * math.Sin(s.phase))
		for _, ch := range output {
			ch[i] = v
		}
		s.phase += step
	}
}

func Example_renderToWAV() {
	dir, _ := os.MkdirTemp("", "audbridge")
	defer os.RemoveAll(dir)

	f, err := os.Create(filepath.Join(dir, "tone.wav"))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	cfg := bridge.Config{SampleRate: 8000, OutputChannels: 2, FrameCount: 128}
	frames, err := audbridge.RenderToWAV(context.Background(), cfg, &sine{rate: 8000}, f, 10)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("rendered frames:", frames)

	f.Seek(0, 0)
	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("decoded:", src.SampleRate(), "Hz,", src.Channels(), "channels")

	// Output:
	// rendered frames: 1280
	// decoded: 8000 Hz, 2 channels
}

func Example_render() {
	mem := &sink.Memory{}
	cfg := bridge.Config{SampleRate: 44100, OutputChannels: 2, FrameCount: 64}

	render := bridge.RenderFunc(func(_, output [][]float32, _ int) {
		for c, ch := range output {
			for i := range ch {
				ch[i] = float32(c)
			}
		}
	})

	if _, err := audbridge.Render(context.Background(), cfg, render, mem, 3); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("blocks:", mem.Blocks())
	fmt.Println("first frame:", mem.Frames()[:2])
	fmt.Println("sink closed:", mem.Closed())

	// Output:
	// blocks: 3
	// first frame: [0 1]
	// sink closed: true
}
