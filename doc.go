// SPDX-License-Identifier: EPL-2.0

// Package audbridge connects a pull-model software renderer to an audio
// output, either offline into a file or live to a playback device, with
// optional microphone input fed back to the renderer.
//
// # Packages
//
//   - bridge: the bridge itself, its pull task and state controller
//   - capture: the live capture graph and capture sources
//   - sink: the output port and the built-in sinks (memory, null)
//   - sink/wavfile, sink/ws: WAV file and websocket sinks
//   - device/pulse: PulseAudio playback and capture
//   - resource: decoded audio resources and a player render callback
//   - audio, formats: PCM plumbing and the wav, mp3, aiff and vorbis decoders
//
// # Offline rendering
//
// The simplest use renders a fixed number of blocks into a WAV file:
//
//	cfg := bridge.Config{SampleRate: 44100, OutputChannels: 2, FrameCount: 128}
//	f, _ := os.Create("out.wav")
//	defer f.Close()
//
//	frames, err := audbridge.RenderToWAV(ctx, cfg, renderer, f, 1000)
//
// # Live playback
//
// A live bridge ticks at device speed once it reaches Playing:
//
//	cfg := bridge.Config{SampleRate: 48000, OutputChannels: 2, FrameCount: 256, Live: true}
//	b, err := bridge.New(cfg, renderer, pulse.NewPlaybackSink(20*time.Millisecond))
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	if err := b.Start(ctx); err != nil {
//	    return err
//	}
//
// Adding InputChannels and a capture source with bridge.WithCapture hands
// microphone blocks to the renderer's input planes.
package audbridge
