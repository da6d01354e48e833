// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// Decoder handles 8, 16, 24 and 32 bit PCM with any channel count and
// sample rate. Samples come out as float32 in [-1, 1]:
//
//	f, _ := os.Open("click.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Encoder is the streaming counterpart used by the offline file sink. It
// takes interleaved float32 frames and writes 16, 24 or 32 bit PCM:
//
//	enc, err := wav.NewEncoder(f, 44100, 2, 16)
//	err = enc.Write(frames)
//	err = enc.Close()
//
// Close must be called or the RIFF sizes in the header stay unset.
package wav
