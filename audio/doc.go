// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks shared by the
// bridge, the capture graph and the resource loader.
//
//   - Source and Decoder, the pull-style PCM contract, plus a Registry of
//     decoders keyed by format
//   - Resampler and ChannelMapper, used as the converter and format filter
//     stages of live capture
//   - ChannelPosition and the fixed index to position table
//   - Buffer and BufferPool, the per-tick single-channel blocks
//   - Interleave, Deinterleave and ReadPlanar for moving between the
//     frame-major and planar layouts
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. Interleaved streams are frame-major:
// for stereo, L0 R0 L1 R1 and so on. Planar data is one slice per channel.
//
// # Reading
//
// ReadSamples returns io.EOF when the stream is finished. A final read may
// return samples together with io.EOF:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// # Buffers
//
// A Buffer has one owner at a time. The pool hands out zeroed buffers and
// counts how many are outstanding, which makes leaks visible in tests:
//
//	pool := audio.NewBufferPool(128)
//	b := pool.Get(audio.FrontLeft)
//	// fill b.Samples, hand b to the next stage
//	b.Release()
package audio
