// SPDX-License-Identifier: EPL-2.0

// Package bridge drives a pull-model renderer and feeds its output to a
// sink.
//
// A Bridge owns one goroutine, the pull task. Each tick it optionally
// pulls one block of captured input, asks the RenderCallback for one block
// of planar output, and pushes every output channel into its branch. The
// interleaver collects one buffer per branch, writes the frame-major
// block to the sink and returns the buffers to their pool.
//
//	capture ─▶ pull task ─▶ branch0 ─┐
//	                      ─▶ branch1 ─┼─▶ interleaver ─▶ sink
//	                      ─▶ ...     ─┘
//
// Offline bridges tick as fast as the sink accepts blocks and start
// ticking in Paused. Live bridges only tick in Playing and skip a tick
// entirely when the capture graph cannot deliver every input channel.
//
// State changes go through SetState, which walks Null, Ready, Paused and
// Playing one step at a time. A failed push stops the task and puts the
// bridge in the Error state until it is taken back to Ready or Null.
package bridge
