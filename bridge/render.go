// SPDX-License-Identifier: EPL-2.0

package bridge

// RenderCallback produces one block of output. input holds one plane per
// captured channel (nil when there is no capture), output one plane per
// output channel, each frameCount samples long. The planes are only valid
// during the call.
type RenderCallback interface {
	Render(input, output [][]float32, frameCount int)
}

// RenderFunc adapts a function to RenderCallback.
type RenderFunc func(input, output [][]float32, frameCount int)

func (f RenderFunc) Render(input, output [][]float32, frameCount int) {
	f(input, output, frameCount)
}
