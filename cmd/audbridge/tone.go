package main

import "math"

// tone renders a sine wave on every output channel, optionally mixing in
// the captured input.
type tone struct {
	freq    float64
	rate    int
	gain    float32
	monitor bool
	phase   float64
}

func (t *tone) Render(input, output [][]float32, frameCount int) {
	step := 2 * math.Pi * t.freq / float64(t.rate)
	for i := range frameCount {
		v := t.gain * float32(math.Sin(t.phase))
		for _, ch := range output {
			ch[i] = v
		}
		t.phase = math.Mod(t.phase+step, 2*math.Pi)
	}

	if !t.monitor || len(input) == 0 {
		return
	}
	for c, ch := range output {
		in := input[c%len(input)]
		for i := range min(len(in), len(ch)) {
			ch[i] += in[i]
		}
	}
}
