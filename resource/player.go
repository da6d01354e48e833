// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"sync"
)

// Player renders a Bus block by block. A mono bus is played on every
// output; otherwise output c plays plane c and extra outputs are silent.
// With Monitor set, captured input is mixed into the matching outputs.
type Player struct {
	Loop    bool
	Gain    float32
	Monitor bool

	bus *Bus

	mtx  sync.Mutex
	pos  int
	done bool
}

func NewPlayer(bus *Bus) *Player {
	return &Player{bus: bus, Gain: 1}
}

func (p *Player) Render(input, output [][]float32, frameCount int) {
	p.mtx.Lock()
	start, done := p.pos, p.done
	total := p.bus.Frames()

	n := 0
	if !done {
		n = min(frameCount, total-start)
	}
	p.pos += n
	if p.pos >= total {
		if p.Loop && total > 0 {
			p.pos = 0
		} else {
			p.done = true
		}
	}
	p.mtx.Unlock()

	for c, out := range output {
		plane := p.plane(c)
		if plane == nil || n == 0 {
			clear(out)
		} else {
			for i, s := range plane[start : start+n] {
				out[i] = s * p.Gain
			}
			clear(out[n:])
		}

		if p.Monitor && len(input) > 0 {
			in := input[c%len(input)]
			for i := range min(len(in), len(out)) {
				out[i] += in[i]
			}
		}
	}
}

func (p *Player) plane(c int) []float32 {
	switch {
	case p.bus.Channels() == 1:
		return p.bus.Planes[0]
	case c < p.bus.Channels():
		return p.bus.Planes[c]
	default:
		return nil
	}
}

// Done reports whether a non-looping player reached the end.
func (p *Player) Done() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.done
}

// Position is the next frame to be played.
func (p *Player) Position() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.pos
}

// Rewind restarts playback from the first frame.
func (p *Player) Rewind() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.pos, p.done = 0, false
}
