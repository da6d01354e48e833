// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"io"
	"sync"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/internal/pacing"
)

// Paced makes a decoded source behave like a live one by holding each
// read back until its frames are due.
type Paced struct {
	src   audio.Source
	pacer *pacing.Pacer

	done chan struct{}
	once sync.Once
}

func NewPaced(src audio.Source) *Paced {
	return &Paced{
		src:   src,
		pacer: pacing.New(src.SampleRate()),
		done:  make(chan struct{}),
	}
}

func (p *Paced) SampleRate() int { return p.src.SampleRate() }
func (p *Paced) Channels() int   { return p.src.Channels() }

func (p *Paced) ReadSamples(dst []float32) (int, error) {
	select {
	case <-p.done:
		return 0, io.EOF
	default:
	}

	n, err := p.src.ReadSamples(dst)
	if n > 0 && !p.pacer.Wait(p.done, n/p.src.Channels()) {
		return 0, io.EOF
	}

	return n, err
}

// Close stops pacing at once; the wrapped source is closed too.
func (p *Paced) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		err = p.src.Close()
	})
	return err
}
