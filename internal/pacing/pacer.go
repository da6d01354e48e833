// SPDX-License-Identifier: EPL-2.0

// Package pacing releases audio blocks at wall-clock speed.
package pacing

import (
	"sync"
	"time"
)

// Pacer tracks how many frames were produced since the first Wait and
// sleeps until the wall clock catches up with them.
type Pacer struct {
	rate int
	now  func() time.Time

	mtx    sync.Mutex
	start  time.Time
	frames int64
}

func New(rate int) *Pacer {
	return &Pacer{rate: rate, now: time.Now}
}

// Wait accounts for frames and blocks until they are due. It returns false
// if done fires first.
func (p *Pacer) Wait(done <-chan struct{}, frames int) bool {
	p.mtx.Lock()
	if p.start.IsZero() {
		p.start = p.now()
	}
	due := p.start.Add(p.durationLocked())
	p.frames += int64(frames)
	p.mtx.Unlock()

	d := due.Sub(p.now())
	if d <= 0 {
		select {
		case <-done:
			return false
		default:
			return true
		}
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}

// Elapsed is the media time accounted so far.
func (p *Pacer) Elapsed() time.Duration {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.durationLocked()
}

// Reset starts a new timeline on the next Wait.
func (p *Pacer) Reset() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.start = time.Time{}
	p.frames = 0
}

func (p *Pacer) durationLocked() time.Duration {
	if p.rate <= 0 {
		return 0
	}

	return time.Duration(p.frames) * time.Second / time.Duration(p.rate)
}

// BlockDuration is the playing time of frames at rate.
func BlockDuration(frames, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}

	return time.Duration(frames) * time.Second / time.Duration(rate)
}
