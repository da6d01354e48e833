// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts a source to a fixed output channel count.
//
//   - same count: pass-through
//   - many to one: average of all source channels
//   - one to many: the mono signal is copied to every output channel
//   - otherwise: the first channels are kept in order, missing ones are silent
type ChannelMapper struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.channels }

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if m.channels <= 0 {
		return 0, ErrInvalidChannels
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case m.channels == 1:
		inv := 1 / float32(in)
		for f := range frames {
			var sum float32
			for _, s := range m.tmp[f*in : (f+1)*in] {
				sum += s
			}
			dst[f] = sum * inv
		}
	case in == 1:
		for f := range frames {
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = m.tmp[f]
			}
		}
	default:
		keep := min(in, m.channels)
		for f := range frames {
			out := dst[f*m.channels : (f+1)*m.channels]
			copy(out[:keep], m.tmp[f*in:f*in+keep])
			clear(out[keep:])
		}
	}

	return frames * m.channels, err
}
