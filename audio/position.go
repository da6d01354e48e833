// SPDX-License-Identifier: EPL-2.0

package audio

// ChannelPosition tags a single-channel buffer with its speaker position.
type ChannelPosition int

const (
	FrontLeft ChannelPosition = iota
	FrontRight
	Center
	LFE
	SurroundLeft
	SurroundRight
	Unknown
)

// positionTable is the fixed index to position layout shared by every
// bridge output. Index 2 doubles as mono.
var positionTable = [...]ChannelPosition{
	FrontLeft,
	FrontRight,
	Center,
	LFE,
	SurroundLeft,
	SurroundRight,
}

// MaxPositionedChannels is the number of channel indexes with a known position.
const MaxPositionedChannels = len(positionTable)

// PositionForIndex returns the position for channel index i, or Unknown when
// i falls outside the table.
func PositionForIndex(i int) ChannelPosition {
	if i < 0 || i >= len(positionTable) {
		return Unknown
	}

	return positionTable[i]
}

// Layout returns the positions for the first n channel indexes.
func Layout(n int) []ChannelPosition {
	if n <= 0 {
		return nil
	}

	out := make([]ChannelPosition, n)
	for i := range out {
		out[i] = PositionForIndex(i)
	}

	return out
}

// IsFront reports whether p is FrontLeft or FrontRight.
func (p ChannelPosition) IsFront() bool {
	return p == FrontLeft || p == FrontRight
}

func (p ChannelPosition) String() string {
	switch p {
	case FrontLeft:
		return "front-left"
	case FrontRight:
		return "front-right"
	case Center:
		return "center"
	case LFE:
		return "lfe"
	case SurroundLeft:
		return "surround-left"
	case SurroundRight:
		return "surround-right"
	default:
		return "unknown"
	}
}
