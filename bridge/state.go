// SPDX-License-Identifier: EPL-2.0

package bridge

// State of a bridge. Transitions move one step at a time through
// Null, Ready, Paused and Playing.
type State int

const (
	Null State = iota
	Ready
	Paused
	Playing
	// Error is entered when a push fails. Only a transition to Ready or
	// Null leaves it.
	Error
)

func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Ready:
		return "ready"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case Error:
		return "error"
	default:
		return "invalid"
	}
}

// StateChangeReturn tells how a transition went.
type StateChangeReturn int

const (
	Success StateChangeReturn = iota
	// NoPreroll is returned by live bridges going to Paused: nothing is
	// produced until Playing.
	NoPreroll
	Failure
)

func (r StateChangeReturn) String() string {
	switch r {
	case Success:
		return "success"
	case NoPreroll:
		return "no-preroll"
	default:
		return "failure"
	}
}

// Mode is fixed when the bridge is created.
type Mode int

const (
	Offline Mode = iota
	Live
)

func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "offline"
}
