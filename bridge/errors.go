// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"errors"
	"fmt"

	"github.com/ik5/audbridge/audio"
)

var (
	// ErrNotLinked is a push into a branch with nothing consuming it.
	ErrNotLinked = errors.New("branch not linked")
	// ErrFlushing ends a push that was interrupted by a stop. It is not
	// a failure.
	ErrFlushing = errors.New("bridge flushing")

	// ErrIncompleteBlock means a branch had nothing when the block was
	// assembled.
	ErrIncompleteBlock = errors.New("branch missing a block")

	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidConfig     = errors.New("invalid bridge config")
	ErrClosed            = errors.New("bridge closed")
	ErrTaskRunning       = errors.New("pull task is running")
)

// ConstructionError means a required element could not be created or is
// missing. The bridge is not usable.
type ConstructionError struct {
	Element string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Element, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// StarvationError is reported once when live input has been missing for
// Ticks consecutive ticks.
type StarvationError struct {
	Ticks int
}

func (e *StarvationError) Error() string {
	return fmt.Sprintf("capture starved for %d ticks", e.Ticks)
}

// PushError is a failed hand-over of an output buffer. It stops the
// bridge and puts it in the Error state.
type PushError struct {
	Branch   int
	Position audio.ChannelPosition
	Err      error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push branch %d (%s): %v", e.Branch, e.Position, e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }

// ErrorHandler receives errors raised on the pull task goroutine. It must
// not call back into the bridge state methods synchronously.
type ErrorHandler interface {
	HandleError(error)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(error)

func (f ErrorHandlerFunc) HandleError(err error) { f(err) }

// LogErrorHandler logs errors: push failures as errors, starvation as a
// warning.
type LogErrorHandler struct{}

func (LogErrorHandler) HandleError(err error) {
	var starve *StarvationError
	if errors.As(err, &starve) {
		log.Warnf("%v", err)
		return
	}

	log.Errorf("%v", err)
}
