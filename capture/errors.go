// SPDX-License-Identifier: EPL-2.0

package capture

import "errors"

var (
	// ErrNotReady is returned by queries that need the channel layout
	// while the graph is still discovering it.
	ErrNotReady = errors.New("capture graph not ready")
	ErrStarted  = errors.New("capture graph already started")
	ErrClosed   = errors.New("capture graph closed")

	ErrInvalidConfig = errors.New("invalid capture config")
)
