// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedBitDepth  = errors.New("unsupported WAV bit depth")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrEncoderClosed        = errors.New("WAV encoder closed")
)
