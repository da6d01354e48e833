// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/capture"
)

var defaultLoader = NewLoader(nil, 0)

func init() {
	// file:<path> captures from a decoded file at real-time speed.
	capture.Register("file", func(path string, _ capture.Options) (audio.Source, error) {
		src, err := defaultLoader.OpenSource(path)
		if err != nil {
			return nil, err
		}
		return capture.NewPaced(src), nil
	})
}
