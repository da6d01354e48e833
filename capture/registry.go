// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ik5/audbridge/audio"
)

// Options are the hints a capture source gets. Sources may deliver a
// different format; the graph converts.
type Options struct {
	SampleRate int
	Channels   int
	Latency    time.Duration
}

// OpenFunc opens a capture source type.
type OpenFunc func(path string, opts Options) (audio.Source, error)

var (
	registryMtx sync.RWMutex
	registry    = map[string]OpenFunc{}
)

// Register makes a source type available to OpenSource under tag.
func Register(tag string, open OpenFunc) {
	registryMtx.Lock()
	defer registryMtx.Unlock()

	registry[tag] = open
}

// Types lists the registered tags.
func Types() []string {
	registryMtx.RLock()
	defer registryMtx.RUnlock()

	tags := make([]string, 0, len(registry))
	for t := range registry {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return tags
}

// OpenSource opens a source from a "tag:path" spec.
func OpenSource(spec string, opts Options) (audio.Source, error) {
	tag, path, _ := strings.Cut(spec, ":")
	log.Debugf("Opening capture source %q (registered: %v)", spec, Types())

	registryMtx.RLock()
	open, found := registry[tag]
	registryMtx.RUnlock()

	if !found {
		return nil, errors.Errorf("capture type '%s' not registered", tag)
	}

	src, err := open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open capture '%s'", spec)
	}

	return src, nil
}

func init() {
	// tone:<hz>, 440 Hz when empty.
	Register("tone", func(path string, opts Options) (audio.Source, error) {
		freq := 440.0
		if path != "" {
			f, err := strconv.ParseFloat(path, 64)
			if err != nil || f <= 0 {
				return nil, errors.Errorf("bad tone frequency '%s'", path)
			}
			freq = f
		}

		rate, channels := opts.SampleRate, opts.Channels
		if rate <= 0 {
			rate = 44100
		}
		if channels <= 0 {
			channels = 1
		}

		return NewToneSource(rate, channels, freq, 0.5), nil
	})
}
