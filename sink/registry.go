// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// OpenFunc opens a sink type. The meaning of path is up to the type.
type OpenFunc func(path string, opts Options) (Sink, error)

var (
	registryMtx sync.RWMutex
	registry    = map[string]OpenFunc{}
)

// Register makes a sink type available to Open under tag.
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

// Open a sink from its spec, a colon-separated tag and path:
//
//	spec = tag + ":" + path
func Open(spec string, opts Options) (Sink, error) {
	tag, path, _ := strings.Cut(spec, ":")
	log.Debugf("Opening sink %q (registered: %v)", spec, Types())

	registryMtx.RLock()
	open, found := registry[tag]
	registryMtx.RUnlock()

	if !found {
		return nil, errors.Errorf("sink type '%s' not registered", tag)
	}

	s, err := open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open sink '%s'", spec)
	}

	return s, nil
}

func init() {
	Register("null", func(path string, _ Options) (Sink, error) {
		return &Null{Realtime: path == "realtime"}, nil
	})
	Register("memory", func(string, Options) (Sink, error) {
		return &Memory{}, nil
	})
}
