// SPDX-License-Identifier: EPL-2.0

// Package resource decodes audio files into planar buffers a renderer can
// play, and keeps the most recently used ones around.
package resource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/ik5/audbridge/audio"
	"github.com/ik5/audbridge/formats"
)

var (
	ErrUnknownFormat = errors.New("no decoder for resource")
	ErrEmpty         = errors.New("resource has no audio")
)

// DefaultCacheSize is the number of decoded resources kept by NewLoader
// when given a size of zero.
const DefaultCacheSize = 16

// Bus is a fully decoded resource, one plane per channel.
type Bus struct {
	Name      string
	Rate      int
	Planes    [][]float32
	Positions []audio.ChannelPosition
}

func (b *Bus) Channels() int { return len(b.Planes) }

func (b *Bus) Frames() int {
	if len(b.Planes) == 0 {
		return 0
	}
	return len(b.Planes[0])
}

func (b *Bus) Duration() time.Duration {
	if b.Rate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Rate)
}

type cacheKey struct {
	name string
	rate int
}

// Loader opens resources by name. The extension picks the decoder.
type Loader struct {
	// Open returns the raw bytes of a resource. It defaults to os.Open.
	Open func(name string) (io.ReadCloser, error)

	reg *audio.Registry

	mtx   sync.Mutex
	cache *lru.Cache
}

// NewLoader uses reg for decoding, or every bundled decoder when reg is
// nil.
func NewLoader(reg *audio.Registry, cacheSize int) *Loader {
	if reg == nil {
		reg = formats.NewRegistry()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache := lru.New(cacheSize)
	cache.OnEvicted = func(key lru.Key, _ any) {
		k := key.(cacheKey)
		log.Debugf("Evicted %s at %d Hz", k.name, k.rate)
	}

	return &Loader{
		Open:  func(name string) (io.ReadCloser, error) { return os.Open(name) },
		reg:   reg,
		cache: cache,
	}
}

// Load returns the resource decoded and converted to rate. Repeated loads
// of the same name and rate share one Bus; callers must not modify it.
func (l *Loader) Load(name string, rate int) (*Bus, error) {
	key := cacheKey{name, rate}

	l.mtx.Lock()
	if v, ok := l.cache.Get(key); ok {
		l.mtx.Unlock()
		return v.(*Bus), nil
	}
	l.mtx.Unlock()

	src, err := l.OpenSource(name)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	planes, err := audio.ReadPlanar(src, rate, 0)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if len(planes) == 0 || len(planes[0]) == 0 {
		return nil, fmt.Errorf("load %s: %w", name, ErrEmpty)
	}

	bus := &Bus{
		Name:      name,
		Rate:      rate,
		Planes:    planes,
		Positions: audio.Layout(len(planes)),
	}
	log.Debugf("Loaded %s: %d channels, %v at %d Hz", name, bus.Channels(), bus.Duration(), rate)

	l.mtx.Lock()
	l.cache.Add(key, bus)
	l.mtx.Unlock()

	return bus, nil
}

// Cached is the number of decoded resources held.
func (l *Loader) Cached() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.cache.Len()
}

// Forget drops every cached resource.
func (l *Loader) Forget() {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.cache.Clear()
}

// OpenSource decodes name as a stream. Closing the source closes the
// underlying file.
func (l *Loader) OpenSource(name string) (audio.Source, error) {
	dec, ok := l.reg.ForPath(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %v)", ErrUnknownFormat, name, l.reg.Formats())
	}

	rc, err := l.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	src, err := dec.Decode(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return &fileSource{Source: src, file: rc}, nil
}

type fileSource struct {
	audio.Source
	file io.Closer
}

func (f *fileSource) Close() error {
	return errors.Join(f.Source.Close(), f.file.Close())
}
