// SPDX-License-Identifier: EPL-2.0

// Package logging builds the tagged subsystem loggers used across the
// module on one github.com/decred/slog backend.
//
// Levels are configured with comma-separated directives. A bare level sets
// the default, "TAG=level" overrides one subsystem:
//
//	AUDBRIDGE_LOGLEVEL=info,CAPT=debug,PULS=trace
package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/decred/slog"
)

// EnvVar names the environment variable holding level directives.
const EnvVar = "AUDBRIDGE_LOGLEVEL"

// Subsystem tags.
const (
	TagBridge   = "BRDG"
	TagCapture  = "CAPT"
	TagSink     = "SINK"
	TagPulse    = "PULS"
	TagResource = "RSRC"
	TagMain     = "MAIN"
)

// Manager owns the backend and hands out one logger per tag.
type Manager struct {
	backend *slog.Backend

	mtx          sync.Mutex
	loggers      map[string]slog.Logger
	defaultLevel slog.Level
	tagLevels    map[string]slog.Level
}

func New(w io.Writer) *Manager {
	return &Manager{
		backend:      slog.NewBackend(w),
		loggers:      make(map[string]slog.Logger),
		defaultLevel: slog.LevelInfo,
		tagLevels:    make(map[string]slog.Level),
	}
}

// Logger returns the logger for tag, creating it on first use.
func (m *Manager) Logger(tag string) slog.Logger {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	tag = strings.ToUpper(tag)
	if l, ok := m.loggers[tag]; ok {
		return l
	}

	l := m.backend.Logger(tag)
	l.SetLevel(m.levelFor(tag))
	m.loggers[tag] = l

	return l
}

// Tags lists the subsystems created so far.
func (m *Manager) Tags() []string {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	tags := make([]string, 0, len(m.loggers))
	for t := range m.loggers {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return tags
}

// SetLevels applies directives to existing and future loggers. An empty
// string is a no-op.
func (m *Manager) SetLevels(directives string) error {
	def, tags, err := ParseDirectives(directives)
	if err != nil {
		return err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if def != nil {
		m.defaultLevel = *def
	}
	for t, l := range tags {
		m.tagLevels[t] = l
	}

	for t, l := range m.loggers {
		l.SetLevel(m.levelFor(t))
	}

	return nil
}

func (m *Manager) levelFor(tag string) slog.Level {
	if l, ok := m.tagLevels[tag]; ok {
		return l
	}

	return m.defaultLevel
}

// ParseDirectives splits "level,TAG=level,..." into an optional default
// level and per-tag levels.
func ParseDirectives(s string) (*slog.Level, map[string]slog.Level, error) {
	var def *slog.Level
	tags := make(map[string]slog.Level)

	for _, d := range strings.Split(s, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		tag, levelString, hasTag := strings.Cut(d, "=")
		if !hasTag {
			levelString = tag
		}

		level, err := ParseLevel(levelString)
		if err != nil {
			return nil, nil, fmt.Errorf("directive %q: %w", d, err)
		}

		if hasTag {
			tags[strings.ToUpper(strings.TrimSpace(tag))] = level
			continue
		}
		def = &level
	}

	return def, tags, nil
}

// ParseLevel accepts slog level names plus single-letter abbreviations.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "T":
		return slog.LevelTrace, nil
	case "D":
		return slog.LevelDebug, nil
	case "I":
		return slog.LevelInfo, nil
	case "W", "WARNING":
		return slog.LevelWarn, nil
	case "E":
		return slog.LevelError, nil
	case "C":
		return slog.LevelCritical, nil
	}

	l, ok := slog.LevelFromString(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return slog.LevelInfo, fmt.Errorf("invalid logging level %q", s)
	}

	return l, nil
}
