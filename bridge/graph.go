// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"errors"
	"fmt"
	"slices"
)

// StageKind says what a stage in a Graph is.
type StageKind int

const (
	StageBranch StageKind = iota
	StageInterleaver
	StageSink
	StageCapture
)

func (k StageKind) String() string {
	switch k {
	case StageBranch:
		return "branch"
	case StageInterleaver:
		return "interleaver"
	case StageSink:
		return "sink"
	case StageCapture:
		return "capture"
	default:
		return "unknown"
	}
}

type Stage struct {
	Name string
	Kind StageKind
}

type Link struct {
	From, To string
}

// Graph is the bridge topology written down before anything is built.
// Validate checks all of it at once, so a bad graph never leaves half a
// bridge running.
type Graph struct {
	Stages []Stage
	Links  []Link
}

var (
	ErrDuplicateStage = errors.New("duplicate stage")
	ErrUnknownStage   = errors.New("link references unknown stage")
	ErrUnlinkedStage  = errors.New("stage has no links")
	ErrBadLink        = errors.New("link not allowed")
	ErrDuplicateLink  = errors.New("duplicate link")
)

func branchName(i int) string { return fmt.Sprintf("branch%d", i) }

// NewGraph describes the standard topology: every output branch feeds
// the interleaver, which feeds the sink. A capture stage is added when
// withCapture is set; it feeds the pull task directly and has no links.
func NewGraph(outputs int, withCapture bool) *Graph {
	g := &Graph{}
	for i := range outputs {
		g.Stages = append(g.Stages, Stage{Name: branchName(i), Kind: StageBranch})
		g.Links = append(g.Links, Link{From: branchName(i), To: "interleaver"})
	}
	g.Stages = append(g.Stages,
		Stage{Name: "interleaver", Kind: StageInterleaver},
		Stage{Name: "sink", Kind: StageSink},
	)
	g.Links = append(g.Links, Link{From: "interleaver", To: "sink"})

	if withCapture {
		g.Stages = append(g.Stages, Stage{Name: "capture", Kind: StageCapture})
	}

	return g
}

// Branches returns the branch stages in declaration order, which is
// output channel order.
func (g *Graph) Branches() []Stage {
	var out []Stage
	for _, s := range g.Stages {
		if s.Kind == StageBranch {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that stage names are unique, that every link joins two
// declared stages along an allowed edge, that no link is repeated and no
// branch feeds more than one stage, and that every stage except the
// capture stage takes part in a link. All problems are reported together.
func (g *Graph) Validate() error {
	var errs []error

	kinds := make(map[string]StageKind, len(g.Stages))
	for _, s := range g.Stages {
		if _, dup := kinds[s.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateStage, s.Name))
			continue
		}
		kinds[s.Name] = s.Kind
	}

	used := make(map[string]bool, len(g.Stages))
	seen := make(map[Link]bool, len(g.Links))
	fed := make(map[string]bool, len(g.Links))
	for _, l := range g.Links {
		if seen[l] {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrDuplicateLink, l.From, l.To))
			continue
		}
		seen[l] = true

		from, okFrom := kinds[l.From]
		to, okTo := kinds[l.To]
		if !okFrom || !okTo {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrUnknownStage, l.From, l.To))
			continue
		}
		if !allowed(from, to) {
			errs = append(errs, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrBadLink, l.From, from, l.To, to))
			continue
		}
		if from == StageBranch && fed[l.From] {
			errs = append(errs, fmt.Errorf("%w: %s feeds more than one stage", ErrDuplicateLink, l.From))
			continue
		}
		fed[l.From] = true
		used[l.From], used[l.To] = true, true
	}

	var names []string
	for _, s := range g.Stages {
		if s.Kind != StageCapture && !used[s.Name] {
			names = append(names, s.Name)
		}
	}
	slices.Sort(names)
	names = slices.Compact(names)
	for _, n := range names {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnlinkedStage, n))
	}

	if len(g.Branches()) == 0 {
		errs = append(errs, fmt.Errorf("%w: no output branches", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

func allowed(from, to StageKind) bool {
	switch from {
	case StageBranch:
		return to == StageInterleaver
	case StageInterleaver:
		return to == StageSink
	default:
		return false
	}
}
