package history

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExclude lists the high-frequency actions left out of history unless
// an exclude list is given explicitly.
var DefaultExclude = []string{"Tick", "Render"}

// Filter decides which action names are recorded. Patterns support `*` and
// `?`. An action must match one include pattern (when any are set) and no
// exclude pattern.
type Filter struct {
	include []pattern
	exclude []pattern
}

type pattern struct {
	src string
	g   glob.Glob
}

// NewFilter compiles include and exclude patterns.
func NewFilter(include, exclude []string) (Filter, error) {
	in, err := compile(include)
	if err != nil {
		return Filter{}, fmt.Errorf("include: %w", err)
	}
	ex, err := compile(exclude)
	if err != nil {
		return Filter{}, fmt.Errorf("exclude: %w", err)
	}
	return Filter{include: in, exclude: ex}, nil
}

// DefaultFilter records everything except DefaultExclude.
func DefaultFilter() Filter {
	f, _ := NewFilter(nil, DefaultExclude)
	return f
}

// AllowAll records every action.
func AllowAll() Filter {
	return Filter{}
}

// ParseFilter builds a Filter from comma-separated pattern lists. An empty
// exclude list selects DefaultExclude; "-" disables exclusion.
func ParseFilter(include, exclude string) (Filter, error) {
	ex := DefaultExclude
	switch strings.TrimSpace(exclude) {
	case "":
	case "-":
		ex = nil
	default:
		ex = splitList(exclude)
	}
	return NewFilter(splitList(include), ex)
}

// Allow reports whether name passes the filter.
func (f Filter) Allow(name string) bool {
	if len(f.include) > 0 && !matchAny(f.include, name) {
		return false
	}
	return !matchAny(f.exclude, name)
}

func (f Filter) String() string {
	return fmt.Sprintf("include=%s exclude=%s", join(f.include), join(f.exclude))
}

func compile(srcs []string) ([]pattern, error) {
	out := make([]pattern, 0, len(srcs))
	for _, s := range srcs {
		g, err := glob.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", s, err)
		}
		out = append(out, pattern{src: s, g: g})
	}
	return out, nil
}

func matchAny(ps []pattern, name string) bool {
	for _, p := range ps {
		if p.g.Match(name) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func join(ps []pattern) string {
	if len(ps) == 0 {
		return "*"
	}
	srcs := make([]string, len(ps))
	for i, p := range ps {
		srcs[i] = p.src
	}
	return strings.Join(srcs, ",")
}
