package reconciler

import (
	"regexp"
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// Patterns is a compiled comma-separated list of regular expressions.
// Matching is full-match, not search.
type Patterns []*regexp.Regexp

// ParsePatterns compiles a comma-separated list. Empty entries are ignored.
// A single bad expression fails the whole list with ErrInvalidFilter.
func ParsePatterns(list string) (Patterns, error) {
	var patterns Patterns
	for _, expr := range strings.Split(list, ",") {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return nil, types.Errorf(types.ErrInvalidFilter, "%q: %v", expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// MatchesAny reports whether name fully matches at least one pattern
func (p Patterns) MatchesAny(name string) bool {
	for _, re := range p {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Exclude drops every name matching any pattern
func (p Patterns) Exclude(names []string) []string {
	return filter(names, func(name string) bool { return !p.MatchesAny(name) })
}

// Include keeps only the names matching none of the patterns, the same
// selection as Exclude. It is not a "must match" filter.
func (p Patterns) Include(names []string) []string {
	return filter(names, func(name string) bool { return !p.MatchesAny(name) })
}

// Exclude parses list and drops every matching name
func Exclude(names []string, list string) ([]string, error) {
	patterns, err := ParsePatterns(list)
	if err != nil {
		return nil, err
	}
	return sorted(patterns.Exclude(names)), nil
}

// Include parses list and applies Patterns.Include
func Include(names []string, list string) ([]string, error) {
	patterns, err := ParsePatterns(list)
	if err != nil {
		return nil, err
	}
	return sorted(patterns.Include(names)), nil
}

func filter(names []string, keep func(string) bool) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if keep(name) {
			out = append(out, name)
		}
	}
	return out
}
