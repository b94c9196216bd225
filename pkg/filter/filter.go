// Package filter selects tests by name.
package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ethpandaops/testoor/pkg/suite"
)

// Select returns a tree in which every test whose path matches none of the
// patterns is Ignored. A test path is the slash-joined names of the suites
// below root followed by the test name, e.g. "Math/add". A pattern that
// matches a suite path selects the whole suite.
//
// Patterns use doublestar syntax. Without patterns root is returned as is.
// Invalid patterns are configuration errors.
func Select(root *suite.Suite, patterns []string) (*suite.Suite, error) {
	if len(patterns) == 0 {
		return root, nil
	}

	if err := ValidatePatterns(patterns); err != nil {
		return nil, err
	}

	return suite.Derive(root, func(parents []*suite.Suite, t *suite.Test) suite.Status {
		if Matches(patterns, TestPath(parents, t)) {
			return t.Status()
		}

		return suite.Ignored
	}), nil
}

// ValidatePatterns checks the syntax of every pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid filter pattern %q: %w", p, suite.ErrConfiguration)
		}
	}

	return nil
}

// Matches reports whether path, or one of its parent suite paths, matches one
// of the patterns.
func Matches(patterns []string, path string) bool {
	segments := strings.Split(path, "/")

	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")

		for _, pattern := range patterns {
			if matched, err := doublestar.Match(pattern, prefix); err == nil && matched {
				return true
			}
		}
	}

	return false
}

// TestPath returns the slash-joined path of t, the root suite excluded.
func TestPath(parents []*suite.Suite, t *suite.Test) string {
	names := make([]string, 0, len(parents))
	for _, p := range parents[1:] {
		names = append(names, p.Name())
	}

	return strings.Join(append(names, t.Name()), "/")
}
