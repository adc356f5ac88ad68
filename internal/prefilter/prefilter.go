// Package prefilter compiles a per-character set of trigger patterns into a
// single combined matcher (spec.md §4.C): a cheap admit/reject gate that runs
// before any per-trigger regex. Default-closed: a character with no
// configured patterns rejects every line.
package prefilter

import (
	"regexp"
	"strings"
)

// Predicate reports whether a line should be admitted for per-trigger
// matching. Safe for concurrent use; a given Predicate value never mutates.
type Predicate func(line string) bool

// Reject always returns false. It is the default-closed predicate used
// before any filter has been configured for a tailer (spec.md §4.C).
func Reject(string) bool { return false }

// Build compiles patterns into a single Predicate evaluating all of them in
// one pass per input line, the Go equivalent of the original's
// regex::RegexSet-backed closure. An empty pattern list yields Reject.
func Build(patterns []string) (Predicate, error) {
	if len(patterns) == 0 {
		return Reject, nil
	}

	combined := make([]string, 0, len(patterns))
	for _, p := range patterns {
		combined = append(combined, "(?:"+p+")")
	}

	re, err := regexp.Compile(strings.Join(combined, "|"))
	if err != nil {
		return nil, err
	}

	return func(line string) bool {
		return re.MatchString(line)
	}, nil
}
