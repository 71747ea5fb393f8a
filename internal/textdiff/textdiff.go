// Package textdiff renders unified diffs between page revisions.
package textdiff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Unified returns a unified diff of before and after for the page file name,
// or an empty string when both are identical. contextLines <= 0 selects DefaultContext.
func Unified(name, before, after string, contextLines int) (string, error) {
	if before == after {
		return "", nil
	}
	if contextLines <= 0 {
		contextLines = DefaultContext
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  contextLines,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}
	return diff, nil
}

// Stats counts added and removed lines of a unified diff.
func Stats(diff string) (added, removed int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// splitLines keeps line terminators and terminates the last line so a missing
// final newline does not glue two lines together in the output.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}
