package textedit

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines in unified hunks.
const DefaultContext = 3

// UnifiedDiff renders a classic unified patch (---/+++ headers, @@ hunks)
// between original and modified content of the file at path. The headers
// carry the conventional a/ and b/ prefixes. context <= 0 falls back to
// DefaultContext.
func UnifiedDiff(original, modified, path string, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	u := difflib.UnifiedDiff{
		A:        splitLines(original),
		B:        splitLines(modified),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("textedit: unified diff %s: %w", path, err)
	}
	return s, nil
}

// FormatSummary extracts a short "N file(s), +a -r lines" summary from a
// unified diff.
func FormatSummary(diff string) string {
	files := make(map[string]struct{})
	added, removed := 0, 0
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"):
			name := strings.TrimPrefix(line, "+++ ")
			if i := strings.Index(name, "\t"); i >= 0 {
				name = name[:i]
			}
			files[strings.TrimPrefix(name, "b/")] = struct{}{}
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return fmt.Sprintf("%d file(s), +%d -%d lines", len(files), added, removed)
}
