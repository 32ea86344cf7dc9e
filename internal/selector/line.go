package selector

import (
	"strconv"
	"strings"
)

// lineSelector is a parsed "path:N" or "path:N-M" selector.
type lineSelector struct {
	path      string
	startLine int
	endLine   int
}

// parseLineSelector recognizes the line-range selector form. The string
// must contain exactly one colon (to distinguish it from path:kind:name)
// and the trailing token must be digits or digits-digits with positive
// values.
func parseLineSelector(s string) (lineSelector, bool) {
	if strings.Count(s, ":") != 1 {
		return lineSelector{}, false
	}
	i := strings.LastIndex(s, ":")
	path, spec := s[:i], s[i+1:]

	if lo, hi, ok := strings.Cut(spec, "-"); ok {
		start, err1 := strconv.Atoi(lo)
		end, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || !allDigits(lo) || !allDigits(hi) || start <= 0 || end <= 0 {
			return lineSelector{}, false
		}
		return lineSelector{path: path, startLine: start, endLine: end}, true
	}

	if !allDigits(spec) {
		return lineSelector{}, false
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n <= 0 {
		return lineSelector{}, false
	}
	return lineSelector{path: path, startLine: n, endLine: n}, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
