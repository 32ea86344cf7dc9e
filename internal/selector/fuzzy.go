package selector

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// fuzzyThreshold is the minimum similarity ratio a candidate must score
// to survive the fuzzy fallback strategy.
const fuzzyThreshold = 0.6

// similarity returns a normalized [0,1] ratio between two strings using
// difflib's sequence matcher over their characters.
func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
