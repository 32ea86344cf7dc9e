package selector

import (
	"regexp"
	"strings"
)

// compileGlob translates a shell-style glob (*, ?, [seq]) into an
// anchored regexp. '*' matches any run of characters including '/', which
// keeps patterns like "*validate*" and "src/*" permissive the way callers
// expect for node names and file paths.
func compileGlob(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := strings.IndexByte(pattern[i+1:], ']')
			if j < 0 {
				b.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			class := pattern[i+1 : i+1+j]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += j + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`$`)
	re, err := regexp.Compile(b.String())
	if err != nil {
		// A malformed character class degenerates to a literal match.
		return regexp.MustCompile(`(?s)^` + regexp.QuoteMeta(pattern) + `$`)
	}
	return re
}

func globMatch(re *regexp.Regexp, s string) bool {
	return re.MatchString(s)
}
