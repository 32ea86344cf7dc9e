// Package lang provides scanner-based structural parsers that extract
// nodes from source files. Parsers emit the shared node schema; the
// resolver and patch engine never depend on parser internals.
package lang

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/apcooley/grafty/internal/models"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)

// Markdown extracts headings as nested nodes. A heading's span runs from
// its own line to the line before the next heading of the same or higher
// level (or EOF).
type Markdown struct {
	// IDWidth is the truncation width for node ids; zero means the
	// default.
	IDWidth int
}

// NewMarkdown returns a markdown parser with the default id width.
func NewMarkdown() *Markdown {
	return &Markdown{IDWidth: models.DefaultIDWidth}
}

// Parse extracts md_heading nodes from raw Markdown bytes. YAML
// frontmatter between leading --- delimiters is validated and skipped;
// headings inside fenced code blocks are ignored.
func (p *Markdown) Parse(path string, data []byte) ([]*models.Node, error) {
	content, _ := normalizeForScan(string(data))
	lines := strings.Split(content, "\n")

	bodyStart := skipFrontmatter(lines)

	type open struct {
		node  *models.Node
		level int
	}
	var nodes []*models.Node
	var stack []open
	inFence := false
	lastLine := len(lines)
	// Trailing empty element from a final newline is not a line.
	if lastLine > 0 && lines[lastLine-1] == "" {
		lastLine--
	}

	closeTo := func(level, endLine int) {
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack[len(stack)-1].node.EndLine = endLine
			stack = stack[:len(stack)-1]
		}
	}

	for i := bodyStart; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := len(m[1])
		name := strings.TrimSpace(m[2])
		lineNo := i + 1

		closeTo(level, lineNo-1)

		n := &models.Node{
			Kind:      "md_heading",
			Name:      name,
			Path:      path,
			StartLine: lineNo,
			EndLine:   lineNo,
			Meta:      map[string]string{"heading_level": strconv.Itoa(level)},
		}
		n.ID = models.ComputeID(path, n.Kind, n.Name, n.StartLine, "", p.width())

		if len(stack) > 0 {
			parent := stack[len(stack)-1].node
			n.ParentID = parent.ID
			parent.ChildrenIDs = append(parent.ChildrenIDs, n.ID)
		}
		nodes = append(nodes, n)
		stack = append(stack, open{node: n, level: level})
	}
	closeTo(0, lastLine)

	return nodes, nil
}

func (p *Markdown) width() int {
	if p.IDWidth > 0 {
		return p.IDWidth
	}
	return models.DefaultIDWidth
}

// skipFrontmatter returns the index of the first body line, skipping a
// leading YAML frontmatter block when present and parseable.
func skipFrontmatter(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			block := strings.Join(lines[1:i], "\n")
			var fm map[string]interface{}
			if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
				// Invalid YAML: treat everything as body.
				return 0
			}
			return i + 1
		}
	}
	return 0
}

// normalizeForScan converts CRLF to LF without changing line numbering.
func normalizeForScan(content string) (string, bool) {
	if strings.Contains(content, "\r\n") {
		return strings.ReplaceAll(content, "\r\n", "\n"), true
	}
	return content, false
}
