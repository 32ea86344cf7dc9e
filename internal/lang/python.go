package lang

import (
	"regexp"
	"strings"

	"github.com/apcooley/grafty/internal/models"
)

var pyDefRe = regexp.MustCompile(`^(\s*)(def|class)\s+([A-Za-z_]\w*)\s*(\([^)]*\))?`)

// Python extracts classes and functions with a line scanner. Spans are
// indentation-based: a definition ends at the last non-blank line before
// the next statement at the same or lower indent.
type Python struct {
	IDWidth int
}

// NewPython returns a python parser with the default id width.
func NewPython() *Python {
	return &Python{IDWidth: models.DefaultIDWidth}
}

type pyOpen struct {
	node   *models.Node
	indent int
	class  bool
}

// Parse extracts py_class, py_function, and py_method nodes.
func (p *Python) Parse(path string, data []byte) ([]*models.Node, error) {
	content, _ := normalizeForScan(string(data))
	lines := strings.Split(content, "\n")

	var nodes []*models.Node
	var stack []pyOpen
	lastContent := 0

	closeTo := func(indent int) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack[len(stack)-1].node.EndLine = lastContent
			stack = stack[:len(stack)-1]
		}
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lineNo := i + 1
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		if !strings.HasPrefix(trimmed, "#") {
			// A real statement at this indent closes any deeper or
			// same-level open definitions.
			if m := pyDefRe.FindStringSubmatch(line); m != nil {
				closeTo(indent)

				isClass := m[2] == "class"
				kind := "py_function"
				if isClass {
					kind = "py_class"
				} else if len(stack) > 0 && stack[len(stack)-1].class {
					kind = "py_method"
				}

				n := &models.Node{
					Kind:      kind,
					Name:      m[3],
					Path:      path,
					StartLine: lineNo,
					EndLine:   lineNo,
					Signature: m[4],
				}
				if len(stack) > 0 {
					parent := stack[len(stack)-1].node
					n.ParentID = parent.ID
					n.Meta = map[string]string{"qualname": qualname(stack) + "." + n.Name}
				}
				n.ID = models.ComputeID(path, n.Kind, n.Name, n.StartLine, n.Signature, p.width())
				if n.ParentID != "" {
					parent := stack[len(stack)-1].node
					parent.ChildrenIDs = append(parent.ChildrenIDs, n.ID)
				}

				nodes = append(nodes, n)
				stack = append(stack, pyOpen{node: n, indent: indent, class: isClass})
				lastContent = lineNo
				continue
			}
			closeTo(indent)
		}
		lastContent = lineNo
	}
	closeTo(0)

	return nodes, nil
}

func (p *Python) width() int {
	if p.IDWidth > 0 {
		return p.IDWidth
	}
	return models.DefaultIDWidth
}

func qualname(stack []pyOpen) string {
	parts := make([]string, len(stack))
	for i, s := range stack {
		parts[i] = s.node.Name
	}
	return strings.Join(parts, ".")
}
