package textedit

import (
	"fmt"
	"strings"
)

// OpKind names a line-range operation.
type OpKind string

const (
	OpReplace OpKind = "replace"
	OpInsert  OpKind = "insert"
	OpDelete  OpKind = "delete"
)

// KnownOp reports whether kind is a recognized operation kind.
func KnownOp(kind OpKind) bool {
	switch kind {
	case OpReplace, OpInsert, OpDelete:
		return true
	}
	return false
}

// Span is one line-range edit against a canonical (LF) buffer.
// StartLine/EndLine are 1-indexed and inclusive; for OpInsert they are
// equal and mean "insert immediately before this line".
type Span struct {
	Kind      OpKind
	StartLine int
	EndLine   int
	Text      string
}

// Apply applies a single span to content and returns the new buffer.
// Replacement text that lacks a trailing newline gets one appended so the
// spliced lines never merge with the following line.
func Apply(content string, op Span) (string, error) {
	lines := splitLines(content)

	start := clamp(op.StartLine-1, 0, len(lines))
	end := clamp(op.EndLine, start, len(lines))

	switch op.Kind {
	case OpReplace:
		var b strings.Builder
		writeAll(&b, lines[:start])
		writeText(&b, op.Text)
		writeAll(&b, lines[end:])
		return b.String(), nil

	case OpInsert:
		var b strings.Builder
		writeAll(&b, lines[:start])
		writeText(&b, op.Text)
		writeAll(&b, lines[start:])
		return b.String(), nil

	case OpDelete:
		var b strings.Builder
		writeAll(&b, lines[:start])
		writeAll(&b, lines[end:])
		return b.String(), nil

	default:
		return "", fmt.Errorf("textedit: unknown operation kind: %q", op.Kind)
	}
}

func writeAll(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString(l)
	}
}

func writeText(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	b.WriteString(text)
}
