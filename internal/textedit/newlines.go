// Package textedit implements the line-range patch primitives: newline
// canonicalization, buffer splicing, unified diff rendering, and
// drift-checked atomic file writes.
package textedit

import "strings"

// NewlineMode records the newline convention of a file so it can be
// restored byte-for-byte on write.
type NewlineMode string

const (
	// ModeLF is the canonical internal form.
	ModeLF NewlineMode = "lf"
	// ModeCRLF marks content that used Windows line endings on disk.
	ModeCRLF NewlineMode = "crlf"
)

// Normalize converts CRLF line endings to LF and reports which convention
// the input used. Restore(Normalize(x)) == x for LF-only and CRLF content.
func Normalize(content string) (string, NewlineMode) {
	if strings.Contains(content, "\r\n") {
		return strings.ReplaceAll(content, "\r\n", "\n"), ModeCRLF
	}
	return content, ModeLF
}

// Restore converts canonical LF content back to the recorded convention.
func Restore(content string, mode NewlineMode) string {
	if mode == ModeCRLF {
		return strings.ReplaceAll(content, "\n", "\r\n")
	}
	return content
}

// splitLines splits content into lines keeping the trailing newline on
// each element, without a phantom empty element after a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// LineCount returns the number of lines in content, counting a trailing
// partial line.
func LineCount(content string) int {
	return len(splitLines(content))
}

// LineRange extracts the text of lines [startLine, endLine] (1-indexed,
// inclusive), clamped to the buffer.
func LineRange(content string, startLine, endLine int) string {
	lines := splitLines(content)
	start := clamp(startLine-1, 0, len(lines))
	end := clamp(endLine, start, len(lines))
	return strings.Join(lines[start:end], "")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
