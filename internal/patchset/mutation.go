// Package patchset applies coordinated line-range mutations across many
// files with validation, dry-run diffing, snapshot/rollback, and an
// optional version-control commit step.
package patchset

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/apcooley/grafty/internal/textedit"
)

// FileMutation is a single line-range edit addressed directly by
// path+range; no selector resolution happens at this layer.
type FileMutation struct {
	FilePath      string          `json:"file_path"`
	OperationKind textedit.OpKind `json:"operation_kind"`
	StartLine     int             `json:"start_line"`
	EndLine       int             `json:"end_line"`
	Text          string          `json:"text,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// Validate checks the mutation's own fields (kind vocabulary, positive
// 1-indexed lines, ordering). File-relative checks live in ValidateAll.
func (m FileMutation) Validate() error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.FilePath, validation.Required),
		validation.Field(&m.OperationKind, validation.Required,
			validation.In(textedit.OpReplace, textedit.OpInsert, textedit.OpDelete)),
		validation.Field(&m.StartLine, validation.Required, validation.Min(1)),
		validation.Field(&m.EndLine, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if m.StartLine > m.EndLine {
		return fmt.Errorf("start_line %d > end_line %d", m.StartLine, m.EndLine)
	}
	return nil
}

// Span converts the mutation into a buffer operation.
func (m FileMutation) Span() textedit.Span {
	return textedit.Span{
		Kind:      m.OperationKind,
		StartLine: m.StartLine,
		EndLine:   m.EndLine,
		Text:      m.Text,
	}
}

// SimpleFormat renders the mutation in the line-oriented form
// path:kind:start:end[:text].
func (m FileMutation) SimpleFormat() string {
	parts := []string{
		m.FilePath,
		string(m.OperationKind),
		strconv.Itoa(m.StartLine),
		strconv.Itoa(m.EndLine),
	}
	if m.Text != "" {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, ":")
}

// parseSimple parses one path:kind:start:end[:text] line.
func parseSimple(line string) (FileMutation, error) {
	parts := strings.SplitN(line, ":", 5)
	if len(parts) < 4 {
		return FileMutation{}, fmt.Errorf("need path:kind:start:end[:text], got %q", line)
	}
	start, err := strconv.Atoi(parts[2])
	if err != nil {
		return FileMutation{}, fmt.Errorf("invalid start_line in %q", line)
	}
	end, err := strconv.Atoi(parts[3])
	if err != nil {
		return FileMutation{}, fmt.Errorf("invalid end_line in %q", line)
	}
	m := FileMutation{
		FilePath:      parts[0],
		OperationKind: textedit.OpKind(parts[1]),
		StartLine:     start,
		EndLine:       end,
	}
	if len(parts) == 5 {
		m.Text = parts[4]
	}
	return m, nil
}
