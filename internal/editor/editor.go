// Package editor applies structural edits (replace, insert, delete) to a
// single file through an in-memory buffer, with unified-diff previews and
// a drift-checked atomic write.
package editor

import (
	"fmt"

	"github.com/apcooley/grafty/internal/apperr"
	"github.com/apcooley/grafty/internal/models"
	"github.com/apcooley/grafty/internal/textedit"
)

// InsertPosition names where text is inserted relative to a node.
type InsertPosition string

const (
	Before      InsertPosition = "before"
	After       InsertPosition = "after"
	InsideStart InsertPosition = "inside-start"
	InsideEnd   InsertPosition = "inside-end"
)

// Editor buffers edits against one file. Construction captures the
// on-disk content, hash, and newline convention as the baseline; edits
// compose in memory and nothing touches disk until Write.
type Editor struct {
	path        string
	original    string
	baselineSum string
	mode        textedit.NewlineMode
	current     string
}

// New opens the file behind the given index and captures its baseline.
func New(fi *models.FileIndex) (*Editor, error) {
	return Open(fi.Path)
}

// Open opens the file at path directly.
func Open(path string) (*Editor, error) {
	content, sum, _, err := textedit.ReadFileWithHash(path)
	if err != nil {
		return nil, fmt.Errorf("editor: open: %w", err)
	}
	normalized, mode := textedit.Normalize(content)
	return &Editor{
		path:        path,
		original:    content,
		baselineSum: sum,
		mode:        mode,
		current:     normalized,
	}, nil
}

// Path returns the file this editor operates on.
func (e *Editor) Path() string { return e.path }

// Content returns the current (canonical LF) buffer.
func (e *Editor) Content() string { return e.current }

// checkNode refuses nodes that belong to a different file. Cross-file
// mutation through a single-file editor is an error, never a redirect.
func (e *Editor) checkNode(n *models.Node) error {
	if n.Path != e.path {
		return fmt.Errorf("editor: node %s belongs to %s, not %s: %w",
			n.ID, n.Path, e.path, apperr.ErrMismatchedFile)
	}
	return nil
}

func (e *Editor) apply(op textedit.Span) error {
	next, err := textedit.Apply(e.current, op)
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	e.current = next
	return nil
}

// Replace substitutes the node's line range with text.
func (e *Editor) Replace(n *models.Node, text string) error {
	if err := e.checkNode(n); err != nil {
		return err
	}
	return e.apply(textedit.Span{
		Kind:      textedit.OpReplace,
		StartLine: n.StartLine,
		EndLine:   n.EndLine,
		Text:      text,
	})
}

// InsertAt inserts text immediately before the given 1-indexed line.
func (e *Editor) InsertAt(line int, text string) error {
	return e.apply(textedit.Span{
		Kind:      textedit.OpInsert,
		StartLine: line,
		EndLine:   line,
		Text:      text,
	})
}

// Insert inserts text relative to a node at the given position.
func (e *Editor) Insert(n *models.Node, pos InsertPosition, text string) error {
	if err := e.checkNode(n); err != nil {
		return err
	}
	var line int
	switch pos {
	case Before:
		line = n.StartLine
	case After:
		line = n.EndLine + 1
	case InsideStart:
		line = n.StartLine + 1
	case InsideEnd:
		line = n.EndLine
	default:
		return fmt.Errorf("editor: unknown insert position: %q", pos)
	}
	return e.InsertAt(line, text)
}

// Delete removes the node's line range.
func (e *Editor) Delete(n *models.Node) error {
	if err := e.checkNode(n); err != nil {
		return err
	}
	return e.apply(textedit.Span{
		Kind:      textedit.OpDelete,
		StartLine: n.StartLine,
		EndLine:   n.EndLine,
	})
}

// Reset discards buffered edits, restoring the baseline content.
func (e *Editor) Reset() {
	normalized, _ := textedit.Normalize(e.original)
	e.current = normalized
}

// GeneratePatch renders the unified diff between the pristine original
// and the current buffer. This is the preview artifact shown before any
// write.
func (e *Editor) GeneratePatch() (string, error) {
	normalized, _ := textedit.Normalize(e.original)
	return textedit.UnifiedDiff(normalized, e.current, e.path, textedit.DefaultContext)
}

// Write persists the buffer. Unless force is set, the file's current hash
// must still match the baseline captured at Open (optimistic
// concurrency); drift fails the write with nothing touched. The original
// newline convention is restored and the write is temp+rename atomic.
func (e *Editor) Write(force, backup bool) error {
	if !force {
		if err := textedit.CheckDrift(e.path, e.baselineSum); err != nil {
			return fmt.Errorf("editor: %w", err)
		}
	}
	if err := textedit.WriteAtomic(e.path, e.current, backup, e.mode); err != nil {
		return fmt.Errorf("editor: write: %w", err)
	}
	return nil
}
