package textedit

import "testing"

const threeLines = "line1\nline2\nline3\n"

func TestApplyReplace(t *testing.T) {
	got, err := Apply(threeLines, Span{Kind: OpReplace, StartLine: 2, EndLine: 2, Text: "X"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "line1\nX\nline3\n" {
		t.Errorf("replaced = %q", got)
	}
}

func TestApplyReplaceMultiLine(t *testing.T) {
	got, err := Apply(threeLines, Span{Kind: OpReplace, StartLine: 1, EndLine: 3, Text: "a\nb\n"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "a\nb\n" {
		t.Errorf("replaced = %q", got)
	}
}

func TestApplyInsert(t *testing.T) {
	got, err := Apply(threeLines, Span{Kind: OpInsert, StartLine: 2, EndLine: 2, Text: "new"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "line1\nnew\nline2\nline3\n" {
		t.Errorf("inserted = %q", got)
	}
}

func TestApplyInsertPastEndAppends(t *testing.T) {
	got, err := Apply(threeLines, Span{Kind: OpInsert, StartLine: 4, EndLine: 4, Text: "tail"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "line1\nline2\nline3\ntail\n" {
		t.Errorf("appended = %q", got)
	}
}

func TestApplyDelete(t *testing.T) {
	got, err := Apply(threeLines, Span{Kind: OpDelete, StartLine: 2, EndLine: 3})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "line1\n" {
		t.Errorf("deleted = %q", got)
	}
}

func TestApplyTrailingNewlineAdded(t *testing.T) {
	// Replacement text without a trailing newline must not merge with
	// the following line.
	got, err := Apply(threeLines, Span{Kind: OpReplace, StartLine: 1, EndLine: 1, Text: "X"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "X\nline2\nline3\n" {
		t.Errorf("replaced = %q", got)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	if _, err := Apply(threeLines, Span{Kind: "explode", StartLine: 1, EndLine: 1}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestKnownOp(t *testing.T) {
	for _, k := range []OpKind{OpReplace, OpInsert, OpDelete} {
		if !KnownOp(k) {
			t.Errorf("KnownOp(%q) = false", k)
		}
	}
	if KnownOp("rename") {
		t.Error("KnownOp(rename) = true")
	}
}
