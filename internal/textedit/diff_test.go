package textedit

import (
	"strings"
	"testing"
)

func TestUnifiedDiffHeaders(t *testing.T) {
	diff, err := UnifiedDiff("a\nb\n", "a\nc\n", "notes/x.md", DefaultContext)
	if err != nil {
		t.Fatalf("UnifiedDiff: %v", err)
	}
	if !strings.Contains(diff, "--- a/notes/x.md") {
		t.Errorf("missing from header:\n%s", diff)
	}
	if !strings.Contains(diff, "+++ b/notes/x.md") {
		t.Errorf("missing to header:\n%s", diff)
	}
	if !strings.Contains(diff, "-b") || !strings.Contains(diff, "+c") {
		t.Errorf("missing hunk lines:\n%s", diff)
	}
}

func TestUnifiedDiffIdentical(t *testing.T) {
	diff, err := UnifiedDiff("same\n", "same\n", "x.md", 3)
	if err != nil {
		t.Fatalf("UnifiedDiff: %v", err)
	}
	if diff != "" {
		t.Errorf("expected empty diff, got %q", diff)
	}
}

func TestFormatSummary(t *testing.T) {
	diff, err := UnifiedDiff("a\nb\nc\n", "a\nX\nY\nc\n", "x.md", 1)
	if err != nil {
		t.Fatalf("UnifiedDiff: %v", err)
	}
	got := FormatSummary(diff)
	if got != "1 file(s), +2 -1 lines" {
		t.Errorf("summary = %q", got)
	}
}
