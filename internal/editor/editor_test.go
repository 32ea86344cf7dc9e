package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apcooley/grafty/internal/apperr"
	"github.com/apcooley/grafty/internal/models"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func nodeAt(path string, start, end int) *models.Node {
	return &models.Node{
		ID:        "test-node",
		Kind:      "md_heading",
		Name:      "Section",
		Path:      path,
		StartLine: start,
		EndLine:   end,
	}
}

func TestReplace(t *testing.T) {
	path := writeTemp(t, "line1\nline2\nline3\n")
	e, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Replace(nodeAt(path, 2, 2), "X"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if e.Content() != "line1\nX\nline3\n" {
		t.Errorf("content = %q", e.Content())
	}
}

func TestInsertPositions(t *testing.T) {
	cases := []struct {
		pos  InsertPosition
		want string
	}{
		{Before, "new\nline1\nline2\nline3\n"},
		{After, "line1\nline2\nline3\nnew\n"},
		{InsideStart, "line1\nnew\nline2\nline3\n"},
		{InsideEnd, "line1\nline2\nnew\nline3\n"},
	}
	for _, c := range cases {
		path := writeTemp(t, "line1\nline2\nline3\n")
		e, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := e.Insert(nodeAt(path, 1, 3), c.pos, "new"); err != nil {
			t.Fatalf("Insert(%s): %v", c.pos, err)
		}
		if e.Content() != c.want {
			t.Errorf("Insert(%s) = %q, want %q", c.pos, e.Content(), c.want)
		}
	}
}

func TestInsertUnknownPosition(t *testing.T) {
	path := writeTemp(t, "a\n")
	e, _ := Open(path)
	if err := e.Insert(nodeAt(path, 1, 1), "sideways", "x"); err == nil {
		t.Error("expected error for unknown position")
	}
}

func TestDelete(t *testing.T) {
	path := writeTemp(t, "line1\nline2\nline3\n")
	e, _ := Open(path)
	if err := e.Delete(nodeAt(path, 1, 2)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Content() != "line3\n" {
		t.Errorf("content = %q", e.Content())
	}
}

func TestMismatchedFile(t *testing.T) {
	path := writeTemp(t, "a\n")
	e, _ := Open(path)
	err := e.Replace(nodeAt("other/file.md", 1, 1), "x")
	if !errors.Is(err, apperr.ErrMismatchedFile) {
		t.Errorf("err = %v, want ErrMismatchedFile", err)
	}
}

func TestReset(t *testing.T) {
	path := writeTemp(t, "line1\nline2\n")
	e, _ := Open(path)
	_ = e.Replace(nodeAt(path, 1, 2), "gone")
	e.Reset()
	if e.Content() != "line1\nline2\n" {
		t.Errorf("content after reset = %q", e.Content())
	}
}

func TestGeneratePatch(t *testing.T) {
	path := writeTemp(t, "line1\nline2\n")
	e, _ := Open(path)
	_ = e.Replace(nodeAt(path, 2, 2), "changed")
	diff, err := e.GeneratePatch()
	if err != nil {
		t.Fatalf("GeneratePatch: %v", err)
	}
	if !strings.Contains(diff, "-line2") || !strings.Contains(diff, "+changed") {
		t.Errorf("diff = %q", diff)
	}
}

func TestWriteDriftDetected(t *testing.T) {
	path := writeTemp(t, "v1\n")
	e, _ := Open(path)
	_ = e.Replace(nodeAt(path, 1, 1), "edited")

	// Concurrent change after Open.
	if err := os.WriteFile(path, []byte("v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := e.Write(false, false)
	if !errors.Is(err, apperr.ErrDrift) {
		t.Errorf("err = %v, want ErrDrift", err)
	}
	// The drifted content must be untouched.
	got, _ := os.ReadFile(path)
	if string(got) != "v2\n" {
		t.Errorf("file = %q", got)
	}
}

func TestWriteForceOverridesDrift(t *testing.T) {
	path := writeTemp(t, "v1\n")
	e, _ := Open(path)
	_ = e.Replace(nodeAt(path, 1, 1), "edited")
	_ = os.WriteFile(path, []byte("v2\n"), 0o644)

	if err := e.Write(true, false); err != nil {
		t.Fatalf("Write(force): %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "edited\n" {
		t.Errorf("file = %q", got)
	}
}

func TestWritePreservesCRLF(t *testing.T) {
	path := writeTemp(t, "line1\r\nline2\r\n")
	e, _ := Open(path)
	if err := e.Replace(nodeAt(path, 2, 2), "X"); err != nil {
		t.Fatal(err)
	}
	if err := e.Write(false, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "line1\r\nX\r\n" {
		t.Errorf("file = %q", got)
	}
}
