package indexer

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestIndexFileMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.md", "# Title\nbody\n")
	fi, err := Default().IndexFile(path)
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if len(fi.Nodes) != 1 || fi.Nodes[0].Kind != "md_heading" {
		t.Errorf("nodes = %+v", fi.Nodes)
	}
	if fi.ContentHash == "" {
		t.Error("missing content hash")
	}
}

func TestIndexFileUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.txt", "just text\n")
	fi, err := Default().IndexFile(path)
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if len(fi.Nodes) != 0 {
		t.Errorf("nodes = %d, want none", len(fi.Nodes))
	}
	if fi.ContentHash == "" {
		t.Error("unknown extension still needs a hash for drift checks")
	}
}

func TestIndexDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\n")
	writeFile(t, dir, "sub/b.py", "def b():\n    pass\n")
	writeFile(t, dir, "skip.txt", "nope\n")

	indices, err := Default().IndexDir(dir, discard())
	if err != nil {
		t.Fatalf("IndexDir: %v", err)
	}
	if len(indices) != 2 {
		t.Fatalf("indexed %d files, want 2", len(indices))
	}
	for path, fi := range indices {
		if len(fi.Nodes) != 1 {
			t.Errorf("%s has %d nodes", path, len(fi.Nodes))
		}
	}
}

func TestIndexFilesSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ok.md", "# OK\n")
	missing := filepath.Join(dir, "missing.md")

	indices := Default().IndexFiles([]string{good, missing}, discard())
	if len(indices) != 1 {
		t.Errorf("indexed %d files, want 1", len(indices))
	}
	if _, ok := indices[good]; !ok {
		t.Error("good file missing from result")
	}
}

func TestExtensions(t *testing.T) {
	exts := Default().Extensions()
	want := map[string]bool{".md": true, ".markdown": true, ".py": true}
	if len(exts) != len(want) {
		t.Fatalf("extensions = %v", exts)
	}
	for _, e := range exts {
		if !want[e] {
			t.Errorf("unexpected extension %s", e)
		}
	}
}
