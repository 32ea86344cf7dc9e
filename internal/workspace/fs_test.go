package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, []string{".md", ".py"})
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, fs
}

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	_, fs := tempFS(t)
	for _, rel := range []string{"../outside.md", "a/../../outside.md", "/etc/passwd"} {
		if _, err := fs.SafePath(rel); err == nil {
			t.Errorf("SafePath(%q) accepted", rel)
		}
	}
}

func TestSafePathAcceptsNested(t *testing.T) {
	dir, fs := tempFS(t)
	got, err := fs.SafePath("a/b/c.md")
	if err != nil {
		t.Fatalf("SafePath: %v", err)
	}
	if got != filepath.Join(dir, "a", "b", "c.md") {
		t.Errorf("resolved = %q", got)
	}
}

func TestRead(t *testing.T) {
	dir, fs := tempFS(t)
	write(t, dir, "note.md", "# hi\n")
	data, err := fs.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "# hi\n" {
		t.Errorf("content = %q", data)
	}
}

func TestListFiltersByExtension(t *testing.T) {
	dir, fs := tempFS(t)
	write(t, dir, "a.md", "# a\n")
	write(t, dir, "sub/b.py", "def b():\n    pass\n")
	write(t, dir, "c.txt", "skip\n")

	metas, err := fs.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("listed %d files, want 2", len(metas))
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("%s missing checksum", m.Path)
		}
		if filepath.IsAbs(m.Path) {
			t.Errorf("%s is absolute, want root-relative", m.Path)
		}
	}
}

func TestIndexable(t *testing.T) {
	_, fs := tempFS(t)
	if !fs.Indexable("x/y.md") {
		t.Error("md not indexable")
	}
	if fs.Indexable("x/y.rs") {
		t.Error("rs indexable")
	}
}
