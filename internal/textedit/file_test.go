package textedit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apcooley/grafty/internal/apperr"
)

func tempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFileWithHash(t *testing.T) {
	path := tempFile(t, "hello\n")
	content, hash, _, err := ReadFileWithHash(path)
	if err != nil {
		t.Fatalf("ReadFileWithHash: %v", err)
	}
	if content != "hello\n" {
		t.Errorf("content = %q", content)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
}

func TestCheckDrift(t *testing.T) {
	path := tempFile(t, "v1\n")
	_, hash, _, err := ReadFileWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckDrift(path, hash); err != nil {
		t.Errorf("unexpected drift: %v", err)
	}

	if err := os.WriteFile(path, []byte("v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = CheckDrift(path, hash)
	if !errors.Is(err, apperr.ErrDrift) {
		t.Errorf("err = %v, want ErrDrift", err)
	}
}

func TestWriteAtomic(t *testing.T) {
	path := tempFile(t, "old\n")
	if err := WriteAtomic(path, "new\n", false, ModeLF); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new\n" {
		t.Errorf("content = %q", got)
	}
	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".grafty-tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestWriteAtomicBackup(t *testing.T) {
	path := tempFile(t, "original\n")
	if err := WriteAtomic(path, "changed\n", true, ModeLF); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(bak) != "original\n" {
		t.Errorf("backup = %q", bak)
	}
}

func TestWriteAtomicRestoresCRLF(t *testing.T) {
	path := tempFile(t, "a\r\nb\r\n")
	content, _, _, err := ReadFileWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	normalized, mode := Normalize(content)
	if err := WriteAtomic(path, normalized, false, mode); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "a\r\nb\r\n" {
		t.Errorf("content = %q, want CRLF preserved", got)
	}
}
