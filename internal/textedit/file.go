package textedit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apcooley/grafty/internal/apperr"
	"github.com/apcooley/grafty/internal/checksum"
)

// ReadFileWithHash reads the file at path and returns its content, the
// hex SHA-256 of that content, and the modification time.
func ReadFileWithHash(path string) (content string, hash string, mtime time.Time, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("textedit: read %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("textedit: stat %s: %w", path, err)
	}
	return string(data), checksum.Sum(data), info.ModTime(), nil
}

// CheckDrift re-reads the file and compares its hash against expected.
// A mismatch returns an error wrapping apperr.ErrDrift.
func CheckDrift(path, expected string) error {
	_, actual, _, err := ReadFileWithHash(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("textedit: %s changed on disk: %w", path, apperr.ErrDrift)
	}
	return nil
}

// WriteAtomic writes content to path via a temp file in the same
// directory followed by a rename, so no half-written state is observable
// at the target path. The original newline convention is restored before
// writing. When backup is set, the current on-disk file is copied to
// <path>.bak first.
func WriteAtomic(path, content string, backup bool, mode NewlineMode) error {
	if backup {
		if existing, err := os.ReadFile(path); err == nil {
			if err := os.WriteFile(path+".bak", existing, 0o644); err != nil {
				return fmt.Errorf("textedit: write backup for %s: %w", path, err)
			}
		}
	}

	data := []byte(Restore(content, mode))
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".grafty-tmp-*")
	if err != nil {
		return fmt.Errorf("textedit: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("textedit: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("textedit: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("textedit: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("textedit: rename: %w", err)
	}
	success = true
	return nil
}
