// Package testutil provides shared test helpers for setting up
// workspaces and catalogs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apcooley/grafty/internal/catalog"
	"github.com/apcooley/grafty/internal/indexer"
	"github.com/apcooley/grafty/internal/workspace"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "grafty-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with an FS over
// the default indexable extensions.
func TestWorkspace(t *testing.T) (string, *workspace.FS) {
	t.Helper()
	dir := t.TempDir()
	ws, err := workspace.NewFS(dir, indexer.Default().Extensions())
	if err != nil {
		t.Fatal(err)
	}
	return dir, ws
}

// WriteFile writes content under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
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
