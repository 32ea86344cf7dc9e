// Package indexer builds FileIndex values by dispatching files to
// structural parsers keyed by extension. The dispatch table is explicit
// and injected, so alternate parser sets can be used per invocation.
package indexer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apcooley/grafty/internal/checksum"
	"github.com/apcooley/grafty/internal/lang"
	"github.com/apcooley/grafty/internal/models"
)

// Parser extracts the ordered node sequence of one file. Implementations
// must keep parent/children ids internally consistent and emit stable
// ids across repeated parses of unchanged content.
type Parser interface {
	Parse(path string, data []byte) ([]*models.Node, error)
}

// Indexer maps file extensions (with leading dot) to parsers.
type Indexer struct {
	parsers map[string]Parser
}

// New creates an Indexer with an explicit extension → parser table.
func New(parsers map[string]Parser) *Indexer {
	return &Indexer{parsers: parsers}
}

// Default returns an Indexer with the built-in scanner parsers.
func Default() *Indexer {
	md := lang.NewMarkdown()
	py := lang.NewPython()
	return New(map[string]Parser{
		".md":       md,
		".markdown": md,
		".py":       py,
	})
}

// Extensions returns the sorted list of extensions this indexer handles.
func (ix *Indexer) Extensions() []string {
	out := make([]string, 0, len(ix.parsers))
	for ext := range ix.parsers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IndexFile reads and indexes a single file. Files with no registered
// parser still produce a hashed (empty) index so drift detection works.
func (ix *Indexer) IndexFile(path string) (*models.FileIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: read %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: stat %s: %w", path, err)
	}
	return ix.IndexBytes(path, data, info.ModTime())
}

// IndexBytes indexes already-read content; path is recorded on every
// node and used for parser dispatch.
func (ix *Indexer) IndexBytes(path string, data []byte, mtime time.Time) (*models.FileIndex, error) {
	var nodes []*models.Node
	if p, ok := ix.parsers[filepath.Ext(path)]; ok {
		parsed, err := p.Parse(path, data)
		if err != nil {
			return nil, fmt.Errorf("indexer: parse %s: %w", path, err)
		}
		nodes = parsed
	}
	return models.NewFileIndex(path, checksum.Sum(data), mtime, nodes), nil
}

// IndexFiles indexes multiple files, logging and skipping failures.
func (ix *Indexer) IndexFiles(paths []string, logger *slog.Logger) map[string]*models.FileIndex {
	out := make(map[string]*models.FileIndex, len(paths))
	for _, p := range paths {
		fi, err := ix.IndexFile(p)
		if err != nil {
			if logger != nil {
				logger.Warn("indexer: skipping file",
					slog.String("path", p), slog.String("error", err.Error()))
			}
			continue
		}
		out[p] = fi
	}
	return out
}

// IndexDir walks root and indexes every file with a registered parser.
func (ix *Indexer) IndexDir(root string, logger *slog.Logger) (map[string]*models.FileIndex, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := ix.parsers[filepath.Ext(p)]; ok {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexer: walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return ix.IndexFiles(paths, logger), nil
}
