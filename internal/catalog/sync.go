package catalog

import (
	"log/slog"

	"github.com/apcooley/grafty/internal/indexer"
	"github.com/apcooley/grafty/internal/workspace"
)

// Sync walks the workspace and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
func Sync(db *DB, ws *workspace.FS, ix *indexer.Indexer, logger *slog.Logger) error {
	metas, err := ws.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := ws.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexAndStore(db, ix, m, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexAndStore parses data and upserts the resulting index.
func indexAndStore(db *DB, ix *indexer.Indexer, meta workspace.FileMeta, data []byte) error {
	fi, err := ix.IndexBytes(meta.Path, data, meta.UpdatedAt)
	if err != nil {
		return err
	}
	return db.UpsertIndex(fi)
}
