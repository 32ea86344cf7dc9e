package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apcooley/grafty/internal/models"
)

// UpsertIndex replaces the stored file row and its node set within a
// single transaction. Node order is preserved so indexes round-trip.
func (db *DB) UpsertIndex(fi *models.FileIndex) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, mtime)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum = excluded.checksum,
			mtime    = excluded.mtime
	`, fi.Path, fi.ContentHash, fi.MTime)
	if err != nil {
		return fmt.Errorf("catalog: upsert file: %w", err)
	}

	// Replace nodes: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM nodes WHERE path = ?`, fi.Path); err != nil {
		return fmt.Errorf("catalog: clear nodes: %w", err)
	}
	if len(fi.Nodes) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO nodes (id, path, kind, name, start_line, end_line,
				start_byte, end_byte, parent_id, signature, meta, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("catalog: prepare node insert: %w", err)
		}
		defer stmt.Close()
		for i, n := range fi.Nodes {
			metaJSON, _ := json.Marshal(n.Meta)
			if _, err := stmt.Exec(n.ID, n.Path, n.Kind, n.Name,
				n.StartLine, n.EndLine, n.StartByte, n.EndByte,
				n.ParentID, n.Signature, string(metaJSON), i); err != nil {
				return fmt.Errorf("catalog: insert node %s: %w", n.ID, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and its nodes from the catalog.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM nodes WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// AllChecksums returns path → checksum for every catalogued file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// LoadAll rebuilds every FileIndex from the catalog. Children ids are
// reconstructed from parent links in stored node order.
func (db *DB) LoadAll() (map[string]*models.FileIndex, error) {
	fileRows, err := db.conn.Query(`SELECT path, checksum, mtime FROM files`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load files: %w", err)
	}
	defer fileRows.Close()

	type fileRow struct {
		checksum string
		mtime    time.Time
	}
	files := make(map[string]fileRow)
	for fileRows.Next() {
		var p string
		var fr fileRow
		if err := fileRows.Scan(&p, &fr.checksum, &fr.mtime); err != nil {
			return nil, err
		}
		files[p] = fr
	}
	if err := fileRows.Err(); err != nil {
		return nil, err
	}

	nodeRows, err := db.conn.Query(`
		SELECT id, path, kind, name, start_line, end_line,
			start_byte, end_byte, parent_id, signature, meta
		FROM nodes ORDER BY path, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load nodes: %w", err)
	}
	defer nodeRows.Close()

	nodesByPath := make(map[string][]*models.Node)
	byID := make(map[string]*models.Node)
	for nodeRows.Next() {
		n := &models.Node{}
		var metaJSON string
		if err := nodeRows.Scan(&n.ID, &n.Path, &n.Kind, &n.Name,
			&n.StartLine, &n.EndLine, &n.StartByte, &n.EndByte,
			&n.ParentID, &n.Signature, &metaJSON); err != nil {
			return nil, err
		}
		if metaJSON != "" && metaJSON != "{}" {
			if err := json.Unmarshal([]byte(metaJSON), &n.Meta); err != nil {
				return nil, fmt.Errorf("catalog: decode meta for %s: %w", n.ID, err)
			}
		}
		nodesByPath[n.Path] = append(nodesByPath[n.Path], n)
		byID[n.ID] = n
	}
	if err := nodeRows.Err(); err != nil {
		return nil, err
	}

	for _, nodes := range nodesByPath {
		for _, n := range nodes {
			if n.ParentID == "" {
				continue
			}
			if parent, ok := byID[n.ParentID]; ok {
				parent.ChildrenIDs = append(parent.ChildrenIDs, n.ID)
			}
		}
	}

	out := make(map[string]*models.FileIndex, len(files))
	for p, fr := range files {
		out[p] = models.NewFileIndex(p, fr.checksum, fr.mtime, nodesByPath[p])
	}
	return out, nil
}
