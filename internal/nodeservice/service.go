// Package nodeservice coordinates the workspace, the node catalog, and
// the patch engine for the serve-mode surfaces (HTTP API and MCP).
package nodeservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/apcooley/grafty/internal/apperr"
	"github.com/apcooley/grafty/internal/catalog"
	"github.com/apcooley/grafty/internal/indexer"
	"github.com/apcooley/grafty/internal/models"
	"github.com/apcooley/grafty/internal/patchset"
	"github.com/apcooley/grafty/internal/selector"
	"github.com/apcooley/grafty/internal/textedit"
	"github.com/apcooley/grafty/internal/workspace"
)

// NodeItem is a lightweight node in a list response.
type NodeItem struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Signature string `json:"signature,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
}

// NodeDetail is the full representation of a node including its text.
type NodeDetail struct {
	Node     *models.Node `json:"node"`
	Content  string       `json:"content"`
	Checksum string       `json:"checksum"`
}

// Service coordinates workspace and catalog operations.
type Service struct {
	ws *workspace.FS
	db *catalog.DB
	ix *indexer.Indexer
}

// NewService creates a new node service.
func NewService(ws *workspace.FS, db *catalog.DB, ix *indexer.Indexer) *Service {
	return &Service{ws: ws, db: db, ix: ix}
}

// resolver rebuilds a Resolver from the catalog's current state.
func (s *Service) resolver() (*selector.Resolver, error) {
	indices, err := s.db.LoadAll()
	if err != nil {
		return nil, err
	}
	return selector.New(indices), nil
}

// ListNodes returns every catalogued node, optionally filtered by a
// combined glob selector (pathGlob[:kindGlob[:nameGlob]]).
func (s *Service) ListNodes(_ context.Context, query string) ([]NodeItem, error) {
	r, err := s.resolver()
	if err != nil {
		return nil, err
	}
	var nodes []*models.Node
	if query == "" {
		nodes = r.Nodes()
	} else {
		nodes = r.QueryBySelector(query)
	}
	items := make([]NodeItem, len(nodes))
	for i, n := range nodes {
		items[i] = NodeItem{
			ID:        n.ID,
			Kind:      n.Kind,
			Name:      n.Name,
			Path:      n.Path,
			StartLine: n.StartLine,
			EndLine:   n.EndLine,
			Signature: n.Signature,
			ParentID:  n.ParentID,
		}
	}
	return items, nil
}

// Resolve resolves a selector string against the catalog.
func (s *Service) Resolve(_ context.Context, sel string) (models.SelectorResult, error) {
	r, err := s.resolver()
	if err != nil {
		return models.SelectorResult{}, err
	}
	return r.Resolve(sel), nil
}

// GetNode resolves a selector and returns the node with its text.
// Ambiguous and unresolved selectors map to apperr sentinels so callers
// can distinguish them from transport failures.
func (s *Service) GetNode(_ context.Context, sel string) (*NodeDetail, error) {
	r, err := s.resolver()
	if err != nil {
		return nil, err
	}
	res := r.Resolve(sel)
	if !res.IsResolved() {
		if res.Status == models.StatusAmbiguous {
			return nil, apperr.ErrValidation
		}
		return nil, apperr.ErrNotFound
	}
	n := res.Node

	data, err := s.ws.Read(n.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	normalized, _ := textedit.Normalize(string(data))
	fi, _ := r.Index(n.Path)
	sum := ""
	if fi != nil {
		sum = fi.ContentHash
	}
	return &NodeDetail{
		Node:     n,
		Content:  textedit.LineRange(normalized, n.StartLine, n.EndLine),
		Checksum: sum,
	}, nil
}

// ListFiles returns metadata for every indexable workspace file.
func (s *Service) ListFiles(_ context.Context) ([]workspace.FileMeta, error) {
	return s.ws.List("")
}

// checkMutationPaths rejects any mutation whose path would resolve
// outside the workspace root. Serve-mode clients supply these paths, so
// they get the same jail the read surface enforces via SafePath.
func (s *Service) checkMutationPaths(muts []patchset.FileMutation) []string {
	var errs []string
	for _, m := range muts {
		if _, err := s.ws.SafePath(m.FilePath); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// PreviewPatch validates the mutations and returns per-file unified
// diffs without writing anything.
func (s *Service) PreviewPatch(_ context.Context, muts []patchset.FileMutation) patchset.Result {
	if errs := s.checkMutationPaths(muts); len(errs) > 0 {
		return patchset.Result{
			Message: fmt.Sprintf("validation failed: %d error(s)", len(errs)),
			Errors:  errs,
		}
	}
	ps := patchset.New()
	for _, m := range muts {
		ps.Add(m)
	}
	return ps.GenerateDiffs(s.ws.Root())
}

// ApplyPatch applies the mutations atomically against the workspace
// root and re-indexes the modified files on success.
func (s *Service) ApplyPatch(_ context.Context, muts []patchset.FileMutation, opts patchset.ApplyOptions) patchset.Result {
	if errs := s.checkMutationPaths(muts); len(errs) > 0 {
		return patchset.Result{
			Message: fmt.Sprintf("validation failed: %d error(s)", len(errs)),
			Errors:  errs,
		}
	}
	ps := patchset.New()
	for _, m := range muts {
		ps.Add(m)
	}
	res := ps.ApplyAtomic(s.ws.Root(), opts)
	if res.Success {
		for _, path := range res.FilesModified {
			s.reindexFile(path)
		}
	}
	return res
}

// reindexFile refreshes one file's catalog entry after a write.
func (s *Service) reindexFile(path string) {
	data, err := s.ws.Read(path)
	if err != nil {
		return
	}
	fi, err := s.ix.IndexBytes(path, data, time.Now())
	if err != nil {
		return
	}
	_ = s.db.UpsertIndex(fi)
}
