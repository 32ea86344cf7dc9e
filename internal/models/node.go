// Package models defines the domain types for Grafty: structural nodes,
// per-file indices, and selector resolution results.
package models

import (
	"fmt"
	"time"

	"github.com/apcooley/grafty/internal/checksum"
)

// DefaultIDWidth is the number of hex characters kept from a node's
// SHA-256 identity digest. Truncation admits collisions in very large
// trees; widening is a deliberate per-caller decision, not automatic.
const DefaultIDWidth = 16

// Node is one structural unit (function, heading, class, ...) in one file.
//
// Parent and children are weak references: id strings resolved through a
// FileIndex or Resolver lookup, never direct pointers. A node belongs to
// exactly one file and its line range is 1-indexed and inclusive.
type Node struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`

	// Byte offsets are optional; both zero means "not recorded".
	StartByte int `json:"start_byte,omitempty"`
	EndByte   int `json:"end_byte,omitempty"`

	ParentID    string   `json:"parent_id,omitempty"`
	ChildrenIDs []string `json:"children_ids,omitempty"`

	// Signature disambiguates same-named units and participates in the id.
	Signature string `json:"signature,omitempty"`

	// Meta carries parser-specific metadata (qualified name, heading
	// level, doc snippet, ...). The core passes it through unchanged.
	Meta map[string]string `json:"meta,omitempty"`
}

// ComputeID derives the stable node id from the identity tuple. The same
// tuple always yields the same id, so reindexing unchanged content is
// idempotent. The digest is truncated to width hex characters.
func ComputeID(path, kind, name string, startLine int, signature string, width int) string {
	content := fmt.Sprintf("%s:%s:%s:%d", path, kind, name, startLine)
	if signature != "" {
		content += ":" + signature
	}
	return checksum.Short([]byte(content), width)
}

// Span returns the number of lines the node covers.
func (n *Node) Span() int {
	return n.EndLine - n.StartLine
}

// FileIndex is the full node set of one file, immutable once built. Any
// mutation of the underlying file invalidates it; callers must reindex
// before resolving against the new content.
type FileIndex struct {
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	MTime       time.Time `json:"mtime"`
	Nodes       []*Node   `json:"nodes"`

	byID map[string]*Node
}

// NewFileIndex builds a FileIndex and its id lookup map.
func NewFileIndex(path, contentHash string, mtime time.Time, nodes []*Node) *FileIndex {
	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return &FileIndex{
		Path:        path,
		ContentHash: contentHash,
		MTime:       mtime,
		Nodes:       nodes,
		byID:        byID,
	}
}

// Node returns the node with the given id, if present in this file.
func (fi *FileIndex) Node(id string) (*Node, bool) {
	n, ok := fi.byID[id]
	return n, ok
}

// ResolveStatus tags the outcome of a selector resolution.
type ResolveStatus int

const (
	// StatusNotFound means no node matched the selector.
	StatusNotFound ResolveStatus = iota
	// StatusResolved means exactly one node matched.
	StatusResolved
	// StatusAmbiguous means more than one node matched.
	StatusAmbiguous
)

// String returns the wire name of the status.
func (s ResolveStatus) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// MarshalJSON encodes the status by its wire name.
func (s ResolveStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its wire name.
func (s *ResolveStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"resolved"`:
		*s = StatusResolved
	case `"ambiguous"`:
		*s = StatusAmbiguous
	case `"not_found"`:
		*s = StatusNotFound
	default:
		return fmt.Errorf("models: unknown resolve status: %s", data)
	}
	return nil
}

// SelectorResult is the tagged outcome of resolving a selector. Exactly
// one payload is populated, determined by Status.
type SelectorResult struct {
	Status     ResolveStatus `json:"status"`
	Node       *Node         `json:"node,omitempty"`       // Resolved
	Candidates []*Node       `json:"candidates,omitempty"` // Ambiguous, ordered
	Reason     string        `json:"reason,omitempty"`     // NotFound
}

// Resolved constructs a successful single-match result.
func Resolved(n *Node) SelectorResult {
	return SelectorResult{Status: StatusResolved, Node: n}
}

// Ambiguous constructs a multi-match result. The candidate order is
// meaningful (most specific or highest scoring first).
func Ambiguous(candidates []*Node) SelectorResult {
	return SelectorResult{Status: StatusAmbiguous, Candidates: candidates}
}

// NotFound constructs a no-match result with a descriptive reason.
func NotFound(reason string) SelectorResult {
	return SelectorResult{Status: StatusNotFound, Reason: reason}
}

// IsResolved reports whether exactly one node matched.
func (r SelectorResult) IsResolved() bool {
	return r.Status == StatusResolved
}
