// Package selector resolves selector strings (node id, path:kind:name,
// path:N-M line ranges, fuzzy names) to structural nodes and provides
// read-only tree navigation and glob queries over indexed files.
package selector

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/apcooley/grafty/internal/models"
)

// maxFuzzyCandidates caps the ambiguous candidate list for fuzzy matches.
const maxFuzzyCandidates = 10

// Resolver resolves selectors against a set of file indices. It never
// returns an error: every resolution produces a SelectorResult.
type Resolver struct {
	indices map[string]*models.FileIndex

	byID   map[string]*models.Node
	byPath map[string][]*models.Node
	byKind map[string][]*models.Node

	// all holds every node in deterministic order (paths sorted, node
	// order within a file preserved) so fuzzy scoring and glob queries
	// are independent of map iteration order.
	all []*models.Node
}

// New builds a Resolver from a path → FileIndex map.
func New(indices map[string]*models.FileIndex) *Resolver {
	r := &Resolver{
		indices: indices,
		byID:    make(map[string]*models.Node),
		byPath:  make(map[string][]*models.Node),
		byKind:  make(map[string][]*models.Node),
	}

	paths := make([]string, 0, len(indices))
	for p := range indices {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		for _, n := range indices[p].Nodes {
			r.byID[n.ID] = n
			r.byPath[n.Path] = append(r.byPath[n.Path], n)
			r.byKind[n.Kind] = append(r.byKind[n.Kind], n)
			r.all = append(r.all, n)
		}
	}
	return r
}

// Index returns the FileIndex for path, if indexed.
func (r *Resolver) Index(path string) (*models.FileIndex, bool) {
	fi, ok := r.indices[path]
	return fi, ok
}

// NodeByID returns the node with the given id across all indexed files.
func (r *Resolver) NodeByID(id string) (*models.Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// Nodes returns every indexed node in deterministic order.
func (r *Resolver) Nodes() []*models.Node {
	return r.all
}

// Resolve resolves a selector string. Strategies are tried in order until
// one is decisive:
//
//  1. exact node id
//  2. line-range selector "path:N" / "path:N-M"
//  3. structural selector "path:kind:name" (name may be a /-separated
//     ancestor chain)
//  4. fuzzy name fallback over the whole string
func (r *Resolver) Resolve(sel string) models.SelectorResult {
	if n, ok := r.byID[sel]; ok {
		return models.Resolved(n)
	}

	if ls, ok := parseLineSelector(sel); ok {
		return r.resolveByLines(ls.path, ls.startLine, ls.endLine)
	}

	if strings.Count(sel, ":") >= 2 {
		parts := strings.SplitN(sel, ":", 3)
		return r.resolveByPathKindName(parts[0], parts[1], parts[2])
	}

	return r.resolveFuzzy(sel)
}

// nodesForPath returns the nodes of path, retrying with tilde-expanded
// and absolute-resolved comparison when the literal path has no index.
func (r *Resolver) nodesForPath(path string) []*models.Node {
	if nodes, ok := r.byPath[path]; ok {
		return nodes
	}
	want := normalizePath(path)
	for indexed, nodes := range r.byPath {
		if normalizePath(indexed) == want {
			return nodes
		}
	}
	return nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// resolveByLines finds nodes fully contained within [start, end] in path.
// Multiple hits are ordered most specific first (ascending span width,
// ties in encounter order).
func (r *Resolver) resolveByLines(path string, start, end int) models.SelectorResult {
	nodes := r.nodesForPath(path)
	if nodes == nil {
		return models.NotFound(fmt.Sprintf("file not indexed: %s", path))
	}

	var hits []*models.Node
	for _, n := range nodes {
		if n.StartLine >= start && n.EndLine <= end {
			hits = append(hits, n)
		}
	}

	switch len(hits) {
	case 0:
		return models.NotFound(fmt.Sprintf(
			"no node found in %s lines %d-%d. Nearby: %s",
			path, start, end, describeNearby(nodes, start)))
	case 1:
		return models.Resolved(hits[0])
	default:
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Span() < hits[j].Span()
		})
		return models.Ambiguous(hits)
	}
}

// describeNearby lists up to 3 nodes closest to line for guidance.
func describeNearby(nodes []*models.Node, line int) string {
	sorted := make([]*models.Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return distance(sorted[i], line) < distance(sorted[j], line)
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = fmt.Sprintf("%s (%d-%d)", n.Name, n.StartLine, n.EndLine)
	}
	return strings.Join(parts, ", ")
}

func distance(n *models.Node, line int) int {
	d := n.StartLine - line
	if d < 0 {
		d = -d
	}
	return d
}

// resolveByPathKindName resolves a structural selector. A name with
// /-separated segments denotes a nested ancestor chain matched against
// the node's ancestry (trailing sequence).
func (r *Resolver) resolveByPathKindName(path, kind, name string) models.SelectorResult {
	nameParts := strings.Split(name, "/")
	nested := len(nameParts) > 1

	var candidates []*models.Node
	for _, n := range r.nodesForPath(path) {
		if n.Kind != kind {
			continue
		}
		if nested {
			if r.matchesAncestry(n, nameParts) {
				candidates = append(candidates, n)
			}
		} else if n.Name == name {
			candidates = append(candidates, n)
		}
	}

	switch len(candidates) {
	case 0:
		return models.NotFound(fmt.Sprintf("no node found: path=%s, kind=%s, name=%s", path, kind, name))
	case 1:
		return models.Resolved(candidates[0])
	default:
		return models.Ambiguous(candidates)
	}
}

// matchesAncestry reports whether the node's root-to-node name chain ends
// with the given sequence.
func (r *Resolver) matchesAncestry(n *models.Node, parts []string) bool {
	chain := []string{n.Name}
	for cur := n; cur.ParentID != ""; {
		parent, ok := r.byID[cur.ParentID]
		if !ok {
			break
		}
		chain = append([]string{parent.Name}, chain...)
		cur = parent
	}
	if len(parts) > len(chain) {
		return false
	}
	tail := chain[len(chain)-len(parts):]
	for i := range parts {
		if tail[i] != parts[i] {
			return false
		}
	}
	return true
}

// resolveFuzzy treats the selector as a bare name. Exact matches score
// 1.0; everything else scores by similarity ratio and survives above the
// threshold. A single survivor resolves outright even if fuzzy-scored.
func (r *Resolver) resolveFuzzy(name string) models.SelectorResult {
	type scored struct {
		node  *models.Node
		score float64
	}
	var hits []scored
	for _, n := range r.all {
		if n.Name == name {
			hits = append(hits, scored{n, 1.0})
		} else if ratio := similarity(n.Name, name); ratio > fuzzyThreshold {
			hits = append(hits, scored{n, ratio})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	switch {
	case len(hits) == 0:
		return models.NotFound(fmt.Sprintf(
			"no node found matching: %q. Try a glob pattern (*%s*) or the path:kind:name form.",
			name, name))
	case len(hits) == 1:
		return models.Resolved(hits[0].node)
	default:
		if len(hits) > maxFuzzyCandidates {
			hits = hits[:maxFuzzyCandidates]
		}
		nodes := make([]*models.Node, len(hits))
		for i, h := range hits {
			nodes[i] = h.node
		}
		return models.Ambiguous(nodes)
	}
}

// TreePath returns the ancestry chain from the root node down to n.
func (r *Resolver) TreePath(n *models.Node) []*models.Node {
	chain := []*models.Node{n}
	for cur := n; cur.ParentID != ""; {
		parent, ok := r.byID[cur.ParentID]
		if !ok {
			break
		}
		chain = append([]*models.Node{parent}, chain...)
		cur = parent
	}
	return chain
}

// Children returns the direct children of n in declared order.
func (r *Resolver) Children(n *models.Node) []*models.Node {
	var out []*models.Node
	for _, id := range n.ChildrenIDs {
		if child, ok := r.byID[id]; ok {
			out = append(out, child)
		}
	}
	return out
}

// Subtree returns n and all its descendants in pre-order.
func (r *Resolver) Subtree(n *models.Node) []*models.Node {
	out := []*models.Node{n}
	for _, child := range r.Children(n) {
		out = append(out, r.Subtree(child)...)
	}
	return out
}

// QueryByName returns every node whose name matches the glob pattern,
// sorted by name for stable output.
func (r *Resolver) QueryByName(pattern string) []*models.Node {
	re := compileGlob(pattern)
	var out []*models.Node
	for _, n := range r.all {
		if globMatch(re, n.Name) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// QueryBySelector matches nodes against a combined glob selector of the
// form "pathGlob", "pathGlob:kindGlob", or "pathGlob:kindGlob:nameGlob".
// Kind matches exactly or by glob.
func (r *Resolver) QueryBySelector(sel string) []*models.Node {
	parts := strings.SplitN(sel, ":", 3)
	pathRe := compileGlob(parts[0])

	var kindGlob, nameGlob string
	switch len(parts) {
	case 2:
		kindGlob = parts[1]
	case 3:
		kindGlob = parts[1]
		nameGlob = parts[2]
	}

	var kindRe, nameRe *regexp.Regexp
	if kindGlob != "" {
		kindRe = compileGlob(kindGlob)
	}
	if nameGlob != "" {
		nameRe = compileGlob(nameGlob)
	}

	var out []*models.Node
	for _, n := range r.all {
		if !globMatch(pathRe, n.Path) {
			continue
		}
		if kindRe != nil && n.Kind != kindGlob && !globMatch(kindRe, n.Kind) {
			continue
		}
		if nameRe != nil && !globMatch(nameRe, n.Name) {
			continue
		}
		out = append(out, n)
	}
	return out
}
