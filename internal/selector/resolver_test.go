package selector

import (
	"strings"
	"testing"
	"time"

	"github.com/apcooley/grafty/internal/models"
)

// fixture builds a resolver over two files:
//
//	docs/guide.md with nested headings
//	src/app.py with two same-named functions under different classes
func fixture() *Resolver {
	mkNode := func(path, kind, name string, start, end int, sig string) *models.Node {
		n := &models.Node{
			Kind:      kind,
			Name:      name,
			Path:      path,
			StartLine: start,
			EndLine:   end,
			Signature: sig,
		}
		n.ID = models.ComputeID(path, kind, name, start, sig, models.DefaultIDWidth)
		return n
	}

	intro := mkNode("docs/guide.md", "md_heading", "Intro", 1, 12, "")
	setup := mkNode("docs/guide.md", "md_heading", "Setup", 4, 12, "")
	deeper := mkNode("docs/guide.md", "md_heading", "Deeper", 6, 8, "")
	setup.ParentID = intro.ID
	deeper.ParentID = setup.ID
	intro.ChildrenIDs = []string{setup.ID}
	setup.ChildrenIDs = []string{deeper.ID}

	server := mkNode("src/app.py", "py_class", "Server", 1, 20, "")
	srvMain := mkNode("src/app.py", "py_method", "main", 2, 9, "(self)")
	client := mkNode("src/app.py", "py_class", "Client", 22, 40, "")
	cliMain := mkNode("src/app.py", "py_method", "main", 23, 30, "(self)")
	srvMain.ParentID = server.ID
	cliMain.ParentID = client.ID
	server.ChildrenIDs = []string{srvMain.ID}
	client.ChildrenIDs = []string{cliMain.ID}

	return New(map[string]*models.FileIndex{
		"docs/guide.md": models.NewFileIndex("docs/guide.md", "h1", time.Now(),
			[]*models.Node{intro, setup, deeper}),
		"src/app.py": models.NewFileIndex("src/app.py", "h2", time.Now(),
			[]*models.Node{server, srvMain, client, cliMain}),
	})
}

func TestResolveByID(t *testing.T) {
	r := fixture()
	want := r.Nodes()[0]
	res := r.Resolve(want.ID)
	if !res.IsResolved() {
		t.Fatalf("status = %v", res.Status)
	}
	if res.Node != want {
		t.Errorf("resolved wrong node: %s", res.Node.Name)
	}
}

func TestResolveLineRangeSingle(t *testing.T) {
	r := fixture()
	// Only Deeper (6-8) is fully contained in 5-10.
	res := r.Resolve("docs/guide.md:5-10")
	if !res.IsResolved() {
		t.Fatalf("status = %v, reason %q", res.Status, res.Reason)
	}
	if res.Node.Name != "Deeper" {
		t.Errorf("resolved %s, want Deeper", res.Node.Name)
	}
}

func TestResolveLineRangeAmbiguousNarrowestFirst(t *testing.T) {
	r := fixture()
	// 4-12 contains both Setup (4-12) and Deeper (6-8).
	res := r.Resolve("docs/guide.md:4-12")
	if res.Status != models.StatusAmbiguous {
		t.Fatalf("status = %v", res.Status)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %d", len(res.Candidates))
	}
	if res.Candidates[0].Name != "Deeper" {
		t.Errorf("first candidate = %s, want narrowest (Deeper)", res.Candidates[0].Name)
	}
}

func TestResolveLineRangeNotFoundNamesNearby(t *testing.T) {
	r := fixture()
	res := r.Resolve("docs/guide.md:2-3")
	if res.Status != models.StatusNotFound {
		t.Fatalf("status = %v", res.Status)
	}
	if !strings.Contains(res.Reason, "Nearby") {
		t.Errorf("reason lacks nearby hint: %q", res.Reason)
	}
}

func TestResolveLineRangeUnknownFile(t *testing.T) {
	r := fixture()
	res := r.Resolve("docs/missing.md:1-5")
	if res.Status != models.StatusNotFound {
		t.Fatalf("status = %v", res.Status)
	}
	if !strings.Contains(res.Reason, "not indexed") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestResolveStructural(t *testing.T) {
	r := fixture()
	res := r.Resolve("src/app.py:py_class:Server")
	if !res.IsResolved() {
		t.Fatalf("status = %v, reason %q", res.Status, res.Reason)
	}
	if res.Node.Name != "Server" {
		t.Errorf("resolved %s", res.Node.Name)
	}
}

func TestResolveStructuralAmbiguous(t *testing.T) {
	r := fixture()
	res := r.Resolve("src/app.py:py_method:main")
	if res.Status != models.StatusAmbiguous {
		t.Fatalf("status = %v", res.Status)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("candidates = %d", len(res.Candidates))
	}
}

func TestResolveStructuralAncestorChain(t *testing.T) {
	r := fixture()
	res := r.Resolve("src/app.py:py_method:Client/main")
	if !res.IsResolved() {
		t.Fatalf("status = %v", res.Status)
	}
	if res.Node.StartLine != 23 {
		t.Errorf("resolved node at line %d, want 23", res.Node.StartLine)
	}
}

func TestResolveStructuralIsDecisive(t *testing.T) {
	// A failed structural selector must not fall through to fuzzy.
	r := fixture()
	res := r.Resolve("src/app.py:py_class:Servr")
	if res.Status != models.StatusNotFound {
		t.Fatalf("status = %v", res.Status)
	}
	if !strings.Contains(res.Reason, "kind=py_class") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestResolveFuzzyExact(t *testing.T) {
	r := fixture()
	res := r.Resolve("Deeper")
	if !res.IsResolved() {
		t.Fatalf("status = %v, reason %q", res.Status, res.Reason)
	}
	if res.Node.Name != "Deeper" {
		t.Errorf("resolved %s", res.Node.Name)
	}
}

func TestResolveFuzzyClose(t *testing.T) {
	r := fixture()
	res := r.Resolve("Deepr")
	if !res.IsResolved() {
		t.Fatalf("status = %v, reason %q", res.Status, res.Reason)
	}
	if res.Node.Name != "Deeper" {
		t.Errorf("resolved %s", res.Node.Name)
	}
}

func TestResolveFuzzyNotFound(t *testing.T) {
	r := fixture()
	res := r.Resolve("zzzzzzzz")
	if res.Status != models.StatusNotFound {
		t.Fatalf("status = %v", res.Status)
	}
}

func TestTreeNavigation(t *testing.T) {
	r := fixture()
	res := r.Resolve("docs/guide.md:md_heading:Deeper")
	if !res.IsResolved() {
		t.Fatal("fixture resolve failed")
	}
	chain := r.TreePath(res.Node)
	if len(chain) != 3 {
		t.Fatalf("chain length = %d", len(chain))
	}
	if chain[0].Name != "Intro" || chain[2].Name != "Deeper" {
		t.Errorf("chain = %s..%s", chain[0].Name, chain[2].Name)
	}

	intro := chain[0]
	sub := r.Subtree(intro)
	if len(sub) != 3 {
		t.Errorf("subtree size = %d", len(sub))
	}
}

func TestQueryByName(t *testing.T) {
	r := fixture()
	nodes := r.QueryByName("*e*")
	for _, n := range nodes {
		if !strings.Contains(strings.ToLower(n.Name), "e") {
			t.Errorf("unexpected match %s", n.Name)
		}
	}
	if len(nodes) == 0 {
		t.Error("no matches")
	}
}

func TestQueryBySelector(t *testing.T) {
	r := fixture()
	nodes := r.QueryBySelector("src/*:py_method")
	if len(nodes) != 2 {
		t.Fatalf("matches = %d, want 2", len(nodes))
	}
	for _, n := range nodes {
		if n.Kind != "py_method" {
			t.Errorf("kind = %s", n.Kind)
		}
	}

	nodes = r.QueryBySelector("*.md:md_heading:Set*")
	if len(nodes) != 1 || nodes[0].Name != "Setup" {
		t.Errorf("matches = %v", nodes)
	}
}

func TestParseLineSelector(t *testing.T) {
	cases := []struct {
		in    string
		ok    bool
		start int
		end   int
	}{
		{"file.md:7", true, 7, 7},
		{"file.md:3-9", true, 3, 9},
		{"file.md:kind:name", false, 0, 0}, // two colons
		{"file.md:0", false, 0, 0},
		{"file.md:3-x", false, 0, 0},
		{"plainname", false, 0, 0},
	}
	for _, c := range cases {
		ls, ok := parseLineSelector(c.in)
		if ok != c.ok {
			t.Errorf("parseLineSelector(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && (ls.startLine != c.start || ls.endLine != c.end) {
			t.Errorf("parseLineSelector(%q) = %d-%d", c.in, ls.startLine, ls.endLine)
		}
	}
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"*validate*", "revalidate_input", true},
		{"test_?", "test_a", true},
		{"test_?", "test_ab", false},
		{"[abc]x", "bx", true},
		{"[!abc]x", "dx", true},
		{"[!abc]x", "ax", false},
		{"src/*", "src/deep/file.py", true},
	}
	for _, c := range cases {
		if got := globMatch(compileGlob(c.pattern), c.s); got != c.want {
			t.Errorf("glob %q vs %q = %v, want %v", c.pattern, c.s, got, c.want)
		}
	}
}
