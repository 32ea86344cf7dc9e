package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestComputeIDDeterministic(t *testing.T) {
	a := ComputeID("x.py", "py_function", "main", 10, "()", DefaultIDWidth)
	b := ComputeID("x.py", "py_function", "main", 10, "()", DefaultIDWidth)
	if a != b {
		t.Errorf("ids differ: %s vs %s", a, b)
	}
	if len(a) != DefaultIDWidth {
		t.Errorf("id length = %d", len(a))
	}
}

func TestComputeIDSensitivity(t *testing.T) {
	base := ComputeID("x.py", "py_function", "main", 10, "()", DefaultIDWidth)
	variants := []string{
		ComputeID("y.py", "py_function", "main", 10, "()", DefaultIDWidth),
		ComputeID("x.py", "py_method", "main", 10, "()", DefaultIDWidth),
		ComputeID("x.py", "py_function", "other", 10, "()", DefaultIDWidth),
		ComputeID("x.py", "py_function", "main", 11, "()", DefaultIDWidth),
		ComputeID("x.py", "py_function", "main", 10, "(a)", DefaultIDWidth),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base", i)
		}
	}
}

func TestComputeIDWidth(t *testing.T) {
	if got := ComputeID("x", "k", "n", 1, "", 8); len(got) != 8 {
		t.Errorf("width 8 id = %q", got)
	}
}

func TestFileIndexLookup(t *testing.T) {
	n := &Node{ID: "abc", Kind: "md_heading", Name: "H", Path: "x.md", StartLine: 1, EndLine: 2}
	fi := NewFileIndex("x.md", "hash", time.Now(), []*Node{n})
	got, ok := fi.Node("abc")
	if !ok || got != n {
		t.Error("lookup failed")
	}
	if _, ok := fi.Node("missing"); ok {
		t.Error("missing id found")
	}
}

func TestSelectorResultConstructors(t *testing.T) {
	n := &Node{ID: "abc"}
	if r := Resolved(n); !r.IsResolved() || r.Node != n {
		t.Error("Resolved wrong")
	}
	if r := Ambiguous([]*Node{n, n}); r.Status != StatusAmbiguous || len(r.Candidates) != 2 {
		t.Error("Ambiguous wrong")
	}
	if r := NotFound("nope"); r.Status != StatusNotFound || r.Reason != "nope" {
		t.Error("NotFound wrong")
	}
}

func TestResolveStatusJSON(t *testing.T) {
	data, err := json.Marshal(StatusAmbiguous)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"ambiguous"` {
		t.Errorf("marshal = %s", data)
	}
	var s ResolveStatus
	if err := json.Unmarshal([]byte(`"resolved"`), &s); err != nil || s != StatusResolved {
		t.Errorf("unmarshal = %v, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`"weird"`), &s); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestSpan(t *testing.T) {
	n := &Node{StartLine: 4, EndLine: 12}
	if n.Span() != 8 {
		t.Errorf("span = %d", n.Span())
	}
}
