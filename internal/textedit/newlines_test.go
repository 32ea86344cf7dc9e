package textedit

import "testing"

func TestNormalizeDetectsCRLF(t *testing.T) {
	got, mode := Normalize("a\r\nb\r\n")
	if got != "a\nb\n" {
		t.Errorf("normalized = %q", got)
	}
	if mode != ModeCRLF {
		t.Errorf("mode = %q, want crlf", mode)
	}
}

func TestNormalizeRestoreRoundTrip(t *testing.T) {
	for _, original := range []string{"a\nb\n", "a\r\nb\r\n", "", "no newline"} {
		normalized, mode := Normalize(original)
		if got := Restore(normalized, mode); got != original {
			t.Errorf("round trip of %q = %q", original, got)
		}
	}
}

func TestLineCount(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one\n", 1},
		{"one\ntwo\n", 2},
		{"one\ntwo", 2}, // trailing partial line counts
	}
	for _, c := range cases {
		if got := LineCount(c.content); got != c.want {
			t.Errorf("LineCount(%q) = %d, want %d", c.content, got, c.want)
		}
	}
}

func TestLineRange(t *testing.T) {
	content := "one\ntwo\nthree\nfour\n"
	if got := LineRange(content, 2, 3); got != "two\nthree\n" {
		t.Errorf("LineRange(2,3) = %q", got)
	}
	// Out-of-bounds clamps instead of panicking.
	if got := LineRange(content, 3, 99); got != "three\nfour\n" {
		t.Errorf("LineRange(3,99) = %q", got)
	}
	if got := LineRange(content, 99, 100); got != "" {
		t.Errorf("LineRange(99,100) = %q", got)
	}
}
