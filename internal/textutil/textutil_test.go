package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`08/29/2026 10:15 AM scene_1`, `08-29-2026 10-15 AM scene_1`},
		{`a\b|c:d/e`, `a-b-c-d-e`},
		{"plain name", "plain name"},
		{"", ""},
	}
	for _, tc := range cases {
		got := SanitizeFileName(tc.in)
		if got != tc.want {
			t.Fatalf("sanitize %q: got %q want %q", tc.in, got, tc.want)
		}
		if len(got) != len(tc.in) {
			t.Fatalf("sanitize %q changed length: %d -> %d", tc.in, len(tc.in), len(got))
		}
	}
}

func TestTruncateAtSentence_UnderLimitUnchanged(t *testing.T) {
	text := "Short script. Nothing to cut."
	if got := TruncateAtSentence(text, 1000); got != text {
		t.Fatalf("under-limit text changed: %q", got)
	}
}

func TestTruncateAtSentence_CutsAtBoundary(t *testing.T) {
	text := "First sentence. Second sentence! Third sentence? Trailing words with no ending"
	got := TruncateAtSentence(text, 60)
	if len(got) > 60 {
		t.Fatalf("result exceeds limit: %d", len(got))
	}
	if !strings.HasSuffix(got, ".") && !strings.HasSuffix(got, "!") && !strings.HasSuffix(got, "?") && !strings.HasSuffix(got, "\n") {
		t.Fatalf("result does not end at a sentence boundary: %q", got)
	}
	if got != "First sentence. Second sentence! Third sentence?" {
		t.Fatalf("unexpected cut point: %q", got)
	}
}

func TestTruncateAtSentence_NewlineCountsAsBoundary(t *testing.T) {
	text := "line one\nline two with much more text than the limit allows"
	got := TruncateAtSentence(text, 20)
	if got != "line one\n" {
		t.Fatalf("expected cut after newline, got %q", got)
	}
}

func TestTruncateAtSentence_HardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("x", 100)
	got := TruncateAtSentence(text, 40)
	if len(got) != 40 {
		t.Fatalf("expected hard cut at limit, got len %d", len(got))
	}
}
