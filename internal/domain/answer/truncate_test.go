package answer

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{"within limit", "one two three", 3, "one two three"},
		{"over limit", "one two three four", 3, "one two three..."},
		{"collapses whitespace when truncating", "one\n\ntwo   three\tfour", 2, "one two..."},
		{"keeps whitespace when not truncating", "one\n\ntwo", 5, "one\n\ntwo"},
		{"disabled", "one two three", 0, "one two three"},
		{"empty", "", 3, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.text, tc.maxWords); got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.text, tc.maxWords, got, tc.want)
			}
		})
	}
}

func TestTruncate_Idempotent(t *testing.T) {
	long := strings.Repeat("word ", 200)
	once := Truncate(long, 80)
	twice := Truncate(once, 80)
	if once != twice {
		t.Errorf("truncation not idempotent:\n%q\n%q", once, twice)
	}
	if n := len(strings.Fields(once)); n != 80 {
		t.Errorf("expected 80 words, got %d", n)
	}
}

func TestFromCache(t *testing.T) {
	a := FromCache("Paris.", 88.5, "What is the capital of France?", "2024-01-01 10:00:00")
	if !a.FromMemory || a.Outcome != OutcomeHit {
		t.Errorf("unexpected answer: %+v", a)
	}
	if a.MatchedQuestion == nil || *a.MatchedQuestion != "What is the capital of France?" {
		t.Errorf("unexpected matched question: %v", a.MatchedQuestion)
	}
}

func TestFresh(t *testing.T) {
	a := Fresh("hello", "2024-01-01 10:00:00", OutcomeMiss)
	if a.FromMemory || a.MatchedQuestion != nil || a.MatchPercent != 0 {
		t.Errorf("unexpected answer: %+v", a)
	}
}
