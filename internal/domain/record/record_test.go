package record

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/qacache/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	r, err := New("Paris.", "What is the capital of France?", "2024-01-01 10:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "Paris." || r.Question() != "What is the capital of France?" {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.ID() != "" {
		t.Errorf("expected empty ID before insert, got %q", r.ID())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name               string
		text, question, ts string
	}{
		{"empty text", "", "q?", "2024-01-01 10:00:00"},
		{"blank text", "   ", "q?", "2024-01-01 10:00:00"},
		{"empty question", "a", "", "2024-01-01 10:00:00"},
		{"blank question", "a", "\t\n", "2024-01-01 10:00:00"},
		{"empty timestamp", "a", "q?", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.text, tc.question, tc.ts)
			if !errors.Is(err, domain.ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestWithID_DoesNotMutateOriginal(t *testing.T) {
	r, _ := New("a", "q", "2024-01-01 10:00:00")
	withID := r.WithID("123")
	if withID.ID() != "123" {
		t.Errorf("expected ID 123, got %q", withID.ID())
	}
	if r.ID() != "" {
		t.Errorf("original mutated: %q", r.ID())
	}
}

func TestNewMatch_ClampsScore(t *testing.T) {
	rec := Reconstruct("1", "a", "q", "2024-01-01 10:00:00", nil)

	hi := NewMatch(rec, 1.2)
	if hi.Score() != 1 || hi.Distance() != 0 {
		t.Errorf("expected clamp to 1, got score=%f distance=%f", hi.Score(), hi.Distance())
	}
	lo := NewMatch(rec, -0.3)
	if lo.Score() != 0 || lo.Distance() != 1 {
		t.Errorf("expected clamp to 0, got score=%f distance=%f", lo.Score(), lo.Distance())
	}
}
