package vector

import (
	"math"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	in := []float32{0.1, -2.5, 3, 0}
	out := Decode(Encode(in))
	if len(out) != len(in) {
		t.Fatalf("expected %d values, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("index %d: got %v, want %v", i, out[i], in[i])
		}
	}
	if len(Encode(in)) != 16 {
		t.Errorf("expected 16 bytes, got %d", len(Encode(in)))
	}
}

func TestDecode_BadLength(t *testing.T) {
	if Decode("abc") != nil {
		t.Error("expected nil for truncated input")
	}
}

func TestSimilarityFromCosineDistance(t *testing.T) {
	tests := []struct {
		d, want float64
	}{
		{0, 1},
		{0.25, 0.75},
		{1, 0},
		{1.5, 0},
		{-0.0001, 1},
	}
	for _, tc := range tests {
		if got := SimilarityFromCosineDistance(tc.d); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("SimilarityFromCosineDistance(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{2, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("parallel vectors: got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{-1, 0}); got != 0 {
		t.Errorf("opposite vectors must clamp to 0, got %v", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("length mismatch: got %v", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector: got %v", got)
	}
}
