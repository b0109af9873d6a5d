// Package vector holds the float32 vector wire format and similarity math shared by the drivers.
package vector

import (
	"encoding/binary"
	"math"
)

// Encode serializes v as little-endian float32 bytes, the layout FT vector fields expect.
func Encode(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// Decode is the inverse of Encode. Input whose length is not a multiple of 4 yields nil.
func Decode(s string) []float32 {
	if len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// SimilarityFromCosineDistance maps a cosine distance in [0,2] to a similarity in [0,1].
func SimilarityFromCosineDistance(d float64) float64 {
	return min(1, max(0, 1-d))
}

// Cosine returns the cosine similarity of a and b clamped to [0,1].
// Mismatched lengths or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return SimilarityFromCosineDistance(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
