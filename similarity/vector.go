// Package similarity implements the vector math behind relevance scoring.
//
// Scores are raw dot products. Providers are expected to emit near-unit-norm
// vectors, but nothing here rescales them: a dot product of two unit vectors
// is their cosine similarity, and for anything else it is simply the dot
// product.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch is returned when two vectors have different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector is returned when a vector has no components.
	ErrEmptyVector = errors.New("empty vector")

	// ErrNonFinite is returned when a product is NaN or infinite.
	ErrNonFinite = errors.New("non-finite dot product")
)

// Dot returns the dot product of a and b.
func Dot(a, b []float32) (float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	// Accumulate in float64 so long vectors don't drift
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	out := float32(sum)
	if math.IsNaN(float64(out)) || math.IsInf(float64(out), 0) {
		return 0, fmt.Errorf("%w: %v", ErrNonFinite, sum)
	}
	return out, nil
}

// Norm returns the Euclidean length of v.
func Norm(v []float32) float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return float32(math.Sqrt(sum))
}

// Normalize normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	magnitude := Norm(v)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
