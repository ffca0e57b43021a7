// Package embedding holds helpers shared by the embedder implementations.
// The Embedder contract itself lives in the domain package.
package embedding

import (
	"errors"
	"math"
)

// ErrNotPrepared is returned by embedders that must see the corpus first.
var ErrNotPrepared = errors.New("embedder not prepared")

// Normalize scales vec to unit length in place. A zero vector is left as is.
func Normalize(vec []float64) []float64 {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Dot returns the dot product of two equally sized vectors. For unit
// vectors this is the cosine similarity.
func Dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
