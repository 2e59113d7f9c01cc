// Package similarity provides the embedding-based description similarity
// used by the semantic project rule.
//
// The evaluator depends only on Port. Concrete providers talk to an
// embedding service; Lazy defers constructing them until the first call so
// a pass with semantic matching disabled never touches the network.
package similarity

import (
	"context"
	"math"

	"github.com/teranos/fundlink/errors"
)

// DefaultThreshold is the cosine similarity a description pair must exceed.
const DefaultThreshold = 0.6

// Port embeds text and compares embeddings.
type Port interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Cosine(a, b []float32) (float64, error)
}

// Embedder is the embedding half of Port, implemented by providers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Newf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}
	if aMag == 0 || bMag == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(aMag) * math.Sqrt(bMag))
	// Clamp float rounding just outside the range.
	return math.Max(-1, math.Min(1, sim)), nil
}

// embedderPort adapts an Embedder to Port using Cosine.
type embedderPort struct {
	Embedder
}

func (p embedderPort) Cosine(a, b []float32) (float64, error) {
	return Cosine(a, b)
}

// AsPort wraps an Embedder into a Port.
func AsPort(e Embedder) Port {
	return embedderPort{e}
}
