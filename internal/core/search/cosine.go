package search

import (
	"fmt"
	"math"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// CosineSimilarity returns the cosine of the angle between two equal-length
// vectors, in [-1, 1]. A zero-norm vector scores 0 by convention. Unequal
// lengths are a caller bug and return ErrDimensionMismatch, never a silent
// truncation.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity: %w: len(a)=%d len(b)=%d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
