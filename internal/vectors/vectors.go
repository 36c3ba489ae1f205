// Package vectors provides the shared math for face embedding comparison.
package vectors

import "math"

// CosineSimilarity computes the cosine similarity between two embedding vectors.
// Returns a value between -1 and 1, where 1 means identical.
// Returns 0 for mismatched lengths or zero-norm vectors (never divides by zero).
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Mean computes the elementwise arithmetic mean of a set of vectors.
// Returns (nil, false) for an empty input: there is no representative vector.
// All vectors are assumed to share the dimensionality of the first one.
func Mean(vecs [][]float32) ([]float32, bool) {
	if len(vecs) == 0 {
		return nil, false
	}

	dim := len(vecs[0])
	sum := make([]float64, dim)
	for _, v := range vecs {
		for i := 0; i < dim && i < len(v); i++ {
			sum[i] += float64(v[i])
		}
	}

	mean := make([]float32, dim)
	n := float64(len(vecs))
	for i := range sum {
		mean[i] = float32(sum[i] / n)
	}
	return mean, true
}
