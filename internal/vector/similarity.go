package vector

import (
	"math"

	"github.com/hyperjump/kensho/pkg/utils"
)

// InnerProduct returns the inner product of two vectors (for normalized vectors equals cosine similarity).
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between a and b.
// It is 0 when either vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return InnerProduct(a, b) / (na * nb)
}

// Normalize returns a unit-length copy of v. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	utils.NormalizeL2(out)
	return out
}
