package recommendation

import "math"

func dot(a, b *FeatureVector) float64 {
	sum := 0.0
	for i := range FeatureDim {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v *FeatureVector) float64 {
	return math.Sqrt(dot(v, v))
}

// CosineSimilarity returns 0 when either vector has zero length.
func CosineSimilarity(a, b FeatureVector) float64 {
	na, nb := norm(&a), norm(&b)
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot(&a, &b) / (na * nb)

	// rounding can push |sim| a hair past 1
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
