package recommendation

import (
	"unicode/utf8"

	"myGreenMenu/domain"
)

// FeatureDim is fixed for the lifetime of an engine version; changing it
// invalidates any stored comparison between vectors.
const FeatureDim = 100

type FeatureVector [FeatureDim]float64

// rawFeatures lists the scalar features of an item in encoding order.
// Missing optional attributes count as 0.
func rawFeatures(item domain.MenuItem) []float64 {
	quality := 0.0
	if item.QualityScore != nil {
		quality = *item.QualityScore
	}

	var calories, protein float64
	if n := item.Nutrition; n != nil {
		calories = n.Calories
		protein = n.Protein
	}

	return []float64{
		// index 0: price
		item.Price / 100,
		// index 1: category bucket; label length is a weak, collision-prone
		// proxy that only separates broad buckets
		float64(utf8.RuneCountInString(item.Category)) / 10,
		// index 2: quality, already 0-1
		quality,
		// index 3: calories
		calories / 1000,
		// index 4: protein
		protein / 100,
	}
}

// EncodeItem maps an item to its feature vector. Trailing dimensions are zero;
// features past FeatureDim are dropped.
func EncodeItem(item domain.MenuItem) FeatureVector {
	var v FeatureVector
	copy(v[:], rawFeatures(item))
	return v
}
