package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// Bayesian shrinkage prior for ward-level ratings: w0 pseudo-reviews at
	// the prior mean keep a 1-review wonder from outranking an established
	// place with hundreds of reviews.
	priorMean   = 3.5
	priorWeight = 30.0

	// Plausible rating range rescaled onto [0,1] before blending.
	ratingFloor = 3.0
	ratingCeil  = 4.5

	semanticWeight = 0.6
	ratingWeight   = 0.4

	// Coarse candidate pool kept by similarity before goodness re-ranking.
	coarsePoolSize = 50
)

// goodness blends semantic similarity with a shrinkage-smoothed rating
// estimate. Monotonically non-decreasing in similarity for fixed rating
// inputs.
func goodness(semantic float64, rating *float64, count *int) float64 {
	s := semantic
	if s < 0 {
		s = 0
	}
	var r float64
	if rating != nil {
		r = *rating
	}
	var n float64
	if count != nil {
		n = float64(*count)
	}
	shrunk := (n*r + priorWeight*priorMean) / (n + priorWeight)
	norm := (shrunk - ratingFloor) / (ratingCeil - ratingFloor)
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	return semanticWeight*s + ratingWeight*norm
}

// buildExplain assembles the human-readable filter summary shown alongside
// each result.
func buildExplain(f Filters) string {
	var bits []string
	if f.Ward != nil {
		bits = append(bits, *f.Ward)
	}
	if f.MaxDinnerBudget != nil {
		bits = append(bits, fmt.Sprintf("予算≤%d", *f.MaxDinnerBudget))
	}
	if f.Smoking != nil {
		bits = append(bits, *f.Smoking)
	}
	if f.WithChildren != nil {
		if *f.WithChildren {
			bits = append(bits, "子連れ可")
		} else {
			bits = append(bits, "子連れ不可")
		}
	}
	if f.CategoryHint != nil {
		bits = append(bits, "カテゴリ:"+*f.CategoryHint)
	}
	if len(bits) == 0 {
		return "セマンティック一致が高い候補"
	}
	return strings.Join(bits, "・")
}

// truncateReason bounds a failure reason so it is safe to surface, cutting
// on a rune boundary so multibyte text never splits.
func truncateReason(err error) string {
	const maxReason = 200
	s := err.Error()
	if len(s) <= maxReason {
		return s
	}
	cut := maxReason
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
