// Package ranker derives a claim's priority from its sentiment score
// and category. Pure computation; the pipeline calls it once per claim
// after scoring and categorization complete.
package ranker

import (
	"github.com/jonesrussell/claim-ranker/internal/domain"
)

// Priority scale bounds. 5 is most urgent.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Sentiment bucket thresholds and the rank each bucket contributes.
const (
	stronglyNegativeMax = -0.6
	negativeMax         = -0.2
	neutralMax          = 0.2

	stronglyNegativeRank = 4
	negativeRank         = 3
	neutralRank          = 2
	positiveRank         = 1
)

// categoryWeight boosts categories that carry direct financial exposure.
// Unlisted categories, including the fallback, contribute nothing.
var categoryWeight = map[string]int{
	domain.CategoryDamage:  1,
	domain.CategoryPayment: 1,
}

// Rank maps a sentiment score and category to a priority level on the
// 1-5 scale. Total over all inputs and monotonic in sentiment
// negativity for a fixed category: a more negative score never yields
// a lower priority.
func Rank(sentimentScore float64, category string) int {
	rank := sentimentBucket(sentimentScore) + categoryWeight[category]
	if rank < MinPriority {
		return MinPriority
	}
	if rank > MaxPriority {
		return MaxPriority
	}
	return rank
}

func sentimentBucket(score float64) int {
	switch {
	case score <= stronglyNegativeMax:
		return stronglyNegativeRank
	case score <= negativeMax:
		return negativeRank
	case score < neutralMax:
		return neutralRank
	default:
		return positiveRank
	}
}
