package domain

// Sentiment labels returned by the scorer.
const (
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentPositive = "positive"
)

// Sentiment score bounds. Scores outside the range are clamped by the
// scorer client before they reach the pipeline.
const (
	SentimentScoreMin = -1.0
	SentimentScoreMax = 1.0
)

// SentimentResult is the scorer's output for a piece of English text.
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"` // [-1.0, 1.0], negative is worse
}

// ClampSentimentScore bounds a raw provider score to the valid range.
func ClampSentimentScore(score float64) float64 {
	if score < SentimentScoreMin {
		return SentimentScoreMin
	}
	if score > SentimentScoreMax {
		return SentimentScoreMax
	}
	return score
}
