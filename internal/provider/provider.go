// Package provider abstracts the external ML collaborators behind narrow
// capability interfaces so the core can substitute deterministic fakes.
package provider

import "context"

// Sentiment is a classification result: a label from a small fixed set and
// a signed polarity in [-1,1].
type Sentiment struct {
	Label      string
	Score      float64
	Confidence float64
}

// Known sentiment labels.
const (
	SentimentVeryNegative = "very_negative"
	SentimentNegative     = "negative"
	SentimentNeutral      = "neutral"
	SentimentPositive     = "positive"
	SentimentVeryPositive = "very_positive"
)

// Embedder turns text into a fixed-length vector. Implementations must
// return vectors of the deployment's configured dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// SentimentClassifier turns text into a sentiment label and polarity.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}

// LabelForScore buckets a polarity score into its sentiment label.
func LabelForScore(score float64) string {
	switch {
	case score <= -0.75:
		return SentimentVeryNegative
	case score <= -0.25:
		return SentimentNegative
	case score <= 0.25:
		return SentimentNeutral
	case score <= 0.75:
		return SentimentPositive
	default:
		return SentimentVeryPositive
	}
}
