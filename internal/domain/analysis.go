package domain

import "math"

// FallbackModelName identifies results produced by the keyword classifier
// instead of the LLM.
const FallbackModelName = "fallback-keywords"

// ClassificationResult is the outcome of one pipeline run. It is assembled
// once per request and never mutated afterwards.
type ClassificationResult struct {
	Category           TicketCategory
	CategoryReasoning  string
	Sentiment          TicketSentiment
	SentimentReasoning string
	Confidence         float64
	Keywords           []string
	ProcessingTimeMS   int
	ModelsUsed         []string
}

// BlendConfidence combines independent category and sentiment confidences
// into a single score, weighted 60/40 toward the category and rounded to
// three decimals.
func BlendConfidence(category, sentiment float64) float64 {
	return math.Round((category*0.6+sentiment*0.4)*1000) / 1000
}

// ClampConfidence bounds a model-supplied confidence to [0,1].
func ClampConfidence(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
