package classifier

import (
	"fmt"
	"strings"

	"github.com/support-copilot/ticket-api/internal/domain"
)

// Keyword lists are declared in taxonomy order; ties resolve to the first
// category that reaches the maximum score.
var categoryKeywords = []struct {
	category domain.TicketCategory
	words    []string
}{
	{domain.CategoryTecnico, []string{
		"internet", "conexión", "no funciona", "error", "caído", "lento",
		"wifi", "servidor", "app", "sistema",
	}},
	{domain.CategoryFacturacion, []string{
		"factura", "cobro", "pago", "precio", "tarifa", "suscripción",
		"renovación", "cargo",
	}},
	{domain.CategoryComercial, []string{
		"información", "plan", "producto", "servicio", "contratar",
		"consulta", "disponible",
	}},
}

var positiveKeywords = []string{
	"excelente", "genial", "gracias", "perfecto", "bien", "bueno", "feliz", "contento",
}

var negativeKeywords = []string{
	"problema", "error", "no funciona", "mal", "urgente", "frustrado", "malo", "caído",
}

// Fallback classifies a ticket with keyword overlap alone. Deterministic,
// total, no external dependency: this is the availability floor the pipeline
// degrades to when the model path fails. Confidence always lands in
// [0.5, 0.85]. ProcessingTimeMS is left at zero for the orchestrator to fill.
func Fallback(description string) domain.ClassificationResult {
	text := strings.ToLower(description)

	bestCategory := domain.DefaultCategory
	bestScore := 0
	var bestMatches []string
	for _, entry := range categoryKeywords {
		matches := matchKeywords(text, entry.words)
		if len(matches) > bestScore {
			bestCategory = entry.category
			bestScore = len(matches)
			bestMatches = matches
		}
	}

	var categoryConfidence float64
	var categoryReasoning string
	if bestScore == 0 {
		bestCategory = domain.DefaultCategory
		categoryConfidence = 0.5
		categoryReasoning = "No se detectaron keywords específicas, clasificado como consulta comercial"
	} else {
		categoryConfidence = keywordConfidence(bestScore)
		categoryReasoning = fmt.Sprintf("Clasificado por %d keywords relevantes (método de respaldo)", bestScore)
	}

	sentiment, sentimentConfidence, sentimentReasoning := scoreSentiment(text)

	return domain.ClassificationResult{
		Category:           bestCategory,
		CategoryReasoning:  categoryReasoning,
		Sentiment:          sentiment,
		SentimentReasoning: sentimentReasoning,
		Confidence:         domain.BlendConfidence(categoryConfidence, sentimentConfidence),
		Keywords:           bestMatches,
		ModelsUsed:         []string{domain.FallbackModelName},
	}
}

// scoreSentiment derives tone from polarity keyword majorities. An exact tie,
// including zero matches on both sides, is Neutral.
func scoreSentiment(text string) (domain.TicketSentiment, float64, string) {
	positive := len(matchKeywords(text, positiveKeywords))
	negative := len(matchKeywords(text, negativeKeywords))

	switch {
	case positive > negative:
		return domain.SentimentPositivo, keywordConfidence(positive),
			fmt.Sprintf("Detectadas %d expresiones positivas", positive)
	case negative > positive:
		return domain.SentimentNegativo, keywordConfidence(negative),
			fmt.Sprintf("Detectadas %d expresiones negativas", negative)
	default:
		return domain.SentimentNeutral, 0.5,
			"Sin predominio de expresiones positivas o negativas"
	}
}

func matchKeywords(text string, words []string) []string {
	var matched []string
	for _, word := range words {
		if strings.Contains(text, word) {
			matched = append(matched, word)
		}
	}
	return matched
}

func keywordConfidence(matches int) float64 {
	confidence := 0.6 + 0.1*float64(matches)
	if confidence > 0.85 {
		return 0.85
	}
	return confidence
}
