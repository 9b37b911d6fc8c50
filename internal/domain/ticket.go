package domain

import "time"

// TicketCategory enumerates the closed set of topical classifications.
type TicketCategory string

const (
	CategoryTecnico     TicketCategory = "Técnico"
	CategoryFacturacion TicketCategory = "Facturación"
	CategoryComercial   TicketCategory = "Comercial"
)

// DefaultCategory is substituted for any off-taxonomy value.
const DefaultCategory = CategoryComercial

// TicketSentiment enumerates the closed set of tone classifications.
type TicketSentiment string

const (
	SentimentPositivo TicketSentiment = "Positivo"
	SentimentNeutral  TicketSentiment = "Neutral"
	SentimentNegativo TicketSentiment = "Negativo"
)

// DefaultSentiment is substituted for any off-taxonomy value.
const DefaultSentiment = SentimentNeutral

// Categories lists taxonomy members in declaration order. The order is
// significant: the keyword fallback breaks score ties by it.
func Categories() []TicketCategory {
	return []TicketCategory{CategoryTecnico, CategoryFacturacion, CategoryComercial}
}

// Sentiments lists taxonomy members in declaration order.
func Sentiments() []TicketSentiment {
	return []TicketSentiment{SentimentPositivo, SentimentNeutral, SentimentNegativo}
}

// ParseCategory maps an arbitrary string onto the taxonomy. Off-taxonomy
// input returns (DefaultCategory, false) so the caller can log the
// substitution; it never fails.
func ParseCategory(value string) (TicketCategory, bool) {
	switch TicketCategory(value) {
	case CategoryTecnico, CategoryFacturacion, CategoryComercial:
		return TicketCategory(value), true
	}
	return DefaultCategory, false
}

// ParseSentiment maps an arbitrary string onto the taxonomy, substituting
// DefaultSentiment for anything off-taxonomy.
func ParseSentiment(value string) (TicketSentiment, bool) {
	switch TicketSentiment(value) {
	case SentimentPositivo, SentimentNeutral, SentimentNegativo:
		return TicketSentiment(value), true
	}
	return DefaultSentiment, false
}

// Ticket is the persisted support request record. Classification fields are
// nil until the ticket has been processed; processed=true implies category,
// sentiment and confidence are all set.
type Ticket struct {
	ID               string
	Description      string
	Category         *TicketCategory
	Sentiment        *TicketSentiment
	Confidence       *float64
	Reasoning        *string
	Keywords         []string
	ProcessingTimeMS *int
	LLMModel         *string
	Processed        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
