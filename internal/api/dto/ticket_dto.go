package dto

import (
	"time"

	"github.com/support-copilot/ticket-api/internal/domain"
	"github.com/support-copilot/ticket-api/internal/repository"
)

// ProcessTicketRequest payload.
type ProcessTicketRequest struct {
	TicketID    string `json:"ticket_id"`
	Description string `json:"description"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Description string `json:"description"`
}

// AnalysisResult is the wire form of a classification outcome.
type AnalysisResult struct {
	Category           domain.TicketCategory  `json:"category"`
	CategoryReasoning  string                 `json:"category_reasoning"`
	Sentiment          domain.TicketSentiment `json:"sentiment"`
	SentimentReasoning string                 `json:"sentiment_reasoning"`
	Confidence         float64                `json:"confidence"`
	Keywords           []string               `json:"keywords"`
	ProcessingTimeMS   int                    `json:"processing_time_ms"`
	ModelsUsed         []string               `json:"models_used"`
}

// ProcessTicketResponse wraps a successful pipeline run.
type ProcessTicketResponse struct {
	Success  bool           `json:"success"`
	TicketID string         `json:"ticket_id"`
	Analysis AnalysisResult `json:"analysis"`
	Message  string         `json:"message"`
}

// TicketResponse is the stored ticket as returned by read endpoints.
type TicketResponse struct {
	ID               string                  `json:"id"`
	Description      string                  `json:"description"`
	Category         *domain.TicketCategory  `json:"category"`
	Sentiment        *domain.TicketSentiment `json:"sentiment"`
	Confidence       *float64                `json:"confidence"`
	Reasoning        *string                 `json:"reasoning"`
	Keywords         []string                `json:"keywords"`
	ProcessingTimeMS *int                    `json:"processing_time_ms"`
	LLMModel         *string                 `json:"llm_model"`
	Processed        bool                    `json:"processed"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ListTicketsResponse wraps a filtered listing.
type ListTicketsResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Tickets []TicketResponse `json:"tickets"`
}

// StatsResponse wraps aggregate counts.
type StatsResponse struct {
	Success bool  `json:"success"`
	Stats   Stats `json:"stats"`
}

// Stats mirrors the gateway aggregates plus a snapshot timestamp.
type Stats struct {
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Pending   int       `json:"pending"`
	Timestamp time.Time `json:"timestamp"`
}

// FromResult maps a pipeline outcome onto the wire shape.
func FromResult(result domain.ClassificationResult) AnalysisResult {
	return AnalysisResult{
		Category:           result.Category,
		CategoryReasoning:  result.CategoryReasoning,
		Sentiment:          result.Sentiment,
		SentimentReasoning: result.SentimentReasoning,
		Confidence:         result.Confidence,
		Keywords:           result.Keywords,
		ProcessingTimeMS:   result.ProcessingTimeMS,
		ModelsUsed:         result.ModelsUsed,
	}
}

// FromTicket maps a stored ticket onto the wire shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               ticket.ID,
		Description:      ticket.Description,
		Category:         ticket.Category,
		Sentiment:        ticket.Sentiment,
		Confidence:       ticket.Confidence,
		Reasoning:        ticket.Reasoning,
		Keywords:         ticket.Keywords,
		ProcessingTimeMS: ticket.ProcessingTimeMS,
		LLMModel:         ticket.LLMModel,
		Processed:        ticket.Processed,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
}

// FromStats maps gateway aggregates onto the wire shape.
func FromStats(stats repository.TicketStats, at time.Time) Stats {
	return Stats{
		Total:     stats.Total,
		Processed: stats.Processed,
		Pending:   stats.Pending,
		Timestamp: at,
	}
}
