package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/support-copilot/ticket-api/internal/cache"
	"github.com/support-copilot/ticket-api/internal/classifier"
	"github.com/support-copilot/ticket-api/internal/domain"
	"github.com/support-copilot/ticket-api/internal/events"
	"github.com/support-copilot/ticket-api/internal/repository"
	"github.com/support-copilot/ticket-api/pkg/util"
)

// maxModelNameLen is the llm_model column width; longer values are truncated
// before the update is sent.
const maxModelNameLen = 200

// ModelClient is the narrow view of the classification model the pipeline
// needs.
type ModelClient interface {
	Classify(ctx context.Context, prompt classifier.Prompt) (string, error)
	Model() string
	Ready() bool
}

// ProcessingService runs the ticket classification pipeline: prompt →
// model → extract → validate, with the keyword fallback absorbing every
// failure on that path. Only gateway errors escape.
type ProcessingService struct {
	tickets    repository.TicketRepository
	model      ModelClient
	cache      *cache.ClassificationCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// Dependencies bundles collaborators for the processing service.
type Dependencies struct {
	TicketRepo repository.TicketRepository
	Model      ModelClient
	Cache      *cache.ClassificationCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewProcessingService constructs the service.
func NewProcessingService(deps Dependencies) *ProcessingService {
	return &ProcessingService{
		tickets:    deps.TicketRepo,
		model:      deps.Model,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// ProcessTicket verifies the ticket exists, classifies its description and
// persists the outcome. Classification never fails; a storage error is fatal
// for the request and propagates untouched.
func (s *ProcessingService) ProcessTicket(ctx context.Context, ticketID, description string) (*domain.ClassificationResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}

	result := s.Classify(ctx, description)

	modelName := TruncateModelName(strings.Join(result.ModelsUsed, ", "))
	reasoning := fmt.Sprintf("Cat: %s | Sent: %s", result.CategoryReasoning, result.SentimentReasoning)
	processed := true

	if _, err := s.tickets.ApplyUpdate(ctx, ticket.ID, repository.TicketUpdate{
		Category:         &result.Category,
		Sentiment:        &result.Sentiment,
		Confidence:       &result.Confidence,
		Reasoning:        &reasoning,
		Keywords:         result.Keywords,
		ProcessingTimeMS: &result.ProcessingTimeMS,
		LLMModel:         &modelName,
		Processed:        &processed,
	}); err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, events.Event{
		Type:       events.TicketProcessed,
		TicketID:   ticket.ID,
		Result:     result,
		OccurredAt: time.Now(),
	})

	s.logger.Info("ticket processed",
		zap.String("ticket_id", ticket.ID),
		zap.String("category", string(result.Category)),
		zap.String("sentiment", string(result.Sentiment)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("processing_time_ms", result.ProcessingTimeMS))

	return &result, nil
}

// Classify runs the model path and degrades to the keyword fallback on any
// failure: transport error, timeout, unparsable output. Total by
// construction; it always returns a taxonomy-valid result.
func (s *ProcessingService) Classify(ctx context.Context, description string) domain.ClassificationResult {
	start := time.Now()

	if cached := s.cache.Get(ctx, description); cached != nil {
		result := *cached
		result.ProcessingTimeMS = elapsedMS(start)
		s.logger.Debug("classification cache hit")
		return result
	}

	raw, err := s.model.Classify(ctx, classifier.BuildPrompt(description))
	if err != nil {
		s.logger.Warn("model invocation failed, using keyword fallback", zap.Error(err))
		return s.fallback(description, start)
	}

	extracted, err := classifier.Extract(raw)
	if err != nil {
		s.logger.Warn("model output unusable, using keyword fallback", zap.Error(err))
		return s.fallback(description, start)
	}

	category, ok := domain.ParseCategory(extracted.Category)
	if !ok {
		s.logger.Warn("off-taxonomy category substituted",
			zap.String("value", extracted.Category), zap.String("default", string(category)))
	}
	sentiment, ok := domain.ParseSentiment(extracted.Sentiment)
	if !ok {
		s.logger.Warn("off-taxonomy sentiment substituted",
			zap.String("value", extracted.Sentiment), zap.String("default", string(sentiment)))
	}

	keywords := extracted.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	result := domain.ClassificationResult{
		Category:           category,
		CategoryReasoning:  defaultText(extracted.CategoryReasoning, "Clasificación automática"),
		Sentiment:          sentiment,
		SentimentReasoning: defaultText(extracted.SentimentReasoning, "Análisis automático"),
		Confidence:         CoerceConfidence(extracted.Confidence),
		Keywords:           keywords,
		ProcessingTimeMS:   elapsedMS(start),
		ModelsUsed:         []string{s.model.Model()},
	}

	s.cache.Put(ctx, description, result)
	return result
}

func (s *ProcessingService) fallback(description string, start time.Time) domain.ClassificationResult {
	result := classifier.Fallback(description)
	result.ProcessingTimeMS = elapsedMS(start)
	return result
}

// ModelReady reports whether the classification model can be invoked, for
// health reporting.
func (s *ProcessingService) ModelReady() bool {
	return s.model.Ready()
}

// CoerceConfidence turns whatever the model put in the confidence field into
// a float in [0,1]. Absent or non-numeric values default to 0.8.
func CoerceConfidence(value any) float64 {
	switch v := value.(type) {
	case float64:
		return domain.ClampConfidence(v)
	case int:
		return domain.ClampConfidence(float64(v))
	default:
		return 0.8
	}
}

// TruncateModelName enforces the llm_model storage width: values longer than
// 200 characters are cut to 197 plus an ellipsis marker.
func TruncateModelName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxModelNameLen {
		return name
	}
	return string(runes[:maxModelNameLen-3]) + "..."
}

func elapsedMS(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}

func defaultText(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
