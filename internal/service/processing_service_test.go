package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/support-copilot/ticket-api/internal/classifier"
	"github.com/support-copilot/ticket-api/internal/domain"
	"github.com/support-copilot/ticket-api/internal/events"
	"github.com/support-copilot/ticket-api/internal/repository"
	"github.com/support-copilot/ticket-api/pkg/util"
)

type fakeModel struct {
	response string
	err      error
	ready    bool
	calls    int
}

func (m *fakeModel) Classify(_ context.Context, _ classifier.Prompt) (string, error) {
	m.calls++
	return m.response, m.err
}

func (m *fakeModel) Model() string { return "llama-3.1-8b-instant" }
func (m *fakeModel) Ready() bool   { return m.ready }

type fakeRepo struct {
	tickets    map[string]*domain.Ticket
	lastUpdate *repository.TicketUpdate
	updateErr  error
}

func newFakeRepo(ids ...string) *fakeRepo {
	r := &fakeRepo{tickets: make(map[string]*domain.Ticket)}
	for _, id := range ids {
		r.tickets[id] = &domain.Ticket{ID: id, Description: "stored description"}
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, description string) (*domain.Ticket, error) {
	return &domain.Ticket{ID: "new", Description: description}, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if ticket, ok := r.tickets[id]; ok {
		return ticket, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRepo) List(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *fakeRepo) ApplyUpdate(_ context.Context, id string, update repository.TicketUpdate) (*domain.Ticket, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.lastUpdate = &update
	return r.tickets[id], nil
}

func (r *fakeRepo) Delete(_ context.Context, _ string) error { return nil }

func (r *fakeRepo) Stats(_ context.Context) (repository.TicketStats, error) {
	return repository.TicketStats{}, nil
}

func newTestService(repo repository.TicketRepository, model ModelClient) *ProcessingService {
	return NewProcessingService(Dependencies{
		TicketRepo: repo,
		Model:      model,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
}

const goodResponse = `Aquí está el análisis:
{"category":"Técnico","category_reasoning":"problema de red","sentiment":"Negativo",
 "sentiment_reasoning":"urgencia","confidence":0.9,"keywords":["internet"]}`

func TestProcessTicketSuccess(t *testing.T) {
	repo := newFakeRepo("t-1")
	svc := newTestService(repo, &fakeModel{response: goodResponse})

	result, err := svc.ProcessTicket(context.Background(), "t-1", "Mi internet no funciona")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Category != domain.CategoryTecnico || result.Sentiment != domain.SentimentNegativo {
		t.Fatalf("labels = (%q, %q)", result.Category, result.Sentiment)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", result.Confidence)
	}
	if len(result.ModelsUsed) != 1 || result.ModelsUsed[0] != "llama-3.1-8b-instant" {
		t.Fatalf("models_used = %v", result.ModelsUsed)
	}
	if result.ProcessingTimeMS < 0 {
		t.Fatalf("processing time %d is negative", result.ProcessingTimeMS)
	}

	update := repo.lastUpdate
	if update == nil {
		t.Fatal("ticket was not persisted")
	}
	if update.Processed == nil || !*update.Processed {
		t.Fatal("update must mark the ticket processed")
	}
	if update.Category == nil || *update.Category != domain.CategoryTecnico {
		t.Fatal("update missing category")
	}
	if update.Reasoning == nil || !strings.Contains(*update.Reasoning, "Cat:") || !strings.Contains(*update.Reasoning, "Sent:") {
		t.Fatalf("reasoning not combined: %v", update.Reasoning)
	}
}

func TestProcessTicketUnknownID(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeModel{response: goodResponse})

	_, err := svc.ProcessTicket(context.Background(), "missing", "descripción suficientemente larga")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "NOT_FOUND" || domainErr.HTTPStatus != 404 {
		t.Fatalf("got code=%s status=%d", domainErr.Code, domainErr.HTTPStatus)
	}
}

func TestProcessTicketStorageFailureIsFatal(t *testing.T) {
	repo := newFakeRepo("t-1")
	repo.updateErr = errors.New("connection reset")
	svc := newTestService(repo, &fakeModel{response: goodResponse})

	_, err := svc.ProcessTicket(context.Background(), "t-1", "Mi internet no funciona")
	if err == nil {
		t.Fatal("storage failures must propagate, not degrade")
	}
	if util.ToDomainError(err).HTTPStatus != 500 {
		t.Fatalf("storage failure should map to 500, got %d", util.ToDomainError(err).HTTPStatus)
	}
}

func TestClassifyModelFailureDegradesToFallback(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"transport error", &fakeModel{err: errors.New("connection timed out")}},
		{"garbage output", &fakeModel{response: "lo siento, no puedo ayudar con eso"}},
		{"non-json braces", &fakeModel{response: "resultado {no es json}"}},
		{"missing category key", &fakeModel{response: `{"sentiment":"Neutral"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeRepo(), tt.model)
			result := svc.Classify(context.Background(), "Mi internet no funciona desde ayer, urgente")

			if len(result.ModelsUsed) != 1 || result.ModelsUsed[0] != domain.FallbackModelName {
				t.Fatalf("models_used = %v, want [%s]", result.ModelsUsed, domain.FallbackModelName)
			}
			if result.Category != domain.CategoryTecnico {
				t.Fatalf("fallback category = %q, want Técnico", result.Category)
			}
			if result.Confidence < 0.5 || result.Confidence > 0.85 {
				t.Fatalf("fallback confidence %v outside [0.5, 0.85]", result.Confidence)
			}
			if !strings.Contains(result.CategoryReasoning, "respaldo") && !strings.Contains(result.CategoryReasoning, "keywords") {
				t.Fatalf("fallback reasoning should name the method, got %q", result.CategoryReasoning)
			}
		})
	}
}

func TestClassifyCoercesOffTaxonomyLabels(t *testing.T) {
	model := &fakeModel{response: `{"category":"Spam","sentiment":"furioso","confidence":0.95}`}
	svc := newTestService(newFakeRepo(), model)

	result := svc.Classify(context.Background(), "cualquier texto de ticket")
	if result.Category != domain.DefaultCategory {
		t.Fatalf("off-taxonomy category = %q, want default %q", result.Category, domain.DefaultCategory)
	}
	if result.Sentiment != domain.DefaultSentiment {
		t.Fatalf("off-taxonomy sentiment = %q, want default %q", result.Sentiment, domain.DefaultSentiment)
	}
	// an off-taxonomy label is a validation substitution, not a model failure
	if result.ModelsUsed[0] == domain.FallbackModelName {
		t.Fatal("label substitution must not trigger the fallback")
	}
}

func TestClassifyDefaultsMissingFields(t *testing.T) {
	model := &fakeModel{response: `{"category":"Técnico"}`}
	svc := newTestService(newFakeRepo(), model)

	result := svc.Classify(context.Background(), "ticket")
	if result.Confidence != 0.8 {
		t.Fatalf("missing confidence should default to 0.8, got %v", result.Confidence)
	}
	if result.Keywords == nil || len(result.Keywords) != 0 {
		t.Fatalf("missing keywords should default to empty list, got %v", result.Keywords)
	}
	if result.CategoryReasoning == "" || result.SentimentReasoning == "" {
		t.Fatal("reasoning defaults missing")
	}
}

func TestCoerceConfidence(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"in range", 0.75, 0.75},
		{"above one clamps", 1.7, 1.0},
		{"below zero clamps", -0.2, 0.0},
		{"absent defaults", nil, 0.8},
		{"string defaults", "high", 0.8},
		{"bool defaults", true, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceConfidence(tt.input); got != tt.want {
				t.Fatalf("CoerceConfidence(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateModelName(t *testing.T) {
	short := strings.Repeat("a", 200)
	if got := TruncateModelName(short); got != short {
		t.Fatal("200-char name must pass through unchanged")
	}

	long := strings.Repeat("b", 201)
	got := TruncateModelName(long)
	if len([]rune(got)) != 200 {
		t.Fatalf("truncated length = %d, want 200", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated name must end with ellipsis marker, got %q", got[190:])
	}
	if got[:197] != long[:197] {
		t.Fatal("truncation must keep the first 197 characters")
	}
}

func TestProcessTicketPublishesEvent(t *testing.T) {
	repo := newFakeRepo("t-9")
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.TicketProcessed, func(_ context.Context, e events.Event) {
		published = append(published, e)
	})

	svc := NewProcessingService(Dependencies{
		TicketRepo: repo,
		Model:      &fakeModel{response: goodResponse},
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})

	if _, err := svc.ProcessTicket(context.Background(), "t-9", "Mi internet no funciona"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(published) != 1 || published[0].TicketID != "t-9" {
		t.Fatalf("expected one ticket.processed event for t-9, got %+v", published)
	}
}
