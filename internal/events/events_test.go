package events

import (
	"context"
	"testing"
	"time"

	"github.com/support-copilot/ticket-api/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var processed []Event
	dispatcher.Subscribe(TicketProcessed, func(_ context.Context, e Event) {
		processed = append(processed, e)
	})

	var other int
	dispatcher.Subscribe(EventType("ticket.deleted"), func(context.Context, Event) {
		other++
	})

	event := Event{
		Type:     TicketProcessed,
		TicketID: "t-1",
		Result: domain.ClassificationResult{
			Category:   domain.CategoryFacturacion,
			Sentiment:  domain.SentimentNegativo,
			ModelsUsed: []string{domain.FallbackModelName},
		},
		OccurredAt: time.Now(),
	}
	dispatcher.Publish(context.Background(), event)
	dispatcher.Publish(context.Background(), event)

	if len(processed) != 2 {
		t.Fatalf("subscriber saw %d events, want 2", len(processed))
	}
	if processed[0].TicketID != "t-1" || processed[0].Result.Category != domain.CategoryFacturacion {
		t.Fatalf("event payload mangled: %+v", processed[0])
	}
	if other != 0 {
		t.Fatalf("unrelated subscriber invoked %d times", other)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	dispatcher.Publish(context.Background(), Event{Type: TicketProcessed, TicketID: "t-2"})
}
