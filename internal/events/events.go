package events

import (
	"context"
	"sync"
	"time"

	"github.com/support-copilot/ticket-api/internal/domain"
)

// EventType names a published event.
type EventType string

// TicketProcessed fires after a ticket has been classified and persisted.
const TicketProcessed EventType = "ticket.processed"

// Event carries a classification outcome to subscribers.
type Event struct {
	Type       EventType
	TicketID   string
	Result     domain.ClassificationResult
	OccurredAt time.Time
}

// EventHandler handles a published event.
type EventHandler func(context.Context, Event)

// Dispatcher allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher. Handlers run inline
// on the publishing goroutine and must not block.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{listeners: make(map[EventType][]EventHandler)}
}

func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
