package events

import (
	"context"
	"sync"

	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

// EventType names an event published on the bus
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeSessionFired  EventType = "session_fired"
	EventTypeWagerStarted  EventType = "wager_started"
	EventTypeWagerSettled  EventType = "wager_settled"
	EventTypeWagerExpired  EventType = "wager_expired"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is published after a ledger update changed a balance
type BalanceChangeEvent struct {
	GuildID         int64
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// SessionFiredEvent is published once per session when its threshold is reached
type SessionFiredEvent struct {
	GuildID   int64
	MessageID string
	Emoji     string
	Label     string
	Count     int
}

func (e SessionFiredEvent) Type() EventType {
	return EventTypeSessionFired
}

// WagerStartedEvent is published when a wager starts waiting for its pick
type WagerStartedEvent struct {
	GuildID   int64
	UserID    int64
	MessageID string
	Variant   models.WagerVariant
}

func (e WagerStartedEvent) Type() EventType {
	return EventTypeWagerStarted
}

// WagerSettledEvent is published after a wager's stake was committed
type WagerSettledEvent struct {
	GuildID   int64
	UserID    int64
	MessageID string
	Result    models.WagerResult
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// WagerExpiredEvent is published when a wager timed out without a pick
type WagerExpiredEvent struct {
	GuildID   int64
	UserID    int64
	MessageID string
	Variant   models.WagerVariant
}

func (e WagerExpiredEvent) Type() EventType {
	return EventTypeWagerExpired
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"event_type":    eventType,
		"handler_count": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Publish lets the bus stand in wherever a publisher is expected
func (b *Bus) Publish(event Event) {
	b.Emit(context.Background(), event)
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines and a panicking handler is logged, not propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"event_type":    event.Type(),
		"handler_count": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"event_type":    event.Type(),
						"handler_index": handlerIndex,
						"panic":         r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events until the unit of work that produced them commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the number of stashed events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits stashed events after a successful commit.
// Emission uses a background context so handlers outlive the transaction's context.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pending_events", len(b.pending)).Debug("Flushing transactional bus")

	eventCtx := context.Background()
	for _, ev := range b.pending {
		if b.real != nil {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
	return nil
}

// Discard drops stashed events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
