package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"nightfall/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGameCompleted   EventType = "game_completed"
	EventTypeGameCancelled   EventType = "game_cancelled"
	EventTypePayoutProcessed EventType = "payout_processed"
	EventTypeRefundProcessed EventType = "refund_processed"
	EventTypeBalanceChange   EventType = "balance_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GameCompletedEvent represents a game reaching its completed state
type GameCompletedEvent struct {
	GameID    string
	Winner    string
	TotalPool models.Lamports
	NetPayout models.Lamports
}

func (e GameCompletedEvent) Type() EventType {
	return EventTypeGameCompleted
}

// GameCancelledEvent represents a game cancelled by its creator
type GameCancelledEvent struct {
	GameID        string
	CreatorWallet string
}

func (e GameCancelledEvent) Type() EventType {
	return EventTypeGameCancelled
}

// PayoutProcessedEvent represents a settled payout
type PayoutProcessedEvent struct {
	GameID       string
	WinnerWallet string
	NetPayout    models.Lamports
	PlayingFee   models.Lamports
	TxHash       string
}

func (e PayoutProcessedEvent) Type() EventType {
	return EventTypePayoutProcessed
}

// RefundProcessedEvent represents a completed refund run for a cancelled game
type RefundProcessedEvent struct {
	GameID   string
	Refunded int
	TxHashes []string
}

func (e RefundProcessedEvent) Type() EventType {
	return EventTypeRefundProcessed
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	WalletAddress string
	OldBalance    models.Lamports
	NewBalance    models.Lamports
	ChangeAmount  models.Lamports
	Reason        models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
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
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context; emit on a background context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
