package postgres

import (
	"context"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/domain/registers/ledger"
)

// Compile-time check that LedgerEventSink implements ledger.EventSink.
var _ ledger.EventSink = (*LedgerEventSink)(nil)

// LedgerEventSink writes ledger events to the transactional outbox so they
// commit atomically with the posting that produced them. The worker relays
// them to the broker afterwards.
type LedgerEventSink struct {
	publisher *OutboxPublisher
}

// NewLedgerEventSink creates an outbox-backed event sink.
func NewLedgerEventSink(publisher *OutboxPublisher) *LedgerEventSink {
	return &LedgerEventSink{publisher: publisher}
}

// Append implements ledger.EventSink.
func (s *LedgerEventSink) Append(ctx context.Context, eventType string, payload any) error {
	aggregateID := id.ID{}
	if entry, ok := payload.(*entity.LedgerEntry); ok {
		aggregateID = entry.LineID
	}

	return s.publisher.Publish(ctx, DomainEvent{
		AggregateType: "LedgerEntry",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	})
}
