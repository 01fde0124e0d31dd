package entity

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxProcessed  OutboxStatus = "processed"
	OutboxFailed     OutboxStatus = "failed"
)

// OutboxEvent is a LifecycleEvent waiting in the outbox table. Payload is
// the JSON-encoded LifecycleEvent; AggregateID is the image id and doubles
// as the broker message key.
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID string
	Type        EventType
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
	RetryCount  int
}
