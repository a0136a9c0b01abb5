package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is an operational event such as a cache refresh or a drafts batch.
// Type examples: "customers.cache.refreshed", "drafts.batch.created".
type Event struct {
	ID   uuid.UUID
	Type string
	Meta map[string]string
	Time time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
