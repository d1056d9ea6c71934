// Package eventstore keeps an append-only history of sitedeploy runs.
//
// Every run appends events (run started, per-site build and deploy outcomes, run
// completed) under its run id. RunHistoryProjection folds the events back into one
// RunSummary per run for the history command.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, runID, eventType string, payload []byte, metadata map[string]string) error

	// GetByRunID retrieves all events of one run in insertion order.
	GetByRunID(ctx context.Context, runID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// Record appends e to store.
func Record(ctx context.Context, store Store, e Event) error {
	return store.Append(ctx, e.RunID(), e.Type(), e.Payload(), e.Metadata())
}
