// Package store persists decoded messages to a local journal. The default
// implementation uses SQLite (pure Go, no CGO).
package store

import (
	"context"
	"time"
)

// Message is one journaled delivery.
type Message struct {
	ID         string    `json:"id"`
	ConnID     string    `json:"conn_id"`
	ReceivedAt time.Time `json:"received_at"`
	Payload    string    `json:"payload"` // canonical JSON text
}

// Store is the journal interface.
type Store interface {
	// Append records one decoded message.
	Append(ctx context.Context, msg Message) error
	// List returns the most recent messages, newest first.
	List(ctx context.Context, limit int) ([]Message, error)
	// Count reports the number of journaled messages.
	Count(ctx context.Context) (int64, error)
	Close() error
}
