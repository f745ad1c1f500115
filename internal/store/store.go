package store

import (
	"context"
	"errors"

	"slidesmith/pkg/deck"
)

// ErrNotFound reports a lookup for a presentation that does not exist.
var ErrNotFound = errors.New("presentation not found")

// Store persists presentations. Implementations must be safe for concurrent
// use.
type Store interface {
	// Save inserts or replaces a presentation by ID.
	Save(ctx context.Context, p deck.Presentation) error
	// Get returns one presentation, or ErrNotFound.
	Get(ctx context.Context, id string) (deck.Presentation, error)
	// List returns up to limit presentations in creation order, skipping
	// offset.
	List(ctx context.Context, limit, offset int) ([]deck.Presentation, error)
	// Search returns presentations whose topic contains the fragment,
	// case-insensitively, in creation order.
	Search(ctx context.Context, topic string) ([]deck.Presentation, error)
	// Delete removes a presentation, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases the store's resources.
	Close() error
}
