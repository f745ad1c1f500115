package generator

import (
	"context"
	"fmt"
	"sync"

	"slidesmith/pkg/deck"
)

// Switcher is a Generator whose backend can be swapped at runtime, so an
// operator can move between the template and a model backend without a
// restart.
type Switcher struct {
	mu      sync.RWMutex
	current Generator
}

// NewSwitcher wraps the initial backend.
func NewSwitcher(initial Generator) *Switcher {
	return &Switcher{current: initial}
}

// Use swaps the active backend.
func (s *Switcher) Use(g Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = g
}

// Current returns the active backend.
func (s *Switcher) Current() Generator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Name identifies the active backend.
func (s *Switcher) Name() string {
	return s.Current().Name()
}

// Generate delegates to the active backend.
func (s *Switcher) Generate(ctx context.Context, req Request) ([]deck.Slide, error) {
	return s.Current().Generate(ctx, req)
}

// WithFallback returns a Generator that falls back to backup when primary
// fails, mirroring how a flaky model backend degrades to placeholder content
// instead of failing the request.
func WithFallback(primary, backup Generator) Generator {
	return &fallbackGenerator{primary: primary, backup: backup}
}

type fallbackGenerator struct {
	primary Generator
	backup  Generator
}

func (f *fallbackGenerator) Name() string {
	return f.primary.Name()
}

func (f *fallbackGenerator) Generate(ctx context.Context, req Request) ([]deck.Slide, error) {
	slides, err := f.primary.Generate(ctx, req)
	if err == nil {
		return slides, nil
	}
	// A canceled caller is not a backend failure; do not mask it.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	slides, backupErr := f.backup.Generate(ctx, req)
	if backupErr != nil {
		return nil, fmt.Errorf("fallback after %v: %w", err, backupErr)
	}
	return slides, nil
}
