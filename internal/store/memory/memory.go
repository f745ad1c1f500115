package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"slidesmith/internal/store"
	"slidesmith/pkg/deck"
)

// Store keeps presentations in memory, optionally snapshotting them to a JSON
// file after each mutation so a restart does not lose them.
type Store struct {
	mu    sync.RWMutex
	items map[string]deck.Presentation
	path  string
}

// New creates an empty, non-persistent store.
func New() *Store {
	return &Store{items: map[string]deck.Presentation{}}
}

// NewPersistent creates a store backed by a JSON snapshot at path, loading
// the snapshot if one exists.
func NewPersistent(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	s := &Store{items: map[string]deck.Presentation{}, path: path}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s, nil
}

// Save inserts or replaces a presentation by ID.
func (s *Store) Save(ctx context.Context, p deck.Presentation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("presentation id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = clone(p)
	return s.persistLocked()
}

// Get returns one presentation, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (deck.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return deck.Presentation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return deck.Presentation{}, store.ErrNotFound
	}
	return clone(p), nil
}

// List returns up to limit presentations in creation order, skipping offset.
func (s *Store) List(ctx context.Context, limit, offset int) ([]deck.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.sorted()
	if offset >= len(all) {
		return []deck.Presentation{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Search returns presentations whose topic contains the fragment,
// case-insensitively, in creation order.
func (s *Store) Search(ctx context.Context, topic string) ([]deck.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(topic)
	matches := []deck.Presentation{}
	for _, p := range s.sorted() {
		if strings.Contains(strings.ToLower(p.Topic), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Delete removes a presentation, or returns store.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return s.persistLocked()
}

// Close is a no-op; every mutation already reached the snapshot.
func (s *Store) Close() error { return nil }

// sorted returns cloned presentations in creation order.
func (s *Store) sorted() []deck.Presentation {
	s.mu.RLock()
	out := make([]deck.Presentation, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, clone(p))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var items []deck.Presentation
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for _, p := range items {
		s.items[p.ID] = p
	}
	return nil
}

// persistLocked snapshots the items to disk using an atomic rename. The
// caller holds the write lock.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	items := make([]deck.Presentation, 0, len(s.items))
	for _, p := range s.items {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	_, writeErr := file.Write(payload)
	syncErr := file.Sync()
	closeErr := file.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}
	if syncErr != nil {
		_ = os.Remove(tmpPath)
		return syncErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return closeErr
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// clone copies p so callers and the store never share slice backing arrays.
func clone(p deck.Presentation) deck.Presentation {
	out := p
	out.Slides = make([]deck.Slide, len(p.Slides))
	for i, slide := range p.Slides {
		out.Slides[i] = slide
		out.Slides[i].Content = append([]string(nil), slide.Content...)
		out.Slides[i].Citations = append([]string(nil), slide.Citations...)
	}
	return out
}
