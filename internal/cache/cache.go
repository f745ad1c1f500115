package cache

import (
	"context"
	"time"
)

// Stats describes one cache layer. Hit and miss counts accumulate until the
// layer is cleared.
type Stats struct {
	Size       int   `json:"size"`
	MaxEntries int   `json:"max_entries"`
	TTLSeconds int   `json:"ttl_seconds"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
}

// Cache is a TTL'd byte cache for one namespace. Implementations must be safe
// for concurrent use and must never let a cache failure break the request
// they serve: Get reports a miss instead of an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)
	// Clear drops the namespace's entries and counters.
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// Layer TTLs and capacities.
const (
	PresentationTTL        = time.Hour
	PresentationMaxEntries = 100
	SlideTTL               = 30 * time.Minute
	SlideMaxEntries        = 200
	ResponseTTL            = 15 * time.Minute
	ResponseMaxEntries     = 500
)

// Namespace names for the three layers.
const (
	PresentationNamespace = "presentation"
	SlideNamespace        = "slide_gen"
	ResponseNamespace     = "api"
)

// Layers groups the service's three cache namespaces: stored presentations,
// slide-generation results, and whole API responses.
type Layers struct {
	Presentations Cache
	Slides        Cache
	Responses     Cache
}

// ClearAll clears every layer, returning the first failure.
func (l Layers) ClearAll(ctx context.Context) error {
	for _, c := range []Cache{l.Presentations, l.Slides, l.Responses} {
		if c == nil {
			continue
		}
		if err := c.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StatsAll reports stats per layer, keyed the way the admin endpoint exposes
// them.
func (l Layers) StatsAll(ctx context.Context) (map[string]Stats, error) {
	out := map[string]Stats{}
	layers := map[string]Cache{
		"presentation_cache": l.Presentations,
		"slide_cache":        l.Slides,
		"api_cache":          l.Responses,
	}
	for name, c := range layers {
		if c == nil {
			continue
		}
		stats, err := c.Stats(ctx)
		if err != nil {
			return nil, err
		}
		out[name] = stats
	}
	return out, nil
}
