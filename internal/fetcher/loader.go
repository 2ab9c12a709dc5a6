package fetcher

import (
	"context"
	"sync/atomic"

	"github.com/stwalsh4118/streamvault/internal/m3u"
	"github.com/stwalsh4118/streamvault/internal/metrics"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// Source returns playlist text for a URL
type Source interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// Result is a parsed playlist tagged with the generation that produced it
type Result struct {
	URL        string
	Records    []models.ChannelRecord
	Generation uint64
}

// Loader fetches and parses playlists. Each Load takes a new generation; only
// the latest generation may be committed.
type Loader struct {
	source     Source
	generation atomic.Uint64
}

// NewLoader creates a loader over source
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Begin issues the next generation token
func (l *Loader) Begin() uint64 {
	return l.generation.Add(1)
}

// IsLatest reports whether gen is still the newest issued token
func (l *Loader) IsLatest(gen uint64) bool {
	return l.generation.Load() == gen
}

// Load fetches and parses target. It returns ErrSuperseded, discarding both
// result and error, when another Load began while this one was in flight.
func (l *Loader) Load(ctx context.Context, target string) (Result, error) {
	gen := l.Begin()

	text, err := l.source.Fetch(ctx, target)
	if !l.IsLatest(gen) {
		metrics.SourceLoadsSuperseded.Inc()
		return Result{}, ErrSuperseded
	}
	if err != nil {
		return Result{}, err
	}

	records := m3u.Parse(text)
	if !l.IsLatest(gen) {
		metrics.SourceLoadsSuperseded.Inc()
		return Result{}, ErrSuperseded
	}

	return Result{URL: target, Records: records, Generation: gen}, nil
}
