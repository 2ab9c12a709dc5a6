package catalog

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// ManualIDPrefix prefixes the id of every manually entered record
const ManualIDPrefix = "manual-"

// ErrInvalidChannel is returned when a manual channel lacks a name or stream URL
var ErrInvalidChannel = errors.New("channel name and stream url are required")

// ManualInput holds the user-entered fields of a manual channel
type ManualInput struct {
	Name         string `json:"name"`
	StreamURL    string `json:"stream_url"`
	Language     string `json:"language"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Registry holds manually entered channels, newest first
type Registry struct {
	mu      sync.RWMutex
	records []models.ChannelRecord
	newID   func() string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		newID: func() string { return ManualIDPrefix + uuid.NewString() },
	}
}

// Add validates input and prepends a new record
func (r *Registry) Add(input ManualInput) (models.ChannelRecord, error) {
	rec, ok := models.NewChannelRecord(
		"",
		strings.TrimSpace(input.Name),
		strings.TrimSpace(input.StreamURL),
		strings.TrimSpace(input.Language),
		strings.TrimSpace(input.Country),
		strings.TrimSpace(input.ThumbnailURL),
		models.OriginManual,
	)
	if !ok {
		return models.ChannelRecord{}, ErrInvalidChannel
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.newID()
	r.records = append([]models.ChannelRecord{rec}, r.records...)
	return rec, nil
}

// Records returns a copy of the registry contents, newest first
func (r *Registry) Records() []models.ChannelRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ChannelRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of manual records
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
