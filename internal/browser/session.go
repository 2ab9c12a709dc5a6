// Package browser holds the viewer's channel browsing state and applies the
// rules that tie catalog rebuilds, favourites, playlists and filters together.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stwalsh4118/streamvault/internal/backend"
	"github.com/stwalsh4118/streamvault/internal/catalog"
	"github.com/stwalsh4118/streamvault/internal/favourites"
	"github.com/stwalsh4118/streamvault/internal/fetcher"
	"github.com/stwalsh4118/streamvault/internal/filter"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/membership"
	"github.com/stwalsh4118/streamvault/internal/metrics"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// Catalog variants
const (
	VariantPlaylist = "playlist"
	VariantBackend  = "backend"
)

var (
	// ErrChannelNotFound indicates the id is not in the current catalog
	ErrChannelNotFound = errors.New("channel not in catalog")
	// ErrWrongVariant indicates the operation does not apply to the configured catalog variant
	ErrWrongVariant = errors.New("operation not available for this catalog variant")
	// ErrNoSource indicates no playlist URL was given and none is configured
	ErrNoSource = errors.New("no playlist source url")
)

// Backend is the part of the backend service the session reads
type Backend interface {
	ListChannels(ctx context.Context) ([]models.BackendChannel, error)
	ListPlaylists(ctx context.Context, caller models.Principal) ([]models.Playlist, error)
}

// Options configures a Session
type Options struct {
	Variant    string
	DefaultURL string
}

// State is a copy of the session's browsing state
type State struct {
	Variant   string                `json:"variant"`
	SourceURL string                `json:"source_url"`
	Mode      string                `json:"mode"`
	Language  string                `json:"language"`
	Country   string                `json:"country"`
	Search    string                `json:"search"`
	Selected  *models.ChannelRecord `json:"selected"`
	Channels  int                   `json:"channels"`
}

// Session serializes every mutation of the browsing state
type Session struct {
	mu sync.Mutex

	loader     *fetcher.Loader
	registry   *catalog.Registry
	favourites *favourites.Selector
	backend    Backend

	variant    string
	defaultURL string
	sourceURL  string
	parsed     []models.ChannelRecord
	catalog    *catalog.Catalog
	selected   *models.ChannelRecord
	facets     filter.Facets
}

// New creates a session with an empty catalog. backend may be nil in the
// playlist variant, in which case playlist mode always shows nothing.
func New(opts Options, loader *fetcher.Loader, registry *catalog.Registry, favs *favourites.Selector, backend Backend) *Session {
	variant := opts.Variant
	if variant == "" {
		variant = VariantPlaylist
	}
	return &Session{
		loader:     loader,
		registry:   registry,
		favourites: favs,
		backend:    backend,
		variant:    variant,
		defaultURL: opts.DefaultURL,
		catalog:    catalog.Empty(),
		facets:     filter.NewFacets(),
	}
}

// LoadSource fetches and parses a playlist and rebuilds the catalog from it.
// An empty url means the configured default. On failure the previous catalog
// is kept. A load overtaken by a newer one returns fetcher.ErrSuperseded.
func (s *Session) LoadSource(ctx context.Context, url string) (int, error) {
	if s.variant != VariantPlaylist {
		return 0, ErrWrongVariant
	}

	url = strings.TrimSpace(url)
	if url == "" {
		url = s.defaultURL
	}
	if url == "" {
		return 0, ErrNoSource
	}

	// Fetch without holding the lock; the generation check decides the commit
	res, err := s.loader.Load(ctx, url)
	if err != nil {
		if !fetcher.IsSuperseded(err) {
			logger.Log.Warn().Err(err).Str("url", url).Msg("Playlist load failed")
		}
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loader.IsLatest(res.Generation) {
		metrics.SourceLoadsSuperseded.Inc()
		return 0, fetcher.ErrSuperseded
	}

	s.sourceURL = res.URL
	s.parsed = res.Records
	s.rebuild()

	logger.Log.Info().
		Str("url", res.URL).
		Int("parsed", len(res.Records)).
		Int("catalog", s.catalog.Len()).
		Msg("Playlist loaded")

	return len(res.Records), nil
}

// RefreshBackend replaces the catalog with the backend channel list
func (s *Session) RefreshBackend(ctx context.Context) (int, error) {
	if s.variant != VariantBackend || s.backend == nil {
		return 0, ErrWrongVariant
	}

	gen := s.loader.Begin()
	channels, err := s.backend.ListChannels(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh backend catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loader.IsLatest(gen) {
		metrics.SourceLoadsSuperseded.Inc()
		return 0, fetcher.ErrSuperseded
	}

	s.catalog = catalog.FromBackend(channels)
	s.revalidateSelection()
	metrics.SetCatalogSize(s.catalog.Len())
	return s.catalog.Len(), nil
}

// AddManualChannel registers a user-entered channel and rebuilds the catalog
func (s *Session) AddManualChannel(input catalog.ManualInput) (models.ChannelRecord, error) {
	if s.variant != VariantPlaylist {
		return models.ChannelRecord{}, ErrWrongVariant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.registry.Add(input)
	if err != nil {
		return models.ChannelRecord{}, err
	}
	s.rebuild()

	logger.Log.Info().
		Str("channel_id", rec.ID).
		Str("name", rec.Name).
		Msg("Manual channel added")

	return rec, nil
}

// rebuild must be called with s.mu held
func (s *Session) rebuild() {
	s.catalog = catalog.Merge(s.registry.Records(), s.parsed)
	s.revalidateSelection()
	metrics.SetCatalogSize(s.catalog.Len())
}

// revalidateSelection must be called with s.mu held
func (s *Session) revalidateSelection() {
	if s.selected == nil {
		return
	}
	id, ok := s.catalog.Revalidate(*s.selected)
	if !ok {
		logger.Log.Debug().Str("channel_id", s.selected.ID).Msg("Selected channel left the catalog")
		s.selected = nil
		return
	}
	rec, _ := s.catalog.Lookup(id)
	s.selected = &rec
}

// SetMode switches the filter mode; leaving All resets the facets
func (s *Session) SetMode(mode filter.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facets.SetMode(mode)
}

// SetLanguage sets the language facet
func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facets.Language = facetValue(language)
}

// SetCountry sets the country facet
func (s *Session) SetCountry(country string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facets.Country = facetValue(country)
}

func facetValue(v string) string {
	if v == "" {
		return filter.AllValues
	}
	return v
}

// SetSearch sets the search text
func (s *Session) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facets.Search = search
}

// Select marks a catalog record as the current channel
func (s *Session) Select(id string) (models.ChannelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.catalog.Lookup(id)
	if !ok {
		return models.ChannelRecord{}, ErrChannelNotFound
	}
	s.selected = &rec
	return rec, nil
}

// ClearSelection forgets the current channel
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selected returns the current channel, if any
func (s *Session) Selected() (models.ChannelRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return models.ChannelRecord{}, false
	}
	return *s.selected, true
}

// Facets returns the current filter selection
func (s *Session) Facets() filter.Facets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facets
}

// Records returns the full catalog
func (s *Session) Records() []models.ChannelRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Records()
}

// FacetOptions lists the languages and countries present in the catalog
func (s *Session) FacetOptions() filter.Options {
	return filter.FacetOptions(s.Records())
}

// State returns a copy of the browsing state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Variant:   s.variant,
		SourceURL: s.sourceURL,
		Mode:      s.facets.Mode.String(),
		Language:  s.facets.Language,
		Country:   s.facets.Country,
		Search:    s.facets.Search,
		Channels:  s.catalog.Len(),
	}
	if s.selected != nil {
		sel := *s.selected
		st.Selected = &sel
	}
	return st
}

// Visible applies the current filter selection for caller
func (s *Session) Visible(ctx context.Context, caller models.Principal) ([]models.ChannelRecord, error) {
	s.mu.Lock()
	records := s.catalog.Records()
	facets := s.facets
	s.mu.Unlock()

	in := filter.Input{
		Records:  records,
		Mode:     facets.Mode,
		Language: facets.Language,
		Country:  facets.Country,
		Search:   facets.Search,
	}

	switch facets.Mode.Kind() {
	case filter.KindAll:
	case filter.KindFavourites:
		ids, err := s.favouriteIDs(ctx, caller)
		if err != nil {
			return nil, err
		}
		in.Favourites = ids
	case filter.KindPlaylist:
		id, _ := facets.Mode.PlaylistID()
		playlists, err := s.playlists(ctx, caller)
		if err != nil {
			return nil, err
		}
		in.Members = membership.Resolve(id, playlists, records)
	}

	return filter.Apply(in), nil
}

// FavouriteIDs returns the caller's favourites from the authoritative store
func (s *Session) FavouriteIDs(ctx context.Context, caller models.Principal) ([]string, error) {
	ids, err := s.favouriteIDs(ctx, caller)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// favouritesFor returns the caller's authoritative store. Parsed and manual
// ids have no backend channel, so the playlist variant always uses the local
// store.
func (s *Session) favouritesFor(caller models.Principal) favourites.Store {
	if s.variant == VariantPlaylist {
		return s.favourites.Local()
	}
	return s.favourites.For(caller)
}

func (s *Session) favouriteIDs(ctx context.Context, caller models.Principal) (map[string]struct{}, error) {
	ids, err := s.favouritesFor(caller).IDs(ctx)
	if backend.IsUnauthenticated(err) {
		return map[string]struct{}{}, nil
	}
	return ids, err
}

func (s *Session) playlists(ctx context.Context, caller models.Principal) ([]models.Playlist, error) {
	if s.backend == nil {
		return nil, nil
	}
	playlists, err := s.backend.ListPlaylists(ctx, caller)
	if backend.IsUnauthenticated(err) {
		return nil, nil
	}
	return playlists, err
}

// ToggleFavourite flips id in the caller's authoritative favourites store
func (s *Session) ToggleFavourite(ctx context.Context, caller models.Principal, id string) (bool, error) {
	return s.favouritesFor(caller).Toggle(ctx, id)
}
