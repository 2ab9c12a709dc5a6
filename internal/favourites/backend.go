package favourites

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/streamvault/internal/membership"
	"github.com/stwalsh4118/streamvault/internal/metrics"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// ErrNotBackendID is returned when a catalog id has no backend channel id
var ErrNotBackendID = errors.New("channel id is not a backend channel id")

// BackendService is the part of the backend that tracks favourites per principal
type BackendService interface {
	GetFavourites(ctx context.Context, principal models.Principal) ([]int64, error)
	ToggleFavourite(ctx context.Context, principal models.Principal, channelID int64) (bool, error)
}

// Backend is the favourites set the backend tracks for one principal
type Backend struct {
	svc       BackendService
	principal models.Principal
}

// NewBackend binds the backend favourites of principal
func NewBackend(svc BackendService, principal models.Principal) *Backend {
	return &Backend{svc: svc, principal: principal}
}

// IDs returns the favourites as bare numeric catalog ids
func (b *Backend) IDs(ctx context.Context) (map[string]struct{}, error) {
	channelIDs, err := b.svc.GetFavourites(ctx, b.principal)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		bare, _ := membership.NormalizeID(id)
		out[bare] = struct{}{}
	}
	return out, nil
}

// Toggle accepts the bare catalog id of a backend record
func (b *Backend) Toggle(ctx context.Context, id string) (bool, error) {
	channelID, ok := membership.ParseBackendID(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotBackendID, id)
	}
	on, err := b.svc.ToggleFavourite(ctx, b.principal, channelID)
	if err != nil {
		return false, err
	}
	metrics.RecordFavouriteToggle(StoreBackend)
	return on, nil
}

// Selector picks the authoritative store for a caller
type Selector struct {
	local   *Local
	backend BackendService
}

// NewSelector creates a selector. backend may be nil, in which case every
// caller uses the local store.
func NewSelector(local *Local, backend BackendService) *Selector {
	return &Selector{local: local, backend: backend}
}

// For returns the backend store for an authenticated principal and the local
// store otherwise
func (s *Selector) For(principal models.Principal) Store {
	if principal.IsAnonymous() || s.backend == nil {
		return s.local
	}
	return NewBackend(s.backend, principal)
}

// Local returns the local store
func (s *Selector) Local() *Local {
	return s.local
}
