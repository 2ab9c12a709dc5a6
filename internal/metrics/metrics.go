// Package metrics exposes the prometheus collectors of the channel browser.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch attempt kinds
const (
	AttemptDirect = "direct"
	AttemptRelay  = "relay"
)

// Fetch attempt outcomes
const (
	OutcomeOK            = "ok"
	OutcomeBadStatus     = "bad_status"
	OutcomeMissingHeader = "missing_header"
	OutcomeError         = "error"
	OutcomeTooLarge      = "too_large"
)

var (
	// SourceFetchAttempts counts playlist fetch attempts by kind and outcome
	SourceFetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamvault_source_fetch_attempts_total",
		Help: "Total number of playlist fetch attempts",
	}, []string{"kind", "outcome"})

	// SourceLoadsSuperseded counts loads discarded because a newer load started
	SourceLoadsSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamvault_source_loads_superseded_total",
		Help: "Total number of playlist loads discarded in favour of a newer request",
	})

	// CatalogRecords tracks the size of the current catalog snapshot
	CatalogRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "streamvault_catalog_records",
		Help: "Number of records in the current channel catalog",
	})

	// FavouriteToggles counts favourite toggles by store
	FavouriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamvault_favourite_toggles_total",
		Help: "Total number of favourite toggles",
	}, []string{"store"})

	// FavouritePersistFailures counts local favourites writes that failed
	FavouritePersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamvault_favourite_persist_failures_total",
		Help: "Total number of local favourites writes that failed",
	})
)

// RecordFetchAttempt increments the fetch attempt counter
func RecordFetchAttempt(kind, outcome string) {
	SourceFetchAttempts.WithLabelValues(kind, outcome).Inc()
}

// SetCatalogSize updates the catalog size gauge
func SetCatalogSize(n int) {
	CatalogRecords.Set(float64(n))
}

// RecordFavouriteToggle increments the toggle counter for a store
func RecordFavouriteToggle(store string) {
	FavouriteToggles.WithLabelValues(store).Inc()
}
