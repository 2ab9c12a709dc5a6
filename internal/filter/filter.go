// Package filter derives the visible channel list from the catalog.
package filter

import (
	"sort"
	"strings"

	"github.com/stwalsh4118/streamvault/internal/models"
)

// AllValues is the facet value that disables a facet
const AllValues = "all"

// Input is everything Apply needs. Members is only consulted in playlist mode.
type Input struct {
	Records    []models.ChannelRecord
	Mode       Mode
	Language   string
	Country    string
	Search     string
	Favourites map[string]struct{}
	Members    map[string]struct{}
}

// Apply narrows Records by mode, language, country and search, in that order.
// Catalog order is preserved.
func Apply(in Input) []models.ChannelRecord {
	search := strings.ToLower(strings.TrimSpace(in.Search))

	out := make([]models.ChannelRecord, 0, len(in.Records))
	for _, rec := range in.Records {
		if !modeKeeps(in, rec.ID) {
			continue
		}
		if !facetKeeps(in.Language, rec.Language) {
			continue
		}
		if !facetKeeps(in.Country, rec.Country) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Name), search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func modeKeeps(in Input, id string) bool {
	switch in.Mode.Kind() {
	case KindAll:
		return true
	case KindFavourites:
		_, ok := in.Favourites[id]
		return ok
	case KindPlaylist:
		_, ok := in.Members[id]
		return ok
	default:
		return false
	}
}

func facetKeeps(facet, value string) bool {
	return facet == AllValues || facet == value
}

// Facets is the caller-held filter selection
type Facets struct {
	Mode     Mode   `json:"-"`
	Language string `json:"language"`
	Country  string `json:"country"`
	Search   string `json:"search"`
}

// NewFacets returns the initial selection: all channels, no facets, no search
func NewFacets() Facets {
	return Facets{Mode: All(), Language: AllValues, Country: AllValues}
}

// SetMode switches mode. Leaving All resets both facets.
func (f *Facets) SetMode(m Mode) {
	f.Mode = m
	switch m.Kind() {
	case KindAll:
	case KindFavourites, KindPlaylist:
		f.Language = AllValues
		f.Country = AllValues
	}
}

// Options lists the distinct non-empty facet values present in a catalog
type Options struct {
	Languages []string `json:"languages"`
	Countries []string `json:"countries"`
}

// FacetOptions returns the sorted distinct languages and countries of records
func FacetOptions(records []models.ChannelRecord) Options {
	languages := make(map[string]struct{})
	countries := make(map[string]struct{})
	for _, rec := range records {
		if rec.Language != "" {
			languages[rec.Language] = struct{}{}
		}
		if rec.Country != "" {
			countries[rec.Country] = struct{}{}
		}
	}
	return Options{
		Languages: sortedKeys(languages),
		Countries: sortedKeys(countries),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
