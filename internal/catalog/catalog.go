// Package catalog assembles the channel catalog from manual, parsed and backend sources.
package catalog

import (
	"github.com/stwalsh4118/streamvault/internal/models"
)

// Catalog is an immutable ordered snapshot of channel records
type Catalog struct {
	records       []models.ChannelRecord
	byID          map[string]int
	byFingerprint map[string]int
}

// Merge places manual records ahead of parsed ones. Nothing is de-duplicated.
func Merge(manual, parsed []models.ChannelRecord) *Catalog {
	records := make([]models.ChannelRecord, 0, len(manual)+len(parsed))
	records = append(records, manual...)
	records = append(records, parsed...)
	return newCatalog(records)
}

// FromBackend builds a catalog consisting only of backend channels
func FromBackend(channels []models.BackendChannel) *Catalog {
	records := make([]models.ChannelRecord, 0, len(channels))
	for i := range channels {
		if rec, ok := channels[i].Record(); ok {
			records = append(records, rec)
		}
	}
	return newCatalog(records)
}

// Empty returns a catalog with no records
func Empty() *Catalog {
	return newCatalog(nil)
}

func newCatalog(records []models.ChannelRecord) *Catalog {
	c := &Catalog{
		records:       records,
		byID:          make(map[string]int, len(records)),
		byFingerprint: make(map[string]int, len(records)),
	}
	for i, rec := range records {
		if _, dup := c.byID[rec.ID]; !dup {
			c.byID[rec.ID] = i
		}
		if _, dup := c.byFingerprint[rec.Fingerprint]; !dup {
			c.byFingerprint[rec.Fingerprint] = i
		}
	}
	return c
}

// Records returns the catalog in order. The slice must not be modified.
func (c *Catalog) Records() []models.ChannelRecord {
	return c.records
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.records)
}

// Lookup finds a record by id
func (c *Catalog) Lookup(id string) (models.ChannelRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.ChannelRecord{}, false
	}
	return c.records[i], true
}

// Revalidate maps a reference taken from an earlier snapshot onto this one.
// The same id with the same fingerprint is kept; otherwise the first record with
// the same fingerprint is used. It returns false when the channel is gone.
func (c *Catalog) Revalidate(ref models.ChannelRecord) (string, bool) {
	if rec, ok := c.Lookup(ref.ID); ok && rec.Fingerprint == ref.Fingerprint {
		return rec.ID, true
	}
	if i, ok := c.byFingerprint[ref.Fingerprint]; ok {
		return c.records[i].ID, true
	}
	return "", false
}
