package models

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Origin identifies which source produced a channel record
type Origin string

// Channel record origins
const (
	OriginManual         Origin = "manual"
	OriginParsedPlaylist Origin = "parsed_playlist"
	OriginBackendCatalog Origin = "backend_catalog"
)

// ChannelRecord is a single entry of the catalog shown to the viewer.
// Name and StreamURL are never empty for a constructed record.
type ChannelRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StreamURL    string `json:"stream_url"`
	Language     string `json:"language"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
	Origin       Origin `json:"origin"`

	// Fingerprint is derived from Name and StreamURL and survives catalog rebuilds
	Fingerprint string `json:"fingerprint"`
}

// NewChannelRecord builds a record and computes its fingerprint.
// It returns false when name or stream URL is empty.
func NewChannelRecord(id, name, streamURL, language, country, thumbnailURL string, origin Origin) (ChannelRecord, bool) {
	if name == "" || streamURL == "" {
		return ChannelRecord{}, false
	}
	return ChannelRecord{
		ID:           id,
		Name:         name,
		StreamURL:    streamURL,
		Language:     language,
		Country:      country,
		ThumbnailURL: thumbnailURL,
		Origin:       origin,
		Fingerprint:  Fingerprint(name, streamURL),
	}, true
}

// Fingerprint returns the hex SHA3-224 digest of name and stream URL
func Fingerprint(name, streamURL string) string {
	h := sha3.Sum224([]byte(name + "\n" + streamURL))
	return hex.EncodeToString(h[:])
}
