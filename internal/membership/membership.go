// Package membership maps backend playlist contents onto catalog record ids.
//
// Backend playlists store int64 channel numbers while catalog records are keyed
// by strings. A number n matches a backend record in its bare form ("42") and a
// parsed playlist record in its prefixed form ("m3u-42").
package membership

import (
	"strconv"
	"strings"

	"github.com/stwalsh4118/streamvault/internal/m3u"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// NormalizeID returns the bare and prefixed catalog forms of a channel number
func NormalizeID(id int64) (bare, prefixed string) {
	bare = strconv.FormatInt(id, 10)
	return bare, m3u.IDPrefix + bare
}

// ParseCatalogID recovers the channel number from either catalog form
func ParseCatalogID(id string) (int64, bool) {
	return ParseBackendID(strings.TrimPrefix(id, m3u.IDPrefix))
}

// ParseBackendID accepts only the bare canonical decimal form used by backend
// records
func ParseBackendID(raw string) (int64, bool) {
	if raw == "" || raw[0] == '+' || raw[0] == '-' {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	// Reject non-canonical spellings such as "007"
	if strconv.FormatInt(n, 10) != raw {
		return 0, false
	}
	return n, true
}

// Resolve returns the catalog ids that belong to playlistID. An unknown playlist
// yields an empty set.
func Resolve(playlistID int64, playlists []models.Playlist, records []models.ChannelRecord) map[string]struct{} {
	members := make(map[string]struct{})

	var entry *models.Playlist
	for i := range playlists {
		if playlists[i].ID == playlistID {
			entry = &playlists[i]
			break
		}
	}
	if entry == nil {
		return members
	}

	wanted := make(map[string]struct{}, len(entry.ChannelIDs)*2)
	for _, id := range entry.ChannelIDs {
		bare, prefixed := NormalizeID(id)
		wanted[bare] = struct{}{}
		wanted[prefixed] = struct{}{}
	}

	for _, rec := range records {
		if _, ok := wanted[rec.ID]; ok {
			members[rec.ID] = struct{}{}
		}
	}
	return members
}
