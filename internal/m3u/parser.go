// Package m3u turns extended M3U playlist text into channel records.
package m3u

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stwalsh4118/streamvault/internal/models"
)

const (
	// HeaderMarker must appear in a playlist document before it is handed to Parse
	HeaderMarker = "#EXTM3U"
	// MetadataMarker starts the line describing the next stream
	MetadataMarker = "#EXTINF:"
	// IDPrefix prefixes the per-parse sequential record id
	IDPrefix = "m3u-"
	// UnknownChannelName names a record whose metadata line carries no comma at all
	UnknownChannelName = "Unknown Channel"
)

// Attribute keys read from the metadata line
const (
	attrLogo     = "tvg-logo"
	attrLanguage = "tvg-language"
	attrGroup    = "group-title"
	attrCountry  = "tvg-country"
)

var reAttribute = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)

type scanState int

const (
	awaitingMetadata scanState = iota
	awaitingURL
)

// HasHeader reports whether text carries the playlist header marker
func HasHeader(text string) bool {
	return strings.Contains(text, HeaderMarker)
}

// Parse parses text with ids starting at "m3u-0"
func Parse(text string) []models.ChannelRecord {
	records, _ := ParseFrom(text, 0)
	return records
}

// ParseFrom parses text, numbering emitted records from next. It returns the
// records in document order and the counter value following the last emitted id.
// Malformed entries are skipped; a metadata line that never reaches a URL line
// produces nothing.
func ParseFrom(text string, next int) ([]models.ChannelRecord, int) {
	var records []models.ChannelRecord

	state := awaitingMetadata
	var metadata string

	// Lines have no length limit; inline logos can run to megabytes
	for rest := text; rest != ""; {
		var line string
		line, rest, _ = strings.Cut(rest, "\n")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isMetadataLine(line) {
			// Replaces any pending metadata that never reached a URL
			metadata = line
			state = awaitingURL
			continue
		}

		if state != awaitingURL || strings.HasPrefix(line, "#") {
			continue
		}

		if rec, ok := buildRecord(metadata, line, IDPrefix+strconv.Itoa(next)); ok {
			records = append(records, rec)
			next++
		}
		metadata = ""
		state = awaitingMetadata
	}

	return records, next
}

func isMetadataLine(line string) bool {
	return len(line) >= len(MetadataMarker) && strings.EqualFold(line[:len(MetadataMarker)], MetadataMarker)
}

func buildRecord(metadata, streamURL, id string) (models.ChannelRecord, bool) {
	name, ok := channelName(metadata)
	if !ok {
		return models.ChannelRecord{}, false
	}

	attrs := attributes(metadata)
	language := attrs[attrLanguage]
	if language == "" {
		language = attrs[attrGroup]
	}

	return models.NewChannelRecord(
		id,
		name,
		streamURL,
		language,
		attrs[attrCountry],
		attrs[attrLogo],
		models.OriginParsedPlaylist,
	)
}

// channelName takes the text after the last comma. A line without any comma is
// named UnknownChannelName; a comma followed by nothing drops the entry.
func channelName(metadata string) (string, bool) {
	idx := strings.LastIndex(metadata, ",")
	if idx < 0 {
		return UnknownChannelName, true
	}
	name := strings.TrimSpace(metadata[idx+1:])
	return name, name != ""
}

// attributes collects key="value" pairs with lower-cased keys. The first
// occurrence of a key wins.
func attributes(metadata string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range reAttribute.FindAllStringSubmatch(metadata, -1) {
		key := strings.ToLower(m[1])
		if _, seen := attrs[key]; seen {
			continue
		}
		attrs[key] = strings.TrimSpace(m[2])
	}
	return attrs
}
