package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ModeKind enumerates the filter modes
type ModeKind int

const (
	KindAll ModeKind = iota
	KindFavourites
	KindPlaylist
)

// Mode selects which part of the catalog is considered before facets and search
type Mode struct {
	kind       ModeKind
	playlistID int64
}

// All passes every record through
func All() Mode { return Mode{kind: KindAll} }

// Favourites keeps favourited records
func Favourites() Mode { return Mode{kind: KindFavourites} }

// Playlist keeps the resolved members of a backend playlist
func Playlist(id int64) Mode { return Mode{kind: KindPlaylist, playlistID: id} }

// Kind returns the mode variant
func (m Mode) Kind() ModeKind { return m.kind }

// PlaylistID returns the playlist id and whether m is a playlist mode
func (m Mode) PlaylistID() (int64, bool) {
	return m.playlistID, m.kind == KindPlaylist
}

// String renders the mode as "all", "favourites" or "playlist:<id>"
func (m Mode) String() string {
	switch m.kind {
	case KindAll:
		return "all"
	case KindFavourites:
		return "favourites"
	case KindPlaylist:
		return "playlist:" + strconv.FormatInt(m.playlistID, 10)
	default:
		return fmt.Sprintf("mode(%d)", int(m.kind))
	}
}

// ErrInvalidMode is returned by ParseMode for unknown input
var ErrInvalidMode = errors.New("invalid filter mode")

// ParseMode is the inverse of Mode.String
func ParseMode(s string) (Mode, error) {
	switch s {
	case "all", "":
		return All(), nil
	case "favourites":
		return Favourites(), nil
	}
	raw, ok := strings.CutPrefix(s, "playlist:")
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return Playlist(id), nil
}
