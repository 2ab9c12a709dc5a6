package models

import (
	"strconv"
	"time"
)

// Principal is an opaque caller identity. The zero value is the anonymous caller.
type Principal string

// Anonymous is the principal of an unauthenticated caller
const Anonymous Principal = ""

// IsAnonymous reports whether p carries no identity
func (p Principal) IsAnonymous() bool {
	return p == Anonymous
}

// UserRole is the access level of a principal
type UserRole string

// User roles
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	default:
		return false
	}
}

// BackendChannel is a channel owned by the backend catalog
type BackendChannel struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Name         string    `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	StreamURL    string    `json:"stream_url" gorm:"type:text;not null;column:stream_url" validate:"required"`
	Language     string    `json:"language" gorm:"type:text;not null;default:'';column:language"`
	Country      string    `json:"country" gorm:"type:text;not null;default:'';column:country"`
	ThumbnailURL string    `json:"thumbnail_url" gorm:"type:text;not null;default:'';column:thumbnail_url"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// TableName overrides the gorm table name
func (BackendChannel) TableName() string { return "channels" }

// Record converts a backend channel to a catalog record keyed by its bare numeric id
func (c *BackendChannel) Record() (ChannelRecord, bool) {
	return NewChannelRecord(
		strconv.FormatInt(c.ID, 10),
		c.Name,
		c.StreamURL,
		c.Language,
		c.Country,
		c.ThumbnailURL,
		OriginBackendCatalog,
	)
}

// Favourite marks a backend channel as favourited by a principal
type Favourite struct {
	Principal Principal `json:"principal" gorm:"type:text;primaryKey;column:principal"`
	ChannelID int64     `json:"channel_id" gorm:"primaryKey;column:channel_id"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// TableName overrides the gorm table name
func (Favourite) TableName() string { return "favourites" }

// Playlist is a named, ordered list of backend channel ids owned by a principal
type Playlist struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Owner      Principal `json:"owner" gorm:"type:text;not null;column:owner"`
	Name       string    `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	CreatedAt  time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	ChannelIDs []int64   `json:"channel_ids" gorm:"-"`
}

// TableName overrides the gorm table name
func (Playlist) TableName() string { return "playlists" }

// PlaylistChannel is one membership row of a playlist
type PlaylistChannel struct {
	PlaylistID int64 `json:"playlist_id" gorm:"primaryKey;column:playlist_id"`
	ChannelID  int64 `json:"channel_id" gorm:"primaryKey;column:channel_id"`
	Position   int   `json:"position" gorm:"type:integer;not null;column:position" validate:"gte=0"`
}

// TableName overrides the gorm table name
func (PlaylistChannel) TableName() string { return "playlist_channels" }

// UserProfile holds the display profile of a principal
type UserProfile struct {
	Principal Principal `json:"principal" gorm:"type:text;primaryKey;column:principal"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// TableName overrides the gorm table name
func (UserProfile) TableName() string { return "user_profiles" }

// RoleAssignment stores the role of a principal
type RoleAssignment struct {
	Principal Principal `json:"principal" gorm:"type:text;primaryKey;column:principal"`
	Role      UserRole  `json:"role" gorm:"type:text;not null;column:role"`
}

// TableName overrides the gorm table name
func (RoleAssignment) TableName() string { return "user_roles" }

// KVEntry is a single key/value row used for small persisted documents
type KVEntry struct {
	Key       string    `gorm:"type:text;primaryKey;column:entry_key"`
	Value     []byte    `gorm:"type:blob;not null;column:value"`
	UpdatedAt time.Time `gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// TableName overrides the gorm table name
func (KVEntry) TableName() string { return "kv_entries" }
