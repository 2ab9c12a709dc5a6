package db

// Repositories provides access to all database repositories
type Repositories struct {
	Channels   *ChannelRepository
	Favourites *FavouriteRepository
	Playlists  *PlaylistRepository
	Profiles   *ProfileRepository
	Roles      *RoleRepository
	KV         *KVRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Channels:   NewChannelRepository(db),
		Favourites: NewFavouriteRepository(db),
		Playlists:  NewPlaylistRepository(db),
		Profiles:   NewProfileRepository(db),
		Roles:      NewRoleRepository(db),
		KV:         NewKVRepository(db),
	}
}
