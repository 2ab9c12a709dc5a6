package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/models"
)

const (
	admin models.Principal = "admin-principal"
	alice models.Principal = "alice-principal"
	bob   models.Principal = "bob-principal"
)

// setupTestService creates a service with a migrated test database and an admin
func setupTestService(t *testing.T, opts ...Option) (*Service, func()) {
	// Create temporary database
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)

	// Run migrations
	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)

	migrationsPath := "file://../../migrations"
	err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	service := NewService(repos, opts...)

	require.NoError(t, service.AssignRole(context.Background(), admin, admin, models.RoleAdmin))

	cleanup := func() {
		_ = database.Close()
	}

	return service, cleanup
}

func addChannel(t *testing.T, s *Service, name string) *models.BackendChannel {
	t.Helper()
	ch, err := s.AddChannel(context.Background(), admin, ChannelInput{Name: name, StreamURL: "http://stream/" + name})
	require.NoError(t, err)
	return ch
}

func TestAddChannel_Success(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ch, err := service.AddChannel(context.Background(), admin, ChannelInput{
		Name:      "  Arte ",
		StreamURL: "http://arte",
		Language:  "French",
		Country:   "FR",
	})

	require.NoError(t, err)
	assert.NotZero(t, ch.ID)
	assert.Equal(t, "Arte", ch.Name)
	assert.Equal(t, "French", ch.Language)

	channels, err := service.ListChannels(context.Background())
	require.NoError(t, err)
	assert.Len(t, channels, 1)
}

func TestAddChannel_Authorization(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	in := ChannelInput{Name: "x", StreamURL: "http://x"}

	_, err := service.AddChannel(ctx, models.Anonymous, in)
	assert.True(t, IsUnauthenticated(err))

	_, err = service.AddChannel(ctx, alice, in)
	assert.True(t, IsForbidden(err))
}

func TestAddChannel_Invalid(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.AddChannel(context.Background(), admin, ChannelInput{Name: " ", StreamURL: "http://x"})
	assert.ErrorIs(t, err, ErrInvalidChannel)
	assert.True(t, IsInvalidInput(err))
}

func TestUpdateChannel(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	ch := addChannel(t, service, "NHK")

	updated, err := service.UpdateChannel(ctx, admin, ch.ID, ChannelInput{Name: "NHK World", StreamURL: "http://nhk", Country: "JP"})
	require.NoError(t, err)
	assert.Equal(t, "NHK World", updated.Name)

	got, err := service.GetChannel(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "JP", got.Country)

	_, err = service.UpdateChannel(ctx, admin, 999, ChannelInput{Name: "a", StreamURL: "b"})
	assert.True(t, IsChannelNotFound(err))

	_, err = service.UpdateChannel(ctx, alice, ch.ID, ChannelInput{Name: "a", StreamURL: "b"})
	assert.True(t, IsForbidden(err))
}

func TestDeleteChannel(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	ch := addChannel(t, service, "CNN")

	assert.True(t, IsForbidden(service.DeleteChannel(ctx, alice, ch.ID)))
	require.NoError(t, service.DeleteChannel(ctx, admin, ch.ID))
	assert.True(t, IsChannelNotFound(service.DeleteChannel(ctx, admin, ch.ID)))

	_, err := service.GetChannel(ctx, ch.ID)
	assert.True(t, IsChannelNotFound(err))
}

func TestFavourites(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	ch := addChannel(t, service, "BBC")

	ids, err := service.GetFavourites(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)

	on, err := service.ToggleFavourite(ctx, alice, ch.ID)
	require.NoError(t, err)
	assert.True(t, on)

	ids, err = service.GetFavourites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []int64{ch.ID}, ids)

	on, err = service.ToggleFavourite(ctx, alice, ch.ID)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = service.ToggleFavourite(ctx, alice, 12345)
	assert.True(t, IsChannelNotFound(err))
}

func TestFavourites_Anonymous(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.GetFavourites(ctx, models.Anonymous)
	assert.True(t, IsUnauthenticated(err))

	_, err = service.ToggleFavourite(ctx, models.Anonymous, 1)
	assert.True(t, IsUnauthenticated(err))
}

func TestPlaylists(t *testing.T) {
	service, cleanup := setupTestService(t, WithKnownChannelsOnly())
	defer cleanup()
	ctx := context.Background()
	a := addChannel(t, service, "A")
	b := addChannel(t, service, "B")

	pl, err := service.CreatePlaylist(ctx, alice, " News ")
	require.NoError(t, err)
	assert.Equal(t, "News", pl.Name)
	assert.Equal(t, alice, pl.Owner)

	pl, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, b.ID)
	require.NoError(t, err)
	pl, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, pl.ChannelIDs)

	_, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyInPlaylist)
	_, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, 999)
	assert.True(t, IsChannelNotFound(err))

	pl, err = service.RemoveChannelFromPlaylist(ctx, alice, pl.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, pl.ChannelIDs)
	_, err = service.RemoveChannelFromPlaylist(ctx, alice, pl.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotInPlaylist)

	playlists, err := service.ListPlaylists(ctx, alice)
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, []int64{a.ID}, playlists[0].ChannelIDs)

	require.NoError(t, service.DeletePlaylist(ctx, alice, pl.ID))
	_, err = service.GetPlaylist(ctx, alice, pl.ID)
	assert.True(t, IsPlaylistNotFound(err))
}

func TestPlaylists_AnyChannelNumber(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	pl, err := service.CreatePlaylist(ctx, alice, "Parsed")
	require.NoError(t, err)

	// Positions of parsed playlist entries have no backend channel row
	pl, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, 3)
	require.NoError(t, err)
	pl, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 0}, pl.ChannelIDs)

	_, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, -1)
	assert.True(t, IsChannelNotFound(err))
}

func TestDeleteChannel_RemovesPlaylistEntries(t *testing.T) {
	service, cleanup := setupTestService(t, WithKnownChannelsOnly())
	defer cleanup()
	ctx := context.Background()
	a := addChannel(t, service, "A")
	b := addChannel(t, service, "B")

	pl, err := service.CreatePlaylist(ctx, alice, "Mine")
	require.NoError(t, err)
	_, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, a.ID)
	require.NoError(t, err)
	_, err = service.AddChannelToPlaylist(ctx, alice, pl.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteChannel(ctx, admin, a.ID))

	pl, err = service.GetPlaylist(ctx, alice, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, pl.ChannelIDs)
}

func TestPlaylists_OwnerScoped(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	ch := addChannel(t, service, "A")

	pl, err := service.CreatePlaylist(ctx, alice, "Mine")
	require.NoError(t, err)

	_, err = service.GetPlaylist(ctx, bob, pl.ID)
	assert.True(t, IsPlaylistNotFound(err))
	_, err = service.AddChannelToPlaylist(ctx, bob, pl.ID, ch.ID)
	assert.True(t, IsPlaylistNotFound(err))
	assert.True(t, IsPlaylistNotFound(service.DeletePlaylist(ctx, bob, pl.ID)))

	playlists, err := service.ListPlaylists(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, playlists)
}

func TestPlaylists_Validation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.CreatePlaylist(ctx, alice, "   ")
	assert.ErrorIs(t, err, ErrInvalidPlaylist)

	_, err = service.CreatePlaylist(ctx, models.Anonymous, "x")
	assert.True(t, IsUnauthenticated(err))

	_, err = service.ListPlaylists(ctx, models.Anonymous)
	assert.True(t, IsUnauthenticated(err))
}

func TestProfiles(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.GetCallerProfile(ctx, alice)
	assert.True(t, IsProfileNotFound(err))

	_, err = service.SaveCallerProfile(ctx, alice, "")
	assert.ErrorIs(t, err, ErrInvalidProfile)

	saved, err := service.SaveCallerProfile(ctx, alice, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", saved.Name)

	got, err := service.GetCallerProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	// Own profile and admin access allowed, others forbidden
	_, err = service.GetUserProfile(ctx, alice, alice)
	assert.NoError(t, err)
	_, err = service.GetUserProfile(ctx, admin, alice)
	assert.NoError(t, err)
	_, err = service.GetUserProfile(ctx, bob, alice)
	assert.True(t, IsForbidden(err))

	_, err = service.GetCallerProfile(ctx, models.Anonymous)
	assert.True(t, IsUnauthenticated(err))
}

func TestRoles(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	role, err := service.GetCallerRole(ctx, models.Anonymous)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, role)

	role, err = service.GetCallerRole(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	isAdmin, err := service.IsCallerAdmin(ctx, admin)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// Bootstrap is closed once an admin exists
	assert.True(t, IsForbidden(service.AssignRole(ctx, alice, alice, models.RoleAdmin)))

	require.NoError(t, service.AssignRole(ctx, admin, alice, models.RoleAdmin))
	isAdmin, err = service.IsCallerAdmin(ctx, alice)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	assert.ErrorIs(t, service.AssignRole(ctx, admin, bob, "owner"), ErrInvalidRole)
	assert.True(t, IsUnauthenticated(service.AssignRole(ctx, models.Anonymous, bob, models.RoleUser)))
}

func TestAssignRole_BootstrapOnlySelfAdmin(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Migrate("file://../../migrations"))

	service := NewService(db.NewRepositories(database))
	ctx := context.Background()

	assert.True(t, IsForbidden(service.AssignRole(ctx, alice, bob, models.RoleAdmin)))
	assert.True(t, IsForbidden(service.AssignRole(ctx, alice, alice, models.RoleUser)))
	require.NoError(t, service.AssignRole(ctx, alice, alice, models.RoleAdmin))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(ErrAlreadyInPlaylist))
	assert.False(t, IsConflict(ErrNotInPlaylist))
}
