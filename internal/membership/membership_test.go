package membership

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/streamvault/internal/m3u"
	"github.com/stwalsh4118/streamvault/internal/models"
)

func records(ids ...string) []models.ChannelRecord {
	out := make([]models.ChannelRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.ChannelRecord{ID: id, Name: "ch " + id, StreamURL: "http://" + id})
	}
	return out
}

func TestNormalizeID(t *testing.T) {
	bare, prefixed := NormalizeID(42)
	assert.Equal(t, "42", bare)
	assert.Equal(t, "m3u-42", prefixed)
}

func TestParseCatalogID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "42", want: 42, wantOK: true},
		{in: "m3u-42", want: 42, wantOK: true},
		{in: "0", want: 0, wantOK: true},
		{in: "m3u-0", want: 0, wantOK: true},
		{in: "manual-5c2b", wantOK: false},
		{in: "backend-3", wantOK: false},
		{in: "m3u-", wantOK: false},
		{in: "m3u-007", wantOK: false},
		{in: "", wantOK: false},
		{in: "-1", wantOK: false},
		{in: "+1", wantOK: false},
		{in: "007", wantOK: false},
		{in: "99999999999999999999", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCatalogID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseBackendID(t *testing.T) {
	got, ok := ParseBackendID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), got)

	_, ok = ParseBackendID("m3u-42")
	assert.False(t, ok)
	_, ok = ParseBackendID("manual-1")
	assert.False(t, ok)
}

func TestNormalizationRoundTrip(t *testing.T) {
	for _, id := range []int64{0, 1, 42, 1 << 40, math.MaxInt64} {
		bare, prefixed := NormalizeID(id)

		got, ok := ParseCatalogID(bare)
		assert.True(t, ok)
		assert.Equal(t, id, got)

		got, ok = ParseCatalogID(prefixed)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	}
}

func TestResolve_BothForms(t *testing.T) {
	playlists := []models.Playlist{{ID: 1, Name: "News", ChannelIDs: []int64{42, 7}}}

	members := Resolve(1, playlists, records("42", "m3u-7", "m3u-0", "manual-x"))

	assert.Len(t, members, 2)
	assert.Contains(t, members, "42")
	assert.Contains(t, members, "m3u-7")
}

func TestResolve_ParsedPlaylist(t *testing.T) {
	parsed := m3u.Parse("#EXTM3U\n#EXTINF:-1,One\nhttp://one\n#EXTINF:-1,Two\nhttp://two\n#EXTINF:-1,Three\nhttp://three\n")
	require.Len(t, parsed, 3)

	playlists := []models.Playlist{{ID: 9, ChannelIDs: []int64{0, 2}}}
	members := Resolve(9, playlists, parsed)
	assert.Equal(t, map[string]struct{}{"m3u-0": {}, "m3u-2": {}}, members)

	// Every member maps back to the number stored in the playlist
	for id := range members {
		n, ok := ParseCatalogID(id)
		require.True(t, ok)
		assert.Contains(t, playlists[0].ChannelIDs, n)
	}
}

func TestResolve_UnknownPlaylist(t *testing.T) {
	playlists := []models.Playlist{{ID: 1, ChannelIDs: []int64{42}}}
	assert.Empty(t, Resolve(99, playlists, records("42")))
	assert.Empty(t, Resolve(1, nil, records("42")))
}

func TestResolve_MembersAbsentFromCatalog(t *testing.T) {
	playlists := []models.Playlist{{ID: 3, ChannelIDs: []int64{100, 200}}}
	assert.Empty(t, Resolve(3, playlists, records("m3u-0", "m3u-1", "manual-100")))
}

func TestResolve_PicksMatchingPlaylist(t *testing.T) {
	playlists := []models.Playlist{
		{ID: 1, ChannelIDs: []int64{1}},
		{ID: 2, ChannelIDs: []int64{2}},
	}
	members := Resolve(2, playlists, records("1", "2"))
	assert.Equal(t, map[string]struct{}{"2": {}}, members)
}
