package m3u

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/streamvault/internal/models"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-logo="http://x/a.png" tvg-country="GB",BBC News
http://stream/bbc.m3u8
#EXTINF:-1 group-title="News",CNN
http://stream/cnn.m3u8
`

func TestParse_Sample(t *testing.T) {
	records := Parse(samplePlaylist)
	require.Len(t, records, 2)

	bbc := records[0]
	assert.Equal(t, "m3u-0", bbc.ID)
	assert.Equal(t, "BBC News", bbc.Name)
	assert.Equal(t, "http://stream/bbc.m3u8", bbc.StreamURL)
	assert.Empty(t, bbc.Language)
	assert.Equal(t, "GB", bbc.Country)
	assert.Equal(t, "http://x/a.png", bbc.ThumbnailURL)
	assert.Equal(t, models.OriginParsedPlaylist, bbc.Origin)

	cnn := records[1]
	assert.Equal(t, "m3u-1", cnn.ID)
	assert.Equal(t, "CNN", cnn.Name)
	assert.Equal(t, "http://stream/cnn.m3u8", cnn.StreamURL)
	assert.Equal(t, "News", cnn.Language)
	assert.Empty(t, cnn.Country)
	assert.Empty(t, cnn.ThumbnailURL)
}

func TestParse_LanguagePreferredOverGroup(t *testing.T) {
	text := "#EXTINF:-1 tvg-language=\"French\" group-title=\"News\",France 24\nhttp://stream/f24\n"
	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, "French", records[0].Language)
}

func TestParse_AttributesCaseInsensitive(t *testing.T) {
	text := "#EXTINF:-1 TVG-LOGO=\" http://x/logo.png \" Tvg-Country=\"DE\",ZDF\nhttp://stream/zdf\n"
	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, "http://x/logo.png", records[0].ThumbnailURL)
	assert.Equal(t, "DE", records[0].Country)
}

func TestParse_MetadataWithoutURL(t *testing.T) {
	records := Parse("#EXTM3U\n#EXTINF:-1,Lonely\n")
	assert.Empty(t, records)
}

func TestParse_PendingMetadataOverwritten(t *testing.T) {
	text := "#EXTINF:-1,A\n#EXTINF:-1,B\nhttp://b\n"
	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].Name)
	assert.Equal(t, "http://b", records[0].StreamURL)
	assert.Equal(t, "m3u-0", records[0].ID)
}

func TestParse_CommentsAndBlankLinesBetweenMetadataAndURL(t *testing.T) {
	text := "#EXTINF:-1,Arte\n\n   \n#EXTVLCOPT:http-user-agent=foo\n  http://stream/arte  \n"
	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, "http://stream/arte", records[0].StreamURL)
}

func TestParse_URLWithoutMetadataIgnored(t *testing.T) {
	text := "http://orphan\n#EXTINF:-1,Real\nhttp://real\nhttp://second-orphan\n"
	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, "Real", records[0].Name)
}

func TestParse_NameRules(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		wantName string
		wantKept bool
	}{
		{name: "no comma", metadata: `#EXTINF:-1 tvg-country="US"`, wantName: UnknownChannelName, wantKept: true},
		{name: "empty after comma", metadata: "#EXTINF:-1,", wantKept: false},
		{name: "whitespace after comma", metadata: "#EXTINF:-1,   ", wantKept: false},
		{name: "last comma wins", metadata: `#EXTINF:-1 group-title="News,World",Sky News`, wantName: "Sky News", wantKept: true},
		{name: "trimmed", metadata: "#EXTINF:-1,  Al Jazeera  ", wantName: "Al Jazeera", wantKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Parse(tt.metadata + "\nhttp://stream\n")
			if !tt.wantKept {
				assert.Empty(t, records)
				return
			}
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantName, records[0].Name)
		})
	}
}

func TestParse_DroppedRecordDoesNotConsumeID(t *testing.T) {
	text := "#EXTINF:-1,\nhttp://dropped\n#EXTINF:-1,Kept\nhttp://kept\n"
	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, "m3u-0", records[0].ID)
}

func TestParse_CRLF(t *testing.T) {
	text := strings.ReplaceAll(samplePlaylist, "\n", "\r\n")
	records := Parse(text)
	require.Len(t, records, 2)
	assert.Equal(t, "http://stream/bbc.m3u8", records[0].StreamURL)
	assert.Equal(t, "CNN", records[1].Name)
}

func TestParse_IDsRestartPerParse(t *testing.T) {
	first := Parse(samplePlaylist)
	second := Parse(samplePlaylist)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "m3u-0", second[0].ID)
}

func TestParseFrom_ThreadsCounter(t *testing.T) {
	records, next := ParseFrom(samplePlaylist, 5)
	require.Len(t, records, 2)
	assert.Equal(t, "m3u-5", records[0].ID)
	assert.Equal(t, "m3u-6", records[1].ID)
	assert.Equal(t, 7, next)

	more, next := ParseFrom("#EXTINF:-1,Extra\nhttp://extra\n", next)
	require.Len(t, more, 1)
	assert.Equal(t, "m3u-7", more[0].ID)
	assert.Equal(t, 8, next)
}

func TestParse_IDsUniqueAndFieldsNonEmpty(t *testing.T) {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for i := 0; i < 50; i++ {
		b.WriteString("#EXTINF:-1,Channel\nhttp://stream\n")
		if i%7 == 0 {
			b.WriteString("#EXTINF:-1,\nhttp://skip\n")
		}
	}

	seen := make(map[string]bool)
	for _, rec := range Parse(b.String()) {
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
		assert.NotEmpty(t, rec.Name)
		assert.NotEmpty(t, rec.StreamURL)
	}
	assert.Len(t, seen, 50)
}

func TestParse_OverlongLineKeepsLaterRecords(t *testing.T) {
	logo := "data:image/png;base64," + strings.Repeat("A", 2<<20)
	text := "#EXTM3U\n#EXTINF:-1,Before\nhttp://stream/before\n" +
		"#EXTINF:-1 tvg-logo=\"" + logo + "\",Big\nhttp://stream/big\n" +
		"#EXTINF:-1,After\nhttp://stream/after"

	records := Parse(text)
	require.Len(t, records, 3)
	assert.Equal(t, "Before", records[0].Name)
	assert.Equal(t, "Big", records[1].Name)
	assert.Equal(t, logo, records[1].ThumbnailURL)
	assert.Equal(t, "After", records[2].Name)
	assert.Equal(t, "m3u-2", records[2].ID)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("#EXTM3U\n"))
}

func TestHasHeader(t *testing.T) {
	assert.True(t, HasHeader(samplePlaylist))
	assert.True(t, HasHeader("garbage\n#EXTM3U\n"))
	assert.False(t, HasHeader("<html>blocked</html>"))
}
