package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/angelospk/subfetch/pkg/core/fileops"
	"github.com/angelospk/subfetch/pkg/core/language"
	"github.com/angelospk/subfetch/pkg/core/request"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlayer struct {
	mock.Mock
}

func (m *mockPlayer) PlayingFile() string {
	return m.Called().String(0)
}

func (m *mockPlayer) PlayingMetadata() Metadata {
	return m.Called().Get(0).(Metadata)
}

// tableConverter resolves a fixed set of host languages.
type tableConverter map[string]string

func (t tableConverter) NameToCode(name string) (string, bool) {
	c, ok := t[name]
	return c, ok
}

func (t tableConverter) CodeToName(code string) (string, bool) {
	for n, c := range t {
		if c == code {
			return n, true
		}
	}
	return "", false
}

func newCollector(p Player) *Collector {
	logger, _ := test.NewNullLogger()
	return &Collector{
		Player: p,
		Mapper: language.NewMapper(tableConverter{"German": "de", "Greek": "el"}),
		Logger: logger,
	}
}

func TestMediaData_PrefersOriginalTitle(t *testing.T) {
	p := new(mockPlayer)
	p.On("PlayingFile").Return("/movies/amelie.mkv")
	p.On("PlayingMetadata").Return(Metadata{Title: "Amelie", OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain", Year: "2001"})

	item := newCollector(p).MediaData()
	assert.Equal(t, "Le Fabuleux Destin d'Amélie Poulain", item["query"])
	assert.Equal(t, "2001", item["year"])
	assert.Equal(t, "/movies/amelie.mkv", item["file_original_path"])
	p.AssertExpectations(t)
}

func TestMediaData_FallsBackToTitle(t *testing.T) {
	item := newCollector(StaticPlayer{Metadata: Metadata{Title: "Amelie"}}).MediaData()
	assert.Equal(t, "Amelie", item["query"])
}

func TestMediaData_Specials(t *testing.T) {
	item := newCollector(StaticPlayer{Metadata: Metadata{
		ShowTitle: "Doctor Who", Season: "4", Episode: "S3",
	}}).MediaData()
	assert.Equal(t, "0", item["season_number"])
	assert.Equal(t, "3", item["episode_number"])
	assert.Equal(t, "Doctor Who", item["tvshow"])
}

func TestMediaData_ParsesFileNameWithoutMetadata(t *testing.T) {
	item := newCollector(StaticPlayer{File: "/downloads/The.Matrix.1999.1080p.BluRay.x264.mkv"}).MediaData()
	assert.Equal(t, "The Matrix", item["query"])
	assert.Equal(t, "1999", item["year"])
}

func TestFileData(t *testing.T) {
	c := newCollector(StaticPlayer{})
	dir := t.TempDir()

	big := filepath.Join(dir, "big.mkv")
	require.NoError(t, os.WriteFile(big, make([]byte, fileops.MinHashableSize), 0o644))
	data := c.FileData(big)
	assert.Equal(t, "0000000000020000", data["moviehash"])
	assert.Equal(t, int64(fileops.MinHashableSize), data["file_size"])

	small := filepath.Join(dir, "small.mkv")
	require.NoError(t, os.WriteFile(small, []byte("tiny"), 0o644))
	assert.Nil(t, c.FileData(small))
	assert.Nil(t, c.FileData("http://example.com/stream.mkv"))
	assert.Nil(t, c.FileData(""))
}

func TestLanguageData(t *testing.T) {
	c := newCollector(StaticPlayer{})
	c.Preferences = Preferences{HearingImpaired: true}

	data := c.LanguageData(Options{
		Languages:         "English%2CPortuguese%20(Brazil),Klingon",
		PreferredLanguage: "Greek",
	})
	assert.Equal(t, []string{"en", "pt-br", "el"}, data["languages"])
	assert.Equal(t, true, data["hearing_impaired"])
	assert.Equal(t, false, data["foreign_parts_only"])
	assert.Equal(t, false, data["machine_translated"])
}

func TestLanguageData_PreferredSkipped(t *testing.T) {
	c := newCollector(StaticPlayer{})
	for _, preferred := range []string{"Unknown", "German", ""} {
		data := c.LanguageData(Options{Languages: "German", PreferredLanguage: preferred})
		assert.Equal(t, []string{"de"}, data["languages"], preferred)
	}
}

func TestCollect_BuildsValidQuery(t *testing.T) {
	c := newCollector(StaticPlayer{
		File:     "/tv/Show.S01E02.mkv",
		Metadata: Metadata{ShowTitle: "Show", Title: "Pilot", Season: "1", Episode: "2"},
	})

	raw, err := c.Collect(context.Background(), Options{Languages: "English"})
	require.NoError(t, err)

	v, err := request.Build(raw)
	require.NoError(t, err)
	assert.Equal(t, "Show", v.Get("query"))
	assert.Equal(t, "episode", v.Get("type"))
	assert.Equal(t, "en", v.Get("languages"))
	assert.Equal(t, "exclude", v.Get("hearing_impaired"))
}

func TestCollect_ManualQueryIgnoresPlayerMetadata(t *testing.T) {
	c := newCollector(StaticPlayer{Metadata: Metadata{Title: "Wrong", Year: "1900"}})

	raw, err := c.Collect(context.Background(), Options{ManualQuery: "Right"})
	require.NoError(t, err)
	assert.Equal(t, "Right", raw["query"])
	assert.NotContains(t, raw, "year")
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCollector(StaticPlayer{}).Collect(ctx, Options{ManualQuery: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
