// Package listing maps search results to display records for a host UI.
package listing

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/angelospk/subfetch/pkg/core/language"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
)

// DefaultLimit is how many results a listing shows.
const DefaultLimit = 10

// Record is one selectable row.
type Record struct {
	Label           string // language display name
	Label2          string // release name
	Icon            string // rating on a 0-5 scale
	Thumb           string // language code
	Sync            bool   // movie hash matched
	HearingImpaired bool
	SubtitleID      string
	FileID          int
	URL             string
}

// Build maps up to limit entries to records, in order. limit <= 0 means
// DefaultLimit. pluginID, when set, fills each record's URL.
func Build(entries []opensubtitles.Subtitle, mapper *language.Mapper, limit int, pluginID string) []Record {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, FromEntry(e, mapper, pluginID))
	}
	return records
}

// FromEntry maps one entry. The language code is shown as is when the
// mapper cannot name it.
func FromEntry(e opensubtitles.Subtitle, mapper *language.Mapper, pluginID string) Record {
	a := e.Attributes
	label := a.Language
	if mapper != nil {
		if name, ok := mapper.ToDisplayName(a.Language); ok {
			label = name
		}
	}
	r := Record{
		Label:           label,
		Label2:          a.Release,
		Icon:            strconv.Itoa(int(math.Round(a.Ratings / 2))),
		Thumb:           a.Language,
		Sync:            a.MoviehashMatch,
		HearingImpaired: a.HearingImpaired,
		SubtitleID:      a.SubtitleID,
		FileID:          e.FileID(),
	}
	if pluginID != "" && r.FileID != 0 {
		r.URL = DownloadURL(pluginID, r.FileID)
	}
	return r
}

// DownloadURL is the plugin callback that downloads fileID.
func DownloadURL(pluginID string, fileID int) string {
	return fmt.Sprintf("plugin://%s/?action=download&ID=%s", pluginID, url.QueryEscape(strconv.Itoa(fileID)))
}
