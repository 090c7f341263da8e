// Package request turns subtitle search queries into the query-string
// parameters sent to the provider's search endpoint.
package request

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/google/go-querystring/query"
)

// Inclusion is the tri-state filter accepted for hearing impaired,
// foreign parts only and machine translated subtitles.
type Inclusion string

const (
	Include Inclusion = "include"
	Exclude Inclusion = "exclude"
	Only    Inclusion = "only"
)

func (i Inclusion) valid() bool {
	return i == Include || i == Exclude || i == Only
}

// Query is a search query in one of the accepted shapes: Raw or *SearchRequest.
type Query interface {
	isQuery()
}

// Raw is a loosely typed query keyed by API field name, as produced by
// media.Collector.
type Raw map[string]any

func (Raw) isQuery() {}

// SearchRequest is the canonical, typed form of a search query.
type SearchRequest struct {
	Query             *string    `url:"query,omitempty"`
	Type              *string    `url:"type,omitempty"` // movie, episode, all
	IMDbID            *int       `url:"imdb_id,omitempty"`
	TMDBID            *int       `url:"tmdb_id,omitempty"`
	SeasonNumber      *int       `url:"season_number,omitempty"`
	EpisodeNumber     *int       `url:"episode_number,omitempty"`
	Year              *int       `url:"year,omitempty"`
	Moviehash         *string    `url:"moviehash,omitempty"`
	Languages         []string   `url:"-"`
	HearingImpaired   *Inclusion `url:"hearing_impaired,omitempty"`
	ForeignPartsOnly  *Inclusion `url:"foreign_parts_only,omitempty"`
	MachineTranslated *Inclusion `url:"machine_translated,omitempty"`
	Page              *int       `url:"page,omitempty"`

	// FileSize is collected with the movie hash but not sent; the search
	// endpoint has no parameter for it.
	FileSize *int64 `url:"-"`
}

func (*SearchRequest) isQuery() {}

var moviehashPattern = regexp.MustCompile(`^[a-f0-9]{16}$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", coreerrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Validate checks field ranges and formats.
func (r *SearchRequest) Validate() error {
	if r.Moviehash != nil && !moviehashPattern.MatchString(*r.Moviehash) {
		return invalid("moviehash %q must be 16 lowercase hex characters", *r.Moviehash)
	}
	if r.Type != nil {
		switch *r.Type {
		case "movie", "episode", "all":
		default:
			return invalid("type %q must be movie, episode or all", *r.Type)
		}
	}
	for name, v := range map[string]*int{
		"season_number": r.SeasonNumber, "episode_number": r.EpisodeNumber,
		"year": r.Year, "imdb_id": r.IMDbID, "tmdb_id": r.TMDBID, "page": r.Page,
	} {
		if v != nil && *v < 0 {
			return invalid("%s must not be negative", name)
		}
	}
	for name, v := range map[string]*Inclusion{
		"hearing_impaired": r.HearingImpaired, "foreign_parts_only": r.ForeignPartsOnly,
		"machine_translated": r.MachineTranslated,
	} {
		if v != nil && !v.valid() {
			return invalid("%s %q must be include, exclude or only", name, *v)
		}
	}
	if r.MachineTranslated != nil && *r.MachineTranslated == Only {
		return invalid("machine_translated does not accept %q", Only)
	}
	for _, l := range r.Languages {
		if strings.ContainsAny(strings.TrimSpace(l), ", ") {
			return invalid("language code %q is malformed", l)
		}
	}
	return nil
}

// identifies reports whether r names something to search for. Filters and
// languages on their own do not.
func (r *SearchRequest) identifies() bool {
	return (r.Query != nil && *r.Query != "") ||
		r.IMDbID != nil || r.TMDBID != nil ||
		r.Moviehash != nil
}

// Values validates r and encodes it as query parameters.
func (r *SearchRequest) Values() (url.Values, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	v, err := query.Values(r)
	if err != nil {
		return nil, invalid("encode parameters: %v", err)
	}
	if langs := normalizeLanguages(r.Languages); langs != "" {
		v.Set("languages", langs)
	}
	return v, nil
}

// normalizeLanguages lowercases, dedupes and sorts codes; the API expects
// them sorted and comma separated.
func normalizeLanguages(codes []string) string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// Normalize converts any accepted query shape into a SearchRequest.
func Normalize(q Query) (*SearchRequest, error) {
	switch v := q.(type) {
	case Raw:
		return FromRaw(v)
	case *SearchRequest:
		if v == nil {
			return nil, invalid("nil search request")
		}
		return v, nil
	case nil:
		return nil, invalid("no query given")
	default:
		return nil, invalid("unsupported query type %T", q)
	}
}

// Build normalizes q and produces the parameter set for a search. It fails
// with ErrInvalidInput when the query is malformed or carries nothing to
// search for. Build never touches the network.
func Build(q Query) (url.Values, error) {
	req, err := Normalize(q)
	if err != nil {
		return nil, err
	}
	if !req.identifies() {
		return nil, invalid("empty query: need a title, id or movie hash")
	}
	v, err := req.Values()
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, invalid("empty parameter set")
	}
	return v, nil
}
