package request

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// rawField applies one raw value to the request being built.
type rawField func(r *SearchRequest, v any) error

var rawFields = map[string]rawField{
	"query":          stringField(func(r *SearchRequest, s string) { r.Query = &s }),
	"type":           stringField(func(r *SearchRequest, s string) { r.Type = &s }),
	"moviehash":      stringField(func(r *SearchRequest, s string) { r.Moviehash = &s }),
	"tvshow":         stringField(func(r *SearchRequest, s string) { r.tvshow(s) }),
	"imdb_id":        intField("imdb_id", func(r *SearchRequest, n int) { r.IMDbID = &n }),
	"tmdb_id":        intField("tmdb_id", func(r *SearchRequest, n int) { r.TMDBID = &n }),
	"season_number":  intField("season_number", func(r *SearchRequest, n int) { r.SeasonNumber = &n }),
	"episode_number": intField("episode_number", func(r *SearchRequest, n int) { r.EpisodeNumber = &n }),
	"year":           intField("year", func(r *SearchRequest, n int) { r.Year = &n }),
	"page":           intField("page", func(r *SearchRequest, n int) { r.Page = &n }),
	"file_size": intField("file_size", func(r *SearchRequest, n int) {
		size := int64(n)
		r.FileSize = &size
	}),
	"hearing_impaired":   inclusionField("hearing_impaired", func(r *SearchRequest, i Inclusion) { r.HearingImpaired = &i }),
	"foreign_parts_only": inclusionField("foreign_parts_only", func(r *SearchRequest, i Inclusion) { r.ForeignPartsOnly = &i }),
	"machine_translated": inclusionField("machine_translated", func(r *SearchRequest, i Inclusion) { r.MachineTranslated = &i }),
	"languages":          languagesField,
	// carried by the player data but never sent
	"file_original_path": func(*SearchRequest, any) error { return nil },
}

// tvshow searches by show name, which the provider matches better than
// the episode title.
func (r *SearchRequest) tvshow(show string) {
	r.Query = &show
	episode := "episode"
	r.Type = &episode
}

// FromRaw validates a raw mapping and converts it to a SearchRequest.
// Unknown keys are rejected; nil and empty-string values count as absent.
func FromRaw(raw Raw) (*SearchRequest, error) {
	if raw == nil {
		return nil, invalid("nil query mapping")
	}

	// tvshow must be applied after query so it wins regardless of map order.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[j] == "tvshow" {
			return keys[i] != "tvshow"
		}
		if keys[i] == "tvshow" {
			return false
		}
		return keys[i] < keys[j]
	})

	req := &SearchRequest{}
	for _, k := range keys {
		apply, ok := rawFields[k]
		if !ok {
			return nil, invalid("unknown field %q", k)
		}
		v := raw[k]
		if isAbsent(v) {
			continue
		}
		if err := apply(req, v); err != nil {
			return nil, err
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func stringField(set func(*SearchRequest, string)) rawField {
	return func(r *SearchRequest, v any) error {
		s, ok := v.(string)
		if !ok {
			return invalid("expected a string, got %T", v)
		}
		set(r, strings.TrimSpace(s))
		return nil
	}
}

func intField(name string, set func(*SearchRequest, int)) rawField {
	return func(r *SearchRequest, v any) error {
		n, err := toInt(v)
		if err != nil {
			return invalid("%s: %v", name, err)
		}
		set(r, n)
		return nil
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, invalid("%v is not a whole number", t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, invalid("%q is not a number", t)
		}
		return n, nil
	default:
		return 0, invalid("unsupported number type %T", v)
	}
}

func inclusionField(name string, set func(*SearchRequest, Inclusion)) rawField {
	return func(r *SearchRequest, v any) error {
		switch t := v.(type) {
		case bool:
			set(r, boolInclusion(t))
			return nil
		case Inclusion:
			set(r, t)
			return nil
		case string:
			s := strings.ToLower(strings.TrimSpace(t))
			if b, err := strconv.ParseBool(s); err == nil {
				set(r, boolInclusion(b))
				return nil
			}
			set(r, Inclusion(s))
			return nil
		default:
			return invalid("%s: unsupported type %T", name, v)
		}
	}
}

func boolInclusion(b bool) Inclusion {
	if b {
		return Include
	}
	return Exclude
}

func languagesField(r *SearchRequest, v any) error {
	switch t := v.(type) {
	case []string:
		r.Languages = append(r.Languages, t...)
	case string:
		r.Languages = append(r.Languages, strings.Split(t, ",")...)
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return invalid("languages: expected strings, got %T", item)
			}
			r.Languages = append(r.Languages, s)
		}
	default:
		return invalid("languages: unsupported type %T", v)
	}
	return nil
}
