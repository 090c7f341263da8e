package scan

import (
	"path/filepath"
	"strings"

	"github.com/angelospk/subfetch/pkg/core/language"
)

var (
	hiTerms     = map[string]bool{"hi": true, "sdh": true, "cc": true, "hearingimpaired": true}
	forcedTerms = map[string]bool{"forced": true, "frc": true}
)

func isFlag(t string) bool {
	return hiTerms[t] || forcedTerms[t]
}

func tokens(name string) []string {
	base := strings.ToLower(filepath.Base(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.FieldsFunc(base, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
}

// Flags reports the hearing impaired and forced markers of a subtitle file
// name, e.g. "movie.en.sdh.srt" or "movie.forced.srt". A trailing "hi" with
// no other language before it is Hindi, not a marker.
func Flags(name string) (hearingImpaired, forced bool) {
	hi := 0
	for _, t := range tokens(name) {
		if t == "hi" {
			hi++
		}
		hearingImpaired = hearingImpaired || (hiTerms[t] && t != "hi")
		forced = forced || forcedTerms[t]
	}
	if hi > 0 && DetectLanguage(name, nil) == "hi" {
		hi--
	}
	return hearingImpaired || hi > 0, forced
}

// subtitleParts splits a subtitle name into its video stem and the trailing
// language code, if any. Flag tokens after the stem are dropped.
func subtitleParts(name string, mapper *language.Mapper) (stem []string, code string) {
	parts := trimFlags(tokens(name), mapper)
	if len(parts) < 2 {
		return parts, ""
	}

	// Regional codes such as pt-br were split in two.
	n := len(parts)
	joined := parts[n-2] + "-" + parts[n-1]
	for _, c := range language.StaticCodes() {
		if joined == c {
			return trimFlags(parts[:n-2], nil), c
		}
	}

	if c := languageCode(parts[n-1], mapper); c != "" {
		return trimFlags(parts[:n-1], nil), c
	}
	return parts, ""
}

// trimFlags drops trailing flag tokens. With a mapper, "hi" is only a flag
// when a language token still precedes it; otherwise it is the Hindi code.
func trimFlags(parts []string, mapper *language.Mapper) []string {
	for len(parts) > 0 && isFlag(parts[len(parts)-1]) {
		rest := parts[:len(parts)-1]
		if mapper != nil && parts[len(parts)-1] == "hi" && !endsWithLanguage(trimFlags(rest, nil), mapper) {
			break
		}
		parts = rest
	}
	return parts
}

func endsWithLanguage(parts []string, mapper *language.Mapper) bool {
	n := len(parts)
	if n < 2 {
		return false
	}
	joined := parts[n-2] + "-" + parts[n-1]
	for _, c := range language.StaticCodes() {
		if joined == c {
			return true
		}
	}
	return languageCode(parts[n-1], mapper) != ""
}

// languageCode resolves a code ("en", "eng") or an English name ("greek").
func languageCode(token string, mapper *language.Mapper) string {
	if name, ok := mapper.ToDisplayName(token); ok {
		if code, ok := mapper.ToCode(name); ok {
			return code
		}
	}
	if len(token) > 3 {
		if code, ok := mapper.ToCode(token); ok {
			return code
		}
	}
	return ""
}

// DetectLanguage returns the OpenSubtitles code carried by a subtitle file
// name, or "" when it has none.
func DetectLanguage(name string, mapper *language.Mapper) string {
	if mapper == nil {
		mapper = language.NewMapper(nil)
	}
	_, code := subtitleParts(name, mapper)
	return code
}

// Matches reports whether subtitle belongs to video: their names are equal
// once the subtitle's language and flag tokens are removed.
func Matches(video, subtitle string, mapper *language.Mapper) bool {
	if mapper == nil {
		mapper = language.NewMapper(nil)
	}
	v := tokens(video)
	s, _ := subtitleParts(subtitle, mapper)
	if len(v) == 0 || len(v) != len(s) {
		return false
	}
	for i := range v {
		if v[i] != s[i] {
			return false
		}
	}
	return true
}

// Missing returns the videos with no matching subtitle in lang. An empty
// lang accepts a subtitle in any language, or with none in its name.
func (r *Result) Missing(lang string, mapper *language.Mapper) []string {
	if mapper == nil {
		mapper = language.NewMapper(nil)
	}
	lang = strings.ToLower(lang)

	var missing []string
	for _, video := range r.Videos {
		found := false
		for _, sub := range r.Subtitles {
			if filepath.Dir(sub) != filepath.Dir(video) || !Matches(video, sub, mapper) {
				continue
			}
			if lang == "" || DetectLanguage(sub, mapper) == lang {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, video)
		}
	}
	return missing
}
