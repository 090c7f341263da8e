package media

import (
	"context"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/angelospk/subfetch/pkg/core/fileops"
	"github.com/angelospk/subfetch/pkg/core/language"
	"github.com/angelospk/subfetch/pkg/core/request"
	ptn "github.com/razsteinmetz/go-ptn"
	"github.com/sirupsen/logrus"
)

// unknownLanguage is what players report when the preferred language is unset.
const unknownLanguage = "Unknown"

// Options describe one search action.
type Options struct {
	// ManualQuery, when set, replaces everything the player reports.
	ManualQuery string
	// Languages is a comma separated, possibly URL escaped, list of
	// language display names or codes.
	Languages         string
	PreferredLanguage string
}

// Collector builds search queries from the player state.
type Collector struct {
	Player      Player
	Mapper      *language.Mapper
	Preferences Preferences
	Logger      *logrus.Logger
}

func (c *Collector) log() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// Collect merges media, file and language data into a raw query.
func (c *Collector) Collect(ctx context.Context, opts Options) (request.Raw, error) {
	raw := request.Raw{}

	if opts.ManualQuery != "" {
		raw["query"] = opts.ManualQuery
	} else {
		for k, v := range c.MediaData() {
			raw[k] = v
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for k, v := range c.FileData(c.Player.PlayingFile()) {
		raw[k] = v
	}

	for k, v := range c.LanguageData(opts) {
		raw[k] = v
	}
	return raw, nil
}

// MediaData reads title, show, season, episode and year from the player.
// The original title is preferred over the localized one. When the player
// knows neither title nor show, the file name is parsed instead.
func (c *Collector) MediaData() request.Raw {
	md := c.Player.PlayingMetadata()
	file := c.Player.PlayingFile()

	item := request.Raw{
		"year":               strings.TrimSpace(md.Year),
		"season_number":      strings.TrimSpace(md.Season),
		"episode_number":     strings.TrimSpace(md.Episode),
		"tvshow":             strings.TrimSpace(md.ShowTitle),
		"query":              strings.TrimSpace(md.OriginalTitle),
		"file_original_path": file,
	}

	if item["query"] == "" {
		c.log().Debug("original title not found, using title")
		item["query"] = strings.TrimSpace(md.Title)
	}

	// Specials are reported as e.g. "S1" and live in season 0.
	if ep := item["episode_number"].(string); strings.Contains(strings.ToLower(ep), "s") {
		item["season_number"] = "0"
		item["episode_number"] = ep[len(ep)-1:]
	}

	if item["query"] == "" && item["tvshow"] == "" && file != "" {
		c.parseFileName(file, item)
	}
	return item
}

// parseFileName fills the query from a release-style file name.
func (c *Collector) parseFileName(file string, item request.Raw) {
	name := filepath.Base(file)
	parsed, err := ptn.Parse(name)
	if err != nil || parsed.Title == "" {
		c.log().WithError(err).WithField("file", name).Warn("could not parse file name")
		item["query"] = strings.ReplaceAll(strings.TrimSuffix(name, filepath.Ext(name)), ".", " ")
		return
	}

	item["query"] = parsed.Title
	if parsed.Year > 0 && item["year"] == "" {
		item["year"] = strconv.Itoa(parsed.Year)
	}
	if parsed.Season > 0 && item["season_number"] == "" {
		item["season_number"] = strconv.Itoa(parsed.Season)
	}
	if parsed.Episode > 0 && item["episode_number"] == "" {
		item["episode_number"] = strconv.Itoa(parsed.Episode)
	}
	c.log().WithFields(logrus.Fields{"file": name, "title": parsed.Title}).Debug("parsed file name")
}

// FileData hashes a local video file. Remote streams and files too small to
// hash yield nothing.
func (c *Collector) FileData(path string) request.Raw {
	if path == "" || strings.Contains(path, "://") {
		return nil
	}
	hash, size, err := fileops.CalculateOSDbHash(path)
	if err != nil {
		c.log().WithError(err).WithField("file", path).Debug("skipping movie hash")
		return nil
	}
	return request.Raw{"moviehash": hash, "file_size": size}
}

// LanguageData translates the requested languages to codes and adds the
// preference flags. Names that cannot be translated are logged and dropped.
func (c *Collector) LanguageData(opts Options) request.Raw {
	list := opts.Languages
	if unescaped, err := url.QueryUnescape(list); err == nil {
		list = unescaped
	}

	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if p := strings.TrimSpace(opts.PreferredLanguage); p != "" && p != unknownLanguage && !contains(names, p) {
		names = append(names, p)
	}

	mapper := c.Mapper
	if mapper == nil {
		mapper = language.NewMapper(nil)
	}
	codes := make([]string, 0, len(names))
	for _, n := range names {
		code, ok := mapper.ToCode(n)
		if !ok {
			c.log().WithField("language", n).Warn("language code not found")
			continue
		}
		codes = append(codes, code)
	}

	return request.Raw{
		"hearing_impaired":   c.Preferences.HearingImpaired,
		"foreign_parts_only": c.Preferences.ForeignPartsOnly,
		"machine_translated": c.Preferences.MachineTranslated,
		"languages":          codes,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
