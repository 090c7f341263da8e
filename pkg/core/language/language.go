// Package language translates between OpenSubtitles language codes and the
// English display names used by media players.
package language

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Converter is the host facility used for languages missing from the static
// table. Both directions report false when no conversion exists.
type Converter interface {
	NameToCode(name string) (string, bool)
	CodeToName(code string) (string, bool)
}

// entry pairs a display name with the OpenSubtitles code for languages whose
// code is regional and cannot be resolved through ISO 639-1 alone.
type entry struct {
	Name string
	Code string
}

var staticTable = []entry{
	{Name: "English", Code: "en"},
	{Name: "Portuguese (Brazil)", Code: "pt-br"},
	{Name: "Portuguese", Code: "pt-pt"},
	{Name: "Chinese (simplified)", Code: "zh-cn"},
	{Name: "Chinese (traditional)", Code: "zh-tw"},
	{Name: "Chinese bilingual", Code: "ze"},
}

var (
	nameToCode = map[string]string{}
	codeToName = map[string]string{}
)

func init() {
	for _, e := range staticTable {
		nameToCode[strings.ToLower(e.Name)] = e.Code
		codeToName[strings.ToLower(e.Code)] = e.Name
	}
}

// Mapper resolves codes and display names, static table first.
type Mapper struct {
	host Converter
}

// NewMapper returns a Mapper falling back to host. A nil host uses the
// x/text based converter.
func NewMapper(host Converter) *Mapper {
	if host == nil {
		host = NewTextConverter()
	}
	return &Mapper{host: host}
}

// ToCode returns the OpenSubtitles code for a display name.
func (m *Mapper) ToCode(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if code, ok := nameToCode[strings.ToLower(name)]; ok {
		return code, true
	}
	return m.host.NameToCode(name)
}

// ToDisplayName returns the display name for an OpenSubtitles code.
func (m *Mapper) ToDisplayName(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	if name, ok := codeToName[strings.ToLower(code)]; ok {
		return name, true
	}
	return m.host.CodeToName(code)
}

// StaticCodes lists the codes carried by the static table, in table order.
func StaticCodes() []string {
	codes := make([]string, 0, len(staticTable))
	for _, e := range staticTable {
		codes = append(codes, e.Code)
	}
	return codes
}

// StaticNames lists the display names carried by the static table.
func StaticNames() []string {
	names := make([]string, 0, len(staticTable))
	for _, e := range staticTable {
		names = append(names, e.Name)
	}
	return names
}

// TextConverter converts using CLDR English display names from x/text.
type TextConverter struct {
	once  sync.Once
	names map[string]string // lowercase english name -> ISO 639-1
}

// NewTextConverter returns a converter indexing the ISO 639-1 codes
// OpenSubtitles serves.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) index() {
	c.once.Do(func() {
		namer := display.English.Languages()
		c.names = make(map[string]string, len(isoCodes))
		for _, code := range isoCodes {
			tag, err := language.Parse(code)
			if err != nil {
				continue
			}
			if name := namer.Name(tag); name != "" {
				c.names[strings.ToLower(name)] = code
			}
		}
	})
}

// NameToCode accepts an English language name or an ISO 639 code and
// returns the two-letter code.
func (c *TextConverter) NameToCode(name string) (string, bool) {
	c.index()
	key := strings.ToLower(strings.TrimSpace(name))
	if code, ok := c.names[key]; ok {
		return code, true
	}
	if len(key) != 2 && len(key) != 3 {
		return "", false
	}
	tag, err := language.Parse(key)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	code := base.String()
	if len(code) != 2 {
		return "", false
	}
	return code, true
}

// CodeToName returns the English name of an ISO 639 code.
func (c *TextConverter) CodeToName(code string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "", false
	}
	return name, true
}

// isoCodes are the ISO 639-1 codes OpenSubtitles offers subtitles in.
var isoCodes = []string{
	"af", "ar", "an", "hy", "as", "eu", "be", "bn", "bs", "br", "bg",
	"my", "ca", "hr", "cs", "da", "nl", "eo", "et", "fi", "fr", "gd", "gl",
	"ka", "de", "el", "he", "hi", "hu", "is", "ig", "id", "ia", "ga", "it",
	"ja", "kn", "kk", "km", "ko", "ku", "lv", "lt", "lb", "mk", "ms", "ml",
	"mr", "mn", "ne", "no", "oc", "or", "fa", "pl", "ps", "ro", "ru", "sr",
	"sd", "si", "sk", "sl", "so", "es", "sw", "sv", "tl", "ta", "tt", "te",
	"th", "tr", "tk", "uk", "ur", "uz", "vi", "cy",
}
