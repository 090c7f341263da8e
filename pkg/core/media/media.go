// Package media gathers what is known about the playing video into a raw
// search query for the provider client.
package media

// Metadata is what the player reports about the current item. Unknown
// fields are empty strings.
type Metadata struct {
	Title         string
	OriginalTitle string
	ShowTitle     string
	Season        string
	Episode       string
	Year          string
}

// Player is the host media player.
type Player interface {
	PlayingFile() string
	PlayingMetadata() Metadata
}

// Preferences are the user's subtitle filters.
type Preferences struct {
	HearingImpaired   bool
	ForeignPartsOnly  bool
	MachineTranslated bool
}

// StaticPlayer is a Player with fixed answers, for callers that know the
// file up front such as the CLI.
type StaticPlayer struct {
	File     string
	Metadata Metadata
}

func (p StaticPlayer) PlayingFile() string       { return p.File }
func (p StaticPlayer) PlayingMetadata() Metadata { return p.Metadata }
