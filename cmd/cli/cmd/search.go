package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/angelospk/subfetch/pkg/core/language"
	"github.com/angelospk/subfetch/pkg/core/listing"
	"github.com/angelospk/subfetch/pkg/core/media"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	searchQuery     string
	searchFile      string
	searchTVShow    string
	searchTitle     string
	searchSeason    int
	searchEpisode   int
	searchYear      int
	searchLang      string
	searchPreferred string
	searchLimit     int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for subtitles on OpenSubtitles",
	Long: `Searches OpenSubtitles.com for subtitles. The search is built from the
video file (hash and parsed name), the show/title flags, or a manual query,
plus the configured languages and preferences.

Examples:
  subfetch search --file ~/Movies/Heat.1995.1080p.mkv --lang English,Greek
  subfetch search --query "Heat" --year 1995
  subfetch search --tvshow "The Office" --season 2 --episode 3 --lang en`,
	RunE: runSearch,
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "manual query, replaces title and show")
	searchCmd.Flags().StringVarP(&searchFile, "file", "f", "", "video file to hash and parse")
	searchCmd.Flags().StringVar(&searchTVShow, "tvshow", "", "TV show title")
	searchCmd.Flags().StringVar(&searchTitle, "title", "", "movie or episode title")
	searchCmd.Flags().IntVarP(&searchSeason, "season", "s", 0, "season number")
	searchCmd.Flags().IntVarP(&searchEpisode, "episode", "e", 0, "episode number")
	searchCmd.Flags().IntVar(&searchYear, "year", 0, "release year")
	searchCmd.Flags().StringVarP(&searchLang, "lang", "l", "", "comma separated language names or codes (default preferences.languages)")
	searchCmd.Flags().StringVar(&searchPreferred, "preferred", "", "preferred language, appended to --lang")
	searchCmd.Flags().IntVar(&searchLimit, "limit", listing.DefaultLimit, "maximum results shown")
}

// playerFromFlags describes what the search is about the way a media
// player would.
func playerFromFlags() media.StaticPlayer {
	return media.StaticPlayer{
		File: searchFile,
		Metadata: media.Metadata{
			Title:     searchTitle,
			ShowTitle: searchTVShow,
			Season:    itoa(searchSeason),
			Episode:   itoa(searchEpisode),
			Year:      itoa(searchYear),
		},
	}
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func preferences() media.Preferences {
	return media.Preferences{
		HearingImpaired:   viper.GetBool(CfgKeyPrefHearingImpaired),
		ForeignPartsOnly:  viper.GetBool(CfgKeyPrefForeignPartsOnly),
		MachineTranslated: viper.GetBool(CfgKeyPrefMachineTranslated),
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	mapper := language.NewMapper(nil)
	collector := &media.Collector{
		Player:      playerFromFlags(),
		Mapper:      mapper,
		Preferences: preferences(),
		Logger:      s.log,
	}

	langs := searchLang
	if langs == "" {
		langs = viper.GetString(CfgKeyPrefLanguages)
	}

	ctx := cmd.Context()
	raw, err := collector.Collect(ctx, media.Options{
		ManualQuery:       searchQuery,
		Languages:         langs,
		PreferredLanguage: searchPreferred,
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields(raw)).Debug("searching subtitles")

	// A cached token is optional here. Searches work without one.
	s.client.RestoreToken()

	results, err := withRelogin(ctx, s, func(ctx context.Context) ([]opensubtitles.Subtitle, error) {
		return s.client.SearchSubtitles(ctx, raw)
	})
	if err != nil {
		return fmt.Errorf("subtitle search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No subtitles found matching the criteria.")
		return nil
	}

	records := listing.Build(results, mapper, searchLimit, "")
	fmt.Fprintf(out, "Found %d subtitles (showing %d):\n", len(results), len(records))

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.FileID), r.Label, r.Label2, r.Icon, yesNo(r.Sync), yesNo(r.HearingImpaired),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"File ID", "Language", "Release", "Rating", "Sync", "HI"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
	return nil
}
