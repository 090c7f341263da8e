package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/angelospk/subfetch/pkg/core/language"
	"github.com/angelospk/subfetch/pkg/core/media"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/angelospk/subfetch/pkg/scan"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fetchLang      string
	fetchRecursive bool
	fetchDryRun    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <directory>",
	Short: "Download subtitles for every video in a directory that lacks one",
	Long: `Scans a directory for video files, skips the ones that already have a
subtitle in the requested language next to them, and downloads the best
match for the rest. A hash match is preferred over the provider's order.

Examples:
  subfetch fetch ~/Movies --lang en
  subfetch fetch ~/Shows --lang Greek --recursive --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	RootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchLang, "lang", "l", "", "language name or code (default: first of preferences.languages)")
	fetchCmd.Flags().BoolVarP(&fetchRecursive, "recursive", "r", false, "scan sub directories")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "only list the videos missing a subtitle")
}

// fetchLanguage resolves the requested language to a code.
func fetchLanguage(mapper *language.Mapper) (string, error) {
	lang := strings.TrimSpace(fetchLang)
	if lang == "" {
		lang, _, _ = strings.Cut(viper.GetString(CfgKeyPrefLanguages), ",")
		lang = strings.TrimSpace(lang)
	}
	if lang == "" {
		return "", fmt.Errorf("%w: --lang or %s is required", coreerrors.ErrInvalidInput, CfgKeyPrefLanguages)
	}
	if name, ok := mapper.ToDisplayName(lang); ok {
		if code, ok := mapper.ToCode(name); ok {
			return code, nil
		}
	}
	if code, ok := mapper.ToCode(lang); ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: unknown language %q", coreerrors.ErrInvalidInput, lang)
}

// bestMatch prefers a hash matched entry, then the provider's order.
func bestMatch(results []opensubtitles.Subtitle) (opensubtitles.Subtitle, bool) {
	for _, r := range results {
		if r.Attributes.MoviehashMatch && r.FileID() != 0 {
			return r, true
		}
	}
	for _, r := range results {
		if r.FileID() != 0 {
			return r, true
		}
	}
	return opensubtitles.Subtitle{}, false
}

// fatal reports errors that would fail every remaining video too.
func fatal(err error) bool {
	return errors.Is(err, coreerrors.ErrQuotaExceeded) ||
		errors.Is(err, coreerrors.ErrAuthentication) ||
		errors.Is(err, coreerrors.ErrConfiguration) ||
		errors.Is(err, context.Canceled)
}

func runFetch(cmd *cobra.Command, args []string) error {
	mapper := language.NewMapper(nil)
	code, err := fetchLanguage(mapper)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := newLogger(cmd)

	found, err := scan.Directory(ctx, args[0], fetchRecursive, logger)
	if err != nil {
		return fmt.Errorf("%w: scan %s: %v", coreerrors.ErrIO, args[0], err)
	}
	missing := found.Missing(code, mapper)
	fmt.Fprintf(out, "%d videos, %d without a %q subtitle.\n", len(found.Videos), len(missing), code)
	if len(missing) == 0 {
		return nil
	}
	if fetchDryRun {
		for _, v := range missing {
			fmt.Fprintln(out, v)
		}
		return nil
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.client.Authenticate(ctx); err != nil {
		return err
	}

	var saved, present, failed int
	for _, video := range missing {
		res, err := fetchOne(ctx, s, mapper, video, code)
		switch {
		case err == nil && res == nil:
			fmt.Fprintf(out, "no subtitle: %s\n", filepath.Base(video))
		case err == nil && res.AlreadyPresent:
			present++
			fmt.Fprintf(out, "present: %s\n", res.Path)
		case err == nil:
			saved++
			fmt.Fprintf(out, "saved: %s\n", res.Path)
		case fatal(err):
			return fmt.Errorf("fetch stopped after %d downloads: %w", saved, err)
		default:
			failed++
			s.log.WithError(err).WithField("video", video).Warn("fetch failed")
			fmt.Fprintf(out, "failed: %s (%s)\n", filepath.Base(video), coreerrors.Kind(err))
		}
	}

	fmt.Fprintf(out, "Done: %d saved, %d already present, %d failed, %d not found.\n",
		saved, present, failed, len(missing)-saved-present-failed)
	return nil
}

// fetchOne searches for one video and downloads the best result. A nil
// result with a nil error means nothing was found.
func fetchOne(ctx context.Context, s *session, mapper *language.Mapper, video, code string) (*opensubtitles.DownloadResult, error) {
	collector := &media.Collector{
		Player:      media.StaticPlayer{File: video},
		Mapper:      mapper,
		Preferences: preferences(),
		Logger:      s.log,
	}
	raw, err := collector.Collect(ctx, media.Options{Languages: code})
	if err != nil {
		return nil, err
	}

	results, err := withRelogin(ctx, s, func(ctx context.Context) ([]opensubtitles.Subtitle, error) {
		return s.client.SearchSubtitles(ctx, raw)
	})
	if err != nil {
		return nil, err
	}
	best, ok := bestMatch(results)
	if !ok {
		return nil, nil
	}
	s.log.WithFields(logrus.Fields{
		"video":   filepath.Base(video),
		"file_id": best.FileID(),
		"release": best.Attributes.Release,
	}).Debug("picked subtitle")

	res, err := withRelogin(ctx, s, func(ctx context.Context) (*opensubtitles.DownloadResult, error) {
		return s.client.DownloadSubtitle(ctx, opensubtitles.DownloadParams{
			FileID:    best.FileID(),
			VideoPath: video,
			Language:  code,
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
