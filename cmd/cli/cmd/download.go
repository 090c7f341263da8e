package cmd

import (
	"context"
	"fmt"
	"strconv"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/spf13/cobra"
)

var (
	downloadVideo     string
	downloadDir       string
	downloadName      string
	downloadLang      string
	downloadForced    bool
	downloadOverwrite bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a subtitle file by its file ID",
	Long: `Downloads the subtitle file with the given ID (see the File ID column of
'subfetch search'). The file is saved next to --video, or in --dir, as
<name>.<lang>[.forced].srt. An existing file is kept unless --overwrite is set.

Examples:
  subfetch download 1234567 --video ~/Movies/Heat.1995.mkv --lang en
  subfetch download 1234567 --dir . --name heat`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	RootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadVideo, "video", "", "video file the subtitle belongs to")
	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "d", "", "output directory (default: the video's directory)")
	downloadCmd.Flags().StringVarP(&downloadName, "name", "n", "", "output base name (default: the video's name)")
	downloadCmd.Flags().StringVarP(&downloadLang, "lang", "l", "", "language suffix for the file name")
	downloadCmd.Flags().BoolVar(&downloadForced, "forced", false, "mark the subtitle as forced")
	downloadCmd.Flags().BoolVar(&downloadOverwrite, "overwrite", false, "replace an existing subtitle file")
}

func runDownload(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.Atoi(args[0])
	if err != nil || fileID <= 0 {
		return fmt.Errorf("%w: file id must be a positive number, got %q", coreerrors.ErrInvalidInput, args[0])
	}

	params := opensubtitles.DownloadParams{
		FileID:          fileID,
		VideoPath:       downloadVideo,
		OutputDirectory: downloadDir,
		OutputFilename:  downloadName,
		Language:        downloadLang,
		Forced:          downloadForced,
		Overwrite:       downloadOverwrite,
	}
	if _, err := opensubtitles.ResolvePath(params); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.client.Authenticate(ctx); err != nil {
		return err
	}

	res, err := withRelogin(ctx, s, func(ctx context.Context) (*opensubtitles.DownloadResult, error) {
		return s.client.DownloadSubtitle(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if res.AlreadyPresent {
		fmt.Fprintf(out, "Subtitle already present: %s\n", res.Path)
		return nil
	}
	fmt.Fprintf(out, "Saved %s (%d bytes).", res.Path, res.Bytes)
	if res.Remaining >= 0 {
		fmt.Fprintf(out, " %d downloads remaining.", res.Remaining)
	}
	fmt.Fprintln(out)
	return nil
}
