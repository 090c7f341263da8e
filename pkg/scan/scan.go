// Package scan finds video files in a directory tree and tells which of
// them still lack a subtitle.
package scan

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true, ".m4v": true, ".ts": true,
}

var subtitleExtensions = map[string]bool{
	".srt": true, ".sub": true, ".ssa": true, ".ass": true, ".vtt": true,
}

// Result holds the files found by Directory, each list sorted.
type Result struct {
	Videos    []string
	Subtitles []string
}

// Directory walks root and collects video and subtitle files. Unreadable
// entries are logged and skipped. Sub directories are only entered when
// recursive is set.
func Directory(ctx context.Context, root string, recursive bool, logger *logrus.Logger) (*Result, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	result := &Result{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case videoExtensions[ext]:
			result.Videos = append(result.Videos, path)
		case subtitleExtensions[ext]:
			result.Subtitles = append(result.Subtitles, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipDir) {
		return nil, err
	}

	sort.Strings(result.Videos)
	sort.Strings(result.Subtitles)

	logger.WithFields(logrus.Fields{
		"root":      root,
		"videos":    len(result.Videos),
		"subtitles": len(result.Subtitles),
		"recursive": recursive,
	}).Debug("scan complete")
	return result, nil
}
