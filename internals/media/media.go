// Package media shells out to ffprobe/ffmpeg for best-effort video metadata
// and thumbnails, and owns cleanup of temporary media files.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Meta is best-effort stream metadata; zero fields mean "unknown".
type Meta struct {
	Width    int
	Height   int
	Duration int
}

// Probe returns (width, height, duration) of the first video stream.
// Callers treat failure as "no metadata", not as an error condition.
func Probe(ctx context.Context, path string) (Meta, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return Meta{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseMeta(strings.Split(strings.TrimSpace(string(out)), "\n")), nil
}

// parseMeta reads ffprobe's nokey output: width, height, duration, one per
// line. Missing or malformed lines leave the field zero.
func parseMeta(lines []string) Meta {
	var m Meta
	if len(lines) > 0 {
		m.Width = parseIntLine(lines[0])
	}
	if len(lines) > 1 {
		m.Height = parseIntLine(lines[1])
	}
	if len(lines) > 2 {
		m.Duration = parseIntLine(lines[2])
	}
	return m
}

func parseIntLine(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// Thumbnail grabs a single frame at ~1s into videoPath as a JPEG in the
// system temp dir and returns its path. The caller owns removal.
func Thumbnail(ctx context.Context, videoPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	out := filepath.Join(os.TempDir(), base+".jpg")

	err := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-ss", "1.0",
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		out,
	).Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg thumbnail %s: %w", videoPath, err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		return "", errors.New("thumbnail not written")
	}
	return out, nil
}

// RemoveFiles deletes the given paths, skipping empty ones. Failures are
// aggregated and logged, never propagated; cleanup must not mask the real
// outcome of a request.
func RemoveFiles(log *zap.SugaredLogger, paths ...string) {
	var errs *multierror.Error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		log.Warnw("cleanup failed", "error", err)
	}
}
