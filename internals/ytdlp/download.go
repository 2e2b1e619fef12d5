package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrDownloadTimeout is returned when the caller's deadline killed the
// download before it finished.
var ErrDownloadTimeout = errors.New("download timed out")

// Request describes one download.
type Request struct {
	URL      string
	Selector string

	// AudioOnly extracts the audio track to mp3 instead of merging video.
	AudioOnly bool

	// Progress, when non-nil, receives download percentages as they are
	// parsed from yt-dlp's output. Called from the reading goroutine's
	// loop; keep it cheap or throttle in the callback.
	Progress func(percent int)
}

// Filenames follow title+id so re-downloads of the same item overwrite
// instead of piling up.
const outTemplate = "%(title).80s [%(id)s].%(ext)s"

var (
	percentRE     = regexp.MustCompile(`(\d+(\.\d+)?)%`)
	destinationRE = regexp.MustCompile(`^\[(?:download|ExtractAudio)\] Destination: (.+)$`)
	mergerRE      = regexp.MustCompile(`^\[Merger\] Merging formats into "(.+)"$`)
	alreadyRE     = regexp.MustCompile(`^\[download\] (.+) has already been downloaded$`)
)

// Download fetches url with the given format selector and returns the path
// of the finished file. Cancelling ctx kills the yt-dlp process; when the
// cancellation came from a deadline the error wraps ErrDownloadTimeout.
func (c *Client) Download(ctx context.Context, req Request) (string, error) {
	args := append(c.commonArgs(),
		"-f", req.Selector,
		"--retries", "5",
		"--fragment-retries", "5",
		"--concurrent-fragments", "4",
		"--newline",
		"-o", filepath.Join(c.outDir, outTemplate),
	)
	if req.AudioOnly {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "192K")
	} else {
		args = append(args, "--merge-output-format", "mp4")
	}
	args = append(args, req.URL)

	c.log.Infow("starting download", "url", req.URL, "selector", req.Selector)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting yt-dlp: %w", err)
	}

	var finalPath, lastPath, lastOutput string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lastOutput = line
		if m := destinationRE.FindStringSubmatch(line); m != nil {
			lastPath = m[1]
		} else if m := mergerRE.FindStringSubmatch(line); m != nil {
			finalPath = m[1]
		} else if m := alreadyRE.FindStringSubmatch(line); m != nil {
			lastPath = m[1]
		} else if p := parsePercent(line); p > 0 && req.Progress != nil {
			req.Progress(p)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: %v", ErrDownloadTimeout, ctx.Err())
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("yt-dlp: %v: %s", err, lastOutput)
	}

	if finalPath == "" {
		finalPath = lastPath
	}
	path, err := c.resolveOutput(finalPath, req.AudioOnly)
	if err != nil {
		return "", err
	}
	c.log.Infow("download finished", "path", path)
	return path, nil
}

// resolveOutput maps the path parsed from yt-dlp's output to the file that
// actually exists; postprocessing may have swapped the extension.
func (c *Client) resolveOutput(reported string, audioOnly bool) (string, error) {
	if reported == "" {
		return "", errors.New("could not determine output file")
	}
	if _, err := os.Stat(reported); err == nil {
		return reported, nil
	}
	wantExt := ".mp4"
	if audioOnly {
		wantExt = ".mp3"
	}
	alt := strings.TrimSuffix(reported, filepath.Ext(reported)) + wantExt
	if _, err := os.Stat(alt); err == nil {
		return alt, nil
	}
	return "", fmt.Errorf("downloaded file not found: %s", reported)
}

// parsePercent extracts the percentage from a "[download]  42.3% of ..."
// progress line, 0 when the line is not one.
func parsePercent(line string) int {
	if !strings.Contains(line, "[download]") {
		return 0
	}
	m := percentRE.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int(p)
}
