// Package ytdlp wraps the yt-dlp command line tool: probing a URL for its
// stream catalog and downloading a selected format.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"qualitybot/internals/format"
)

// ErrProbeFailed wraps any failure to enumerate formats for a URL.
var ErrProbeFailed = errors.New("probe failed")

// Plain browser user agent; some extractors throttle obvious bot clients.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// Info is the subset of yt-dlp's -J output the bot uses.
type Info struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Duration float64             `json:"duration"`
	Formats  []format.Descriptor `json:"formats"`
}

// Client runs yt-dlp with a fixed set of environment-derived options.
type Client struct {
	log        *zap.SugaredLogger
	outDir     string
	cookieFile string
	proxy      string
}

func New(log *zap.SugaredLogger, outDir, cookieFile, proxy string) *Client {
	return &Client{log: log, outDir: outDir, cookieFile: cookieFile, proxy: proxy}
}

// commonArgs are the flags shared by probe and download invocations.
func (c *Client) commonArgs() []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--geo-bypass",
		"--user-agent", userAgent,
	}
	if c.cookieFile != "" {
		args = append(args, "--cookies", c.cookieFile)
	}
	if c.proxy != "" {
		args = append(args, "--proxy", c.proxy)
	}
	return args
}

// Probe asks yt-dlp for the full stream catalog of url without downloading
// anything. Any failure is reported as ErrProbeFailed with the underlying
// cause (including yt-dlp's stderr, which carries the extractor's message).
func (c *Client) Probe(ctx context.Context, url string) (*Info, error) {
	args := append(c.commonArgs(), "-J", url)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrProbeFailed, err, lastLine(stderr.String()))
	}

	info, err := parseInfo(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	c.log.Infow("probe complete", "title", info.Title, "id", info.ID, "formats", len(info.Formats))
	return info, nil
}

func parseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing yt-dlp output: %w", err)
	}
	return &info, nil
}

// lastLine returns the final non-empty line of s, where yt-dlp puts the
// actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
