package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config holds every environment-sourced setting the bot reads.
type Config struct {
	BotToken string

	// APIEndpoint is the tgbotapi endpoint template, e.g.
	// "http://127.0.0.1:8081/bot%s/%s" when running a local Bot API server.
	APIEndpoint string

	// OutDir is where downloaded media is written before upload.
	OutDir string

	// CookieFile is an optional Netscape-format cookies.txt path passed to yt-dlp.
	CookieFile string

	// Proxy is an optional upstream proxy URL passed to yt-dlp.
	Proxy string

	DownloadTimeout  time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ProgressInterval time.Duration

	// ForceDocument sends every file as a document instead of a video.
	ForceDocument bool

	LogLevel string
}

// Load builds a Config from the environment. BOT_TOKEN is required;
// everything else falls back to a sane default. The output directory is
// created if it does not exist.
func Load() (*Config, error) {
	token := getEnv("BOT_TOKEN", "")
	if token == "" {
		return nil, errors.New("BOT_TOKEN not set")
	}

	endpoint := tgbotapi.APIEndpoint
	if base := strings.TrimRight(getEnv("BASE_URL", ""), "/"); base != "" {
		endpoint = base + "/bot%s/%s"
	}

	cfg := &Config{
		BotToken:         token,
		APIEndpoint:      endpoint,
		OutDir:           getEnv("OUT_DIR", "download"),
		CookieFile:       getEnv("COOKIEFILE", ""),
		Proxy:            getEnv("PROXY", ""),
		DownloadTimeout:  time.Duration(getEnvInt("DOWNLOAD_TIMEOUT", 7200)) * time.Second,
		ReadTimeout:      time.Duration(getEnvInt("TG_READ_TIMEOUT", 1200)) * time.Second,
		WriteTimeout:     time.Duration(getEnvInt("TG_WRITE_TIMEOUT", 1200)) * time.Second,
		ProgressInterval: time.Duration(getEnvInt("PROGRESS_INTERVAL", 5)) * time.Second,
		ForceDocument:    getEnvBool("FORCE_DOCUMENT", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if cfg.CookieFile != "" {
		if _, err := os.Stat(cfg.CookieFile); err != nil {
			return nil, fmt.Errorf("COOKIEFILE %q: %w", cfg.CookieFile, err)
		}
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating OUT_DIR: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return unquote(s)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	s := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if s == "" {
		return fallback
	}
	switch s {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// unquote strips one matching pair of surrounding quotes, which sneak in when
// .env values are written as KEY="value".
func unquote(s string) string {
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
