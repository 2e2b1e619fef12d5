package main

import (
	"log"
	"net/http"
	"os/exec"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"qualitybot/cmd/bot"
	"qualitybot/internals/config"
	"qualitybot/internals/logging"
)

func main() {
	// .env is optional; system environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	for _, bin := range []string{"yt-dlp", "ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			logger.Fatalf("%s not found in PATH, install it first", bin)
		}
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, cfg.APIEndpoint, &http.Client{
		Timeout: cfg.ReadTimeout,
	})
	if err != nil {
		logger.Fatalf("telegram auth: %v", err)
	}
	logger.Infow("authorized", "username", api.Self.UserName, "endpoint", cfg.APIEndpoint)

	bot.New(api, cfg, logger).Run()
}
