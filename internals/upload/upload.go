// Package upload sends finished files back to the chat, as a streamable
// video when possible and as a plain document otherwise, with retries and a
// one-shot document fallback.
package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"qualitybot/internals/media"
)

// Bot API rejects larger video uploads on the hosted servers; anything above
// goes as a document.
const videoSizeLimit = 48 << 20

// File is one finished download ready for delivery.
type File struct {
	Path      string
	AudioOnly bool
}

type Uploader struct {
	api              *tgbotapi.BotAPI
	log              *zap.SugaredLogger
	policy           Policy
	forceDocument    bool
	progressInterval time.Duration
}

func New(api *tgbotapi.BotAPI, log *zap.SugaredLogger, policy Policy, forceDocument bool, progressInterval time.Duration) *Uploader {
	return &Uploader{
		api:              api,
		log:              log,
		policy:           policy,
		forceDocument:    forceDocument,
		progressInterval: progressInterval,
	}
}

// Send delivers f to chatID. Video uploads carry best-effort duration and a
// generated thumbnail; if every retried attempt fails, one last attempt is
// made as a document before giving up. The thumbnail is removed on every
// path; the media file itself stays with the caller.
func (u *Uploader) Send(ctx context.Context, chatID int64, f File) error {
	fi, err := os.Stat(f.Path)
	if err != nil {
		return fmt.Errorf("stat upload file: %w", err)
	}
	size := fi.Size()
	name := filepath.Base(f.Path)

	asDocument := f.AudioOnly || u.forceDocument || size > videoSizeLimit

	var meta media.Meta
	var thumbPath string
	if !asDocument {
		if meta, err = media.Probe(ctx, f.Path); err != nil {
			u.log.Debugw("no video metadata", "error", err)
		}
		if thumbPath, err = media.Thumbnail(ctx, f.Path); err != nil {
			u.log.Debugw("no thumbnail", "error", err)
		}
		defer media.RemoveFiles(u.log, thumbPath)
	}

	u.log.Infow("uploading", "file", name, "size", size, "asDocument", asDocument,
		"width", meta.Width, "height", meta.Height, "duration", meta.Duration)

	send := func() error {
		if asDocument {
			return u.sendDocument(chatID, f.Path, name, size)
		}
		return u.sendVideo(chatID, f.Path, name, size, meta, thumbPath)
	}

	if err := u.policy.Do(ctx, u.log, send); err != nil {
		if asDocument {
			return fmt.Errorf("upload failed: %w", err)
		}
		// Last resort: some files Telegram refuses as video go through
		// fine as a document.
		u.log.Warnw("video upload failed, falling back to document", "error", err)
		if err := u.sendDocument(chatID, f.Path, name, size); err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
	}
	return nil
}

func (u *Uploader) sendVideo(chatID int64, path, name string, size int64, meta media.Meta, thumbPath string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cfg := tgbotapi.NewVideo(chatID, tgbotapi.FileReader{
		Name:   name,
		Reader: u.progressed(file, size, name),
	})
	cfg.Caption = name
	cfg.SupportsStreaming = true
	cfg.Duration = meta.Duration
	if thumbPath != "" {
		cfg.Thumb = tgbotapi.FilePath(thumbPath)
	}

	msg, err := u.api.Send(cfg)
	if err != nil {
		return err
	}
	u.log.Infow("sent video", "messageID", msg.MessageID)
	return nil
}

func (u *Uploader) sendDocument(chatID int64, path, name string, size int64) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cfg := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   name,
		Reader: u.progressed(file, size, name),
	})
	cfg.Caption = name

	msg, err := u.api.Send(cfg)
	if err != nil {
		return err
	}
	u.log.Infow("sent document", "messageID", msg.MessageID)
	return nil
}

func (u *Uploader) progressed(file *os.File, size int64, name string) *progressReader {
	start := time.Now()
	return newProgressReader(file, size, u.progressInterval, func(percent int) {
		elapsed := time.Since(start).Seconds()
		speed := float64(size) * float64(percent) / 100 / (1 << 20) / maxf(elapsed, 1e-6)
		u.log.Infof("UP: %3d%% of %.2fMiB at %.2fMiB/s (%s)",
			percent, float64(size)/(1<<20), speed, name)
	})
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
