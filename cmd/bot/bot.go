// Package bot runs the long-polling update loop and wires messages and
// button taps to the probe/select/download/upload pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"qualitybot/internals/config"
	"qualitybot/internals/dispatch"
	"qualitybot/internals/format"
	"qualitybot/internals/media"
	"qualitybot/internals/pending"
	"qualitybot/internals/upload"
	"qualitybot/internals/ytdlp"
)

const helpText = "Send me a link to a video/reel/TikTok/YouTube — I'll offer " +
	"quality choices and send you the file.\nLarge files arrive as a document."

// Probing is quick compared to downloads and gets its own fixed bound.
const probeTimeout = 60 * time.Second

var urlRE = regexp.MustCompile(`https?://\S+`)

type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        *config.Config
	log        *zap.SugaredLogger
	store      *pending.Store
	dispatcher *dispatch.Dispatcher
	ytdlp      *ytdlp.Client
	uploader   *upload.Uploader
}

func New(api *tgbotapi.BotAPI, cfg *config.Config, log *zap.SugaredLogger) *Bot {
	store := pending.NewStore()
	return &Bot{
		api:        api,
		cfg:        cfg,
		log:        log,
		store:      store,
		dispatcher: dispatch.New(store),
		ytdlp:      ytdlp.New(log, cfg.OutDir, cfg.CookieFile, cfg.Proxy),
		uploader:   upload.New(api, log, upload.DefaultPolicy, cfg.ForceDocument, cfg.ProgressInterval),
	}
}

// Run blocks, polling for updates until the update channel closes. A failure
// while handling one update never takes down the loop.
func (b *Bot) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started, waiting for updates")
	for update := range updates {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer b.recoverPanic("update")
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.Text == "" {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.send(tgbotapi.NewMessage(chatID, "👋 Hi! "+helpText))
		case "help":
			b.send(tgbotapi.NewMessage(chatID, helpText))
		}
		return
	}

	url := urlRE.FindString(msg.Text)
	if url == "" {
		b.log.Infow("no url in message", "chat", chatID)
		b.send(tgbotapi.NewMessage(chatID, "Send me a link to a video (YouTube and others)."))
		return
	}

	// Probing can take a while on slow extractors; don't hold up the loop.
	go b.offerChoices(chatID, url)
}

// offerChoices probes the URL, stores the normalized choice list under a
// fresh token and renders it as an inline keyboard.
func (b *Bot) offerChoices(chatID int64, url string) {
	defer b.recoverPanic("offer")

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	info, err := b.ytdlp.Probe(ctx, url)
	if err != nil {
		b.log.Warnw("probe failed", "url", url, "error", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Could not fetch qualities: "+err.Error()+hintFor(err)))
		return
	}

	choices := format.Normalize(info.Formats)
	token := b.store.Create(url, choices)
	b.log.Infow("choices ready", "url", url, "token", token, "choices", len(choices))
	b.log.Debugw("pending sessions", "count", b.store.Len())

	msg := tgbotapi.NewMessage(chatID, "Choose a quality:")
	msg.ReplyMarkup = buildKeyboard(token, choices)
	b.send(msg)
}

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	res, err := b.dispatcher.Dispatch(q.Data)
	if err != nil {
		switch {
		case errors.Is(err, pending.ErrUnknownToken):
			b.answer(q.ID, "Session not found", true)
		case errors.Is(err, pending.ErrIndexOutOfRange):
			b.answer(q.ID, "That choice is stale, pick another", true)
		default:
			// Malformed payload, nothing useful to tell the user.
			b.answer(q.ID, "", false)
		}
		b.log.Debugw("callback rejected", "data", q.Data, "error", err)
		return
	}

	b.answer(q.ID, "Quality: "+res.Label, false)
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID
	statusID := q.Message.MessageID
	b.editStatus(chatID, statusID, "⬇️ Downloading "+res.Label+"…")

	go b.process(chatID, statusID, res)
}

// process runs the download/upload sequence for one resolved selection,
// editing the status message along the way and cleaning up the file at the
// end regardless of outcome.
func (b *Bot) process(chatID int64, statusID int, res dispatch.Result) {
	defer b.recoverPanic("process")

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.DownloadTimeout)
	defer cancel()

	lastEdit := time.Now()
	path, err := b.ytdlp.Download(ctx, ytdlp.Request{
		URL:       res.URL,
		Selector:  res.Selector,
		AudioOnly: res.AudioOnly,
		Progress: func(percent int) {
			if time.Since(lastEdit) < b.cfg.ProgressInterval {
				return
			}
			lastEdit = time.Now()
			b.editStatus(chatID, statusID, fmt.Sprintf("⬇️ Downloading %s: %d%%", res.Label, percent))
		},
	})
	if err != nil {
		b.reportError(chatID, statusID, err)
		return
	}
	defer media.RemoveFiles(b.log, path)

	b.editStatus(chatID, statusID, "📤 Uploading to Telegram…")

	upCtx, upCancel := context.WithTimeout(context.Background(), b.cfg.WriteTimeout)
	defer upCancel()
	if err := b.uploader.Send(upCtx, chatID, upload.File{Path: path, AudioOnly: res.AudioOnly}); err != nil {
		b.reportError(chatID, statusID, err)
		return
	}

	// Success: the media message speaks for itself, drop the status line.
	b.delete(chatID, statusID)
}

func (b *Bot) reportError(chatID int64, statusID int, err error) {
	b.log.Errorw("request failed", "chat", chatID, "error", err)
	b.editStatus(chatID, statusID, "❌ Error: "+err.Error()+hintFor(err))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warnw("send failed", "error", err)
	}
}

func (b *Bot) editStatus(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Debugw("edit failed", "error", err)
	}
}

func (b *Bot) delete(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debugw("delete failed", "error", err)
	}
}

func (b *Bot) answer(callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := b.api.Request(cb); err != nil {
		b.log.Debugw("answer callback failed", "error", err)
	}
}

func (b *Bot) recoverPanic(where string) {
	if r := recover(); r != nil {
		b.log.Errorw("recovered panic", "where", where, "panic", r)
	}
}
