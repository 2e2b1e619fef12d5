package upload

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Policy is a bounded exponential backoff for outbound Bot API calls. When
// the server answers 429 with a retry_after, that exact wait is honored
// instead of the backoff step.
type Policy struct {
	Attempts     int
	InitialDelay time.Duration
}

// DefaultPolicy matches the transport's tolerance for transient network
// errors during large uploads.
var DefaultPolicy = Policy{Attempts: 3, InitialDelay: 3 * time.Second}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned as-is so callers can inspect it.
func (p Policy) Do(ctx context.Context, log *zap.SugaredLogger, fn func() error) error {
	delay := p.InitialDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= p.Attempts {
			return err
		}

		wait := delay
		if after, ok := retryAfter(err); ok {
			wait = after
		} else {
			delay *= 2
		}
		log.Warnw("retrying after error", "attempt", attempt, "wait", wait, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// retryAfter extracts the server-specified wait from a rate-limit error.
func retryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second, true
	}
	return 0, false
}
