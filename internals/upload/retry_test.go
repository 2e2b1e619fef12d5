package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPolicy = Policy{Attempts: 3, InitialDelay: time.Millisecond}

func TestPolicySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := testPolicy.Do(context.Background(), zap.NewNop().Sugar(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyRetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := testPolicy.Do(context.Background(), zap.NewNop().Sugar(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicyExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := testPolicy.Do(context.Background(), zap.NewNop().Sugar(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestPolicyHonorsRetryAfter(t *testing.T) {
	rateLimited := &tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1},
	}

	calls := 0
	start := time.Now()
	err := Policy{Attempts: 2, InitialDelay: time.Millisecond}.Do(
		context.Background(), zap.NewNop().Sugar(), func() error {
			calls++
			if calls == 1 {
				return rateLimited
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// Waited the server-specified second, not the millisecond backoff.
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestPolicyStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 5, InitialDelay: time.Hour}.Do(ctx, zap.NewNop().Sugar(), func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryAfterExtraction(t *testing.T) {
	_, ok := retryAfter(errors.New("plain"))
	assert.False(t, ok)

	wrapped := &tgbotapi.Error{Message: "flood", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7}}
	wait, ok := retryAfter(wrapped)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, wait)
}

func TestProgressReaderEmits(t *testing.T) {
	data := strings.Repeat("x", 1000)
	var got []int
	pr := newProgressReader(strings.NewReader(data), int64(len(data)), 0, func(p int) {
		got = append(got, p)
	})

	buf := make([]byte, 250)
	for {
		if _, err := pr.Read(buf); err != nil {
			break
		}
	}
	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[len(got)-1])
}
