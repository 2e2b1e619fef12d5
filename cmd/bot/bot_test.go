package bot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualitybot/internals/format"
	"qualitybot/internals/ytdlp"
)

func manyChoices(n int) []format.Choice {
	choices := make([]format.Choice, n)
	for i := range choices {
		choices[i] = format.Choice{
			Label:    fmt.Sprintf("%dp mp4", 2160-i*10),
			Selector: fmt.Sprintf("%d", 100+i),
		}
	}
	return choices
}

func TestBuildKeyboardRowsOfThree(t *testing.T) {
	kb := buildKeyboard("tok123", manyChoices(7))

	// 7 choice buttons in rows of 3 (3+3+1), plus Best and Audio rows.
	require.Len(t, kb.InlineKeyboard, 5)
	assert.Len(t, kb.InlineKeyboard[0], 3)
	assert.Len(t, kb.InlineKeyboard[1], 3)
	assert.Len(t, kb.InlineKeyboard[2], 1)

	first := kb.InlineKeyboard[0][0]
	assert.Equal(t, "2160p mp4", first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "pick|tok123|0", *first.CallbackData)
}

func TestBuildKeyboardCapsAtTwelveChoices(t *testing.T) {
	kb := buildKeyboard("tok123", manyChoices(30))

	// 12 capped buttons -> 4 rows, then the two shortcut rows.
	require.Len(t, kb.InlineKeyboard, 6)
	total := 0
	for _, row := range kb.InlineKeyboard[:4] {
		total += len(row)
	}
	assert.Equal(t, 12, total)

	best := kb.InlineKeyboard[4][0]
	assert.Equal(t, "🎥 Best", best.Text)
	require.NotNil(t, best.CallbackData)
	assert.Equal(t, "pick|tok123|best", *best.CallbackData)

	audio := kb.InlineKeyboard[5][0]
	require.NotNil(t, audio.CallbackData)
	assert.Equal(t, "pick|tok123|audio", *audio.CallbackData)
}

func TestBuildKeyboardFallbackOnly(t *testing.T) {
	kb := buildKeyboard("tok123", []format.Choice{
		{Label: format.FallbackLabel, Selector: format.BestSelector},
	})
	// One fallback row plus the two shortcuts.
	assert.Len(t, kb.InlineKeyboard, 3)
}

func TestHintFor(t *testing.T) {
	assert.Empty(t, hintFor(nil))
	assert.Empty(t, hintFor(errors.New("some other failure")))

	assert.Contains(t, hintFor(errors.New("ERROR: Login Required")), "COOKIEFILE")
	assert.Contains(t, hintFor(fmt.Errorf("wrap: %w", ytdlp.ErrDownloadTimeout)), "DOWNLOAD_TIMEOUT")
	assert.Contains(t, hintFor(errors.New("tls handshake failure")), "PROXY")

	both := hintFor(errors.New("rate-limit hit, certificate invalid"))
	assert.Contains(t, both, "COOKIEFILE")
	assert.Contains(t, both, "PROXY")
}

func TestURLExtraction(t *testing.T) {
	assert.Equal(t, "https://youtu.be/x", urlRE.FindString("check this https://youtu.be/x out"))
	assert.Equal(t, "http://example.com/v?a=1", urlRE.FindString("http://example.com/v?a=1"))
	assert.Empty(t, urlRE.FindString("no links here"))
}
