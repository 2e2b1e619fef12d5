package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualitybot/internals/format"
	"qualitybot/internals/pending"
)

func newFixture(t *testing.T) (*Dispatcher, *pending.Store, string) {
	t.Helper()
	store := pending.NewStore()
	token := store.Create("https://example.com/v", []format.Choice{
		{Label: "1080p60fps mp4 + m4a", Selector: "299+140"},
		{Label: "720p mp4", Selector: "22"},
		{Label: "360p mp4", Selector: "18"},
	})
	return New(store), store, token
}

func TestDispatchIndex(t *testing.T) {
	d, store, token := newFixture(t)

	res, err := d.Dispatch(CallbackData(token, "0"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v", res.URL)
	assert.Equal(t, "299+140", res.Selector)
	assert.Equal(t, "1080p60fps mp4 + m4a", res.Label)
	assert.False(t, res.AudioOnly)
	assert.Equal(t, 0, store.Len())
}

func TestDispatchBadAction(t *testing.T) {
	d, store, token := newFixture(t)

	for _, data := range []string{
		"",
		"pick",
		"pick|" + token,
		"grab|" + token + "|0",
		CallbackData(token, "seven"),
	} {
		_, err := d.Dispatch(data)
		assert.ErrorIs(t, err, ErrBadAction, "data %q", data)
	}
	// None of the malformed payloads touched the store.
	assert.Equal(t, 1, store.Len())
}

func TestDispatchUnknownToken(t *testing.T) {
	d, _, _ := newFixture(t)

	_, err := d.Dispatch(CallbackData("abc123abc123", "0"))
	assert.ErrorIs(t, err, pending.ErrUnknownToken)

	_, err = d.Dispatch(CallbackData("abc123abc123", RefBest))
	assert.ErrorIs(t, err, pending.ErrUnknownToken)
}

func TestDispatchIndexOutOfRangeKeepsToken(t *testing.T) {
	d, store, token := newFixture(t)

	_, err := d.Dispatch(CallbackData(token, "7"))
	assert.ErrorIs(t, err, pending.ErrIndexOutOfRange)
	assert.Equal(t, 1, store.Len())

	res, err := d.Dispatch(CallbackData(token, "1"))
	require.NoError(t, err)
	assert.Equal(t, "22", res.Selector)
}

func TestDispatchBestIgnoresStoredChoices(t *testing.T) {
	d, store, token := newFixture(t)

	res, err := d.Dispatch(CallbackData(token, RefBest))
	require.NoError(t, err)
	assert.Equal(t, format.BestSelector, res.Selector)
	assert.Equal(t, "Best", res.Label)
	assert.Equal(t, 0, store.Len())
}

func TestDispatchAudioShortcut(t *testing.T) {
	d, _, token := newFixture(t)

	res, err := d.Dispatch(CallbackData(token, RefAudio))
	require.NoError(t, err)
	assert.Equal(t, format.AudioSelector, res.Selector)
	assert.True(t, res.AudioOnly)
}

func TestDispatchSameButtonTwice(t *testing.T) {
	d, _, token := newFixture(t)

	_, err := d.Dispatch(CallbackData(token, "0"))
	require.NoError(t, err)

	_, err = d.Dispatch(CallbackData(token, "0"))
	assert.ErrorIs(t, err, pending.ErrUnknownToken)
}
