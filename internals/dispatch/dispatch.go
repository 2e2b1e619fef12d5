// Package dispatch translates callback-button payloads into concrete
// download requests against the pending selection store.
package dispatch

import (
	"errors"
	"strconv"
	"strings"

	"qualitybot/internals/format"
	"qualitybot/internals/pending"
)

// Action is the fixed first field of every quality-selection payload.
const Action = "pick"

// Reserved refs that bypass the probed catalog.
const (
	RefBest  = "best"
	RefAudio = "audio"
)

// ErrBadAction means the payload is malformed: wrong shape, wrong action
// literal, or an unparsable choice ref. The store is not touched.
var ErrBadAction = errors.New("bad callback action")

// Result is a resolved selection, ready to hand to the downloader.
type Result struct {
	URL      string
	Selector string
	Label    string

	// AudioOnly marks the mp3 shortcut; the downloader extracts audio
	// instead of merging video.
	AudioOnly bool
}

type Dispatcher struct {
	store *pending.Store
}

func New(store *pending.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// CallbackData builds the payload bound to one inline button.
func CallbackData(token, ref string) string {
	return Action + "|" + token + "|" + ref
}

// Dispatch resolves a payload of the shape "pick|<token>|<ref>" where ref is
// a choice index or one of the reserved keywords. A successful resolution
// consumes the token; validation failures leave the store as it was, except
// that keyword and index resolutions that find the token do consume it on
// success only.
func (d *Dispatcher) Dispatch(data string) (Result, error) {
	parts := strings.SplitN(data, "|", 3)
	if len(parts) != 3 || parts[0] != Action {
		return Result{}, ErrBadAction
	}
	token, ref := parts[1], parts[2]

	switch ref {
	case RefBest:
		e, ok := d.store.Pop(token)
		if !ok {
			return Result{}, pending.ErrUnknownToken
		}
		return Result{URL: e.URL, Selector: format.BestSelector, Label: "Best"}, nil
	case RefAudio:
		e, ok := d.store.Pop(token)
		if !ok {
			return Result{}, pending.ErrUnknownToken
		}
		return Result{URL: e.URL, Selector: format.AudioSelector, Label: "Audio (mp3)", AudioOnly: true}, nil
	}

	idx, err := strconv.Atoi(ref)
	if err != nil {
		return Result{}, ErrBadAction
	}
	e, c, err := d.store.Resolve(token, idx)
	if err != nil {
		return Result{}, err
	}
	return Result{URL: e.URL, Selector: c.Selector, Label: c.Label}, nil
}
