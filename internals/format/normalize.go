package format

import (
	"fmt"
	"sort"
	"strings"
)

// Choice is one user-facing download option: the label goes on an inline
// button, the selector goes to the extraction backend.
type Choice struct {
	Label    string
	Selector string
}

const (
	// BestSelector asks the backend to pick its own best video+audio pair.
	// Also used as the fallback when probing finds nothing usable.
	BestSelector = "bv*+ba/best"

	// AudioSelector fetches the best audio-only stream.
	AudioSelector = "bestaudio/best"

	// FallbackLabel marks the best-effort choice appended when no concrete
	// format qualifies.
	FallbackLabel = "🎥 Best"
)

// Only mp4 video is offered so the result plays natively in the chat client;
// other containers are dropped, not converted.
const targetExt = "mp4"

// audioPreferred ranks audio-only containers that pair cleanly with mp4 video.
var audioPreferred = map[string]bool{"m4a": true, "mp4": true, "aac": true}

// Normalize reduces a raw stream catalog to a deduplicated, ranked list of
// download choices.
//
// Video candidates are grouped by height, keeping per height the entry with
// the best (fps, tbr). Video-only streams are paired with the single best
// audio-only stream when one exists. The result is sorted by descending
// height then fps, contains no duplicate selectors or labels, and is never
// empty: a catalog with no qualifying entries yields one best-effort choice.
func Normalize(formats []Descriptor) []Choice {
	bestAudio := bestAudioOnly(formats)

	byHeight := make(map[int]Descriptor)
	for _, f := range formats {
		if !f.hasVideo() || !strings.EqualFold(f.Ext, targetExt) {
			continue
		}
		h := f.height()
		if h <= 0 {
			continue
		}
		cur, ok := byHeight[h]
		if !ok || videoBetter(cur, f) {
			byHeight[h] = f
		}
	}

	candidates := make([]Descriptor, 0, len(byHeight))
	for _, f := range byHeight {
		candidates = append(candidates, f)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].height() != candidates[j].height() {
			return candidates[i].height() > candidates[j].height()
		}
		return candidates[i].fps() > candidates[j].fps()
	})

	choices := make([]Choice, 0, len(candidates))
	seenSelector := make(map[string]bool)
	seenLabel := make(map[string]bool)
	for _, f := range candidates {
		c := makeChoice(f, bestAudio)
		if seenSelector[c.Selector] || seenLabel[c.Label] {
			continue
		}
		seenSelector[c.Selector] = true
		seenLabel[c.Label] = true
		choices = append(choices, c)
	}

	if len(choices) == 0 {
		choices = append(choices, Choice{Label: FallbackLabel, Selector: BestSelector})
	}
	return choices
}

// makeChoice turns one video descriptor into a (label, selector) pair,
// pairing video-only streams with bestAudio when available.
func makeChoice(f Descriptor, bestAudio *Descriptor) Choice {
	base := fmt.Sprintf("%dp", f.height())
	if fps := f.fps(); fps > 0 {
		base += fmt.Sprintf("%dfps", fps)
	}

	switch {
	case f.hasAudio():
		// Progressive stream, complete on its own.
		return Choice{Label: base + " mp4", Selector: f.FormatID}
	case bestAudio != nil:
		return Choice{
			Label:    base + " mp4 + " + bestAudio.Ext,
			Selector: f.FormatID + "+" + bestAudio.FormatID,
		}
	default:
		return Choice{Label: base + " mp4 (video-only)", Selector: f.FormatID}
	}
}

// bestAudioOnly picks the audio-only stream used for pairing: preferred
// containers (m4a/mp4/aac) beat the rest, higher audio bitrate breaks ties.
// Returns nil when the catalog has no audio-only stream.
func bestAudioOnly(formats []Descriptor) *Descriptor {
	var best *Descriptor
	for i := range formats {
		f := formats[i]
		if f.hasVideo() || !f.hasAudio() {
			continue
		}
		if best == nil || audioBetter(*best, f) {
			best = &formats[i]
		}
	}
	return best
}

func audioScore(f Descriptor) int {
	if audioPreferred[strings.ToLower(f.Ext)] {
		return 2
	}
	return 1
}

// audioBetter reports whether b beats a as the pairing audio stream.
func audioBetter(a, b Descriptor) bool {
	if audioScore(a) != audioScore(b) {
		return audioScore(b) > audioScore(a)
	}
	return b.abr() > a.abr()
}

// videoBetter reports whether b beats a within the same height group:
// higher fps first, then higher total bitrate.
func videoBetter(a, b Descriptor) bool {
	if a.fps() != b.fps() {
		return b.fps() > a.fps()
	}
	return b.tbr() > a.tbr()
}
