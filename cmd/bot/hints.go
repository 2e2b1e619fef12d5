package bot

import (
	"errors"
	"strings"

	"qualitybot/internals/ytdlp"
)

// hintFor maps a failure to an actionable suggestion appended to the error
// message, empty when there is nothing useful to add.
func hintFor(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	var hints []string

	if containsAny(msg, "login required", "rate-limit", "rate limit", "cookies") {
		hints = append(hints, "ℹ️ Instagram and private content usually need a login. "+
			"Export cookies in Netscape format and point COOKIEFILE at the file.")
	}
	if errors.Is(err, ytdlp.ErrDownloadTimeout) || strings.Contains(msg, "timed out") {
		hints = append(hints, "⏱️ Raise DOWNLOAD_TIMEOUT (seconds) or pick a smaller quality.")
	}
	if containsAny(msg, "proxy", "tls", "certificate") {
		hints = append(hints, "🧭 For network trouble, set PROXY=http://host:port or socks5://host:port.")
	}

	if len(hints) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(hints, "\n\n")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
