// Package share builds the texts and links used to share quiz results and
// quizzes themselves.
package share

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultSiteURL is the public site linked from shared results.
const DefaultSiteURL = "https://mrquizzer.piscinadeentropia.es"

// Platform is a social network that accepts prefilled text in a URL.
type Platform string

const (
	WhatsApp Platform = "whatsapp"
	Twitter  Platform = "twitter"
)

// ErrNoPayload is returned when a test link carries no quiz.
var ErrNoPayload = errors.New("share: link has no test payload")

// ScoreText is the message shared for a result.
func ScoreText(percent int, site string) string {
	if site == "" {
		site = DefaultSiteURL
	}
	return fmt.Sprintf("I scored %d%% on MrQuizzer! 🧠\nTry it: %s", percent, site)
}

// ClipboardText is the short score line copied to the clipboard.
func ClipboardText(percent int) string {
	return fmt.Sprintf("MrQuizzer Score: %d%%", percent)
}

// ParsePlatform accepts "whatsapp", "twitter" or "x" in any case.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "whatsapp", "wa":
		return WhatsApp, nil
	case "twitter", "x":
		return Twitter, nil
	}
	return "", fmt.Errorf("unknown platform %q (want whatsapp or twitter)", s)
}

// PlatformURL returns the link that opens platform with text prefilled.
func PlatformURL(platform Platform, text string) (string, error) {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	switch platform {
	case WhatsApp:
		return "https://wa.me/?text=" + escaped, nil
	case Twitter:
		return "https://twitter.com/intent/tweet?text=" + escaped, nil
	}
	return "", fmt.Errorf("unknown platform %q", platform)
}

// TestLink returns a link that opens the quiz document raw on the site.
func TestLink(base string, raw []byte) string {
	if base == "" {
		base = DefaultSiteURL
	}
	return strings.TrimRight(base, "/") + "/share.html?test=" + base64.StdEncoding.EncodeToString(raw)
}

// DecodeTestLink returns the quiz document carried by a test link. It
// accepts a full link or the bare base64 payload, in the standard or
// URL-safe alphabet, padded or not.
func DecodeTestLink(s string) ([]byte, error) {
	payload := strings.TrimSpace(s)
	if strings.Contains(payload, "://") || strings.Contains(payload, "?") {
		u, err := url.Parse(payload)
		if err != nil {
			return nil, fmt.Errorf("share: invalid link: %w", err)
		}
		payload = testParam(u.RawQuery)
	}
	if payload == "" {
		return nil, ErrNoPayload
	}

	// Query strings turn '+' into ' ' when the link was not escaped.
	payload = strings.ReplaceAll(payload, " ", "+")
	payload = strings.TrimRight(payload, "=")

	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(payload); err == nil {
			return data, nil
		}
	}
	return nil, errors.New("share: test payload is not valid base64")
}

// testParam reads the test parameter without form decoding, so '+' in an
// unescaped payload survives.
func testParam(rawQuery string) string {
	for _, part := range strings.Split(rawQuery, "&") {
		key, value, _ := strings.Cut(part, "=")
		if key != "test" {
			continue
		}
		if unescaped, err := url.PathUnescape(value); err == nil {
			return unescaped
		}
		return value
	}
	return ""
}
