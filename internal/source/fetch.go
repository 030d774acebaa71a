package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultProxyURL is the CORS-style proxy used when fetching through one.
// The target URL is appended query-escaped.
const DefaultProxyURL = "https://api.allorigins.win/get?url="

// MinChars is the least readable text a fetched page must yield.
const MinChars = 50

const maxBodyBytes = 16 << 20

var (
	// ErrNoContent is returned when the proxy answers without page content.
	ErrNoContent = errors.New("no content returned from proxy (the site may block bots)")
	// ErrTooShort is returned when a page has too little readable text.
	ErrTooShort = errors.New("could not extract enough readable text from this URL")
)

// droppedElements never contribute text.
var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Svg:      true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Form:     true,
	atom.Button:   true,
	atom.Aside:    true,
}

// Fetcher downloads web pages and extracts their readable text.
type Fetcher struct {
	// Client performs the requests. Nil uses a client with a 20s timeout.
	Client *http.Client
	// ProxyURL, when set, routes requests through an allorigins-style
	// proxy that wraps the page in a JSON "contents" field.
	ProxyURL string
}

// NormalizeURL adds https:// when the scheme is missing and rejects URLs
// without a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return u.String(), nil
}

// Fetch returns the readable text of the page at rawURL, prefixed with the
// address it came from.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	var page string
	if f.ProxyURL != "" {
		page, err = f.viaProxy(ctx, target)
	} else {
		page, err = f.get(ctx, target)
	}
	if err != nil {
		return "", err
	}

	text, err := ExtractHTML(page)
	if err != nil {
		return "", err
	}
	if len([]rune(text)) < MinChars {
		return "", ErrTooShort
	}
	return fmt.Sprintf("Content extracted from: %s\n\n%s", target, Truncate(text, MaxChars)), nil
}

func (f *Fetcher) viaProxy(ctx context.Context, target string) (string, error) {
	body, err := f.get(ctx, f.ProxyURL+url.QueryEscape(target))
	if err != nil {
		return "", err
	}
	var wrapped struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
		return "", fmt.Errorf("decode proxy response: %w", err)
	}
	if wrapped.Contents == "" {
		return "", ErrNoContent
	}
	return wrapped.Contents, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "mrquizzer")

	resp, err := f.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", target, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	return string(body), nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 20 * time.Second}
}

// ExtractHTML returns the whitespace-collapsed text of the document body,
// skipping scripts, navigation and other page chrome.
func ExtractHTML(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	root := findBody(doc)
	if root == nil {
		root = doc
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && droppedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return Normalize(b.String()), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}
