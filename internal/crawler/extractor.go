package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// skipExtensions are asset suffixes that are never worth a browser
// navigation. Matching is on the lowercased URL path.
var skipExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".css", ".js",
	".pdf", ".zip", ".rar", ".7z", ".tar", ".gz",
	".mp4", ".mp3", ".webm",
}

// logoutHints mark URLs that would terminate the authenticated session.
// An archival crawl that follows a logout link invalidates every fetch
// after it, so these are filtered at extraction time.
var logoutHints = []string{"logout", "log-out", "signout", "sign-out", "logoff"}

// ExtractResult holds the outcome of link extraction for one page.
type ExtractResult struct {
	// Links are the normalized absolute HTTP(S) URLs discovered on the
	// page, deduplicated, in document order.
	Links []string

	// Malformed counts href values that could not be parsed or resolved.
	// Malformed links are dropped silently; they never fail the page.
	Malformed int
}

// ExtractLinks parses rendered HTML and returns the set of crawlable
// outbound URLs, resolved against baseURL.
//
// Filtering applied, in order: non-HTTP(S) schemes (mailto:, javascript:,
// tel:, data:) are discarded, fragments are stripped, static-asset and
// logout-looking URLs are skipped, and duplicates within the page are
// collapsed to their first occurrence.
func ExtractLinks(content io.Reader, baseURL string) (*ExtractResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{Links: make([]string, 0)}
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				collectLink(base, href, seen, result)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// collectLink resolves, normalizes, and filters a single href value.
func collectLink(base *url.URL, href string, seen map[string]bool, result *ExtractResult) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return
	}

	// Scheme filters before parsing; javascript: URLs in particular often
	// contain characters that confuse url.Parse.
	lowered := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lowered, prefix) {
			return
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		result.Malformed++
		return
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return
	}
	if resolved.Host == "" {
		result.Malformed++
		return
	}

	normalized := NormalizeURL(resolved.String())
	if seen[normalized] {
		return
	}

	if isStaticAsset(normalized) || looksLikeLogout(normalized) {
		return
	}

	seen[normalized] = true
	result.Links = append(result.Links, normalized)
}

// isStaticAsset reports whether the URL path ends in a skippable asset
// extension.
func isStaticAsset(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// looksLikeLogout reports whether the URL path or query contains a
// logout-style hint.
func looksLikeLogout(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	query := strings.ToLower(u.RawQuery)
	for _, hint := range logoutHints {
		if strings.Contains(path, hint) || strings.Contains(query, hint) {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
