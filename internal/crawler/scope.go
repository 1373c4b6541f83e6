package crawler

import (
	"net/url"
	"strings"
)

// NormalizeURL normalizes a URL for deduplication and comparison.
// The fragment is dropped, scheme and host are lowercased, default ports
// are stripped, and an empty path becomes "/", so https://x.com/a#b and
// https://x.com/a refer to the same resource.
//
// Returns the input unchanged when it does not parse; callers that need to
// reject malformed URLs should parse first.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Strip default ports so https://x.com:443/ and https://x.com/ compare
	// equal.
	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		u.Host = host
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// Origin returns the scheme://host[:port] origin of a URL with default
// ports stripped, or empty string for unparseable input.
func Origin(rawURL string) string {
	u, err := url.Parse(NormalizeURL(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// InScope decides whether a discovered URL is eligible for enqueueing.
// Same-origin URLs (scheme+host+port of the start URL) are always in
// scope; cross-origin URLs only when allowExternal is set.
//
// Side effects: none. The function is pure so the frontier's admission
// decisions stay deterministic and testable.
func InScope(candidateURL, startOrigin string, allowExternal bool) bool {
	origin := Origin(candidateURL)
	if origin == "" {
		return false
	}
	if origin == startOrigin {
		return true
	}
	return allowExternal
}
