package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// contextRadius is how many bytes of surrounding text a finding carries on
// each side of the match.
const contextRadius = 80

// skippedElements are elements whose text content is never rendered to the
// user and would only produce false positives (minified identifiers in
// scripts look a lot like crypto addresses).
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"head":     true,
}

// VisibleText reduces an archived HTML document to the text a user would
// see: text nodes outside skipped elements, plus the value attributes of
// form inputs, since portals frequently pre-fill payment fields.
//
// Blocks are joined with newlines so values from adjacent elements never
// concatenate into one spurious token.
func VisibleText(content io.Reader) (string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteByte('\n')
			}
		}
		if n.Type == html.ElementNode && (n.Data == "input" || n.Data == "textarea") {
			if value := strings.TrimSpace(attrValue(n, "value")); value != "" {
				b.WriteString(value)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String(), nil
}

// snippet returns up to contextRadius bytes of text on each side of the
// match, clamped to rune boundaries and flattened to one line.
func snippet(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}

	// Do not split multi-byte runes at the window edges.
	for lo > 0 && !isRuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !isRuneStart(text[hi]) {
		hi++
	}

	s := strings.Join(strings.Fields(text[lo:hi]), " ")
	return strings.TrimSpace(s)
}

// isRuneStart reports whether b is the first byte of a UTF-8 sequence.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// attrValue retrieves an attribute value from an HTML node.
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
