// Package extract reduces rendered markup to a normalized text signal
// suitable for content comparison. Boilerplate elements (script, style,
// nav, header, footer and friends) are dropped, visible text is
// collected, and whitespace is collapsed, so two renders of the same
// page produce the same signal regardless of incidental markup.
package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Signal extracts the normalized comparison text from rendered markup.
// It is a pure function: identical markup yields an identical signal.
func Signal(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only fails on reader errors; a string reader
		// cannot produce one.
		return ""
	}

	var sb strings.Builder
	collect(doc, &sb)
	return CleanText(sb.String())
}

func collect(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	if n.Type == html.ElementNode && isBoilerplate(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, sb)
	}
}

// isBoilerplate reports whether a node carries page chrome rather than
// content: structural tags, landmark roles, and common class/id naming.
func isBoilerplate(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template,
		atom.Nav, atom.Header, atom.Footer, atom.Aside:
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "role":
			switch attr.Val {
			case "navigation", "banner", "contentinfo", "complementary":
				return true
			}
		case "class", "id":
			lower := strings.ToLower(attr.Val)
			for _, pattern := range boilerplatePatterns {
				if strings.Contains(lower, pattern) {
					return true
				}
			}
		}
	}
	return false
}

var boilerplatePatterns = []string{
	"sidebar", "breadcrumb", "cookie-banner", "cookie-consent",
}
