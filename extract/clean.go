package extract

import (
	"regexp"
	"strings"
)

// CleanText normalizes extracted text: zero-width characters removed,
// whitespace runs collapsed to a single space, result trimmed.
func CleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00ad':
			return -1
		}
		return r
	}, text)

	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

var multiSpaceRe = regexp.MustCompile(`\s+`)
