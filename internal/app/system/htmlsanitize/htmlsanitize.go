// Package htmlsanitize reduces operator-entered text, such as video titles
// and adjustment reasons, to plain text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict keeps text only. Script and style bodies are dropped with their tags.
var strict = bluemonday.StrictPolicy()

// PlainText strips markup from s and trims it. Entities the policy escapes
// are decoded again so the stored value reads as typed; templates escape on
// output.
func PlainText(s string) string {
	if hasMarkup(s) {
		s = html.UnescapeString(strict.Sanitize(s))
	}
	return strings.TrimSpace(s)
}

// hasMarkup reports whether s could contain a tag.
func hasMarkup(s string) bool {
	open := strings.IndexByte(s, '<')
	return open >= 0 && strings.IndexByte(s[open:], '>') > 0
}
