// Package normalize canonicalizes operator input before it is stored or
// used in a query.
package normalize

import (
	"strings"
	"unicode/utf8"
)

// MaxQueryLength caps search box input; longer text is cut at a rune
// boundary.
const MaxQueryLength = 100

// Email is the stored and compared form of an address.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Status is the form of a list filter value.
func Status(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims a display name and collapses inner whitespace.
func Name(s string) string { return collapse(s) }

// Reason collapses an adjustment reason, newlines included, to one line.
func Reason(s string) string { return collapse(s) }

// QueryParam is a collapsed search string of at most MaxQueryLength runes.
func QueryParam(s string) string {
	s = collapse(s)
	if utf8.RuneCountInString(s) <= MaxQueryLength {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:MaxQueryLength]))
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }
