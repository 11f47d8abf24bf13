// Package youtube extracts video ids from the URL forms operators paste
// into the catalog and builds the canonical watch and thumbnail URLs.
package youtube

import (
	"fmt"
	"regexp"
	"strings"
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^\s#]*&)?v=|youtu\.be/)([^&\s?#/]+)`),
	regexp.MustCompile(`youtube\.com/(?:embed|shorts)/([^&\s?#/]+)`),
}

// ExtractID returns the video id from a watch, short-link, embed or shorts
// URL. ok is false when no id can be found.
func ExtractID(rawURL string) (id string, ok bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) == 2 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// ThumbnailURL returns the medium-quality thumbnail for a video id.
func ThumbnailURL(id string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/mqdefault.jpg", id)
}

