package usecase

import "strings"

var (
	// disallowedSuffixes are static assets that never lead to more pages.
	disallowedSuffixes = []string{".css", ".js", ".png", ".gif", ".jpg", ".jpeg"}
	// disallowedMarkers are tag listings, print views, mail links, feeds and
	// in-page fragments.
	disallowedMarkers = []string{"/tags/", "/print/", "mailto", "/rss", "#"}
)

// IsValidURL reports whether url is in scope for a crawl of baseURL. It is a
// pure predicate over arbitrary strings.
func IsValidURL(url, baseURL string) bool {
	if !strings.HasPrefix(url, baseURL) {
		return false
	}
	for _, marker := range disallowedMarkers {
		if strings.Contains(url, marker) {
			return false
		}
	}

	// Both the whole URL and its path before any query must pass, so
	// "/page?f=x.js" and "/photo.jpg?w=200" are rejected alike.
	lower := strings.ToLower(url)
	path := lower
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, sfx := range disallowedSuffixes {
		if strings.HasSuffix(lower, sfx) || strings.HasSuffix(path, sfx) {
			return false
		}
	}
	return true
}
