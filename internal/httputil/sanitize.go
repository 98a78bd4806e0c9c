package httputil

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ValidateURL checks that a URL is well-formed and uses HTTP or HTTPS.
// Several embed hosts still serve player pages over plain HTTP.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// SanitizeQuery trims a user search query, drops control characters and
// collapses runs of whitespace.
func SanitizeQuery(query string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, query)
	return strings.Join(strings.Fields(cleaned), " ")
}

// EncodeQuery encodes a search query for the site's ?s= parameter, which
// expects words joined by '+'.
func EncodeQuery(query string) string {
	return url.QueryEscape(SanitizeQuery(query))
}

// BuildURL joins base and an absolute or site-relative path.
func BuildURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
