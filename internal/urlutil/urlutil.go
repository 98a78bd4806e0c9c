// Package urlutil resolves relative URLs found in scraped pages and matches
// hosts against known embed domains.
package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var cleanup = strings.NewReplacer(`\/`, "/", "&amp;", "&")

// Normalize resolves raw against the page it was found on.
//
// Absolute http(s) URLs pass through, protocol-relative URLs gain the base
// scheme and root-relative paths gain the base origin. Anything else is
// returned as-is so the classifier can reject it later; Normalize never fails.
func Normalize(raw, base string) string {
	s := cleanup.Replace(strings.TrimSpace(raw))
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return s
	case strings.HasPrefix(s, "//"):
		return scheme(base) + ":" + s
	case strings.HasPrefix(s, "/"):
		origin := Origin(base)
		if origin == "" {
			return raw
		}
		return origin + s
	default:
		return raw
	}
}

// Origin returns scheme://host of u, or "" when u is not absolute.
func Origin(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Host returns the lower-cased hostname of u without port.
func Host(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// MatchesDomain reports whether u belongs to domain. Hosts are compared by
// registrable domain ("www.canliplayer.com" matches "canliplayer.com").
// When u has no parseable host, or domain is a bare vendor token, the check
// degrades to a substring match on the whole URL.
func MatchesDomain(u, domain string) bool {
	domain = strings.ToLower(domain)
	lower := strings.ToLower(u)
	host := Host(u)
	if host == "" {
		return strings.Contains(lower, domain)
	}
	if host == domain || strings.HasSuffix(host, "."+domain) {
		return true
	}

	hostRoot, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return strings.Contains(lower, domain)
	}
	domainRoot, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		// Not a domain but a vendor token such as "fireplayer".
		return strings.Contains(lower, domain)
	}
	return hostRoot == domainRoot
}

// DedupKey returns the key under which two URLs are considered the same
// resource: scheme and host lower-cased, fragment dropped.
func DedupKey(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return strings.TrimSpace(u)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

func scheme(base string) string {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil || parsed.Scheme == "" {
		return "https"
	}
	return strings.ToLower(parsed.Scheme)
}
