package extract

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"canlidizi/internal/classify"
)

// ErrNotPacked is returned when a script carries no P.A.C.K.E.R. payload.
var ErrNotPacked = errors.New("not a packed script")

// DecodeError reports a payload that looked encoded but could not be decoded.
type DecodeError struct {
	Kind  string // "packed" or "base64"
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	in := e.Input
	if len(in) > 40 {
		in = in[:40] + "..."
	}
	return fmt.Sprintf("decoding %s %q: %v", e.Kind, in, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DefaultDenylist holds packed-array tokens that have the shape of a YouTube
// ID but are player library names or config keys. Observed, not exhaustive.
var DefaultDenylist = []string{
	"fireplayer", "FirePlayer", "jwplayer8", "videojsSkin", "beezPlayer",
	"youtubeApi", "no-referrer", "referrer", "canliplayer",
}

var (
	packedRe  = regexp.MustCompile(`(?s)eval\(\s*function\s*\(\s*p\s*,\s*a\s*,\s*c\s*,\s*k\s*,\s*e\s*,\s*[dr]\s*\).*?\}\s*\(\s*'((?:[^'\\]|\\.)*)'\s*,\s*(\d+)\s*,\s*(\d+)\s*,\s*'([^']*)'\.split\(\s*'\|'\s*\)`)
	wordRe    = regexp.MustCompile(`\b\w+\b`)
	ytIDRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	payloadRe = regexp.MustCompile(`["'](\d{1,3})["']\s*:\s*["']([A-Za-z0-9+/_-]{8,}={0,2})["']`)

	unescapeJS = strings.NewReplacer(`\'`, `'`, `\\`, `\`)
)

// PackedScripts returns every packed eval block found in html.
func PackedScripts(html string) []string {
	return packedRe.FindAllString(html, -1)
}

// PackedTokens returns the literal '|' split of the keyword list passed to
// the first packed eval block in script.
func PackedTokens(script string) ([]string, error) {
	m := packedRe.FindStringSubmatch(script)
	if m == nil {
		return nil, ErrNotPacked
	}
	return strings.Split(m[4], "|"), nil
}

// Unpack reverses P.A.C.K.E.R. compression: every word in the payload is a
// base-N index into the keyword list and is replaced by that keyword.
func Unpack(script string) (string, error) {
	m := packedRe.FindStringSubmatch(script)
	if m == nil {
		return "", ErrNotPacked
	}

	payload := unescapeJS.Replace(m[1])
	radix, err := strconv.Atoi(m[2])
	if err != nil || radix < 2 || radix > 62 {
		return "", &DecodeError{Kind: "packed", Input: m[2], Err: fmt.Errorf("unsupported radix %q", m[2])}
	}
	keywords := strings.Split(m[4], "|")

	return wordRe.ReplaceAllStringFunc(payload, func(word string) string {
		idx, ok := decodeRadix(word, radix)
		if !ok || idx >= len(keywords) || keywords[idx] == "" {
			return word
		}
		return keywords[idx]
	}), nil
}

const radixDigits = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// decodeRadix parses word the way the packer encodes indexes: digits, then
// lower-case, then upper-case letters.
func decodeRadix(word string, radix int) (int, bool) {
	n := 0
	for i := 0; i < len(word); i++ {
		d := strings.IndexByte(radixDigits, word[i])
		if d < 0 || d >= radix {
			return 0, false
		}
		n = n*radix + d
		if n < 0 {
			return 0, false
		}
	}
	return n, true
}

// YouTubeIDs returns the tokens shaped like YouTube video IDs, in token order
// and without duplicates. DefaultDenylist and extraDeny are excluded.
func YouTubeIDs(tokens []string, extraDeny ...string) []string {
	deny := lo.SliceToMap(append(append([]string{}, DefaultDenylist...), extraDeny...), func(s string) (string, struct{}) {
		return s, struct{}{}
	})
	ids := lo.Filter(tokens, func(tok string, _ int) bool {
		if !ytIDRe.MatchString(tok) {
			return false
		}
		_, denied := deny[tok]
		return !denied
	})
	return lo.Uniq(ids)
}

// Base64URLs decodes the tokens that look like base64-encoded http(s) URLs
// and returns those the classifier accepts. Tokens that look encoded but do
// not decode are reported in the returned error.
func Base64URLs(tokens []string) ([]string, error) {
	var urls []string
	var errs []error
	for _, tok := range tokens {
		// Every base64 encoding of "http" starts with this prefix.
		if !strings.HasPrefix(tok, "aHR0c") {
			continue
		}
		u, err := decodeBase64(tok)
		if err != nil {
			errs = append(errs, &DecodeError{Kind: "base64", Input: tok, Err: err})
			continue
		}
		if classify.IsPlayableVideo(u) {
			urls = append(urls, u)
		}
	}
	return lo.Uniq(urls), errors.Join(errs...)
}

// PayloadField decodes config fields with short numeric keys whose value is
// base64, such as {"1":"aHR0cHM6Ly9..."}, and returns the http(s) URLs.
func PayloadField(html string) ([]string, error) {
	var urls []string
	var errs []error
	for _, m := range payloadRe.FindAllStringSubmatch(html, -1) {
		u, err := decodeBase64(m[2])
		if err != nil {
			errs = append(errs, &DecodeError{Kind: "base64", Input: m[2], Err: err})
			continue
		}
		lower := strings.ToLower(u)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			urls = append(urls, strings.TrimSpace(u))
		}
	}
	return lo.Uniq(urls), errors.Join(errs...)
}

func decodeBase64(s string) (string, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return string(b), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}
