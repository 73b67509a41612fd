package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// defaultTokenBytes gives 128 bits of entropy.
const defaultTokenBytes = 16

// newToken returns n random bytes, hex encoded.
func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TokenSource is one place a client may have put its token.
type TokenSource struct {
	Name  string // "explicit", "form", "cookie" or "header"
	Value string
}

// CollectTokens gathers every non-empty token candidate in priority order:
// explicit argument, form field, cookie, then the primary and alternate
// headers.
func (p *Protector) CollectTokens(req Request, explicit string) []TokenSource {
	cfg := p.cfg
	header := req.Header(cfg.HeaderName)
	if header == "" {
		header = req.Header(cfg.AltHeaderName)
	}
	all := []TokenSource{
		{Name: "explicit", Value: explicit},
		{Name: "form", Value: req.Form(cfg.FormField)},
		{Name: "cookie", Value: req.Cookie(cfg.CookieName)},
		{Name: "header", Value: header},
	}
	out := all[:0]
	for _, s := range all {
		if s.Value != "" {
			out = append(out, s)
		}
	}
	return out
}

// singleToken reduces the candidates to one token. It fails with
// missing_token when there are none and token_mismatch when they disagree.
func singleToken(sources []TokenSource) (string, map[string]any, *Error) {
	if len(sources) == 0 {
		return "", map[string]any{"source": "none"}, ErrMissingToken
	}
	first := sources[0].Value
	for _, s := range sources[1:] {
		if !constantTimeEqual(first, s.Value) {
			names := make([]string, len(sources))
			for i, src := range sources {
				names[i] = src.Name
			}
			return "", map[string]any{"sources": strings.Join(names, ",")},
				errorf(CodeTokenMismatch, "Conflicting token sources")
		}
	}
	return first, nil, nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Sign returns the hex HMAC-SHA256 of payload keyed by the configured secret.
func (p *Protector) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fromEpoch(f float64) time.Time {
	return time.Unix(0, int64(f*1e9))
}

// sameSite reports whether originOrRef names allowedHost.
func sameSite(originOrRef, allowedHost string) bool {
	u, err := url.Parse(originOrRef)
	if err != nil {
		return false
	}
	// host comparison only, port included
	return strings.EqualFold(u.Host, allowedHost)
}

// originOf reduces a URL to its scheme and host, or "" if it has neither.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
