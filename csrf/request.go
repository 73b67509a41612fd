package csrf

import (
	"net"
	"net/http"
	"strings"
)

// Session is the caller-owned session record. The per-session strategy
// reads and writes only its own keys and leaves the rest untouched.
type Session map[string]any

// Session keys written by the per-session strategy.
const (
	sessionIDKey      = "session_id"
	sessionTokenKey   = "csrf_token"
	sessionCreatedKey = "csrf_token_created_at"
	sessionExpiresKey = "csrf_token_expires_at"
	sessionBoundKey   = "csrf_token_bound_session_id"
	sessionOldKey     = "old_tokens"
)

// Request is the view of an inbound request that the Protector consumes.
// The web layer owns it; the Protector only reads from it, except for the
// Session record which strategies may update.
type Request interface {
	Method() string
	// Header performs a case-insensitive lookup. Missing headers are "".
	Header(name string) string
	Form(name string) string
	Cookie(name string) string
	Query(name string) string
	Session() Session
	Origin() string
	Referer() string
	RemoteHost() string
}

// servedOriginer is implemented by requests that know the scheme and host
// they arrived on.
type servedOriginer interface {
	ServedOrigin() string
}

// httpRequest adapts *http.Request to Request.
type httpRequest struct {
	r    *http.Request
	sess Session
}

// NewHTTPRequest wraps r. sess may be nil when the active strategy does not
// need a session.
func NewHTTPRequest(r *http.Request, sess Session) Request {
	return &httpRequest{r: r, sess: sess}
}

func (h *httpRequest) Method() string            { return h.r.Method }
func (h *httpRequest) Header(name string) string { return h.r.Header.Get(name) }
func (h *httpRequest) Query(name string) string  { return h.r.URL.Query().Get(name) }
func (h *httpRequest) Session() Session          { return h.sess }
func (h *httpRequest) Origin() string            { return h.r.Header.Get("Origin") }
func (h *httpRequest) Referer() string           { return h.r.Referer() }

func (h *httpRequest) Form(name string) string {
	// only the body is consulted; a token in the query string leaks via logs
	_ = h.r.ParseForm()
	return h.r.PostForm.Get(name)
}

func (h *httpRequest) Cookie(name string) string {
	c, err := h.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// ServedOrigin is the origin the request was addressed to. TLS, or an
// X-Forwarded-Proto of https from a terminating proxy, selects https.
func (h *httpRequest) ServedOrigin() string {
	if h.r.Host == "" {
		return ""
	}
	scheme := "http"
	if h.r.TLS != nil || strings.EqualFold(h.r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + h.r.Host
}

func (h *httpRequest) RemoteHost() string {
	host, _, err := net.SplitHostPort(h.r.RemoteAddr)
	if err != nil {
		return h.r.RemoteAddr
	}
	return host
}

func (s Session) str(key string) string {
	v, _ := s[key].(string)
	return v
}

// num reads an epoch timestamp. Sessions that went through a JSON or gob
// round trip may hold any numeric type.
func (s Session) num(key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// oldTokens returns a copy of the rotated-out tokens and their valid-until
// epoch timestamps.
func (s Session) oldTokens() map[string]float64 {
	out := map[string]float64{}
	switch m := s[sessionOldKey].(type) {
	case map[string]float64:
		for k, v := range m {
			out[k] = v
		}
	case map[string]any:
		for k := range m {
			if f, ok := Session(m).num(k); ok {
				out[k] = f
			}
		}
	}
	return out
}
