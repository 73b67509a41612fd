// Package csrftest provides an in-memory csrf.Request for tests.
package csrftest

import (
	"strings"

	"github.com/JeanGrijp/csrfguard/csrf"
)

var _ csrf.Request = (*Request)(nil)

// Request is a plain-data csrf.Request. Nil maps behave as empty.
type Request struct {
	Verb          string
	Headers       map[string]string
	Cookies       map[string]string
	FormValues    map[string]string
	QueryValues   map[string]string
	SessionRecord csrf.Session
	OriginURL     string
	RefererURL    string
	Host          string
}

// NewRequest returns a Request for method with an empty session and
// origin https://example.com.
func NewRequest(method string) *Request {
	return &Request{
		Verb:          method,
		Headers:       map[string]string{},
		Cookies:       map[string]string{},
		FormValues:    map[string]string{},
		QueryValues:   map[string]string{},
		SessionRecord: csrf.Session{},
		OriginURL:     "https://example.com",
		RefererURL:    "https://example.com/page",
		Host:          "example.com",
	}
}

func (r *Request) Method() string { return strings.ToUpper(r.Verb) }

func (r *Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (r *Request) Form(name string) string   { return r.FormValues[name] }
func (r *Request) Cookie(name string) string { return r.Cookies[name] }
func (r *Request) Query(name string) string  { return r.QueryValues[name] }
func (r *Request) Session() csrf.Session     { return r.SessionRecord }
func (r *Request) Origin() string            { return r.OriginURL }
func (r *Request) Referer() string           { return r.RefererURL }
func (r *Request) RemoteHost() string        { return r.Host }
