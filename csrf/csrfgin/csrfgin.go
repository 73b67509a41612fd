// Package csrfgin adapts the csrf middleware to Gin.
package csrfgin

import (
	"net/http"

	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/gin-gonic/gin"
)

// Middleware runs p.Protect in front of the remaining gin handlers. A
// request rejected by Protect is aborted with the status Protect wrote.
func Middleware(p *csrf.Protector) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		h := p.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// keep gin context in sync with possibly modified *http.Request
			passed = true
			c.Request = r
			c.Next()
		}))
		h.ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// Token returns the CSRF token Protect stored for this request.
func Token(c *gin.Context) (string, bool) {
	return csrf.TokenFromContext(c.Request.Context())
}
