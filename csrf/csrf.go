package csrf

import (
	"context"
	"log/slog"
	"net/http"
)

// Protect wraps next with CSRF enforcement.
//
// Safe methods (GET, HEAD and OPTIONS by default) get a token for the active
// strategy, set as a cookie for double_submit, and the token is placed in
// the request context. Unsafe methods run ValidateRequest: a failure is
// answered with 403 and the reason (503 when the replay cache is down), a
// success stores the ValidationInfo in the context before calling next.
func (p *Protector) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess Session
		if p.cfg.SessionFunc != nil {
			sess = p.cfg.SessionFunc(r)
		}
		req := NewHTTPRequest(r, sess)

		if p.safeMethods[r.Method] {
			tok, err := p.ensureToken(w, req)
			if err != nil {
				p.log.Error("csrf token issuance failed", slog.Any("error", err))
				http.Error(w, "failed to issue CSRF token", http.StatusInternalServerError)
				return
			}
			// inject the token into the request context for downstream handlers
			next.ServeHTTP(w, r.WithContext(contextWithToken(r.Context(), tok)))
			return
		}

		ok, vi := p.ValidateRequest(req, "")
		if !ok {
			status := http.StatusForbidden
			if vi.Code() == CodeReplayStoreUnavailable {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, vi.Reason, status)
			return
		}

		ctx := contextWithValidation(r.Context(), vi)
		// a validated token is spent once replay detection is on; hand out the next one
		if !p.cfg.DisableReplayDetection {
			spent := p.spentToken(req)
			tok, meta, err := p.RotateToken(req)
			switch {
			case err != nil:
				p.log.Error("csrf token rotation failed", slog.Any("error", err))
			case tok == spent:
				// stateless tokens repeat within the same second
				p.log.Debug("csrf rotation produced the spent token, withholding it",
					slog.String("strategy", meta.Strategy))
			default:
				p.setCookie(w, tok, meta)
				ctx = contextWithToken(ctx, tok)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// spentToken is the token the replay cache recorded for req.
func (p *Protector) spentToken(req Request) string {
	if sources := p.CollectTokens(req, ""); len(sources) > 0 {
		return sources[0].Value
	}
	return ""
}

// ensureToken returns the token the client should echo back. It reuses the
// current token when the strategy supports that and otherwise issues a new
// one, which for double_submit is also set as a cookie.
func (p *Protector) ensureToken(w http.ResponseWriter, req Request) (string, error) {
	s := p.active()
	if reuser, ok := s.(TokenReuser); ok {
		if tok, ok := reuser.CurrentToken(req, p); ok {
			return tok, nil
		}
	}

	tok, meta, err := p.GenerateTokenFull(req)
	if err != nil {
		return "", err
	}

	p.setCookie(w, tok, meta)
	return tok, nil
}

// setCookie sets the double-submit cookie. Other strategies do not use it.
func (p *Protector) setCookie(w http.ResponseWriter, tok string, meta TokenMetadata) {
	if meta.Strategy != StrategyDoubleSubmit {
		return
	}
	cfg := p.cfg
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    tok,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   cfg.CookieMaxAge,
		SameSite: cfg.CookieSameSite,
		Secure:   cfg.CookieSecure,
		HttpOnly: false, // the page script must read it back
	})
}

// TokenFromContext returns the CSRF token Protect stored in ctx, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	return tokenFromContext(ctx)
}

// TokenHandler writes the current CSRF token as text/plain. Mount it behind
// Protect so SPAs can fetch the token and attach it to later requests.
func (p *Protector) TokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok, ok := TokenFromContext(r.Context()); ok {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(tok))
			return
		}
		http.Error(w, "no token", http.StatusInternalServerError)
	})
}
