// Package csrf provides CSRF protection with pluggable token strategies,
// replay detection and token rotation.
//
// # Strategies
//
//   - per_session: a random token stored in the caller's Session and bound
//     to the session id. Rotation keeps the previous token valid for
//     Config.RotationOverlap past its expiry.
//   - stateless: "<hex unix ts>.<hex HMAC-SHA256>" over "<ts>:<origin>",
//     verified without server storage.
//   - double_submit: a random token that must arrive both as a cookie and
//     in the form or header. Comparison is done in constant time.
//
// Additional strategies implement Strategy and are added with
// Config.Strategies or Protector.RegisterStrategy.
//
// # Validation
//
// ValidateRequest lets safe methods through and, unless EnforceOriginCheck
// is off, requires an Origin header. It then delegates to the active
// strategy and finally records the token in the ReplayCache so every token
// is single use. Failures come back as (false, ValidationInfo); only New
// returns configuration errors.
//
// # Configuration
//
// All behavior is driven by Config. Start from DefaultConfig:
//
//	cfg := csrf.DefaultConfig()
//	cfg.SecretKey = os.Getenv("CSRF_SECRET")
//	cfg.Strategy = csrf.StrategyStateless
//	p, err := csrf.New(cfg)
//
// Transport fields (CookieName, HeaderName, FormField, ...) default to
// "csrf_token", "X-CSRF-Token" and "csrf_token".
//
// Typical usage
//
//	protected := p.Protect(appMux)
//	http.ListenAndServe(":8080", protected)
//
// In handlers, you can read the token from context for rendering or APIs:
//
//	if tok, ok := csrf.TokenFromContext(r.Context()); ok {
//	    // use tok in templates or return it from an endpoint
//	}
//
// For SPAs, expose a small endpoint that returns the current token:
//
//	r.Get("/csrf-token", func(w http.ResponseWriter, r *http.Request) {
//	    p.TokenHandler().ServeHTTP(w, r)
//	})
package csrf
