package csrf

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Now returns the current time from the configured clock.
func (p *Protector) Now() time.Time { return p.cfg.Clock() }

// TokenLifetime is how long an issued token stays valid.
func (p *Protector) TokenLifetime() time.Duration { return p.cfg.TokenLifetime }

// RotationOverlap is how long a rotated-out per_session token keeps
// validating past its own expiry.
func (p *Protector) RotationOverlap() time.Duration { return p.cfg.RotationOverlap }

// StrategyName returns the name of the active strategy.
func (p *Protector) StrategyName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.strategy.Name()
}

func (p *Protector) active() Strategy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.strategy
}

// RegisterStrategy adds s to the registry, replacing any strategy with the
// same name. The active strategy is chosen at construction and is not
// affected unless s replaces it by name.
func (p *Protector) RegisterStrategy(s Strategy) error {
	if s == nil || s.Name() == "" {
		return errorf(CodeConfiguration, "strategy must be non-nil and named")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strategies[s.Name()] = s
	if p.strategy != nil && p.strategy.Name() == s.Name() {
		p.strategy = s
	}
	return nil
}

// LookupStrategy returns the registered strategy called name.
func (p *Protector) LookupStrategy(name string) (Strategy, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.strategies[name]
	return s, ok
}

// GetBoundOrigin returns the origin that stateless tokens for req are bound
// to. Browsers omit Origin on same-origin GETs, so when it is absent the
// scheme and host of the Referer are used, then AllowedOrigin (https is
// assumed for a bare host), then the origin the request was served on.
func (p *Protector) GetBoundOrigin(req Request) string {
	if o := req.Origin(); o != "" {
		return o
	}
	if o := originOf(req.Referer()); o != "" {
		return o
	}
	if a := p.cfg.AllowedOrigin; a != "" {
		if strings.Contains(a, "://") {
			return a
		}
		return "https://" + a
	}
	if s, ok := req.(servedOriginer); ok {
		return s.ServedOrigin()
	}
	return ""
}

// GenerateToken issues a token for req using the active strategy.
func (p *Protector) GenerateToken(req Request) (string, error) {
	tok, _, err := p.GenerateTokenFull(req)
	return tok, err
}

// GenerateTokenFull is GenerateToken plus the token's metadata.
func (p *Protector) GenerateTokenFull(req Request) (string, TokenMetadata, error) {
	s := p.active()
	tok, meta, err := s.Generate(req, p)
	if err != nil {
		return "", TokenMetadata{}, fmt.Errorf("generate %s token: %w", s.Name(), err)
	}
	p.cfg.Observer.Generated(s.Name())
	return tok, meta, nil
}

// RotateToken replaces the token for req. Strategies without their own
// rotation simply issue a new token.
func (p *Protector) RotateToken(req Request) (string, TokenMetadata, error) {
	s := p.active()
	r, ok := s.(Rotator)
	if !ok {
		return p.GenerateTokenFull(req)
	}
	tok, meta, err := r.Rotate(req, p)
	if err != nil {
		return "", TokenMetadata{}, fmt.Errorf("rotate %s token: %w", s.Name(), err)
	}
	p.cfg.Observer.Generated(s.Name())
	return tok, meta, nil
}

// ValidateRequest decides whether req carries a valid CSRF token. token is
// an explicit candidate and may be empty.
//
// Failures are reported through the returned ValidationInfo, never as a
// panic, and a failed validation leaves the replay cache and the session
// untouched.
func (p *Protector) ValidateRequest(req Request, token string) (bool, ValidationInfo) {
	s := p.active()
	now := p.Now()

	vi := p.validate(s, req, token, now)

	outcome := OutcomeValid
	if !vi.Valid {
		outcome = string(vi.Err.Code)
		p.log.Warn("csrf validation failed",
			slog.String("strategy", s.Name()),
			slog.String("code", outcome),
			slog.String("method", req.Method()),
			slog.String("remote_host", req.RemoteHost()),
			slog.String("audit", vi.AuditLine()),
		)
	} else {
		p.log.Debug("csrf validation passed",
			slog.String("strategy", s.Name()),
			slog.Float64("age_seconds", vi.TokenAgeSeconds),
		)
	}
	p.cfg.Observer.Validation(s.Name(), outcome, vi.TokenAgeSeconds)

	return vi.Valid, vi
}

func (p *Protector) validate(s Strategy, req Request, token string, now time.Time) ValidationInfo {
	// 1) safe methods are never penalized
	if p.safeMethods[req.Method()] {
		details := map[string]any{}
		if len(p.CollectTokens(req, token)) > 0 {
			details["note"] = "Token present on safe method"
		}
		return newValidationInfo(now, 0, details, nil)
	}

	// 2) origin must be present, and allowed when configured
	if p.cfg.EnforceOriginCheck {
		origin := req.Origin()
		if origin == "" {
			return newValidationInfo(now, 0, nil, errorf(CodeOriginMismatch, "Origin header missing"))
		}
		if p.cfg.AllowedOrigin != "" && !sameSite(origin, p.cfg.AllowedOrigin) {
			return newValidationInfo(now, 0, map[string]any{"origin": origin},
				errorf(CodeOriginMismatch, "Origin not allowed"))
		}
	}

	// 3) strategy
	age, extra, verr := s.Validate(req, token, p)
	if verr != nil {
		return newValidationInfo(now, age, extra, verr)
	}

	// 4) replay
	if !p.cfg.DisableReplayDetection {
		if sources := p.CollectTokens(req, token); len(sources) > 0 {
			replayed, err := p.cfg.ReplayCache.CheckAndRecord(sources[0].Value, now, p.cfg.TokenLifetime)
			if err != nil {
				p.log.Error("replay cache unavailable", slog.Any("error", err))
				return newValidationInfo(now, age, nil, ErrReplayStoreUnavailable)
			}
			if replayed {
				return newValidationInfo(now, age, map[string]any{"source": sources[0].Name}, ErrReplayDetected)
			}
		}
	}

	return newValidationInfo(now, age, extra, nil)
}
