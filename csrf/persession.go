package csrf

import (
	"time"

	"github.com/google/uuid"
)

// PerSessionStrategy stores the token in the caller's session and binds it
// to the session id. Rotation keeps the previous token valid for the
// configured overlap past its own expiry.
type PerSessionStrategy struct{}

func (PerSessionStrategy) Name() string { return StrategyPerSession }

func (s PerSessionStrategy) Generate(req Request, p *Protector) (string, TokenMetadata, error) {
	sess := req.Session()
	if sess == nil {
		return "", TokenMetadata{}, errorf(CodeConfiguration, "per_session strategy requires a session")
	}

	tok, err := newToken(defaultTokenBytes)
	if err != nil {
		return "", TokenMetadata{}, err
	}

	now := p.Now()
	expiresAt := now.Add(p.TokenLifetime())

	sessionID := sess.str(sessionIDKey)
	if sessionID == "" {
		sessionID = uuid.NewString()
		sess[sessionIDKey] = sessionID
	}

	old := sess.oldTokens()
	nowEpoch := toEpoch(now)
	for t, until := range old {
		if until < nowEpoch {
			delete(old, t)
		}
	}
	if prev := sess.str(sessionTokenKey); prev != "" {
		if prevExp, ok := sess.num(sessionExpiresKey); ok {
			old[prev] = prevExp + p.RotationOverlap().Seconds()
		}
	}
	if len(old) > 0 {
		sess[sessionOldKey] = old
	} else {
		delete(sess, sessionOldKey)
	}

	sess[sessionTokenKey] = tok
	sess[sessionCreatedKey] = nowEpoch
	sess[sessionExpiresKey] = toEpoch(expiresAt)
	sess[sessionBoundKey] = sessionID

	return tok, TokenMetadata{
		Strategy:  s.Name(),
		CreatedAt: now,
		ExpiresAt: expiresAt,
		SessionID: sessionID,
	}, nil
}

func (s PerSessionStrategy) Validate(req Request, token string, p *Protector) (float64, map[string]any, *Error) {
	provided, details, verr := singleToken(p.CollectTokens(req, token))
	if verr != nil {
		return 0, details, verr
	}

	sess := req.Session()
	sessionToken := sess.str(sessionTokenKey)
	boundID := sess.str(sessionBoundKey)
	sessionID := sess.str(sessionIDKey)
	if sessionToken == "" || boundID == "" || sessionID == "" {
		return 0, nil, errorf(CodeConfiguration, "Missing session token metadata")
	}
	if !constantTimeEqual(sessionID, boundID) {
		return 0, map[string]any{"session_id": sessionID}, errorf(CodeTokenMismatch, "Session fixation detected")
	}

	now := p.Now()
	created, hasCreated := sess.num(sessionCreatedKey)
	expires, hasExpires := sess.num(sessionExpiresKey)

	if constantTimeEqual(provided, sessionToken) {
		if !hasCreated || !hasExpires {
			return 0, nil, errorf(CodeConfiguration, "Session token timing metadata missing")
		}
		age := now.Sub(fromEpoch(created)).Seconds()
		expiresAt := fromEpoch(expires)
		if now.After(expiresAt) {
			return age, map[string]any{"expired_at": expiresAt.UTC().Format(time.RFC3339)}, ErrTokenExpired
		}
		return age, map[string]any{"strategy": s.Name()}, nil
	}

	for old, until := range sess.oldTokens() {
		if !constantTimeEqual(provided, old) {
			continue
		}
		validUntil := fromEpoch(until)
		if now.After(validUntil) {
			return 0, map[string]any{"old_token_expired_at": validUntil.UTC().Format(time.RFC3339)}, ErrTokenExpired
		}
		age := 0.0
		if hasCreated {
			age = now.Sub(fromEpoch(created)).Seconds()
		}
		return age, map[string]any{
			"strategy":              s.Name(),
			"used_old_token":        true,
			"old_token_valid_until": validUntil.UTC().Format(time.RFC3339),
		}, nil
	}

	return 0, map[string]any{"source": "session"}, ErrTokenMismatch
}

// CurrentToken returns the session's token while it is still within its
// lifetime.
func (PerSessionStrategy) CurrentToken(req Request, p *Protector) (string, bool) {
	sess := req.Session()
	tok := sess.str(sessionTokenKey)
	if tok == "" || !constantTimeEqual(sess.str(sessionIDKey), sess.str(sessionBoundKey)) {
		return "", false
	}
	exp, ok := sess.num(sessionExpiresKey)
	if !ok || p.Now().After(fromEpoch(exp)) {
		return "", false
	}
	return tok, true
}
