package csrf

import (
	"strconv"
	"strings"
	"time"
)

// StatelessStrategy issues self-verifying tokens of the form
// "<hex unix seconds>.<hex HMAC-SHA256(secret, "<seconds>:<origin>")>".
// Nothing is stored server side; the signature binds the token to the
// origin reported by Protector.GetBoundOrigin and the embedded timestamp
// bounds its lifetime.
//
// Two tokens issued for the same origin within one second are identical.
// Rotation therefore yields no fresh token until the clock ticks over, and
// Protect withholds a rotated token equal to the one just spent.
type StatelessStrategy struct{}

func (StatelessStrategy) Name() string { return StrategyStateless }

func statelessPayload(ts int64, origin string) []byte {
	return []byte(strconv.FormatInt(ts, 10) + ":" + origin)
}

func (s StatelessStrategy) Generate(req Request, p *Protector) (string, TokenMetadata, error) {
	now := p.Now()
	ts := now.Unix()
	origin := p.GetBoundOrigin(req)
	sig := p.Sign(statelessPayload(ts, origin))

	return strconv.FormatInt(ts, 16) + "." + sig, TokenMetadata{
		Strategy:    s.Name(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(p.TokenLifetime()),
		OriginBound: origin != "",
	}, nil
}

func (s StatelessStrategy) Validate(req Request, token string, p *Protector) (float64, map[string]any, *Error) {
	provided, details, verr := singleToken(p.CollectTokens(req, token))
	if verr != nil {
		return 0, details, verr
	}

	parts := strings.Split(provided, ".")
	if len(parts) != 2 {
		return 0, nil, errorf(CodeTokenMismatch, "Bad token format")
	}
	rawTS, err := strconv.ParseUint(parts[0], 16, 63)
	if err != nil {
		return 0, nil, errorf(CodeTokenMismatch, "Invalid timestamp")
	}
	ts := int64(rawTS)

	expected := p.Sign(statelessPayload(ts, p.GetBoundOrigin(req)))
	if !constantTimeEqual(parts[1], expected) {
		return 0, nil, errorf(CodeTokenMismatch, "Signature mismatch")
	}

	created := time.Unix(ts, 0)
	age := p.Now().Sub(created).Seconds()
	if age < 0 {
		return age, nil, errorf(CodeTokenMismatch, "Token timestamp in future")
	}
	if age > p.TokenLifetime().Seconds() {
		return age, map[string]any{
			"expired_at": created.Add(p.TokenLifetime()).UTC().Format(time.RFC3339),
		}, ErrTokenExpired
	}
	return age, map[string]any{"strategy": s.Name()}, nil
}
