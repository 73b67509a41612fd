package csrf

import "time"

// Names of the built-in strategies.
const (
	StrategyPerSession   = "per_session"
	StrategyStateless    = "stateless"
	StrategyDoubleSubmit = "double_submit"
)

// TokenMetadata describes a freshly issued token.
type TokenMetadata struct {
	Strategy    string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	SessionID   string // per_session only
	OriginBound bool   // stateless only
}

// Strategy binds tokens to requests. Implementations keep no per-request
// state; anything they need to persist goes through the request's Session
// or is derived from the Protector's secret.
type Strategy interface {
	Name() string
	Generate(req Request, p *Protector) (string, TokenMetadata, error)
	// Validate returns a nil error when token (or the token found on req)
	// is acceptable. Non-nil errors are always *Error.
	Validate(req Request, token string, p *Protector) (ageSeconds float64, details map[string]any, err *Error)
}

// Rotator is implemented by strategies with rotation semantics beyond
// issuing a new token.
type Rotator interface {
	Rotate(req Request, p *Protector) (string, TokenMetadata, error)
}

// TokenReuser is implemented by strategies that can hand back a token the
// client already holds, so rendering a page does not rotate it.
type TokenReuser interface {
	CurrentToken(req Request, p *Protector) (string, bool)
}

func builtinStrategies() []Strategy {
	return []Strategy{
		PerSessionStrategy{},
		StatelessStrategy{},
		DoubleSubmitStrategy{},
	}
}
