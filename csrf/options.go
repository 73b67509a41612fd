package csrf

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTokenLifetime   = 300 * time.Second
	DefaultRotationOverlap = 5 * time.Second
)

var defaultSafeMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}

type Config struct {
	// Signing
	SecretKey string

	// Token policy
	TokenLifetime          time.Duration // must be > 0
	RotationOverlap        time.Duration // grace period for rotated per_session tokens
	SafeMethods            []string      // default GET, HEAD, OPTIONS
	Strategy               string        // default "per_session"
	Strategies             []Strategy    // extra strategies, registered before Strategy is resolved
	DisableReplayDetection bool

	// Extra security
	EnforceOriginCheck bool   // on in DefaultConfig; unsafe requests must carry Origin
	AllowedOrigin      string // if set, the Origin host must match it

	// Cookie
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
	CookieMaxAge   int // in seconds

	// Token transport
	HeaderName    string // e.g.: "X-CSRF-Token"
	AltHeaderName string // e.g.: "X-XSRF-TOKEN"
	FormField     string // e.g.: "csrf_token"

	// SessionFunc returns the caller-owned session for r. Required by the
	// per_session strategy when using Protect.
	SessionFunc func(r *http.Request) Session

	// Collaborators
	Clock       func() time.Time
	ReplayCache ReplayCache
	Logger      *slog.Logger
	Observer    Observer
}

// DefaultConfig returns a Config with the default token policy and origin
// enforcement on. Only SecretKey needs to be filled in.
func DefaultConfig() Config {
	return Config{
		TokenLifetime:      DefaultTokenLifetime,
		RotationOverlap:    DefaultRotationOverlap,
		SafeMethods:        append([]string(nil), defaultSafeMethods...),
		Strategy:           StrategyPerSession,
		EnforceOriginCheck: true,
	}
}

type Protector struct {
	cfg         Config
	secret      []byte
	safeMethods map[string]bool
	log         *slog.Logger

	mu         sync.RWMutex
	strategies map[string]Strategy
	strategy   Strategy
}

// New validates cfg and returns a Protector. A misconfigured Protector is
// never returned: an empty secret, a non-positive lifetime, a negative
// overlap or an unknown strategy all fail here with an *Error.
func New(cfg Config) (*Protector, error) {
	if cfg.SecretKey == "" {
		return nil, errorf(CodeConfiguration, "secret key must be a non-empty string")
	}
	if cfg.TokenLifetime <= 0 {
		return nil, errorf(CodeConfiguration, "token lifetime must be positive")
	}
	if cfg.RotationOverlap < 0 {
		return nil, errorf(CodeConfiguration, "rotation overlap must not be negative")
	}

	// reasonable defaults
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyPerSession
	}
	if len(cfg.SafeMethods) == 0 {
		cfg.SafeMethods = defaultSafeMethods
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "csrf_token"
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-CSRF-Token"
	}
	if cfg.AltHeaderName == "" {
		cfg.AltHeaderName = "X-XSRF-TOKEN"
	}
	if cfg.FormField == "" {
		cfg.FormField = "csrf_token"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	// modern web security: SameSite=Lax is a good baseline
	if cfg.CookieSameSite == 0 {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.ReplayCache == nil {
		cfg.ReplayCache = NewMemoryReplayCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver
	}

	p := &Protector{
		cfg:         cfg,
		secret:      []byte(cfg.SecretKey),
		safeMethods: make(map[string]bool, len(cfg.SafeMethods)),
		log:         cfg.Logger.With(slog.String("component", "csrf")),
		strategies:  make(map[string]Strategy),
	}
	for _, m := range cfg.SafeMethods {
		p.safeMethods[strings.ToUpper(m)] = true
	}
	for _, s := range append(builtinStrategies(), cfg.Strategies...) {
		if err := p.RegisterStrategy(s); err != nil {
			return nil, err
		}
	}

	s, ok := p.strategies[cfg.Strategy]
	if !ok {
		return nil, errorf(CodeUnsupportedStrategy, "Unsupported strategy '"+cfg.Strategy+"'")
	}
	p.strategy = s
	return p, nil
}
