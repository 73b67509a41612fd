package csrf_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/JeanGrijp/csrfguard/csrf/csrftest"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_123"

// base is the clock's zero point; tests move it in whole seconds.
var base = time.Unix(1_700_000_000, 0)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: base} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// At moves the clock to base + sec seconds.
func (c *fakeClock) At(sec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = base.Add(time.Duration(sec * float64(time.Second)))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProtector(t *testing.T, clock *fakeClock, mutate func(*csrf.Config)) *csrf.Protector {
	t.Helper()
	cfg := csrf.DefaultConfig()
	cfg.SecretKey = testSecret
	cfg.Clock = clock.Now
	cfg.Logger = quietLogger()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := csrf.New(cfg)
	require.NoError(t, err)
	return p
}

func withStrategy(name string) func(*csrf.Config) {
	return func(cfg *csrf.Config) { cfg.Strategy = name }
}

func post() *csrftest.Request {
	return csrftest.NewRequest("POST")
}

// echo places tok where the given strategy expects the client to send it.
func echo(req *csrftest.Request, strategy, tok string) {
	req.FormValues["csrf_token"] = tok
	if strategy == csrf.StrategyDoubleSubmit {
		req.Cookies["csrf_token"] = tok
	}
}

func csrftestGet() *csrftest.Request {
	return csrftest.NewRequest("GET")
}
