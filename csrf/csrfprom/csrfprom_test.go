package csrfprom_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/JeanGrijp/csrfguard/csrf/csrfprom"
	"github.com/JeanGrijp/csrfguard/csrf/csrftest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCountsValidations(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := csrfprom.NewObserver(reg)

	cfg := csrf.DefaultConfig()
	cfg.SecretKey = "metrics-secret"
	cfg.Strategy = csrf.StrategyStateless
	cfg.Observer = obs
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := csrf.New(cfg)
	require.NoError(t, err)

	req := csrftest.NewRequest("POST")
	tok, err := p.GenerateToken(req)
	require.NoError(t, err)

	p.ValidateRequest(req, tok)
	p.ValidateRequest(req, tok)
	p.ValidateRequest(csrftest.NewRequest("POST"), "")
	p.ValidateRequest(csrftest.NewRequest("GET"), "")

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.GeneratedCounter("stateless")))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.ValidationsCounter("stateless", csrf.OutcomeValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.ValidationsCounter("stateless", string(csrf.CodeReplayDetected))))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.ValidationsCounter("stateless", string(csrf.CodeMissingToken))))

	n, err := testutil.GatherAndCount(reg, "csrfguard_validations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
