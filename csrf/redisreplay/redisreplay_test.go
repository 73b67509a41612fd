package redisreplay_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/JeanGrijp/csrfguard/csrf/csrftest"
	"github.com/JeanGrijp/csrfguard/csrf/redisreplay"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestCheckAndRecord(t *testing.T) {
	rdb, err := getRedisDB(t)
	require.NoError(t, err)

	c := redisreplay.New(rdb)
	replayed, err := c.CheckAndRecord("abc123", time.Now(), time.Hour)
	require.NoError(t, err)
	assert.False(t, replayed)

	replayed, err = c.CheckAndRecord("abc123", time.Now(), time.Hour)
	require.NoError(t, err)
	assert.True(t, replayed)

	// raw tokens never become keys
	keys, err := rdb.Keys(context.Background(), redisreplay.DefaultPrefix+"*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "abc123")
}

func TestCheckAndRecordExpires(t *testing.T) {
	rdb, err := getRedisDB(t)
	require.NoError(t, err)

	c := redisreplay.New(rdb, redisreplay.WithPrefix("test:"))
	_, err = c.CheckAndRecord("abc123", time.Now(), 50*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	replayed, err := c.CheckAndRecord("abc123", time.Now(), time.Hour)
	require.NoError(t, err)
	assert.False(t, replayed)
}

func TestUniversalClientWithOptions(t *testing.T) {
	rdb, err := getRedisDB(t)
	require.NoError(t, err)

	uc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rdb.Options().Addr},
	})
	t.Cleanup(func() { uc.Close() })

	c := redisreplay.New(uc, redisreplay.WithPrefix("app:"), redisreplay.WithTimeout(2*time.Second))
	replayed, err := c.CheckAndRecord("tok", time.Now(), time.Minute)
	require.NoError(t, err)
	assert.False(t, replayed)

	n, err := uc.Exists(context.Background(), "app:"+sha256Hex("tok")).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestSharedAcrossProtectors(t *testing.T) {
	rdb, err := getRedisDB(t)
	require.NoError(t, err)

	newProtector := func() *csrf.Protector {
		cfg := csrf.DefaultConfig()
		cfg.SecretKey = "shared-secret"
		cfg.Strategy = csrf.StrategyStateless
		cfg.ReplayCache = redisreplay.New(rdb)
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		p, err := csrf.New(cfg)
		require.NoError(t, err)
		return p
	}
	a, b := newProtector(), newProtector()

	tok, err := a.GenerateToken(csrftest.NewRequest("POST"))
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		passed atomic.Int32
	)
	for _, p := range []*csrf.Protector{a, b, a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := p.ValidateRequest(csrftest.NewRequest("POST"), tok); ok {
				passed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, passed.Load())
}

func getRedisDB(t *testing.T) (*redis.Client, error) {
	ctx := context.Background()
	server, err := testcontainers.Run(
		ctx, "redis:latest",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		),
	)
	if err != nil {
		return nil, err
	}
	testcontainers.CleanupContainer(t, server)
	endpoint, err := server.Endpoint(ctx, "")
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	return client, nil
}
