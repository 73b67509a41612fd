package csrf_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReplayCache(t *testing.T) {
	c := csrf.NewMemoryReplayCache()

	replayed, err := c.CheckAndRecord("tok", base, time.Minute)
	require.NoError(t, err)
	assert.False(t, replayed)

	replayed, err = c.CheckAndRecord("tok", base.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.True(t, replayed)

	// still present at the exact expiry instant
	replayed, _ = c.CheckAndRecord("tok", base.Add(time.Minute), time.Minute)
	assert.True(t, replayed)

	replayed, _ = c.CheckAndRecord("tok", base.Add(time.Minute+time.Nanosecond), time.Minute)
	assert.False(t, replayed)
}

func TestMemoryReplayCacheStaysBounded(t *testing.T) {
	c := csrf.NewMemoryReplayCache()
	ttl := 10 * time.Second

	// one new token per second for ten minutes
	for i := range 600 {
		now := base.Add(time.Duration(i) * time.Second)
		_, err := c.CheckAndRecord(fmt.Sprintf("tok-%d", i), now, ttl)
		require.NoError(t, err)
		assert.LessOrEqual(t, c.Len(now), 11)
	}
}

func TestMemoryReplayCacheConcurrent(t *testing.T) {
	c := csrf.NewMemoryReplayCache()

	var (
		wg    sync.WaitGroup
		fresh atomic.Int32
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replayed, err := c.CheckAndRecord("same", base, time.Minute)
			if err == nil && !replayed {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, fresh.Load())
}
