package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterKey(t *testing.T) {
	doctorID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	key := counterKey(doctorID, "2026-03-15")

	assert.Equal(t, "queue:token:11111111-1111-1111-1111-111111111111:2026-03-15", key)
}

func TestCounterTTL(t *testing.T) {
	today := entity.DateKey(time.Now())
	ttl := counterTTL(today)
	// Today's counter survives at least until tomorrow.
	assert.Greater(t, ttl, 24*time.Hour)

	// Long-gone days get a short fuse instead of a negative TTL.
	assert.Equal(t, time.Minute, counterTTL("2020-01-01"))

	// Unparseable keys fall back to a fixed window.
	assert.Equal(t, 48*time.Hour, counterTTL("garbage"))
}

// The allocation script needs a real Redis. Set TEST_REDIS_ADDR to run, e.g.
// "localhost:6379".
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { client.Close() })
	return client
}

func newRedisOnlyService(client *redis.Client) *TokenCounterService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewTokenCounterService(nil, client, log, nil)
}

func TestNextAllocatesDenseSequence(t *testing.T) {
	client := setupTestRedis(t)
	svc := newRedisOnlyService(client)
	ctx := context.Background()
	doctorID := uuid.New()

	for want := 1; want <= 5; want++ {
		got, err := svc.Next(ctx, doctorID, "2026-03-15")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// A different date key starts its own sequence.
	got, err := svc.Next(ctx, doctorID, "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestNextConcurrentAllocationsNeverCollide(t *testing.T) {
	client := setupTestRedis(t)
	svc := newRedisOnlyService(client)
	ctx := context.Background()
	doctorID := uuid.New()

	const n = 50
	results := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Next(ctx, doctorID, "2026-03-15")
			if err != nil {
				t.Error(err)
				return
			}
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	var tokens []int
	for v := range results {
		tokens = append(tokens, v)
	}
	sort.Ints(tokens)

	require.Len(t, tokens, n)
	for i, v := range tokens {
		assert.Equal(t, i+1, v, "tokens must form a dense 1..N sequence with no duplicates")
	}
}

func TestNextStampsTTLOnFirstAllocation(t *testing.T) {
	client := setupTestRedis(t)
	svc := newRedisOnlyService(client)
	ctx := context.Background()
	doctorID := uuid.New()
	dateKey := entity.DateKey(time.Now())

	_, err := svc.Next(ctx, doctorID, dateKey)
	require.NoError(t, err)

	ttl, err := client.TTL(ctx, fmt.Sprintf("%s%s:%s", TokenCounterKeyPrefix, doctorID, dateKey)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "counter must not live forever")
}
