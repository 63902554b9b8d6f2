package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := newRedisWith(fake)

	lookup, err := store.Get(ctx, "portfolio")
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.Equal(t, int64(0), lookup.Generation)

	require.NoError(t, store.Set(ctx, lookup.Generation, "portfolio", []byte(`{"a":1}`), time.Minute))
	lookup, err = store.Get(ctx, "portfolio")
	require.NoError(t, err)
	assert.True(t, lookup.Hit)
	assert.Equal(t, `{"a":1}`, string(lookup.Value))
	assert.Equal(t, time.Minute, fake.ttls["backoffice:report:0:portfolio"])
}

func TestRedisInvalidateOrphansEntries(t *testing.T) {
	ctx := context.Background()
	store := newRedisWith(newFakeRedis())

	require.NoError(t, store.Set(ctx, 0, "monthly:2024", []byte("x"), time.Minute))
	require.NoError(t, store.Invalidate(ctx))

	lookup, err := store.Get(ctx, "monthly:2024")
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.Equal(t, int64(1), lookup.Generation)

	require.NoError(t, store.Set(ctx, lookup.Generation, "monthly:2024", []byte("y"), time.Minute))
	lookup, err = store.Get(ctx, "monthly:2024")
	require.NoError(t, err)
	assert.True(t, lookup.Hit)
	assert.Equal(t, "y", string(lookup.Value))
}

func TestRedisSetAfterInvalidateStaysInOldGeneration(t *testing.T) {
	ctx := context.Background()
	store := newRedisWith(newFakeRedis())

	miss, err := store.Get(ctx, "monthly:2024")
	require.NoError(t, err)
	require.False(t, miss.Hit)

	// a mutation lands while the report is being computed
	require.NoError(t, store.Invalidate(ctx))
	require.NoError(t, store.Set(ctx, miss.Generation, "monthly:2024", []byte("stale"), time.Minute))

	lookup, err := store.Get(ctx, "monthly:2024")
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.Nil(t, lookup.Value)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var store Store = Noop{}

	require.NoError(t, store.Set(ctx, 0, "k", []byte("v"), time.Minute))
	lookup, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.NoError(t, store.Invalidate(ctx))
}
