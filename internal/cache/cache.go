package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "backoffice:report"

// Store holds computed report payloads. Invalidate drops every entry at once.
// Set writes under the generation a previous Get observed, so a payload
// computed before an Invalidate never lands in the newer generation.
type Store interface {
	Get(ctx context.Context, key string) (Lookup, error)
	Set(ctx context.Context, generation int64, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Lookup is the result of a Get: the payload when Hit, and the generation
// that was current when the key was read.
type Lookup struct {
	Value      []byte
	Hit        bool
	Generation int64
}

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Incr(context.Context, string) *redis.IntCmd
}

// Redis keeps reports under a generation prefix; bumping the generation
// orphans older entries, which then expire on their TTL.
type Redis struct {
	store cmdable
	raw   *redis.Client
}

func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 3 * time.Second
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{store: raw, raw: raw}, nil
}

func newRedisWith(store cmdable) *Redis {
	return &Redis{store: store}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.store.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (Lookup, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return Lookup{}, err
	}
	value, err := r.store.Get(ctx, r.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Lookup{Generation: gen}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("get %s: %w", key, err)
	}
	return Lookup{Value: value, Hit: true, Generation: gen}, nil
}

func (r *Redis) Set(ctx context.Context, generation int64, key string, value []byte, ttl time.Duration) error {
	if err := r.store.Set(ctx, r.key(generation, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.store.Incr(ctx, r.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump report generation: %w", err)
	}
	return nil
}

func (r *Redis) generation(ctx context.Context) (int64, error) {
	raw, err := r.store.Get(ctx, r.generationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get report generation: %w", err)
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse report generation %q: %w", raw, err)
	}
	return gen, nil
}

func (r *Redis) generationKey() string {
	return keyNamespace + ":gen"
}

func (r *Redis) key(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", keyNamespace, gen, key)
}

// Noop never stores anything; used when REDIS_URL is empty.
type Noop struct{}

func (Noop) Get(context.Context, string) (Lookup, error)                      { return Lookup{}, nil }
func (Noop) Set(context.Context, int64, string, []byte, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context) error                                { return nil }
