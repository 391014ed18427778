package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/config"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "carshop:session"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	GetEx(context.Context, string, time.Duration) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStore keeps JSON session snapshots in Redis with a sliding TTL:
// every read and write resets the key's expiry.
// Updates are read-modify-write: two instances updating the same session at
// once resolve as last write wins.
type RedisStore struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
	now   func() time.Time

	// serializes updates issued by this process
	mu sync.Mutex
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{store: raw, raw: raw, ttl: ttl, now: time.Now}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	return r.load(ctx, id)
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	working, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = r.now()

	raw, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := r.store.Set(ctx, sessionKey(id), string(raw), r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return working, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (r *RedisStore) Close() error {
	if r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func (r *RedisStore) load(ctx context.Context, id string) (*Session, error) {
	// GETEX with a zero expiration leaves the key's TTL alone.
	raw, err := r.store.GetEx(ctx, sessionKey(id), r.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	s.ID = id
	return &s, nil
}

func sessionKey(id string) string {
	return keyNamespace + ":" + strings.TrimSpace(id)
}
