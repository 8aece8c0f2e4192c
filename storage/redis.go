package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "devscribe:client:"

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr         string        // ex: "localhost:6379"
	Password     string        // optional
	DB           int           // Redis DB number
	DialTimeout  time.Duration // default 5s
	ReadTimeout  time.Duration // default 3s
	WriteTimeout time.Duration // default 3s
	PingTimeout  time.Duration // default 5s
}

// Redis stores each client's state as one hash.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and pings it once.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("storage: redis address is empty")
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	if opts.PingTimeout == 0 {
		opts.PingTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: ping redis %s: %w", opts.Addr, err)
	}
	return &Redis{client: client}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func clientKey(client string) string {
	return redisKeyPrefix + client
}

// Get returns the stored value of key for client.
func (r *Redis) Get(ctx context.Context, client, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, clientKey(client), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return v, true, nil
}

// Set writes key for client.
func (r *Redis) Set(ctx context.Context, client, key, value string) error {
	if err := r.client.HSet(ctx, clientKey(client), key, value).Err(); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Keys lists the fields of the client's hash, sorted.
func (r *Redis) Keys(ctx context.Context, client string) ([]string, error) {
	keys, err := r.client.HKeys(ctx, clientKey(client)).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: redis keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
