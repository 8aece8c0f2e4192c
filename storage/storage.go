// Package storage provides durable per-client key/value backends for
// visitor preferences and view counters.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Backend keeps one key/value namespace per client ID. A missing key is
// reported as ok == false with a nil error.
type Backend interface {
	Get(ctx context.Context, client, key string) (value string, ok bool, err error)
	Set(ctx context.Context, client, key, value string) error
	// Keys lists the keys stored for client, sorted.
	Keys(ctx context.Context, client string) ([]string, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// Config selects and configures a backend.
type Config struct {
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"` // sqlite path, redis address or file directory
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return NewSQLite(cfg.DSN)
	case DriverRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.DSN,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case DriverFile:
		return NewFileStore(cfg.DSN)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Client is the namespace of a single client inside a Backend.
type Client struct {
	backend Backend
	id      string
}

// Scope narrows b to one client.
func Scope(b Backend, client string) Client {
	return Client{backend: b, id: client}
}

// Get reads key for the client.
func (c Client) Get(ctx context.Context, key string) (string, bool, error) {
	return c.backend.Get(ctx, c.id, key)
}

// Set writes key for the client.
func (c Client) Set(ctx context.Context, key, value string) error {
	return c.backend.Set(ctx, c.id, key, value)
}

// Dump reads every stored key of the client.
func (c Client) Dump(ctx context.Context) (map[string]string, error) {
	keys, err := c.backend.Keys(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("storage: dump client %s: %w", c.id, err)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := c.backend.Get(ctx, c.id, k)
		if err != nil {
			return nil, fmt.Errorf("storage: dump client %s: %w", c.id, err)
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}
