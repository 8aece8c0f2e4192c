package devscribe

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/devscribe/internal/logger"
	"github.com/eringen/devscribe/storage"
)

// SiteConfig holds all configuration for a DevScribe site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "DevScribe")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Publisher name for JSON-LD

	Addr string `yaml:"addr"` // Listen address (default ":3000")

	SessionSecret string `yaml:"session_secret"` // Required: cookie encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	Storage     storage.Config `yaml:"storage"`      // default sqlite at data/devscribe.db
	ContentFile string         `yaml:"content_file"` // YAML posts; empty uses the embedded seed

	PrefCacheTTL time.Duration `yaml:"pref_cache_ttl"` // idle time before a visitor's prefs are dropped (default 30m)
	WriteLimit   WriteLimit    `yaml:"write_limit"`

	LogLevel  string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // console encoder instead of JSON
}

// WriteLimit bounds preference writes per client IP.
type WriteLimit struct {
	Max    int           `yaml:"max"`    // default 60
	Window time.Duration `yaml:"window"` // default 1m
}

// Defaults fills every unset field with its default value. New applies it.
func (c *SiteConfig) Defaults() {
	c.setDefaults()
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "DevScribe"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Insights, tutorials, and stories from the world of development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = storage.DriverSQLite
	}
	if c.Storage.DSN == "" {
		switch c.Storage.Driver {
		case storage.DriverSQLite:
			c.Storage.DSN = "data/devscribe.db"
		case storage.DriverFile:
			c.Storage.DSN = "data/clients"
		case storage.DriverRedis:
			c.Storage.DSN = "localhost:6379"
		}
	}
	if c.PrefCacheTTL == 0 {
		c.PrefCacheTTL = 30 * time.Minute
	}
	if c.WriteLimit.Max == 0 {
		c.WriteLimit.Max = 60
	}
	if c.WriteLimit.Window == 0 {
		c.WriteLimit.Window = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// LoadConfig reads a YAML config file. Unknown fields are rejected.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("devscribe: open config: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("devscribe: decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DEVSCRIBE_* environment variables.
func (c *SiteConfig) ApplyEnv() error {
	str := map[string]*string{
		"DEVSCRIBE_NAME":           &c.Name,
		"DEVSCRIBE_URL":            &c.URL,
		"DEVSCRIBE_DESCRIPTION":    &c.Description,
		"DEVSCRIBE_AUTHOR":         &c.Author,
		"DEVSCRIBE_ADDR":           &c.Addr,
		"DEVSCRIBE_SESSION_SECRET": &c.SessionSecret,
		"DEVSCRIBE_STORAGE_DRIVER": &c.Storage.Driver,
		"DEVSCRIBE_STORAGE_DSN":    &c.Storage.DSN,
		"DEVSCRIBE_REDIS_PASSWORD": &c.Storage.RedisPassword,
		"DEVSCRIBE_CONTENT_FILE":   &c.ContentFile,
		"DEVSCRIBE_LOG_LEVEL":      &c.LogLevel,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"DEVSCRIBE_COOKIE_SECURE": &c.CookieSecure,
		"DEVSCRIBE_PRETTY_LOG":    &c.PrettyLog,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("devscribe: invalid boolean for %s: %q", key, v)
			}
			*dst = b
		}
	}

	if v := os.Getenv("DEVSCRIBE_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("devscribe: invalid integer for DEVSCRIBE_REDIS_DB: %q", v)
		}
		c.Storage.RedisDB = n
	}
	if v := os.Getenv("DEVSCRIBE_PREF_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("devscribe: invalid duration for DEVSCRIBE_PREF_CACHE_TTL: %q", v)
		}
		c.PrefCacheTTL = d
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithBackend uses b instead of opening cfg.Storage at Start. The App
// closes it on Close.
func WithBackend(b storage.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithLogger replaces the zap logger built from LogLevel and PrettyLog.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}
