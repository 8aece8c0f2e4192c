package devscribe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eringen/devscribe/internal/logger"
	"github.com/eringen/devscribe/prefs"
	"github.com/eringen/devscribe/storage"
)

// PrefCache keeps one open Preferences handle per client so that toggles
// from the same visitor are serialised by a single handle. Handles idle for
// longer than the TTL are dropped and reopened from storage on next use.
type PrefCache struct {
	mu      sync.RWMutex
	entries map[string]*prefEntry
	backend storage.Backend
	ttl     time.Duration
	log     logger.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type prefEntry struct {
	prefs    *prefs.Preferences
	lastUsed atomic.Int64 // unix nanoseconds
	cancel   func()
}

func (e *prefEntry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

// NewPrefCache creates a PrefCache over backend and starts its eviction loop.
func NewPrefCache(backend storage.Backend, ttl time.Duration, log logger.Logger) *PrefCache {
	if log == nil {
		log = logger.Nop()
	}
	c := &PrefCache{
		entries: make(map[string]*prefEntry),
		backend: backend,
		ttl:     ttl,
		log:     log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.evictLoop()
	return c
}

// Get returns the handle for client, opening it from storage on first use.
// It tries a read lock first; only takes a write lock if the handle is missing.
// The load ignores cancellation of ctx, since the handle outlives the request.
// A handle whose load hit a storage error is returned but not cached, so the
// next request tries storage again.
func (c *PrefCache) Get(ctx context.Context, client string) *prefs.Preferences {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[client]
	c.mu.RUnlock()
	if ok {
		e.touch(now)
		return e.prefs
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[client]; ok {
		e.touch(now)
		return e.prefs
	}

	log := c.log.With(logger.String("client", client))
	p := prefs.Open(context.WithoutCancel(ctx), storage.Scope(c.backend, client), prefs.WithLogger(log))
	if p.Degraded() {
		log.Warn("not caching preferences after a failed read")
		return p
	}
	e = &prefEntry{prefs: p}
	e.cancel = p.Subscribe(func(ch prefs.Change) {
		log.Debug("preference changed",
			logger.Int("kind", int(ch.Kind)),
			logger.String("post", ch.PostID),
			logger.Bool("bookmarked", ch.Bookmarked),
			logger.String("language", string(ch.Language)),
			logger.String("theme", string(ch.Theme)))
	})
	e.touch(now)
	c.entries[client] = e
	return p
}

// Len is the number of open handles.
func (c *PrefCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictIdle drops handles not used since now-ttl and returns how many went.
func (c *PrefCache) evictIdle(now time.Time) int {
	cutoff := now.Add(-c.ttl).UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for client, e := range c.entries {
		if e.lastUsed.Load() < cutoff {
			e.cancel()
			delete(c.entries, client)
			n++
		}
	}
	return n
}

func (c *PrefCache) evictLoop() {
	defer close(c.done)
	interval := c.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			if n := c.evictIdle(now); n > 0 {
				c.log.Debug("evicted idle preferences", logger.Int("count", n))
			}
		}
	}
}

// Stop ends the eviction loop. It is safe to call more than once.
func (c *PrefCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}
