package devscribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/eringen/devscribe/prefs"
	"github.com/eringen/devscribe/storage"
)

func TestPrefCacheReusesHandle(t *testing.T) {
	c := NewPrefCache(storage.NewMemory(), time.Minute, nil)
	defer c.Stop()
	ctx := context.Background()

	a := c.Get(ctx, "client-a")
	if a != c.Get(ctx, "client-a") {
		t.Fatalf("expected the same handle for the same client")
	}
	if a == c.Get(ctx, "client-b") {
		t.Fatalf("expected a distinct handle per client")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 handles, got %d", c.Len())
	}
}

func TestPrefCacheEvictsIdleAndReloads(t *testing.T) {
	backend := storage.NewMemory()
	c := NewPrefCache(backend, time.Minute, nil)
	defer c.Stop()
	ctx := context.Background()

	p := c.Get(ctx, "client-a")
	if _, err := p.ToggleTheme(ctx); err != nil {
		t.Fatalf("ToggleTheme: %v", err)
	}

	if n := c.evictIdle(time.Now()); n != 0 {
		t.Fatalf("fresh handle evicted")
	}
	if n := c.evictIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}

	reopened := c.Get(ctx, "client-a")
	if reopened == p {
		t.Fatalf("expected a new handle after eviction")
	}
	if reopened.Theme() != prefs.Dark {
		t.Fatalf("theme not reloaded from storage: %q", reopened.Theme())
	}
}

func TestPrefCacheStopEndsEviction(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := NewPrefCache(storage.NewMemory(), 10*time.Millisecond, nil)
	c.Get(context.Background(), "client-a")
	c.Stop()
	c.Stop()
}

func TestPrefCacheLoadIgnoresRequestCancellation(t *testing.T) {
	backend, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer backend.Close()
	live := context.Background()
	if err := backend.Set(live, "client-a", prefs.BookmarksKey, `["1","2"]`); err != nil {
		t.Fatal(err)
	}

	c := NewPrefCache(backend, time.Minute, nil)
	defer c.Stop()

	gone, cancel := context.WithCancel(live)
	cancel()
	p := c.Get(gone, "client-a")
	if got := p.Bookmarks(); len(got) != 2 {
		t.Fatalf("bookmarks after cancelled request = %v, want [1 2]", got)
	}

	if _, err := c.Get(live, "client-a").ToggleBookmark(live, "3"); err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	raw, _, err := backend.Get(live, "client-a", prefs.BookmarksKey)
	if err != nil || raw != `["1","2","3"]` {
		t.Fatalf("stored bookmarks = %q, %v", raw, err)
	}
}

// unreadableBackend fails reads until healed.
type unreadableBackend struct {
	*storage.Memory
	down bool
}

func (b *unreadableBackend) Get(ctx context.Context, client, key string) (string, bool, error) {
	if b.down {
		return "", false, errors.New("connection refused")
	}
	return b.Memory.Get(ctx, client, key)
}

func TestPrefCacheDoesNotCacheFailedLoad(t *testing.T) {
	ctx := context.Background()
	backend := &unreadableBackend{Memory: storage.NewMemory(), down: true}
	if err := backend.Set(ctx, "client-a", prefs.ThemeKey, "dark"); err != nil {
		t.Fatal(err)
	}
	c := NewPrefCache(backend, time.Minute, nil)
	defer c.Stop()

	if p := c.Get(ctx, "client-a"); p.Theme() != prefs.Light {
		t.Fatalf("expected default theme while storage is down")
	}
	if c.Len() != 0 {
		t.Fatalf("degraded handle was cached")
	}

	backend.down = false
	if p := c.Get(ctx, "client-a"); p.Theme() != prefs.Dark {
		t.Fatalf("stored theme not picked up after recovery: %q", p.Theme())
	}
	if c.Len() != 1 {
		t.Fatalf("expected healthy handle to be cached")
	}
}
