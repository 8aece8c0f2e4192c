package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eringen/devscribe/prefs"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLite(filepath.Join(dir, "data", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	files, err := NewFileStore(filepath.Join(dir, "clients"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	out := map[string]Backend{
		"memory": NewMemory(),
		"sqlite": sqlite,
		"file":   files,
	}
	if addr := os.Getenv("DEVSCRIBE_TEST_REDIS"); addr != "" {
		r, err := NewRedis(context.Background(), RedisOptions{Addr: addr})
		if err != nil {
			t.Fatalf("NewRedis failed: %v", err)
		}
		out["redis"] = r
	}
	t.Cleanup(func() {
		for _, b := range out {
			b.Close()
		}
	})
	return out
}

func TestBackendGetSet(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			client := "client-" + t.Name()
			if _, ok, err := b.Get(ctx, client, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
			}

			if err := b.Set(ctx, client, "k", "v1"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := b.Set(ctx, client, "k", "v2"); err != nil {
				t.Fatalf("Set overwrite failed: %v", err)
			}
			got, ok, err := b.Get(ctx, client, "k")
			if err != nil || !ok {
				t.Fatalf("Get failed: ok %v, err %v", ok, err)
			}
			if got != "v2" {
				t.Errorf("Get = %q, want %q", got, "v2")
			}

			if _, ok, _ := b.Get(ctx, client+"-other", "k"); ok {
				t.Error("clients must not share keys")
			}
		})
	}
}

func TestBookmarkScenarioAcrossHandles(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := Scope(b, "visitor-1")
			p := prefs.Open(ctx, st)

			on, err := p.ToggleBookmark(ctx, "1")
			if err != nil {
				t.Fatalf("ToggleBookmark failed: %v", err)
			}
			if !on || !p.IsBookmarked("1") {
				t.Fatal("expected post 1 to be bookmarked")
			}

			raw, ok, err := b.Get(ctx, "visitor-1", prefs.BookmarksKey)
			if err != nil || !ok {
				t.Fatalf("persisted bookmarks missing: ok %v, err %v", ok, err)
			}
			if raw != `["1"]` {
				t.Errorf("persisted bookmarks = %s", raw)
			}
			if !prefs.Open(ctx, st).IsBookmarked("1") {
				t.Error("a fresh handle should see the bookmark")
			}

			if on, _ := p.ToggleBookmark(ctx, "1"); on || p.IsBookmarked("1") {
				t.Error("second toggle should remove the bookmark")
			}
		})
	}
}

func TestBackendKeys(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			client := "keys-" + name
			for _, k := range []string{"b", "a"} {
				if err := b.Set(ctx, client, k, "x"); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}
			keys, err := b.Keys(ctx, client)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
				t.Errorf("Keys = %v, want [a b]", keys)
			}
			if keys, err := b.Keys(ctx, "nobody-"+name); err != nil || len(keys) != 0 {
				t.Errorf("Keys(unknown) = %v, %v; want empty", keys, err)
			}
		})
	}
}

func TestClientDump(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := Scope(m, "abc")
	for k, v := range map[string]string{prefs.ThemeKey: "dark", prefs.BookmarksKey: `["1"]`} {
		if err := c.Set(ctx, k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Set(ctx, "other", prefs.ThemeKey, "light"); err != nil {
		t.Fatal(err)
	}
	got, err := c.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if len(got) != 2 || got[prefs.ThemeKey] != "dark" || got[prefs.BookmarksKey] != `["1"]` {
		t.Errorf("Dump = %v", got)
	}
}

func TestFileStoreRecoversFromCorruptFile(t *testing.T) {
	ctx := context.Background()
	f, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := os.WriteFile(f.path("c1"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := f.Get(ctx, "c1", "k"); err != nil || ok {
		t.Fatalf("Get on corrupt file = ok %v, err %v; want absent", ok, err)
	}
	p := prefs.Open(ctx, Scope(f, "c1"))
	if len(p.Bookmarks()) != 0 || p.Degraded() {
		t.Error("expected clean default state from corrupt file")
	}
	if _, err := p.ToggleBookmark(ctx, "1"); err != nil {
		t.Fatalf("toggle over corrupt file failed: %v", err)
	}
	if v, ok, err := f.Get(ctx, "c1", prefs.BookmarksKey); err != nil || !ok || v != `["1"]` {
		t.Errorf("Get after rewrite = %q, %v, %v", v, ok, err)
	}
}

func TestFileStoreSetKeepsFileOnReadError(t *testing.T) {
	ctx := context.Background()
	f, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := f.Set(ctx, "c1", "a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set(ctx, "c1", "b", "2"); err != nil {
		t.Fatal(err)
	}

	f.readFile = func(string) ([]byte, error) { return nil, errors.New("input/output error") }
	if err := f.Set(ctx, "c1", "c", "3"); err == nil {
		t.Fatal("expected Set to fail when the file cannot be read")
	}
	if _, _, err := f.Get(ctx, "c1", "a"); err == nil {
		t.Fatal("expected Get to report the read error")
	}

	f.readFile = os.ReadFile
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		if v, ok, err := f.Get(ctx, "c1", k); err != nil || !ok || v != want {
			t.Errorf("Get(%s) = %q, %v, %v; want %q", k, v, ok, err, want)
		}
	}
	if _, ok, _ := f.Get(ctx, "c1", "c"); ok {
		t.Error("failed Set must not have written")
	}
}

func TestFileStorePathStaysInDir(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	p := f.path("../../etc/passwd")
	if filepath.Dir(p) != dir {
		t.Errorf("path %q escaped %q", p, dir)
	}
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tests := []struct {
		cfg     Config
		wantErr error
	}{
		{Config{Driver: DriverMemory}, nil},
		{Config{Driver: DriverSQLite, DSN: filepath.Join(dir, "x.db")}, nil},
		{Config{Driver: DriverFile, DSN: filepath.Join(dir, "files")}, nil},
		{Config{Driver: "cassandra"}, ErrUnknownDriver},
	}
	for _, tt := range tests {
		b, err := Open(ctx, tt.cfg)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open(%q) err = %v, want %v", tt.cfg.Driver, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Open(%q) failed: %v", tt.cfg.Driver, err)
			continue
		}
		b.Close()
	}
}

func TestScope(t *testing.T) {
	m := NewMemory()
	c := Scope(m, "abc")
	if err := c.Set(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := m.Get(context.Background(), "abc", "k"); !ok || v != "v" {
		t.Errorf("scoped write not visible: %q %v", v, ok)
	}
}
