// Package prefs keeps a visitor's bookmarks, language and theme, persisted
// through a small key/value Storage and broadcast to subscribers on change.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/eringen/devscribe/internal/logger"
)

// Storage keys.
const (
	BookmarksKey = "devscribe-bookmarks"
	LanguageKey  = "devscribe-language"
	ThemeKey     = "devscribe-theme"
)

// Storage is one client's durable key/value namespace. A missing key is
// reported as ok == false with a nil error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ChangeKind tells subscribers which preference moved.
type ChangeKind int

const (
	BookmarkChanged ChangeKind = iota + 1
	LanguageChanged
	ThemeChanged
)

// Change describes the state right after a successful toggle.
type Change struct {
	Kind       ChangeKind
	PostID     string // BookmarkChanged only
	Bookmarked bool   // BookmarkChanged only
	Language   Language
	Theme      Theme
}

// Preferences is the preference handle of one client. Toggles are
// serialised; each one is persisted before the in-memory state changes and
// before subscribers run. Subscribers must not toggle from inside the
// callback.
type Preferences struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	storage Storage
	log     logger.Logger

	bookmarks []string
	language  Language
	theme     Theme

	observers    map[int]func(Change)
	nextObserver int

	unread map[string]bool // keys whose read failed at Open
}

// Option configures Open.
type Option func(*Preferences)

// WithLogger sets the logger used to report unreadable stored values.
func WithLogger(l logger.Logger) Option {
	return func(p *Preferences) {
		p.log = l
	}
}

// Open loads the client's preferences from storage. Values that cannot be
// read or decoded fall back to the defaults (no bookmarks, English, light).
// A key whose read failed is retried before the next toggle that writes it,
// so a transient outage never overwrites good stored data with a default.
func Open(ctx context.Context, storage Storage, opts ...Option) *Preferences {
	p := &Preferences{
		storage:   storage,
		log:       logger.Nop(),
		bookmarks: []string{},
		language:  English,
		theme:     Light,
		observers: make(map[int]func(Change)),
		unread:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, key := range []string{BookmarksKey, LanguageKey, ThemeKey} {
		if err := p.load(ctx, key); err != nil {
			p.unread[key] = true
			p.log.Warn("preference read failed, using default", logger.String("key", key), logger.Error(err))
		}
	}
	return p
}

// Degraded reports whether any stored value could not be read at Open and
// has not been read since.
func (p *Preferences) Degraded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.unread) > 0
}

// load reads key and applies it. Only storage errors are returned;
// undecodable values are logged and leave the default in place.
func (p *Preferences) load(ctx context.Context, key string) error {
	raw, ok, err := p.storage.Get(ctx, key)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.unread, key)
	if !ok {
		return nil
	}
	switch key {
	case BookmarksKey:
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			p.log.Warn("discarding unreadable bookmarks", logger.String("key", key), logger.Error(err))
			return nil
		}
		bookmarks := make([]string, 0, len(ids))
		for _, id := range ids {
			if !slices.Contains(bookmarks, id) {
				bookmarks = append(bookmarks, id)
			}
		}
		p.bookmarks = bookmarks
	case LanguageKey:
		if lang := Language(raw); lang.valid() {
			p.language = lang
		} else {
			p.log.Warn("discarding unknown language", logger.String("value", raw))
		}
	case ThemeKey:
		if theme := Theme(raw); theme.valid() {
			p.theme = theme
		} else {
			p.log.Warn("discarding unknown theme", logger.String("value", raw))
		}
	}
	return nil
}

// reload retries a read that failed at Open. Callers hold writeMu.
func (p *Preferences) reload(ctx context.Context, key string) error {
	p.mu.RLock()
	pending := p.unread[key]
	p.mu.RUnlock()
	if !pending {
		return nil
	}
	if err := p.load(ctx, key); err != nil {
		return fmt.Errorf("prefs: reload %s: %w", key, err)
	}
	return nil
}

// IsBookmarked reports whether id is in the bookmark set.
func (p *Preferences) IsBookmarked(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Contains(p.bookmarks, id)
}

// Bookmarks returns the bookmarked post IDs in the order they were added.
func (p *Preferences) Bookmarks() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.bookmarks)
}

// ToggleBookmark adds id when absent and removes it when present, and
// returns the new membership. On a storage error nothing changes.
func (p *Preferences) ToggleBookmark(ctx context.Context, id string) (bool, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.reload(ctx, BookmarksKey); err != nil {
		return p.IsBookmarked(id), err
	}

	p.mu.RLock()
	was := slices.Contains(p.bookmarks, id)
	next := make([]string, 0, len(p.bookmarks)+1)
	for _, b := range p.bookmarks {
		if b != id {
			next = append(next, b)
		}
	}
	if !was {
		next = append(next, id)
	}
	lang, theme := p.language, p.theme
	p.mu.RUnlock()

	data, err := json.Marshal(next)
	if err != nil {
		return was, fmt.Errorf("prefs: encode bookmarks: %w", err)
	}
	if err := p.storage.Set(ctx, BookmarksKey, string(data)); err != nil {
		return was, fmt.Errorf("prefs: save bookmarks: %w", err)
	}

	p.mu.Lock()
	p.bookmarks = next
	p.mu.Unlock()

	p.notify(Change{Kind: BookmarkChanged, PostID: id, Bookmarked: !was, Language: lang, Theme: theme})
	return !was, nil
}

// Language returns the active locale.
func (p *Preferences) Language() Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.language
}

// Direction is "ltr" for English and "rtl" for Arabic.
func (p *Preferences) Direction() string {
	return p.Language().Direction()
}

// ToggleLanguage switches between the two locales and returns the new one.
func (p *Preferences) ToggleLanguage(ctx context.Context) (Language, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.reload(ctx, LanguageKey); err != nil {
		return p.Language(), err
	}

	p.mu.RLock()
	next, theme := p.language.other(), p.theme
	p.mu.RUnlock()

	if err := p.storage.Set(ctx, LanguageKey, string(next)); err != nil {
		return next.other(), fmt.Errorf("prefs: save language: %w", err)
	}

	p.mu.Lock()
	p.language = next
	p.mu.Unlock()

	p.notify(Change{Kind: LanguageChanged, Language: next, Theme: theme})
	return next, nil
}

// Translate looks key up for the active language, falling back to the key.
func (p *Preferences) Translate(key string) string {
	return Translate(p.Language(), key)
}

// Theme returns the active colour scheme.
func (p *Preferences) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// ToggleTheme switches between light and dark and returns the new theme.
func (p *Preferences) ToggleTheme(ctx context.Context) (Theme, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.reload(ctx, ThemeKey); err != nil {
		return p.Theme(), err
	}

	p.mu.RLock()
	next, lang := p.theme.other(), p.language
	p.mu.RUnlock()

	if err := p.storage.Set(ctx, ThemeKey, string(next)); err != nil {
		return next.other(), fmt.Errorf("prefs: save theme: %w", err)
	}

	p.mu.Lock()
	p.theme = next
	p.mu.Unlock()

	p.notify(Change{Kind: ThemeChanged, Language: lang, Theme: next})
	return next, nil
}

// Subscribe registers fn to run after every successful toggle. The returned
// function removes it.
func (p *Preferences) Subscribe(fn func(Change)) (cancel func()) {
	p.mu.Lock()
	id := p.nextObserver
	p.nextObserver++
	p.observers[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.observers, id)
			p.mu.Unlock()
		})
	}
}

func (p *Preferences) notify(c Change) {
	p.mu.RLock()
	ids := make([]int, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.observers[id])
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
