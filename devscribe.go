// Package devscribe is a small blog engine built with Go, Echo, and templ.
// It serves a fixed article collection with category, tag and search
// browsing, and keeps every visitor's bookmarks, language and theme in a
// durable per-client store.
//
// Callers may provide their own templ templates via the ViewFuncs struct;
// any field left nil falls back to the package views.
package devscribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/internal/logger"
	"github.com/eringen/devscribe/storage"
	"github.com/eringen/devscribe/views"
)

// relatedLimit is how many related posts an article page shows.
const relatedLimit = 3

// ViewFuncs holds the templ components the App calls when rendering pages.
type ViewFuncs struct {
	Index       func(views.IndexData) templ.Component
	Post        func(views.PostData) templ.Component
	Categories  func(views.CategoriesData) templ.Component
	Tag         func(views.TagData) templ.Component
	Author      func(views.AuthorData) templ.Component
	Bookmarks   func(views.BookmarksData) templ.Component
	About       func(views.Page) templ.Component
	Contact     func(views.ContactData) templ.Component
	NotFound    func(views.Page) templ.Component
	ServerError func(views.Page) templ.Component
}

// DefaultViews returns the components of the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Index:       views.Index,
		Post:        views.Post,
		Categories:  views.Categories,
		Tag:         views.Tag,
		Author:      views.Author,
		Bookmarks:   views.Bookmarks,
		About:       views.About,
		Contact:     views.Contact,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.Index == nil {
		v.Index = d.Index
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Categories == nil {
		v.Categories = d.Categories
	}
	if v.Tag == nil {
		v.Tag = d.Tag
	}
	if v.Author == nil {
		v.Author = d.Author
	}
	if v.Bookmarks == nil {
		v.Bookmarks = d.Bookmarks
	}
	if v.About == nil {
		v.About = d.About
	}
	if v.Contact == nil {
		v.Contact = d.Contact
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}

// App wires the catalog, the per-client preference cache, handlers,
// middleware and templates together.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Catalog *content.Catalog
	Views   ViewFuncs
	Log     logger.Logger

	backend      storage.Backend
	prefs        *PrefCache
	limiter      *WriteLimiter
	customRoutes []func(*App)
	ready        bool
}

// New creates an App serving catalog with the given configuration and views.
func New(cfg SiteConfig, catalog *content.Catalog, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Catalog: catalog,
		Views:   v.withDefaults(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Log == nil {
		a.Log = logger.New(cfg.LogLevel, cfg.PrettyLog)
	}
	return a
}

// Setup opens storage and registers middleware and routes. Start calls it;
// tests call it directly and drive a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return errors.New("devscribe: SessionSecret is required")
	}
	if a.Catalog == nil {
		return errors.New("devscribe: a content catalog is required")
	}

	if a.backend == nil {
		backend, err := storage.Open(ctx, a.Config.Storage)
		if err != nil {
			return fmt.Errorf("devscribe: init storage: %w", err)
		}
		a.backend = backend
	}

	a.prefs = NewPrefCache(a.backend, a.Config.PrefCacheTTL, a.Log)
	a.limiter = NewWriteLimiter(a.Config.WriteLimit.Max, a.Config.WriteLimit.Window)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the App up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	a.Log.Info("serving",
		logger.String("addr", a.Config.Addr),
		logger.String("storage", a.Config.Storage.Driver),
		logger.Int("posts", a.Catalog.Len()))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)

	e.GET("/", a.handleIndex)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/categories/", a.handleCategories)
	e.GET("/categories/:category/", a.handleCategory)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/author/:id/", a.handleAuthor)
	e.GET("/bookmarks/", a.handleBookmarks)
	e.GET("/about/", a.handleAbout)
	e.GET("/contact/", a.handleContact)

	e.POST("/contact/", a.handleContactSubmit)
	e.POST("/newsletter/", a.handleSubscribe)

	e.POST("/bookmarks/:id/toggle/", a.handleToggleBookmark)
	e.POST("/prefs/language/toggle/", a.handleToggleLanguage)
	e.POST("/prefs/theme/toggle/", a.handleToggleTheme)

	api := e.Group("/api")
	api.GET("/posts", a.handleAPIPosts)
	api.GET("/posts/:slug", a.handleAPIPost)
	api.GET("/categories", a.handleAPICategories)
	api.GET("/tags", a.handleAPITags)
	api.GET("/prefs", a.handleAPIPrefs)
}

// Close stops background work and releases storage. Call this when the app
// is shutting down.
func (a *App) Close() error {
	if a.prefs != nil {
		a.prefs.Stop()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	var err error
	if a.backend != nil {
		err = a.backend.Close()
	}
	_ = a.Log.Sync()
	return err
}
