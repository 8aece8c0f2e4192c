package devscribe

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/internal/logger"
	"github.com/eringen/devscribe/markdown"
	"github.com/eringen/devscribe/prefs"
	"github.com/eringen/devscribe/storage"
	"github.com/eringen/devscribe/views"
)

var errNoClient = errors.New("devscribe: request has no client id")

// clientPrefs returns the visitor's preference handle.
func (a *App) clientPrefs(c echo.Context) (*prefs.Preferences, error) {
	id := ClientID(c)
	if id == "" {
		return nil, errNoClient
	}
	return a.prefs.Get(c.Request().Context(), id), nil
}

func (a *App) page(c echo.Context, p *prefs.Preferences, meta views.PageMeta) views.Page {
	pg := views.Page{
		Site:       a.viewSite(),
		Meta:       meta,
		Path:       c.Request().URL.RequestURI(),
		Language:   prefs.English,
		Theme:      prefs.Light,
		CSRFToken:  CsrfToken(c),
		Categories: a.Catalog.Categories(),
		Flash:      takeFlashes(c),
	}
	if p != nil {
		pg.Language = p.Language()
		pg.Theme = p.Theme()
	}
	return pg
}

func (a *App) notFound(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound)
}

func (a *App) handleIndex(c echo.Context) error {
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	q := queryFromRequest(c)
	return Render(c, a.Views.Index(views.IndexData{
		Page: a.page(c, p, views.PageMeta{
			Description: a.Config.Description,
			URL:         views.BuildURL(a.Config.URL),
			OGType:      "website",
		}),
		Posts:      a.Catalog.Filter(q),
		Query:      q,
		Tags:       a.Catalog.Tags(),
		Bookmarked: bookmarkedSet(p.Bookmarks()),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	post, ok := a.Catalog.BySlug(c.Param("slug"))
	if !ok {
		return a.notFound(c)
	}
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	count, err := recordView(c.Request().Context(), storage.Scope(a.backend, ClientID(c)), post)
	if err != nil {
		a.Log.Warn("view counter unavailable", logger.String("post", post.ID), logger.Error(err))
	}
	return Render(c, a.Views.Post(views.PostData{
		Page: a.page(c, p, views.PageMeta{
			Title:       post.Title,
			Description: post.Excerpt,
			URL:         views.BuildURL(a.Config.URL, "blog", post.Slug),
			OGType:      "article",
		}),
		Post:       post,
		Related:    a.Catalog.Related(post, relatedLimit),
		Headings:   markdown.Headings(post.Content),
		Views:      count,
		Bookmarked: p.IsBookmarked(post.ID),
	}))
}

func (a *App) handleCategories(c echo.Context) error {
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Categories(views.CategoriesData{
		Page: a.page(c, p, views.PageMeta{
			Title: p.Translate("categories"),
			URL:   views.BuildURL(a.Config.URL, "categories"),
		}),
		Posts: a.Catalog.Posts(),
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	category := pathParam(c, "category")
	posts := a.Catalog.ByCategory(category)
	if len(posts) == 0 {
		return a.notFound(c)
	}
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	// Show the category as the catalog spells it.
	name := posts[0].Category
	return Render(c, a.Views.Categories(views.CategoriesData{
		Page: a.page(c, p, views.PageMeta{
			Title: name,
			URL:   views.BuildURL(a.Config.URL, "categories", name),
		}),
		Category: name,
		Posts:    posts,
	}))
}

func (a *App) handleTag(c echo.Context) error {
	tag := pathParam(c, "tag")
	posts := a.Catalog.ByTag(tag)
	if len(posts) == 0 {
		return a.notFound(c)
	}
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tag(views.TagData{
		Page: a.page(c, p, views.PageMeta{
			Title: "#" + tag,
			URL:   views.BuildURL(a.Config.URL, "tags", tag),
		}),
		Tag:   tag,
		Posts: posts,
	}))
}

func (a *App) handleAuthor(c echo.Context) error {
	av, ok := a.Catalog.ByAuthor(pathParam(c, "id"))
	if !ok {
		return a.notFound(c)
	}
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Author(views.AuthorData{
		Page: a.page(c, p, views.PageMeta{
			Title:       av.Author.Name,
			Description: av.Author.Bio,
			URL:         views.BuildURL(a.Config.URL, "author", av.Author.ID),
			OGType:      "profile",
		}),
		Author: av.Author,
		Posts:  av.Posts,
	}))
}

func (a *App) handleBookmarks(c echo.Context) error {
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Bookmarks(views.BookmarksData{
		Page:  a.page(c, p, views.PageMeta{Title: p.Translate("bookmarks")}),
		Posts: a.bookmarkedPosts(p),
	}))
}

// bookmarkedPosts resolves bookmark IDs in insertion order, skipping IDs
// no longer in the catalog.
func (a *App) bookmarkedPosts(p *prefs.Preferences) []content.Post {
	var posts []content.Post
	for _, id := range p.Bookmarks() {
		if post, ok := a.Catalog.ByID(id); ok {
			posts = append(posts, post)
		}
	}
	return posts
}

// beginWrite checks the per-IP write limit and returns the visitor's prefs.
func (a *App) beginWrite(c echo.Context) (*prefs.Preferences, error) {
	if !a.limiter.Allow(c.RealIP()) {
		return nil, echo.NewHTTPError(http.StatusTooManyRequests, "too many preference changes")
	}
	return a.clientPrefs(c)
}

func (a *App) handleToggleBookmark(c echo.Context) error {
	post, ok := a.Catalog.ByID(pathParam(c, "id"))
	if !ok {
		return a.notFound(c)
	}
	p, err := a.beginWrite(c)
	if err != nil {
		return err
	}
	on, err := p.ToggleBookmark(c.Request().Context(), post.ID)
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, bookmarkResponse{ID: post.ID, Bookmarked: on})
	}
	return c.Redirect(http.StatusSeeOther, safeNext(c.FormValue("next"), post.Link()))
}

func (a *App) handleToggleLanguage(c echo.Context) error {
	p, err := a.beginWrite(c)
	if err != nil {
		return err
	}
	if _, err := p.ToggleLanguage(c.Request().Context()); err != nil {
		return err
	}
	return a.afterPrefsToggle(c, p)
}

func (a *App) handleToggleTheme(c echo.Context) error {
	p, err := a.beginWrite(c)
	if err != nil {
		return err
	}
	if _, err := p.ToggleTheme(c.Request().Context()); err != nil {
		return err
	}
	return a.afterPrefsToggle(c, p)
}

func (a *App) afterPrefsToggle(c echo.Context, p *prefs.Preferences) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, prefsJSON(p))
	}
	return c.Redirect(http.StatusSeeOther, safeNext(c.FormValue("next"), "/"))
}

func prefsJSON(p *prefs.Preferences) prefsResponse {
	return prefsResponse{
		Bookmarks: p.Bookmarks(),
		Language:  string(p.Language()),
		Direction: p.Direction(),
		Theme:     string(p.Theme()),
	}
}

func (a *App) handleAPIPosts(c echo.Context) error {
	return c.JSON(http.StatusOK, summarize(a.Catalog.Filter(queryFromRequest(c))))
}

func (a *App) handleAPIPost(c echo.Context) error {
	post, ok := a.Catalog.BySlug(c.Param("slug"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAPICategories(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Catalog.Categories())
}

func (a *App) handleAPITags(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Catalog.Tags())
}

func (a *App) handleAPIPrefs(c echo.Context) error {
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prefsJSON(p))
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "posts": a.Catalog.Len()})
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Catalog)
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Catalog.Posts())
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error",
			logger.String("method", c.Request().Method),
			logger.String("uri", c.Request().RequestURI),
			logger.Error(err))
	}
	if isMachinePath(c.Request().URL.Path) || wantsJSON(c) || c.Request().Method != http.MethodGet {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	var p *prefs.Preferences
	if ClientID(c) != "" && a.prefs != nil {
		p, _ = a.clientPrefs(c)
	}
	pg := a.page(c, p, views.PageMeta{})
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(pg))
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError(pg))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
