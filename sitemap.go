package devscribe

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists the home page, every post, category and tag page, and
// each author once.
func (a *App) buildSitemap(catalog *content.Catalog) sitemapURLSet {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
		{Loc: views.BuildURL(base, "categories")},
		{Loc: views.BuildURL(base, "about")},
		{Loc: views.BuildURL(base, "contact")},
	}
	seenAuthor := make(map[string]bool)
	var authors []sitemapURL
	for _, p := range catalog.Posts() {
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "blog", p.Slug),
			LastMod: p.PublishedAt,
		})
		if !seenAuthor[p.Author.ID] {
			seenAuthor[p.Author.ID] = true
			authors = append(authors, sitemapURL{Loc: views.BuildURL(base, "author", p.Author.ID)})
		}
	}
	for _, cat := range catalog.Categories() {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "categories", cat)})
	}
	for _, tag := range catalog.Tags() {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "tags", tag)})
	}
	urls = append(urls, authors...)
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, catalog *content.Catalog) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.buildSitemap(catalog))
}
