// Package views holds the default templ components of a DevScribe site.
// Every component writes a complete HTML document whose <html> element
// carries the visitor's language, text direction and theme.
package views

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/markdown"
)

// writer accumulates the first write error so page code can stay linear.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *writer) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *writer) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *writer) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}

func (h *writer) component(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func document(p Page, jsonLD string, body func(h *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{ctx: ctx, w: w}
		h.raw("<!DOCTYPE html><html")
		h.attr("lang", string(p.Language))
		h.attr("dir", p.Dir())
		h.attr("class", ThemeClass(p))
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		if p.Meta.Title != "" {
			h.text(p.Meta.Title + " | ")
		}
		h.text(p.Site.Name)
		h.raw("</title>")
		if p.Meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", p.Meta.Description)
			h.raw(">")
		}
		if p.Meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", p.Meta.URL)
			h.raw(`><meta property="og:url"`)
			h.attr("content", p.Meta.URL)
			h.raw(">")
		}
		if p.Meta.OGType != "" {
			h.raw(`<meta property="og:type"`)
			h.attr("content", p.Meta.OGType)
			h.raw(">")
		}
		if jsonLD != "" {
			// json.Marshal escapes <, > and & so the block cannot close the tag.
			h.raw(`<script type="application/ld+json">` + jsonLD + "</script>")
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"></head><body>`)
		header(h, p)
		h.raw("<main>")
		for _, msg := range p.Flash {
			h.raw(`<p class="flash" role="status">`)
			h.text(msg)
			h.raw("</p>")
		}
		body(h)
		h.raw("</main>")
		footer(h, p)
		h.raw("</body></html>")
		return h.err
	})
}

func header(h *writer, p Page) {
	h.raw(`<header><a class="brand" href="/">`)
	h.text(p.Site.Name)
	h.raw(`</a><nav><a href="/">`)
	h.text(p.T("home"))
	h.raw(`</a><a href="/categories/">`)
	h.text(p.T("categories"))
	h.raw(`</a><a href="/bookmarks/">`)
	h.text(p.T("bookmarks"))
	h.raw(`</a><a href="/about/">`)
	h.text(p.T("about"))
	h.raw(`</a><a href="/contact/">`)
	h.text(p.T("contact"))
	h.raw(`</a></nav><form class="search" method="get" action="/"><input type="search" name="search"`)
	h.attr("placeholder", p.T("search"))
	h.raw(`></form>`)
	toggleForm(h, p, "/prefs/theme/toggle/", themeLabel(p))
	toggleForm(h, p, "/prefs/language/toggle/", languageLabel(p))
	h.raw("</header>")
}

func themeLabel(p Page) string {
	if p.Theme == "dark" {
		return "Light"
	}
	return "Dark"
}

func languageLabel(p Page) string {
	if p.Language == "ar" {
		return "English"
	}
	return "العربية"
}

func toggleForm(h *writer, p Page, action, label string) {
	h.raw(`<form method="post"`)
	h.attr("action", action)
	h.raw(">")
	hiddenFields(h, p)
	h.raw(`<button type="submit">`)
	h.text(label)
	h.raw("</button></form>")
}

func footer(h *writer, p Page) {
	h.raw("<footer><nav>")
	for _, c := range p.Categories {
		h.raw("<a")
		h.attr("href", CategoryURL(c))
		h.raw(">")
		h.text(c)
		h.raw("</a>")
	}
	h.raw(`</nav><form class="newsletter" method="post" action="/newsletter/"><label for="newsletter-email">`)
	h.text(p.T("subscribeNewsletter"))
	h.raw(`</label>`)
	hiddenFields(h, p)
	h.raw(`<input id="newsletter-email" type="email" name="email" required`)
	h.attr("placeholder", p.T("emailPlaceholder"))
	h.raw(`><button type="submit">`)
	h.text(p.T("subscribe"))
	h.raw("</button></form><p>")
	h.text(p.T("copyright"))
	h.raw("</p></footer>")
}

// hiddenFields writes the CSRF token and the return path of a form.
func hiddenFields(h *writer, p Page) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", p.CSRFToken)
	h.raw(`><input type="hidden" name="next"`)
	h.attr("value", p.Path)
	h.raw(">")
}

func card(h *writer, p Page, post content.Post, bookmarked bool) {
	h.raw(`<article class="card">`)
	if post.CoverImage != "" {
		h.raw(`<img loading="lazy"`)
		h.attr("src", post.CoverImage)
		h.attr("alt", post.Title)
		h.raw(">")
	}
	h.raw(`<a class="category"`)
	h.attr("href", CategoryURL(post.Category))
	h.raw(">")
	h.text(post.Category)
	h.raw("</a><h3><a")
	h.attr("href", post.Link())
	h.raw(">")
	h.text(post.Title)
	h.raw("</a>")
	if bookmarked {
		h.raw(` <span class="bookmarked" aria-label="bookmarked">★</span>`)
	}
	h.raw("</h3><p>")
	h.text(post.Excerpt)
	h.raw(`</p><p class="meta"><a`)
	h.attr("href", AuthorURL(post.Author.ID))
	h.raw(">")
	h.text(post.Author.Name)
	h.raw("</a> · ")
	h.text(FormatDate(post))
	h.raw(" · ")
	h.text(strconv.Itoa(post.ReadingTime) + " " + p.T("minRead"))
	h.raw("</p>")
	tags(h, post.Tags, nil)
	h.raw(`<a class="read-more"`)
	h.attr("href", post.Link())
	h.raw(">")
	h.text(p.T("readMore"))
	h.raw("</a></article>")
}

func tags(h *writer, list []string, active map[string]bool) {
	if len(list) == 0 {
		return
	}
	h.raw(`<ul class="tags">`)
	for _, t := range list {
		h.raw("<li><a")
		h.attr("class", TagClass(active[t]))
		h.attr("href", TagURL(t))
		h.raw(">")
		h.text(t)
		h.raw("</a></li>")
	}
	h.raw("</ul>")
}

func postList(h *writer, p Page, posts []content.Post, bookmarked map[string]bool) {
	if len(posts) == 0 {
		h.raw(`<p class="empty">`)
		h.text(p.T("noPostsFound"))
		h.raw("</p>")
		return
	}
	h.raw(`<div class="grid">`)
	for _, post := range posts {
		card(h, p, post, bookmarked[post.ID])
	}
	h.raw("</div>")
}

// Index renders the home page: hero, category and tag filters, and the
// filtered post list.
func Index(d IndexData) templ.Component {
	return document(d.Page, WebsiteJsonLD(d.Site), func(h *writer) {
		h.raw(`<section class="hero"><h1>`)
		h.text(d.T("heroTitle"))
		h.raw("</h1><p>")
		h.text(d.T("heroSubtitle"))
		h.raw(`</p></section><section class="filters"><a`)
		h.attr("class", TagClass(d.Query.Category == ""))
		h.attr("href", indexURL(content.Query{Search: d.Query.Search, Tags: d.Query.Tags}))
		h.raw(">")
		h.text(d.T("allCategories"))
		h.raw("</a>")
		for _, c := range d.Categories {
			h.raw("<a")
			h.attr("class", TagClass(c == d.Query.Category))
			h.attr("href", indexURL(content.Query{Search: d.Query.Search, Category: c, Tags: d.Query.Tags}))
			h.raw(">")
			h.text(c)
			h.raw("</a>")
		}
		active := make(map[string]bool, len(d.Query.Tags))
		for _, t := range d.Query.Tags {
			active[t] = true
		}
		shown := d.Tags
		if len(shown) > 10 {
			shown = shown[:10]
		}
		tags(h, shown, active)
		h.raw("</section>")
		if d.Query.Search != "" {
			h.raw(`<p class="search-info">`)
			h.text(d.T("search"))
			h.raw(` <strong>"`)
			h.text(d.Query.Search)
			h.raw(`"</strong> (`)
			h.text(strconv.Itoa(len(d.Posts)))
			h.raw(")</p>")
		}
		h.raw("<h2>")
		h.text(d.T("latestPosts"))
		h.raw("</h2>")
		postList(h, d.Page, d.Posts, d.Bookmarked)
	})
}

func indexURL(q content.Query) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	for _, t := range q.Tags {
		v.Add("tag", t)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

// Post renders a single article with its related posts.
func Post(d PostData) templ.Component {
	return document(d.Page, BlogPostingJsonLD(d.Site, d.Post), func(h *writer) {
		post := d.Post
		h.raw(`<article class="post">`)
		if post.CoverImage != "" {
			h.raw("<img")
			h.attr("src", post.CoverImage)
			h.attr("alt", post.Title)
			h.raw(">")
		}
		h.raw("<header><a")
		h.attr("href", CategoryURL(post.Category))
		h.raw(">")
		h.text(post.Category)
		h.raw("</a><h1>")
		h.text(post.Title)
		h.raw(`</h1><p class="meta"><a`)
		h.attr("href", AuthorURL(post.Author.ID))
		h.raw(">")
		h.text(post.Author.Name)
		h.raw("</a> · ")
		h.text(d.T("publishedOn") + " " + FormatDate(post))
		h.raw(" · ")
		h.text(strconv.Itoa(post.ReadingTime) + " " + d.T("minRead"))
		h.raw(" · ")
		h.text(strconv.Itoa(d.Views) + " views")
		h.raw("</p>")
		label := d.T("bookmark")
		if d.Bookmarked {
			label = "★ " + label
		}
		toggleForm(h, d.Page, "/bookmarks/"+url.PathEscape(post.ID)+"/toggle/", label)
		h.raw("</header>")
		if len(d.Headings) > 0 {
			h.raw(`<nav class="toc"><ul>`)
			for _, hd := range d.Headings {
				h.raw("<li")
				h.attr("class", "toc-h"+strconv.Itoa(hd.Level))
				h.raw("><a")
				h.attr("href", "#"+hd.ID)
				h.raw(">")
				h.text(hd.Text)
				h.raw("</a></li>")
			}
			h.raw("</ul></nav>")
		}
		h.raw(`<div class="prose">`)
		h.component(markdown.Markdown(post.Content))
		h.raw("</div>")
		tags(h, post.Tags, nil)
		share(h, d.Page, BuildURL(d.Site.URL, "blog", post.Slug), post.Title)
		h.raw(`<aside class="author"><img`)
		h.attr("src", post.Author.Avatar)
		h.attr("alt", post.Author.Name)
		h.raw("><h3>")
		h.text(d.T("author") + ": " + post.Author.Name)
		h.raw("</h3><p>")
		h.text(post.Author.Bio)
		h.raw("</p></aside></article>")
		if len(d.Related) > 0 {
			h.raw(`<section class="related"><h2>`)
			h.text(d.T("relatedPosts"))
			h.raw("</h2>")
			postList(h, d.Page, d.Related, nil)
			h.raw("</section>")
		}
	})
}

func share(h *writer, p Page, postURL, title string) {
	h.raw(`<nav class="share"><span>`)
	h.text(p.T("share"))
	h.raw(`</span><a rel="noopener" target="_blank"`)
	h.attr("href", "https://twitter.com/intent/tweet?"+url.Values{"text": {title}, "url": {postURL}}.Encode())
	h.raw(`>Twitter</a><a rel="noopener" target="_blank"`)
	h.attr("href", "https://www.linkedin.com/sharing/share-offsite/?"+url.Values{"url": {postURL}}.Encode())
	h.raw(`>LinkedIn</a><input class="share-link" readonly`)
	h.attr("value", postURL)
	h.raw("></nav>")
}

// Categories renders the category overview, or the posts of one category.
func Categories(d CategoriesData) templ.Component {
	return document(d.Page, "", func(h *writer) {
		h.raw("<h1>")
		if d.Category != "" {
			h.text(d.Category)
		} else {
			h.text(d.T("categories"))
		}
		h.raw("</h1>")
		if d.Category == "" {
			h.raw(`<ul class="categories">`)
			for _, c := range d.Categories {
				h.raw("<li><a")
				h.attr("href", CategoryURL(c))
				h.raw(">")
				h.text(c)
				h.raw("</a></li>")
			}
			h.raw("</ul>")
		}
		postList(h, d.Page, d.Posts, nil)
	})
}

// Tag renders the posts carrying one tag.
func Tag(d TagData) templ.Component {
	return document(d.Page, "", func(h *writer) {
		h.raw("<h1>#")
		h.text(d.Tag)
		h.raw("</h1>")
		postList(h, d.Page, d.Posts, nil)
	})
}

// Author renders an author's profile and posts.
func Author(d AuthorData) templ.Component {
	return document(d.Page, "", func(h *writer) {
		h.raw(`<section class="author-profile"><img`)
		h.attr("src", d.Author.Avatar)
		h.attr("alt", d.Author.Name)
		h.raw("><h1>")
		h.text(d.Author.Name)
		h.raw("</h1><p>")
		h.text(d.Author.Bio)
		h.raw(`</p><p class="meta">`)
		n := len(d.Posts)
		word := "posts"
		if n == 1 {
			word = "post"
		}
		h.text(strconv.Itoa(n) + " " + word + " published")
		h.raw("</p></section>")
		postList(h, d.Page, d.Posts, nil)
	})
}

// Bookmarks renders the visitor's bookmarked posts.
func Bookmarks(d BookmarksData) templ.Component {
	return document(d.Page, "", func(h *writer) {
		h.raw("<h1>")
		h.text(d.T("bookmarks"))
		h.raw("</h1>")
		all := make(map[string]bool, len(d.Posts))
		for _, p := range d.Posts {
			all[p.ID] = true
		}
		postList(h, d.Page, d.Posts, all)
	})
}

// About renders the about page.
func About(p Page) templ.Component {
	return document(p, "", func(h *writer) {
		h.raw(`<article class="about"><h1>`)
		h.text(p.T("about") + " " + p.Site.Name)
		h.raw("</h1><p>")
		h.text("Welcome to " + p.Site.Name + ". We publish practical articles for developers, from first steps to advanced patterns.")
		h.raw("</p><h2>Our Mission</h2><p>")
		h.text("Clear, tested explanations of the tools developers use every day.")
		h.raw("</p><h2>What We Cover</h2><ul>")
		for _, c := range p.Categories {
			h.raw("<li><a")
			h.attr("href", CategoryURL(c))
			h.raw(">")
			h.text(c)
			h.raw("</a></li>")
		}
		h.raw(`</ul><h2>Join Our Community</h2><p><a href="/contact/">`)
		h.text(p.T("contact"))
		h.raw("</a></p></article>")
	})
}

// Contact renders the contact form. Error, when set, is shown above the
// form and the submitted values are kept.
func Contact(d ContactData) templ.Component {
	return document(d.Page, "", func(h *writer) {
		h.raw(`<section class="contact"><h1>`)
		h.text(d.T("contact"))
		h.raw("</h1><p>Get in touch with us. We'd love to hear from you.</p>")
		if d.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(d.Error)
			h.raw("</p>")
		}
		h.raw(`<form method="post" action="/contact/">`)
		hiddenFields(h, d.Page)
		field(h, "name", "Name", "text", d.Form.Name)
		field(h, "email", "Email", "email", d.Form.Email)
		field(h, "subject", "Subject", "text", d.Form.Subject)
		h.raw(`<label for="contact-message">Message</label><textarea id="contact-message" name="message" rows="6" required>`)
		h.text(d.Form.Message)
		h.raw(`</textarea><button type="submit">Send</button></form>`)
		h.raw(`<address><a href="mailto:hello@devscribe.com">hello@devscribe.com</a></address></section>`)
	})
}

func field(h *writer, name, label, typ, value string) {
	h.raw("<label")
	h.attr("for", "contact-"+name)
	h.raw(">")
	h.text(label)
	h.raw("</label><input")
	h.attr("id", "contact-"+name)
	h.attr("type", typ)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(" required>")
}

// NotFound renders the 404 page.
func NotFound(p Page) templ.Component {
	return document(p, "", func(h *writer) {
		h.raw(`<section class="error"><h1>404</h1><p>`)
		h.text(p.T("noPostsFound"))
		h.raw(`</p><a href="/">`)
		h.text(p.T("backToHome"))
		h.raw("</a></section>")
	})
}

// ServerError renders the 500 page.
func ServerError(p Page) templ.Component {
	return document(p, "", func(h *writer) {
		h.raw(`<section class="error"><h1>500</h1><p>Something went wrong.</p><a href="/">`)
		h.text(p.T("backToHome"))
		h.raw("</a></section>")
	})
}
