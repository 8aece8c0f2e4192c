package views

import (
	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/markdown"
	"github.com/eringen/devscribe/prefs"
)

// SiteConfig holds the site-wide settings templates read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the chrome shared by every page: site settings plus the
// visitor's language and theme.
type Page struct {
	Site       SiteConfig
	Meta       PageMeta
	Path       string // request path, used as the return target of toggle forms
	Language   prefs.Language
	Theme      prefs.Theme
	CSRFToken  string
	Categories []string
	Flash      []string // one-shot notices carried across a redirect
}

// T translates key into the page language.
func (p Page) T(key string) string {
	return prefs.Translate(p.Language, key)
}

// Dir is the text direction of the page language.
func (p Page) Dir() string {
	return p.Language.Direction()
}

type IndexData struct {
	Page
	Posts      []content.Post
	Query      content.Query
	Tags       []string
	Bookmarked map[string]bool
}

type PostData struct {
	Page
	Post       content.Post
	Related    []content.Post
	Headings   []markdown.Heading
	Views      int
	Bookmarked bool
}

type CategoriesData struct {
	Page
	Category string // empty lists every post
	Posts    []content.Post
}

type TagData struct {
	Page
	Tag   string
	Posts []content.Post
}

type AuthorData struct {
	Page
	Author content.Author
	Posts  []content.Post
}

type BookmarksData struct {
	Page
	Posts []content.Post
}

// ContactForm is a submitted contact message.
type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type ContactData struct {
	Page
	Form  ContactForm
	Error string
}
