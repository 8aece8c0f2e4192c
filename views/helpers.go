package views

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/eringen/devscribe/content"
)

// BuildURL appends path segments to a base URL, ensuring a trailing slash.
// Each segment is escaped whole, so "/" or ".." inside a tag stays part of
// the tag, matching TagURL and CategoryURL.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	escaped := strings.TrimSuffix(u.EscapedPath(), "/")
	added := false
	for _, seg := range pathSegments {
		if seg == "" {
			continue
		}
		escaped += "/" + url.PathEscape(seg)
		added = true
	}
	if !added {
		return u.String()
	}
	escaped += "/"
	u.RawPath = escaped
	if u.Path, err = url.PathUnescape(escaped); err != nil {
		return base
	}
	return u.String()
}

// CategoryURL is the site-relative page of a category.
func CategoryURL(category string) string {
	return "/categories/" + url.PathEscape(category) + "/"
}

// TagURL is the site-relative page of a tag.
func TagURL(tag string) string {
	return "/tags/" + url.PathEscape(tag) + "/"
}

// AuthorURL is the site-relative page of an author.
func AuthorURL(id string) string {
	return "/author/" + url.PathEscape(id) + "/"
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// ThemeClass is the class put on <html> for the theme.
func ThemeClass(p Page) string {
	return string(p.Theme)
}

// FormatDate renders a post date like "Jan 2, 2024".
func FormatDate(p content.Post) string {
	t := p.Published()
	if t.IsZero() {
		return p.PublishedAt
	}
	return t.Format("Jan 2, 2006")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post content.Post) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.PublishedAt,
		"url":           postURL,
		"author": map[string]string{
			"@type": "Person",
			"name":  post.Author.Name,
			"url":   BuildURL(cfg.URL, "author", post.Author.ID),
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Category != "" {
		data["articleSection"] = post.Category
	}
	if post.ReadingTime > 0 {
		data["timeRequired"] = "PT" + strconv.Itoa(post.ReadingTime) + "M"
	}
	if post.CoverImage != "" {
		data["image"] = post.CoverImage
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
