// Package content holds the article model and the read-only query engine
// over the site's fixed post collection.
package content

import "time"

// dateLayout is the format of Post.PublishedAt.
const dateLayout = "2006-01-02"

// Author is embedded in every Post. Two posts share an author only by
// matching ID.
type Author struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Avatar string `yaml:"avatar" json:"avatar"`
	Bio    string `yaml:"bio" json:"bio"`
}

// Post is one article of the compiled-in dataset.
type Post struct {
	ID          string   `yaml:"id" json:"id"`
	Slug        string   `yaml:"slug" json:"slug"`
	Title       string   `yaml:"title" json:"title"`
	Excerpt     string   `yaml:"excerpt" json:"excerpt"`
	Content     string   `yaml:"content" json:"content"`
	CoverImage  string   `yaml:"cover_image" json:"coverImage"`
	Author      Author   `yaml:"author" json:"author"`
	PublishedAt string   `yaml:"published_at" json:"publishedAt"` // YYYY-MM-DD
	ReadingTime int      `yaml:"reading_time" json:"readingTime"` // minutes
	Tags        []string `yaml:"tags" json:"tags"`
	Category    string   `yaml:"category" json:"category"`
	Views       int      `yaml:"views" json:"views"` // advisory seed counter
}

// Link is the site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// Published parses PublishedAt. The zero time is returned for an
// unparsable date.
func (p Post) Published() time.Time {
	t, err := time.Parse(dateLayout, p.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AuthorView is an author together with everything they published, in
// collection order.
type AuthorView struct {
	Author Author
	Posts  []Post
}

// Query combines the filters offered on the index page.
type Query struct {
	Search   string
	Category string
	Tags     []string
}
