package devscribe

import "github.com/eringen/devscribe/content"

// prefsResponse is the JSON form of a visitor's preferences.
type prefsResponse struct {
	Bookmarks []string `json:"bookmarks"`
	Language  string   `json:"language"`
	Direction string   `json:"direction"`
	Theme     string   `json:"theme"`
}

type bookmarkResponse struct {
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
}

// postSummary is a post in API listings; the body is only served by
// /api/posts/:slug.
type postSummary struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Excerpt     string         `json:"excerpt"`
	CoverImage  string         `json:"coverImage"`
	Author      content.Author `json:"author"`
	PublishedAt string         `json:"publishedAt"`
	ReadingTime int            `json:"readingTime"`
	Tags        []string       `json:"tags"`
	Category    string         `json:"category"`
	Link        string         `json:"link"`
}

func summarize(posts []content.Post) []postSummary {
	out := make([]postSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, postSummary{
			ID:          p.ID,
			Slug:        p.Slug,
			Title:       p.Title,
			Excerpt:     p.Excerpt,
			CoverImage:  p.CoverImage,
			Author:      p.Author,
			PublishedAt: p.PublishedAt,
			ReadingTime: p.ReadingTime,
			Tags:        p.Tags,
			Category:    p.Category,
			Link:        p.Link(),
		})
	}
	return out
}
