package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate is returned by New when two posts share an ID or a slug.
var ErrDuplicate = errors.New("content: duplicate post")

// Catalog answers read-only questions about a fixed post collection. It is
// immutable after New and safe to share between goroutines.
type Catalog struct {
	posts []Post
}

// New builds a Catalog over posts, keeping their order. IDs and slugs must be
// unique.
func New(posts []Post) (*Catalog, error) {
	ids := make(map[string]struct{}, len(posts))
	slugs := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := ids[p.ID]; ok {
			return nil, fmt.Errorf("%w: id %q", ErrDuplicate, p.ID)
		}
		if _, ok := slugs[p.Slug]; ok {
			return nil, fmt.Errorf("%w: slug %q", ErrDuplicate, p.Slug)
		}
		ids[p.ID] = struct{}{}
		slugs[p.Slug] = struct{}{}
	}
	owned := make([]Post, len(posts))
	copy(owned, posts)
	return &Catalog{posts: owned}, nil
}

// Posts returns the whole collection in order.
func (c *Catalog) Posts() []Post {
	return c.filter(func(Post) bool { return true })
}

// Len is the number of posts.
func (c *Catalog) Len() int {
	return len(c.posts)
}

// BySlug returns the post with exactly this slug.
func (c *Catalog) BySlug(slug string) (Post, bool) {
	for _, p := range c.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}

// ByID returns the post with exactly this ID.
func (c *Catalog) ByID(id string) (Post, bool) {
	for _, p := range c.posts {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}

// ByCategory returns posts whose category equals category, ignoring case.
func (c *Catalog) ByCategory(category string) []Post {
	return c.filter(func(p Post) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// ByTag returns posts carrying tag, ignoring case.
func (c *Catalog) ByTag(tag string) []Post {
	return c.filter(func(p Post) bool {
		return hasTag(p, tag)
	})
}

// Search returns posts whose title, excerpt or any tag contains query,
// ignoring case. A blank query matches every post; callers that want
// "no search" must check for it themselves.
func (c *Catalog) Search(query string) []Post {
	q := strings.ToLower(query)
	return c.filter(func(p Post) bool {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Excerpt), q) {
			return true
		}
		for _, t := range p.Tags {
			if strings.Contains(strings.ToLower(t), q) {
				return true
			}
		}
		return false
	})
}

// Categories returns the distinct categories in first-occurrence order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.posts {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Tags returns the distinct tags of all posts in first-occurrence order.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Related returns up to limit other posts that share the category or at
// least one tag with post. Matches are taken in collection order; there is
// no ranking.
func (c *Catalog) Related(post Post, limit int) []Post {
	if limit <= 0 {
		return nil
	}
	tagSet := make(map[string]struct{}, len(post.Tags))
	for _, t := range post.Tags {
		tagSet[strings.ToLower(t)] = struct{}{}
	}
	var related []Post
	for _, p := range c.posts {
		if p.ID == post.ID {
			continue
		}
		if strings.EqualFold(p.Category, post.Category) || sharesTag(p, tagSet) {
			related = append(related, p)
			if len(related) == limit {
				break
			}
		}
	}
	return related
}

// ByAuthor collects the posts written by authorID. The author record is
// taken from their first post.
func (c *Catalog) ByAuthor(authorID string) (AuthorView, bool) {
	posts := c.filter(func(p Post) bool { return p.Author.ID == authorID })
	if len(posts) == 0 {
		return AuthorView{}, false
	}
	return AuthorView{Author: posts[0].Author, Posts: posts}, true
}

// Filter applies the index page filters in order: search (when the text is
// not blank), then category, then any-of tags.
func (c *Catalog) Filter(q Query) []Post {
	var posts []Post
	if strings.TrimSpace(q.Search) != "" {
		posts = c.Search(q.Search)
	} else {
		posts = c.Posts()
	}
	if q.Category != "" {
		kept := posts[:0]
		for _, p := range posts {
			if strings.EqualFold(p.Category, q.Category) {
				kept = append(kept, p)
			}
		}
		posts = kept
	}
	if len(q.Tags) > 0 {
		kept := posts[:0]
		for _, p := range posts {
			for _, t := range q.Tags {
				if hasTag(p, t) {
					kept = append(kept, p)
					break
				}
			}
		}
		posts = kept
	}
	return posts
}

func (c *Catalog) filter(keep func(Post) bool) []Post {
	var out []Post
	for _, p := range c.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func hasTag(p Post, tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func sharesTag(p Post, lowered map[string]struct{}) bool {
	for _, t := range p.Tags {
		if _, ok := lowered[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}
