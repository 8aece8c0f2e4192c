package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fixture(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]Post{
		{
			ID:       "1",
			Slug:     "getting-started-with-react-18",
			Title:    "Getting Started with React 18",
			Excerpt:  "Concurrent rendering and automatic batching.",
			Tags:     []string{"React", "Frontend"},
			Category: "Frontend Development",
			Author:   Author{ID: "sarah-johnson", Name: "Sarah Johnson"},
		},
		{
			ID:       "2",
			Slug:     "mastering-typescript-advanced-patterns",
			Title:    "Mastering TypeScript: Advanced Patterns",
			Excerpt:  "Conditional types, mapped types and utility types.",
			Tags:     []string{"TypeScript", "Programming"},
			Category: "Programming",
			Author:   Author{ID: "alex-chen", Name: "Alex Chen"},
		},
		{
			ID:       "3",
			Slug:     "building-scalable-apis-with-nodejs",
			Title:    "Building Scalable APIs with Node.js",
			Excerpt:  "Design REST APIs with Express.",
			Tags:     []string{"Node.js", "Express", "Backend", "API"},
			Category: "Backend Development",
			Author:   Author{ID: "sarah-johnson", Name: "Sarah Johnson"},
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func ids(posts []Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestNewRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		posts []Post
	}{
		{"duplicate id", []Post{{ID: "1", Slug: "a"}, {ID: "1", Slug: "b"}}},
		{"duplicate slug", []Post{{ID: "1", Slug: "a"}, {ID: "2", Slug: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.posts)
			if !errors.Is(err, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})
	}
}

func TestBySlugRoundTrip(t *testing.T) {
	c := fixture(t)
	for _, p := range c.Posts() {
		got, ok := c.BySlug(p.Slug)
		if !ok {
			t.Fatalf("BySlug(%q) not found", p.Slug)
		}
		if got.ID != p.ID {
			t.Errorf("BySlug(%q).ID = %q, want %q", p.Slug, got.ID, p.ID)
		}
	}
}

func TestBySlugIsCaseSensitive(t *testing.T) {
	c := fixture(t)
	if _, ok := c.BySlug("Getting-Started-With-React-18"); ok {
		t.Error("slug lookup should be case-sensitive")
	}
	if _, ok := c.BySlug("missing"); ok {
		t.Error("expected missing slug to be absent")
	}
}

func TestByID(t *testing.T) {
	c := fixture(t)
	p, ok := c.ByID("2")
	if !ok || p.Slug != "mastering-typescript-advanced-patterns" {
		t.Errorf("ByID(2) = %q, %v", p.Slug, ok)
	}
	if _, ok := c.ByID("02"); ok {
		t.Error("expected exact id match only")
	}
}

func TestByCategory(t *testing.T) {
	c := fixture(t)
	if diff := cmp.Diff([]string{"1"}, ids(c.ByCategory("frontend development"))); diff != "" {
		t.Errorf("ByCategory mismatch (-want +got):\n%s", diff)
	}
	if got := c.ByCategory("Design"); len(got) != 0 {
		t.Errorf("expected no posts for unknown category, got %v", ids(got))
	}
}

func TestEveryListedCategoryHasPosts(t *testing.T) {
	c := fixture(t)
	for _, cat := range c.Categories() {
		posts := c.ByCategory(cat)
		if len(posts) == 0 {
			t.Fatalf("category %q has no posts", cat)
		}
		for _, p := range posts {
			if !strings.EqualFold(p.Category, cat) {
				t.Errorf("post %s has category %q, want %q", p.ID, p.Category, cat)
			}
		}
	}
}

func TestByTag(t *testing.T) {
	c := fixture(t)
	tests := []struct {
		tag  string
		want []string
	}{
		{"react", []string{"1"}},
		{"NODE.JS", []string{"3"}},
		{"Node", nil},
	}
	for _, tt := range tests {
		got := ids(c.ByTag(tt.tag))
		if len(tt.want) == 0 && len(got) == 0 {
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ByTag(%q) mismatch (-want +got):\n%s", tt.tag, diff)
		}
	}
}

func TestSearch(t *testing.T) {
	c := fixture(t)
	tests := []struct {
		query string
		want  []string
	}{
		{"typescript", []string{"2"}},
		{"batching", []string{"1"}},
		{"xpre", []string{"3"}},
		{"", []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ids(c.Search(tt.query))); diff != "" {
			t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}
}

func TestSearchIgnoresCase(t *testing.T) {
	c := fixture(t)
	if diff := cmp.Diff(ids(c.Search("react")), ids(c.Search("REACT"))); diff != "" {
		t.Errorf("case changed results (-lower +upper):\n%s", diff)
	}
}

func TestCategoriesAndTagsKeepFirstOccurrence(t *testing.T) {
	c, err := New([]Post{
		{ID: "1", Slug: "a", Category: "Go", Tags: []string{"web", "api", "web"}},
		{ID: "2", Slug: "b", Category: "Rust", Tags: []string{"cli", "api"}},
		{ID: "3", Slug: "c", Category: "Go", Tags: []string{"web"}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Go", "Rust"}, c.Categories()); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"web", "api", "cli"}, c.Tags()); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
}

func TestRelatedHasNoMatchForIsolatedPost(t *testing.T) {
	c := fixture(t)
	second, _ := c.ByID("2")
	if got := c.Related(second, 3); len(got) != 0 {
		t.Errorf("expected no related posts, got %v", ids(got))
	}
}

func TestRelatedTakesFirstMatchesAndSkipsSelf(t *testing.T) {
	var posts []Post
	for i, slug := range []string{"a", "b", "c", "d", "e", "f"} {
		posts = append(posts, Post{
			ID:       string(rune('1' + i)),
			Slug:     slug,
			Category: "Go",
		})
	}
	posts = append(posts, Post{ID: "x", Slug: "x", Category: "Other", Tags: []string{"GO-TAG"}})
	posts[5].Tags = []string{"go-tag"}
	c, err := New(posts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := c.Related(posts[0], 3)
	if diff := cmp.Diff([]string{"2", "3", "4"}, ids(got)); diff != "" {
		t.Errorf("Related mismatch (-want +got):\n%s", diff)
	}
	for _, p := range got {
		if p.ID == posts[0].ID {
			t.Error("Related must not include the post itself")
		}
	}

	byTag := c.Related(posts[6], 3)
	if diff := cmp.Diff([]string{"6"}, ids(byTag)); diff != "" {
		t.Errorf("Related by tag mismatch (-want +got):\n%s", diff)
	}

	if got := c.Related(posts[0], 0); len(got) != 0 {
		t.Errorf("limit 0 should yield nothing, got %v", ids(got))
	}
}

func TestByAuthor(t *testing.T) {
	c := fixture(t)
	view, ok := c.ByAuthor("sarah-johnson")
	if !ok {
		t.Fatal("expected author to be found")
	}
	if view.Author.Name != "Sarah Johnson" {
		t.Errorf("Author.Name = %q", view.Author.Name)
	}
	if diff := cmp.Diff([]string{"1", "3"}, ids(view.Posts)); diff != "" {
		t.Errorf("author posts mismatch (-want +got):\n%s", diff)
	}
	if _, ok := c.ByAuthor("nobody"); ok {
		t.Error("expected unknown author to be absent")
	}
}

func TestFilter(t *testing.T) {
	c := fixture(t)
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"empty", Query{}, []string{"1", "2", "3"}},
		{"blank search is ignored", Query{Search: "   "}, []string{"1", "2", "3"}},
		{"search", Query{Search: "api"}, []string{"3"}},
		{"category", Query{Category: "PROGRAMMING"}, []string{"2"}},
		{"any tag", Query{Tags: []string{"react", "express"}}, []string{"1", "3"}},
		{"search and tag", Query{Search: "ing", Tags: []string{"Backend"}}, []string{"3"}},
		{"no match", Query{Category: "Frontend Development", Tags: []string{"API"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(c.Filter(tt.q))
			if len(tt.want) == 0 && len(got) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPostsReturnsCopy(t *testing.T) {
	c := fixture(t)
	posts := c.Posts()
	posts[0] = Post{ID: "mutated"}
	if first := c.Posts()[0]; first.ID != "1" {
		t.Errorf("catalog changed through returned slice: %q", first.ID)
	}
}
