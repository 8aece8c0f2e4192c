package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/markdown"
	"github.com/eringen/devscribe/prefs"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func testPage(lang prefs.Language, theme prefs.Theme) Page {
	return Page{
		Site:       SiteConfig{Name: "DevScribe", URL: "https://blog.example.com"},
		Path:       "/?search=go",
		Language:   lang,
		Theme:      theme,
		CSRFToken:  "tok",
		Categories: []string{"Programming"},
	}
}

var samplePost = content.Post{
	ID:          "1",
	Slug:        "hello-go",
	Title:       "Hello <Go>",
	Excerpt:     "An intro",
	Content:     "## Setup\n\nInstall it.\n",
	Author:      content.Author{ID: "ann", Name: "Ann"},
	PublishedAt: "2024-03-15",
	ReadingTime: 4,
	Tags:        []string{"Go"},
	Category:    "Programming",
}

func TestDocumentCarriesLanguageDirectionAndTheme(t *testing.T) {
	got := renderString(t, Index(IndexData{Page: testPage(prefs.Arabic, prefs.Dark)}))
	if !strings.Contains(got, `<html lang="ar" dir="rtl" class="dark">`) {
		t.Errorf("unexpected root element: %.200s", got)
	}
	if !strings.Contains(got, prefs.Translate(prefs.Arabic, "latestPosts")) {
		t.Errorf("expected Arabic UI text")
	}
	if !strings.Contains(got, prefs.Translate(prefs.Arabic, "noPostsFound")) {
		t.Errorf("expected empty-state text")
	}
}

func TestToggleFormsCarryCSRFAndReturnPath(t *testing.T) {
	got := renderString(t, Index(IndexData{Page: testPage(prefs.English, prefs.Light)}))
	for _, want := range []string{
		`action="/prefs/theme/toggle/"`,
		`action="/prefs/language/toggle/"`,
		`name="_csrf" value="tok"`,
		`name="next" value="/?search=go"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestIndexEscapesAndMarksBookmarks(t *testing.T) {
	got := renderString(t, Index(IndexData{
		Page:       testPage(prefs.English, prefs.Light),
		Posts:      []content.Post{samplePost},
		Query:      content.Query{Search: `<script>`},
		Bookmarked: map[string]bool{"1": true},
	}))
	if strings.Contains(got, "<script>") || strings.Contains(got, "Hello <Go>") {
		t.Errorf("unescaped user or post text in %s", got)
	}
	if !strings.Contains(got, "Hello &lt;Go&gt;") {
		t.Errorf("missing escaped title")
	}
	if !strings.Contains(got, `class="bookmarked"`) {
		t.Errorf("missing bookmark marker")
	}
	if !strings.Contains(got, "Mar 15, 2024") {
		t.Errorf("missing formatted date")
	}
}

func TestPostRendersBodyAndTableOfContents(t *testing.T) {
	got := renderString(t, Post(PostData{
		Page:       testPage(prefs.English, prefs.Light),
		Post:       samplePost,
		Headings:   markdown.Headings(samplePost.Content),
		Views:      12,
		Bookmarked: true,
	}))
	for _, want := range []string{
		`<h2 id="setup">Setup</h2>`,
		`href="#setup"`,
		`action="/bookmarks/1/toggle/"`,
		"★ Bookmark",
		"12 views",
		`"@type":"BlogPosting"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s", want)
		}
	}
	if strings.Contains(got, "relatedPosts") || strings.Contains(got, "Related Posts") {
		t.Errorf("related section rendered without related posts")
	}
}

func TestAuthorPluralises(t *testing.T) {
	one := renderString(t, Author(AuthorData{Page: testPage(prefs.English, prefs.Light), Author: samplePost.Author, Posts: []content.Post{samplePost}}))
	if !strings.Contains(one, "1 post published") {
		t.Errorf("expected singular")
	}
	two := renderString(t, Author(AuthorData{Page: testPage(prefs.English, prefs.Light), Author: samplePost.Author, Posts: []content.Post{samplePost, samplePost}}))
	if !strings.Contains(two, "2 posts published") {
		t.Errorf("expected plural")
	}
}

func TestErrorPages(t *testing.T) {
	p := testPage(prefs.English, prefs.Light)
	if got := renderString(t, NotFound(p)); !strings.Contains(got, "<h1>404</h1>") {
		t.Errorf("unexpected 404 page")
	}
	if got := renderString(t, ServerError(p)); !strings.Contains(got, "<h1>500</h1>") {
		t.Errorf("unexpected 500 page")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"blog", "hello"}, "https://example.com/blog/hello/"},
		{"https://example.com/root", []string{"tags", "go"}, "https://example.com/root/tags/go/"},
		{"https://example.com/", []string{"", "categories"}, "https://example.com/categories/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestBuildURLMatchesSiteRelativeLinks(t *testing.T) {
	for _, tag := range []string{"c/d", "a b", "..", "c++"} {
		got := BuildURL("https://example.com", "tags", tag)
		if want := "https://example.com" + TagURL(tag); got != want {
			t.Errorf("BuildURL tag %q = %q, want %q", tag, got, want)
		}
	}
	got := BuildURL("https://example.com", "categories", "Backend Development")
	if want := "https://example.com" + CategoryURL("Backend Development"); got != want {
		t.Errorf("BuildURL category = %q, want %q", got, want)
	}
}

func TestJsonLDEscapesMarkup(t *testing.T) {
	p := samplePost
	p.Title = "</script><script>alert(1)</script>"
	got := BlogPostingJsonLD(SiteConfig{Name: "x", URL: "https://e.com"}, p)
	if strings.Contains(got, "</script>") {
		t.Errorf("JSON-LD can break out of its script tag: %s", got)
	}
}

func TestFlashNoticesAreEscaped(t *testing.T) {
	p := testPage(prefs.English, prefs.Light)
	p.Flash = []string{"Saved <ok>"}
	got := renderString(t, About(p))
	if !strings.Contains(got, `<p class="flash" role="status">Saved &lt;ok&gt;</p>`) {
		t.Errorf("flash notice missing or unescaped")
	}
}

func TestContactKeepsSubmittedValues(t *testing.T) {
	got := renderString(t, Contact(ContactData{
		Page:  testPage(prefs.Arabic, prefs.Light),
		Form:  ContactForm{Name: `Ann "A"`, Message: "hi"},
		Error: "Please fill in every field.",
	}))
	for _, want := range []string{
		`<p class="error" role="alert">Please fill in every field.</p>`,
		`value="Ann &#34;A&#34;"`,
		`required>hi</textarea>`,
		prefs.Translate(prefs.Arabic, "contact"),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("contact page missing %q", want)
		}
	}
}
