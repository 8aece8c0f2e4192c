// Package markdown renders article bodies to HTML as templ components.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Raw HTML in sources is dropped: goldmark's html renderer is left in its
// default (safe) mode.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(
		renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
	),
)

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := Render(src)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// Render converts src to HTML.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Heading is one section title of a document.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Headings lists the level 2 and 3 headings of src, in document order,
// with the same IDs Render assigns.
func Headings(src string) []Heading {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var out []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if h.Level == 2 || h.Level == 3 {
			id, _ := h.AttributeString("id")
			idBytes, _ := id.([]byte)
			out = append(out, Heading{
				Level: h.Level,
				ID:    string(idBytes),
				Text:  string(nodeText(h, source)),
			})
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}

func nodeText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.Write(nodeText(c, source))
	}
	return buf.Bytes()
}

// codeBlockRenderer wraps fenced code in a <pre class="code-block"> and,
// when the fence names a language, adds a language badge.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	if !entering {
		_, _ = w.WriteString("</code></pre>")
		if lang != "" {
			_, _ = w.WriteString("</div>")
		}
		return ast.WalkContinue, nil
	}

	if lang != "" {
		esc := html.EscapeString(lang)
		_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + esc + `">` + esc + `</span>`)
		_, _ = w.WriteString(`<pre class="code-block"><code class="language-` + esc + `">`)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	return ast.WalkContinue, nil
}
