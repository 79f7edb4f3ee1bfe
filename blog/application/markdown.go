package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/dfryer1193/website/blog/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultImagePrefix is where relative image references in posts are served from.
const DefaultImagePrefix = "/static/images/blog/"

type relativeImageTransformer struct {
	prefix string
}

func (t *relativeImageTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := string(img.Destination)
		if isRelativeLink(dest) {
			img.Destination = []byte(t.prefix + path.Base(dest))
		}

		return ast.WalkContinue, nil
	})
}

// isRelativeLink reports whether dest is relative to the post file, as opposed to a rooted
// path, an anchor or a URL with a scheme.
func isRelativeLink(dest string) bool {
	if dest == "" {
		return false
	}

	if strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return false
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	if strings.Contains(dest, ":") {
		return false
	}

	return true
}

// MarkdownRenderer defines the interface for converting markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown domain.Markdown) (domain.HTML, error)
}

type MarkdownRendererImpl struct {
	renderer    goldmark.Markdown
	imagePrefix string
}

type MarkdownOption func(*MarkdownRendererImpl)

// WithImagePrefix sets the path prefix for relative image references.
func WithImagePrefix(prefix string) MarkdownOption {
	return func(r *MarkdownRendererImpl) {
		if prefix == "" {
			return
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		r.imagePrefix = prefix
	}
}

// NewMarkdownRenderer builds a renderer with autolinking, fenced code and tables.
// Raw HTML in posts is omitted rather than passed through.
func NewMarkdownRenderer(opts ...MarkdownOption) MarkdownRenderer {
	r := &MarkdownRendererImpl{imagePrefix: DefaultImagePrefix}
	for _, opt := range opts {
		opt(r)
	}

	r.renderer = goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeImageTransformer{prefix: r.imagePrefix}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	return r
}

func (r *MarkdownRendererImpl) Render(markdown domain.Markdown) (domain.HTML, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return domain.HTML(buf.String()), nil
}
