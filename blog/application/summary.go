package application

import (
	"fmt"
	stdhtml "html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dfryer1193/website/blog/domain"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SummaryLength is the number of characters of rendered HTML kept in a summary.
const SummaryLength = 200

var summaryPolicy = newSummaryPolicy()

func newSummaryPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)
	return p
}

// Summarize returns a preview of a rendered post: its first SummaryLength characters with any
// open tags closed, followed by a link to the full post.
//
// The link is appended even when the post is shorter than SummaryLength. It is added after
// sanitizing, with the path percent-encoded, so slugs holding characters such as '%' or '?'
// still produce a working anchor.
func Summarize(content domain.HTML, postURL string) domain.HTML {
	preview := summaryPolicy.Sanitize(balance(truncate(string(content), SummaryLength)))
	link := fmt.Sprintf(`… <a href="%s">Continue→</a>`, stdhtml.EscapeString(escapePath(postURL)))

	return domain.HTML(preview + link)
}

func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

// truncate keeps the first n characters of s. A tag cut in half at the end is dropped
// entirely so it cannot absorb whatever follows.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			s = s[:i]
			break
		}
		count++
	}

	if open := strings.LastIndexByte(s, '<'); open > strings.LastIndexByte(s, '>') {
		s = s[:open]
	}

	return s
}

// balance parses s as the contents of a <body> and renders it back, which closes every
// element left open.
func balance(s string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		// The parser only fails on reader errors; fall back to escaped text.
		return stdhtml.EscapeString(s)
	}

	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return stdhtml.EscapeString(s)
		}
	}
	return b.String()
}
