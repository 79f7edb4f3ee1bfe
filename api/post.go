package api

import (
	"time"

	"github.com/dfryer1193/website/blog/domain"
)

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Post struct {
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	URL        string    `json:"url"`
	HTML       string    `json:"html"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	Previous   *Link     `json:"previous,omitempty"`
	Next       *Link     `json:"next,omitempty"`
}

type Summary struct {
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
	Slug    string    `json:"slug"`
	Summary string    `json:"summary"`
}

type SummaryList struct {
	Query string     `json:"query,omitempty"`
	Posts []*Summary `json:"posts"`
}

type Error struct {
	Error string `json:"error"`
}

func NewPost(p *domain.Post) *Post {
	return &Post{
		Title:      p.Title,
		Date:       p.Date,
		URL:        p.URL,
		HTML:       string(p.HTML),
		Categories: p.Categories,
		Tags:       p.Tags,
		Previous:   newLink(p.Previous),
		Next:       newLink(p.Next),
	}
}

func newLink(l *domain.PostLink) *Link {
	if l == nil {
		return nil
	}
	return &Link{Title: l.Title, URL: l.URL}
}

func NewSummaryList(query string, summaries []*domain.Summary) *SummaryList {
	list := &SummaryList{
		Query: query,
		Posts: make([]*Summary, 0, len(summaries)),
	}
	for _, s := range summaries {
		list.Posts = append(list.Posts, &Summary{
			Title:   s.Title,
			Date:    s.Date,
			URL:     s.URL,
			Slug:    s.Slug,
			Summary: string(s.Summary),
		})
	}
	return list
}
