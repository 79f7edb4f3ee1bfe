package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	blog "github.com/dfryer1193/website/blog/domain"
	projects "github.com/dfryer1193/website/projects/domain"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	DefaultSiteName = "Personal Website"

	// DisplayDateFormat renders dates as "June 15, 2018".
	DisplayDateFormat = "January 2, 2006"

	// RecentPostCount is how many summaries the index page shows.
	RecentPostCount = 3

	// SlideshowURL is where the about page slideshow images are served from, below the static
	// directory at images/slideshow.
	SlideshowURL = "/static/images/slideshow"

	defaultSeparator = ", "
)

// Template names.
const (
	IndexTemplate    = "index.html"
	BlogTemplate     = "blog.html"
	SearchTemplate   = "search.html"
	PostTemplate     = "post.html"
	ProjectsTemplate = "projects.html"
	ResumeTemplate   = "resume.html"
	AboutTemplate    = "about.html"
	NotFoundTemplate = "not_found.html"
	ErrorTemplate    = "error.html"
)

// Join joins values with sep, or ", " when no separator is given.
func Join(values []string, sep ...string) string {
	separator := defaultSeparator
	if len(sep) > 0 {
		separator = sep[0]
	}
	return strings.Join(values, separator)
}

// FuncMap holds the helpers available to every template.
var FuncMap = template.FuncMap{
	"join": Join,
	"date": func(t time.Time) string {
		return t.Format(DisplayDateFormat)
	},
	"isodate": func(t time.Time) string {
		return t.Format(time.DateOnly)
	},
	// raw marks rendered post markup as safe. It has already been through goldmark with raw
	// HTML disabled, or through the summary sanitizer.
	"raw": func(h blog.HTML) template.HTML {
		return template.HTML(h)
	},
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// PostReader is the read side of the blog.
type PostReader interface {
	Summaries(ctx context.Context, limit int) ([]*blog.Summary, error)
	GetPost(ctx context.Context, year, month, day int, slug string) (*blog.Post, error)
	Search(ctx context.Context, query string) ([]*blog.Summary, error)
}

// Page is the data every template is executed with.
type Page struct {
	Template string

	SiteName string
	Year     int
	Title    string
	Query    string

	Posts      []*blog.Summary
	Post       *blog.Post
	Projects   []*projects.Project
	ResumeLink string
	Images     []string
}

// Site builds the pages of the website.
type Site struct {
	name       string
	templates  *template.Template
	posts      PostReader
	projects   []*projects.Project
	resumeLink string
	staticDir  string
	now        func() time.Time
}

type Option func(*Site)

func WithName(name string) Option {
	return func(s *Site) {
		if name != "" {
			s.name = name
		}
	}
}

func WithProjects(p []*projects.Project) Option {
	return func(s *Site) {
		s.projects = p
	}
}

func WithResumeLink(link string) Option {
	return func(s *Site) {
		s.resumeLink = link
	}
}

// WithStaticDir sets the directory served under /static, used to find the about page images.
func WithStaticDir(dir string) Option {
	return func(s *Site) {
		s.staticDir = dir
	}
}

func New(posts PostReader, opts ...Option) (*Site, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	s := &Site{
		name:      DefaultSiteName,
		templates: tmpl,
		posts:     posts,
		projects:  []*projects.Project{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HTMLTemplates returns the parsed template set, for handing to gin.
func (s *Site) HTMLTemplates() *template.Template {
	return s.templates
}

func (s *Site) page(name, title string) *Page {
	return &Page{
		Template: name,
		SiteName: s.name,
		Year:     s.now().Year(),
		Title:    title,
	}
}

func (s *Site) IndexPage(ctx context.Context) (*Page, error) {
	summaries, err := s.posts.Summaries(ctx, RecentPostCount)
	if err != nil {
		return nil, err
	}

	p := s.page(IndexTemplate, "")
	p.Posts = summaries
	return p, nil
}

func (s *Site) BlogPage(ctx context.Context) (*Page, error) {
	summaries, err := s.posts.Summaries(ctx, 0)
	if err != nil {
		return nil, err
	}

	p := s.page(BlogTemplate, "Blog")
	p.Posts = summaries
	return p, nil
}

func (s *Site) SearchPage(ctx context.Context, query string) (*Page, error) {
	results, err := s.posts.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	p := s.page(SearchTemplate, "Search")
	p.Query = query
	p.Posts = results
	return p, nil
}

// PostPage returns blog.ErrPostNotFound when there is no such post.
func (s *Site) PostPage(ctx context.Context, year, month, day int, slug string) (*Page, error) {
	post, err := s.posts.GetPost(ctx, year, month, day, slug)
	if err != nil {
		return nil, err
	}

	p := s.page(PostTemplate, post.Title)
	p.Post = post
	return p, nil
}

func (s *Site) ProjectsPage() *Page {
	p := s.page(ProjectsTemplate, "Projects")
	p.Projects = s.projects
	return p
}

func (s *Site) ResumePage() *Page {
	p := s.page(ResumeTemplate, "Resume")
	p.ResumeLink = s.resumeLink
	return p
}

// AboutPage lists the slideshow images on every call, so images added while the server runs
// show up without a restart.
func (s *Site) AboutPage() *Page {
	p := s.page(AboutTemplate, "About Me")
	p.Images = s.slideshow()
	return p
}

func (s *Site) slideshow() []string {
	images := []string{}
	if s.staticDir == "" {
		return images
	}

	dir := filepath.Join(s.staticDir, "images", "slideshow")
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Could not list slideshow images")
		return images
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		images = append(images, path.Join(SlideshowURL, entry.Name()))
	}
	return images
}

func (s *Site) NotFoundPage() *Page {
	return s.page(NotFoundTemplate, "Not Found")
}

func (s *Site) ErrorPage() *Page {
	return s.page(ErrorTemplate, "Error")
}

// Render executes the page's template into w.
func (s *Site) Render(w io.Writer, p *Page) error {
	if err := s.templates.ExecuteTemplate(w, p.Template, p); err != nil {
		return fmt.Errorf("failed to render %s: %w", p.Template, err)
	}
	return nil
}
