package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Exporter writes the whole site as static HTML files.
type Exporter struct {
	site      *Site
	staticDir string
}

// NewExporter creates an Exporter. When staticDir is not empty its contents are copied to
// static/ in the output.
func NewExporter(site *Site, staticDir string) *Exporter {
	return &Exporter{
		site:      site,
		staticDir: staticDir,
	}
}

// Export renders every page into outDir using the same paths the server routes, each page
// becoming an index.html in its own directory. It returns the number of pages written.
func (e *Exporter) Export(ctx context.Context, outDir string) (int, error) {
	pages, err := e.pages(ctx)
	if err != nil {
		return 0, err
	}

	for file, page := range pages {
		if err := e.write(filepath.Join(outDir, filepath.FromSlash(file)), page); err != nil {
			return 0, err
		}
	}

	if err := e.copyStatic(outDir); err != nil {
		return 0, err
	}

	log.Info().Int("pages", len(pages)).Str("dir", outDir).Msg("Exported site")
	return len(pages), nil
}

// pages maps output paths, relative to the export root, to the pages rendered there.
func (e *Exporter) pages(ctx context.Context) (map[string]*Page, error) {
	index, err := e.site.IndexPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build index page: %w", err)
	}
	blogPage, err := e.site.BlogPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build blog page: %w", err)
	}

	pages := map[string]*Page{
		"index.html":          index,
		"blog/index.html":     blogPage,
		"projects/index.html": e.site.ProjectsPage(),
		"resume/index.html":   e.site.ResumePage(),
		"about/index.html":    e.site.AboutPage(),
		"404.html":            e.site.NotFoundPage(),
	}

	for _, summary := range blogPage.Posts {
		if !exportable(summary.Slug) {
			log.Warn().Str("title", summary.Title).Str("slug", summary.Slug).Msg("Slug does not map to a file path, skipping post")
			continue
		}

		date := summary.Date
		page, err := e.site.PostPage(ctx, date.Year(), int(date.Month()), date.Day(), summary.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to build page for %s: %w", summary.URL, err)
		}
		pages[path.Join(summary.URL, "index.html")[1:]] = page
	}

	return pages, nil
}

// exportable reports whether slug survives path cleaning unchanged. Slugs holding "/" become
// nested directories; empty, "." and ".." segments cannot be written.
func exportable(slug string) bool {
	return slug != "" && path.Clean("/"+slug) == "/"+slug
}

func (e *Exporter) write(file string, page *Page) error {
	var buf bytes.Buffer
	if err := e.site.Render(&buf, page); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", file, err)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", file, err)
	}

	log.Debug().Str("file", file).Msg("Wrote page")
	return nil
}

func (e *Exporter) copyStatic(outDir string) error {
	if e.staticDir == "" {
		return nil
	}

	if _, err := os.Stat(e.staticDir); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("dir", e.staticDir).Msg("Static directory not found, skipping")
		return nil
	}

	if err := os.CopyFS(filepath.Join(outDir, "static"), os.DirFS(e.staticDir)); err != nil {
		return fmt.Errorf("could not copy static files from %s: %w", e.staticDir, err)
	}
	return nil
}
