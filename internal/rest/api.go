package rest

import (
	"path/filepath"

	"github.com/dfryer1193/website/internal/middleware"
	"github.com/dfryer1193/website/internal/site"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine serving the site pages, the JSON API and static files.
func NewRouter(s *site.Site, posts site.PostReader, staticDir string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	router.SetHTMLTemplate(s.HTMLTemplates())

	if staticDir != "" {
		router.Static("/static", staticDir)
		router.StaticFile("/robots.txt", filepath.Join(staticDir, "robots.txt"))
		router.StaticFile("/favicon.ico", filepath.Join(staticDir, "images", "favicon.ico"))
	}

	NewPages(router, s)
	NewApi(router, posts)

	return router
}

func NewApi(router *gin.Engine, posts site.PostReader) {
	h := &postsHandler{posts: posts}

	postsV1 := router.Group("posts/v1")
	{
		postsV1.GET("/", h.GetPosts)
		postsV1.GET("/search", h.SearchPosts)
		postsV1.GET("/:year/:month/:day/*slug", h.GetPost)
	}
}

func NewPages(router *gin.Engine, s *site.Site) {
	h := &pagesHandler{site: s}

	router.GET("/", h.Index)
	router.GET("/projects", h.Projects)
	router.GET("/resume", h.Resume)
	router.GET("/about", h.About)

	blog := router.Group("blog")
	{
		blog.GET("", h.Blog)
		blog.GET("/search", h.Search)
		blog.GET("/:year/:month/:day/*slug", h.Post)
	}

	router.NoRoute(h.NotFound)
}
