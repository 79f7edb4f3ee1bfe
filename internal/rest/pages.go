package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/website/blog/domain"
	"github.com/dfryer1193/website/internal/site"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type pagesHandler struct {
	site *site.Site
}

func (h *pagesHandler) render(c *gin.Context, status int, page *site.Page) {
	c.HTML(status, page.Template, page)
}

// fail renders the not found page for domain.ErrPostNotFound and the error page otherwise.
func (h *pagesHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrPostNotFound) {
		h.NotFound(c)
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to build page")
	h.render(c, http.StatusInternalServerError, h.site.ErrorPage())
}

func (h *pagesHandler) Index(c *gin.Context) {
	page, err := h.site.IndexPage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, page)
}

func (h *pagesHandler) Blog(c *gin.Context) {
	page, err := h.site.BlogPage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, page)
}

func (h *pagesHandler) Search(c *gin.Context) {
	page, err := h.site.SearchPage(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, page)
}

func (h *pagesHandler) Post(c *gin.Context) {
	year, month, day, ok := dateParams(c)
	if !ok {
		h.NotFound(c)
		return
	}

	page, err := h.site.PostPage(c.Request.Context(), year, month, day, slugParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, page)
}

func (h *pagesHandler) Projects(c *gin.Context) {
	h.render(c, http.StatusOK, h.site.ProjectsPage())
}

func (h *pagesHandler) Resume(c *gin.Context) {
	h.render(c, http.StatusOK, h.site.ResumePage())
}

func (h *pagesHandler) About(c *gin.Context) {
	h.render(c, http.StatusOK, h.site.AboutPage())
}

func (h *pagesHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, h.site.NotFoundPage())
}
