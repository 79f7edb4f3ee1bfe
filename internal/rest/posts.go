package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dfryer1193/website/api"
	"github.com/dfryer1193/website/blog/domain"
	"github.com/dfryer1193/website/internal/site"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type postsHandler struct {
	posts site.PostReader
}

// GetPosts lists post summaries, newest first. ?limit=N keeps the N most recent.
func (h *postsHandler) GetPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, api.Error{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	summaries, err := h.posts.Summaries(c.Request.Context(), limit)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewSummaryList("", summaries))
}

func (h *postsHandler) SearchPosts(c *gin.Context) {
	query := c.Query("q")

	results, err := h.posts.Search(c.Request.Context(), query)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewSummaryList(query, results))
}

func (h *postsHandler) GetPost(c *gin.Context) {
	year, month, day, ok := dateParams(c)
	if !ok {
		c.JSON(http.StatusNotFound, api.Error{Error: domain.ErrPostNotFound.Error()})
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), year, month, day, slugParam(c))
	if errors.Is(err, domain.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, api.Error{Error: err.Error()})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPost(post))
}

func internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, api.Error{Error: "internal server error"})
}

// dateParams reads the year, month and day path parameters. Anything that is not a plain
// integer is rejected; calendar validity is left to the service.
func dateParams(c *gin.Context) (year, month, day int, ok bool) {
	var err error
	if year, err = strconv.Atoi(c.Param("year")); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(c.Param("month")); err != nil {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(c.Param("day")); err != nil {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// slugParam reads the catch-all slug parameter. Slugs come from titles verbatim and may
// contain '/'.
func slugParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("slug"), "/")
}
