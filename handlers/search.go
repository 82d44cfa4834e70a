package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cadenza/musicbrainz"
)

// SearchHandler handles recording lookup endpoints
type SearchHandler struct {
	client *musicbrainz.Client
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client *musicbrainz.Client) *SearchHandler {
	return &SearchHandler{client: client}
}

// Search looks up recordings on MusicBrainz by title and optional artist
func (h *SearchHandler) Search(c *gin.Context) {
	artist := c.Query("artist")
	title := c.Query("title")

	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'title' is required",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	recordings, err := h.client.LookupRecording(c.Request.Context(), artist, title, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "recording lookup failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"artist":  artist,
		"title":   title,
		"results": recordings,
	})
}
