package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cadenza/playlist"
	"cadenza/services"
	"cadenza/xspf"
)

// PlaylistHandler handles playlist CRUD, entry editing and XSPF exchange
type PlaylistHandler struct {
	store   services.PlaylistStore
	library services.LibraryService
}

// NewPlaylistHandler creates a new playlist handler
func NewPlaylistHandler(store services.PlaylistStore, library services.LibraryService) *PlaylistHandler {
	return &PlaylistHandler{
		store:   store,
		library: library,
	}
}

// Create adds a new empty playlist
func (h *PlaylistHandler) Create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "title is required",
		})
		return
	}

	view := h.store.Create(req.Title)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Playlist created successfully",
		"playlist": view,
	})
}

// List returns all stored playlists
func (h *PlaylistHandler) List(c *gin.Context) {
	playlists := h.store.List()
	c.JSON(http.StatusOK, gin.H{
		"playlists": playlists,
		"total":     len(playlists),
	})
}

// Get returns a single playlist by ID
func (h *PlaylistHandler) Get(c *gin.Context) {
	view, exists := h.store.Get(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "playlist not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"playlist": view,
	})
}

// Delete removes a playlist by ID
func (h *PlaylistHandler) Delete(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "playlist not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Playlist deleted successfully",
	})
}

// AddEntry appends a track path to a playlist, or inserts it at a position
// when an index is given
func (h *PlaylistHandler) AddEntry(c *gin.Context) {
	var req struct {
		Path  string `json:"path"`
		Index *int   `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is required",
		})
		return
	}

	id := c.Param("id")
	var (
		view services.PlaylistView
		err  error
	)
	if req.Index != nil {
		view, err = h.store.InsertAt(id, *req.Index, req.Path)
	} else {
		view, err = h.store.Append(id, req.Path)
	}
	if err != nil {
		renderStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Entry added successfully",
		"playlist": view,
	})
}

// RemoveEntry removes the entry at a position in a playlist
func (h *PlaylistHandler) RemoveEntry(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.store.RemoveAt(c.Param("id"), req.Index)
	if err != nil {
		renderStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Entry removed successfully",
		"playlist": view,
	})
}

// MoveEntry repositions an entry within a playlist
func (h *PlaylistHandler) MoveEntry(c *gin.Context) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.store.Move(c.Param("id"), req.From, req.To)
	if err != nil {
		renderStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Entry moved successfully",
		"playlist": view,
	})
}

// Import parses an XSPF document from the request body into a new playlist
func (h *PlaylistHandler) Import(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "failed to read request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.store.ImportXSPF(data)
	if err != nil {
		var formatErr *xspf.FormatError
		if errors.As(err, &formatErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid playlist document",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "playlist import failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Playlist imported successfully",
		"playlist": view,
	})
}

// Export serializes a playlist to an XSPF document, annotating entries that
// resolve against the library catalog with title, creator and duration
func (h *PlaylistHandler) Export(c *gin.Context) {
	data, err := h.store.ExportXSPF(c.Param("id"), xspf.Resolver(h.library.Resolve))
	if err != nil {
		renderStoreError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/xspf+xml", data)
}

func renderStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPlaylistNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "playlist not found",
		})
	case errors.Is(err, playlist.ErrIndexOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "index out of range",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "playlist operation failed",
			"details": err.Error(),
		})
	}
}
