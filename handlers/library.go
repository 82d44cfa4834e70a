package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cadenza/artwork"
	"cadenza/audio"
	"cadenza/config"
	"cadenza/services"
	"cadenza/tagger"
)

// LibraryHandler handles library browsing, streaming and tag editing endpoints
type LibraryHandler struct {
	library services.LibraryService
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(ls services.LibraryService) *LibraryHandler {
	return &LibraryHandler{
		library: ls,
	}
}

// ListTracks catalogs the configured library root and returns its tracks
func (h *LibraryHandler) ListTracks(c *gin.Context) {
	result, err := h.library.ListTracks(c.Request.Context())
	if err != nil {
		log.Printf("Error cataloging library: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to catalog library",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"root":   config.GetLibraryRoot(),
		"tracks": result.Tracks,
		"count":  len(result.Tracks),
		"report": result.Report(),
	})
}

// GetTrack extracts and returns the metadata of a single library file
func (h *LibraryHandler) GetTrack(c *gin.Context) {
	requestedPath := strings.TrimPrefix(c.Param("filepath"), "/")

	fullPath, ok := h.resolveLibraryPath(c, requestedPath)
	if !ok {
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "file not found",
				"path":  requestedPath,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "file access error",
			"details": err.Error(),
		})
		return
	}
	if info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is a directory, not a file",
		})
		return
	}

	record, err := audio.Extract(fullPath, audio.Classify(fullPath))
	if err != nil {
		renderExtractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"track": record,
	})
}

// StreamTrack streams an audio file with support for range requests
func (h *LibraryHandler) StreamTrack(c *gin.Context) {
	requestedPath := strings.TrimPrefix(c.Param("filepath"), "/")

	// Only allow audio files (FLAC and MP3)
	ext := strings.ToLower(filepath.Ext(requestedPath))
	if ext != ".flac" && ext != ".mp3" {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "file extension not allowed",
			"details": "only .flac and .mp3 files can be streamed",
		})
		return
	}

	fullPath, ok := h.resolveLibraryPath(c, requestedPath)
	if !ok {
		return
	}

	// Check if file exists and is readable
	fileInfo, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "file not found",
				"path":  requestedPath,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "file access error",
			"details": err.Error(),
		})
		return
	}

	// Ensure it's a file, not a directory
	if fileInfo.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is a directory, not a file",
		})
		return
	}

	// Open the file
	file, err := os.Open(fullPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to open file",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	// Set appropriate headers for audio streaming
	c.Header("Content-Type", h.library.ContentType(requestedPath))
	c.Header("Content-Length", strconv.FormatInt(fileInfo.Size(), 10))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")

	// Handle range requests for seeking
	rangeHeader := c.GetHeader("Range")
	if rangeHeader != "" {
		h.handleRangeRequest(c, file, fileInfo.Size(), rangeHeader, requestedPath)
		return
	}

	// Stream the entire file
	c.Status(http.StatusOK)
	_, err = io.Copy(c.Writer, file)
	if err != nil {
		log.Printf("Error streaming file %s: %v", requestedPath, err)
	}
}

// handleRangeRequest handles HTTP range requests for efficient seeking
func (h *LibraryHandler) handleRangeRequest(c *gin.Context, file *os.File, fileSize int64, rangeHeader string, filePath string) {
	// Parse range header (e.g., "bytes=0-1023" or "bytes=1024-")
	if !strings.HasPrefix(rangeHeader, "bytes=") {
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	rangeSpec := strings.TrimPrefix(rangeHeader, "bytes=")
	ranges := strings.Split(rangeSpec, "-")

	if len(ranges) != 2 {
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	var start, end int64
	var err error

	// Parse start position
	if ranges[0] != "" {
		start, err = strconv.ParseInt(ranges[0], 10, 64)
		if err != nil || start < 0 {
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
	}

	// Parse end position
	if ranges[1] != "" {
		end, err = strconv.ParseInt(ranges[1], 10, 64)
		if err != nil || end < start {
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
	} else {
		end = fileSize - 1
	}

	// Validate range bounds
	if start >= fileSize {
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	if end >= fileSize {
		end = fileSize - 1
	}

	contentLength := end - start + 1

	// Seek to start position
	_, err = file.Seek(start, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to seek file",
		})
		return
	}

	// Set partial content headers
	c.Header("Content-Type", h.library.ContentType(filePath))
	c.Header("Content-Length", strconv.FormatInt(contentLength, 10))
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Status(http.StatusPartialContent)

	// Copy only the requested range
	_, err = io.CopyN(c.Writer, file, contentLength)
	if err != nil {
		log.Printf("Error streaming range %d-%d: %v", start, end, err)
	}
}

// CoverArt returns the embedded cover image of a library file, optionally
// scaled down to fit a square bounding box given by the size query parameter
func (h *LibraryHandler) CoverArt(c *gin.Context) {
	requestedPath := strings.TrimPrefix(c.Param("filepath"), "/")

	fullPath, ok := h.resolveLibraryPath(c, requestedPath)
	if !ok {
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "size must be a non-negative integer",
			})
			return
		}
		size = parsed
	}

	pic, err := h.library.CoverArt(fullPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "no cover art found",
			"details": err.Error(),
		})
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")

	if size > 0 {
		var buf bytes.Buffer
		if err := artwork.ExportJPEG(&buf, pic, size); err != nil {
			log.Printf("Error scaling cover art for %s: %v", requestedPath, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to scale cover art",
				"details": err.Error(),
			})
			return
		}
		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
		return
	}

	c.Data(http.StatusOK, pic.MIMEType, pic.Data)
}

// TagUpdateRequest is the body of a tag edit. Pointer fields distinguish
// "set to this value" from "leave unchanged"; Clear lists field names whose
// frames should be deleted outright.
type TagUpdateRequest struct {
	Path        string   `json:"path"`
	Title       *string  `json:"title"`
	Artist      *string  `json:"artist"`
	Album       *string  `json:"album"`
	Genre       *string  `json:"genre"`
	Year        *int     `json:"year"`
	TrackNumber *int     `json:"trackNumber"`
	Clear       []string `json:"clear"`
	RemoveCover bool     `json:"removeCover"`
}

func (r TagUpdateRequest) tagUpdate() (tagger.TagUpdate, error) {
	var update tagger.TagUpdate
	if r.Title != nil {
		update.Title = tagger.Set(*r.Title)
	}
	if r.Artist != nil {
		update.Artist = tagger.Set(*r.Artist)
	}
	if r.Album != nil {
		update.Album = tagger.Set(*r.Album)
	}
	if r.Genre != nil {
		update.Genre = tagger.Set(*r.Genre)
	}
	if r.Year != nil {
		update.Year = tagger.Set(strconv.Itoa(*r.Year))
	}
	if r.TrackNumber != nil {
		update.TrackNumber = tagger.Set(strconv.Itoa(*r.TrackNumber))
	}

	for _, name := range r.Clear {
		switch strings.ToLower(name) {
		case "title":
			update.Title = tagger.Clear()
		case "artist":
			update.Artist = tagger.Clear()
		case "album":
			update.Album = tagger.Clear()
		case "genre":
			update.Genre = tagger.Clear()
		case "year":
			update.Year = tagger.Clear()
		case "track", "tracknumber":
			update.TrackNumber = tagger.Clear()
		default:
			return update, fmt.Errorf("unknown tag field %q", name)
		}
	}

	update.RemovePicture = r.RemoveCover
	return update, nil
}

// UpdateTags rewrites the tags of a library file in place
func (h *LibraryHandler) UpdateTags(c *gin.Context) {
	var req TagUpdateRequest
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

	fullPath, ok := h.resolveLibraryPath(c, req.Path)
	if !ok {
		return
	}

	update, err := req.tagUpdate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid tag update",
			"details": err.Error(),
		})
		return
	}

	if err := tagger.WriteTags(fullPath, update); err != nil {
		renderExtractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tags updated successfully",
		"path":    req.Path,
	})
}

// resolveLibraryPath validates a client-supplied relative path and resolves
// it to an absolute path inside the configured library root. On failure it
// writes the error response and returns ok=false.
func (h *LibraryHandler) resolveLibraryPath(c *gin.Context, requestedPath string) (string, bool) {
	// Security: Validate file path
	if err := h.library.ValidateFilePath(requestedPath); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "path security violation",
			"details": err.Error(),
		})
		return "", false
	}

	libraryRoot := config.GetLibraryRoot()
	fullPath := filepath.Join(libraryRoot, requestedPath)

	// Security: Ensure resolved path is within the library root
	absRoot, err := filepath.Abs(libraryRoot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "server configuration error",
		})
		return "", false
	}

	absRequestPath, err := filepath.Abs(fullPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid file path",
		})
		return "", false
	}

	if absRequestPath != absRoot && !strings.HasPrefix(absRequestPath, absRoot+string(os.PathSeparator)) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "path traversal not allowed",
		})
		return "", false
	}

	return absRequestPath, true
}

func renderExtractionError(c *gin.Context, err error) {
	switch audio.KindOf(err) {
	case audio.KindNotAudio:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "not a supported audio file",
			"details": err.Error(),
		})
	case audio.KindCorrupt:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "audio file is corrupt",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "metadata operation failed",
			"details": err.Error(),
		})
	}
}
