package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cadenza/scanner"
	"cadenza/services"
	"cadenza/websocket"
)

// CatalogHandler handles catalog job management endpoints
type CatalogHandler struct {
	jobQueue services.JobQueue
	hub      websocket.Hub
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(jq services.JobQueue, hub websocket.Hub) *CatalogHandler {
	return &CatalogHandler{
		jobQueue: jq,
		hub:      hub,
	}
}

// CatalogRequest is the body of a catalog or export job submission.
type CatalogRequest struct {
	Root           string   `json:"root"`
	MaxDepth       int      `json:"maxDepth"`
	Extensions     []string `json:"extensions"`
	FollowSymlinks bool     `json:"followSymlinks"`
	IncludeHidden  bool     `json:"includeHidden"`
	Title          string   `json:"title"`
	OutputPath     string   `json:"outputPath"`
}

func (r CatalogRequest) scanOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.MaxDepth = r.MaxDepth
	opts.FollowSymlinks = r.FollowSymlinks
	opts.IncludeHidden = r.IncludeHidden
	if len(r.Extensions) > 0 {
		opts.Extensions = r.Extensions
	}
	return opts
}

// QueueCatalog queues a scan-and-extract job for a directory tree
func (h *CatalogHandler) QueueCatalog(c *gin.Context) {
	var req CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Root == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "root directory is required",
		})
		return
	}

	job := h.jobQueue.EnqueueCatalog(req.Root, req.scanOptions())
	c.JSON(http.StatusCreated, gin.H{
		"message": "Catalog job queued successfully",
		"job":     job,
	})
}

// QueueExport queues a catalog job that writes its result to an XSPF file
func (h *CatalogHandler) QueueExport(c *gin.Context) {
	var req CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Root == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "root directory is required",
		})
		return
	}

	job := h.jobQueue.EnqueueExport(req.Root, req.Title, req.OutputPath, req.scanOptions())
	c.JSON(http.StatusCreated, gin.H{
		"message": "Export job queued successfully",
		"job":     job,
	})
}

// GetAllJobs returns all catalog jobs
func (h *CatalogHandler) GetAllJobs(c *gin.Context) {
	jobs := h.jobQueue.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific catalog job by ID
func (h *CatalogHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, exists := h.jobQueue.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// GetJobTracks returns the track records built by a finished job
func (h *CatalogHandler) GetJobTracks(c *gin.Context) {
	jobID := c.Param("jobId")
	if _, exists := h.jobQueue.GetJob(jobID); !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	result, ok := h.jobQueue.Result(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no catalog result for job (still queued or processing)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks": result.Tracks,
		"count":  len(result.Tracks),
	})
}

// CancelJob cancels a catalog job
func (h *CatalogHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("jobId")
	cancelled := h.jobQueue.CancelJob(jobID)
	if !cancelled {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job cannot be cancelled (not found or already finished)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "job cancelled successfully",
	})
}

// HandleWebSocketConnection handles WebSocket connections for specific job progress
func (h *CatalogHandler) HandleWebSocketConnection(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job ID is required"})
		return
	}

	// Check if job exists
	_, exists := h.jobQueue.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, jobID)
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections for all job progress
func (h *CatalogHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}
