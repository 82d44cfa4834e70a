package cmd

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"cadenza/config"
	"cadenza/handlers"
	"cadenza/middleware"
	"cadenza/musicbrainz"
	"cadenza/services"
	"cadenza/websocket"
)

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	jobQueue := services.NewJobQueue(2, hub)
	jobQueue.Start()

	library := services.NewLibraryService()
	playlists := services.NewPlaylistStore()
	mbClient := musicbrainz.NewClient()

	r := NewRouter(jobQueue, hub, library, playlists, mbClient)

	// Start server
	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("Cadenza web server starting on port %s", portStr)
	log.Printf("Library root: %s", config.GetLibraryRoot())
	log.Printf("Playlist directory: %s", config.GetPlaylistDir())
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// NewRouter builds the gin engine with all middleware and routes attached.
// Tests use it to run the real route table against httptest servers.
func NewRouter(jobQueue services.JobQueue, hub websocket.Hub, library services.LibraryService, playlists services.PlaylistStore, mbClient *musicbrainz.Client) *gin.Engine {
	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(jobQueue, hub)
	libraryHandler := handlers.NewLibraryHandler(library)
	playlistHandler := handlers.NewPlaylistHandler(playlists, library)
	searchHandler := handlers.NewSearchHandler(mbClient)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())
	r.Use(middleware.Security())

	// Setup routes
	setupRoutes(r, catalogHandler, libraryHandler, playlistHandler, searchHandler, healthHandler, settingsHandler)

	return r
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, catalogHandler *handlers.CatalogHandler, libraryHandler *handlers.LibraryHandler, playlistHandler *handlers.PlaylistHandler, searchHandler *handlers.SearchHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// MusicBrainz recording search
		apiGroup.GET("/search", searchHandler.Search)

		// Catalog Job Management Endpoints
		catalogsGroup := apiGroup.Group("/catalogs")
		{
			// Queue catalog jobs
			catalogsGroup.POST("", catalogHandler.QueueCatalog)
			catalogsGroup.POST("/export", catalogHandler.QueueExport)

			// Manage catalog jobs
			catalogsGroup.GET("", catalogHandler.GetAllJobs)
			catalogsGroup.GET("/:jobId", catalogHandler.GetJob)
			catalogsGroup.GET("/:jobId/tracks", catalogHandler.GetJobTracks)
			catalogsGroup.DELETE("/:jobId", catalogHandler.CancelJob)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for specific job progress
			wsGroup.GET("/catalogs/:jobId", catalogHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all catalog progress
			wsGroup.GET("/catalogs", catalogHandler.HandleWebSocketAllConnection)
		}

		// Library browsing, streaming and tag editing endpoints
		apiGroup.GET("/library", libraryHandler.ListTracks)
		apiGroup.GET("/library/track/*filepath", libraryHandler.GetTrack)
		apiGroup.GET("/library/stream/*filepath", libraryHandler.StreamTrack)
		apiGroup.GET("/library/cover/*filepath", libraryHandler.CoverArt)
		apiGroup.POST("/library/tags", libraryHandler.UpdateTags)

		// Playlist endpoints
		playlistsGroup := apiGroup.Group("/playlists")
		{
			playlistsGroup.POST("", playlistHandler.Create)
			playlistsGroup.GET("", playlistHandler.List)
			playlistsGroup.POST("/import", playlistHandler.Import)
			playlistsGroup.POST("/entries/:id", playlistHandler.AddEntry)
			playlistsGroup.POST("/remove/:id", playlistHandler.RemoveEntry)
			playlistsGroup.POST("/move/:id", playlistHandler.MoveEntry)
			playlistsGroup.GET("/:id", playlistHandler.Get)
			playlistsGroup.GET("/:id/export", playlistHandler.Export)
			playlistsGroup.DELETE("/:id", playlistHandler.Delete)
		}

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
