package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"cadenza/config"
)

// SettingsHandler handles settings-related endpoints
type SettingsHandler struct{}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

// Settings represents the user settings
type Settings struct {
	LibraryRoot string `json:"libraryRoot"`
	PlaylistDir string `json:"playlistDir"`
}

// validatePath validates that the path exists and is writable
func validatePath(path string) error {
	// Check if path exists
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Try to create the directory
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		} else {
			return err
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	// Test write permissions by creating a temporary file
	testFile := filepath.Join(path, ".cadenza-write-test")
	file, err := os.Create(testFile)
	if err != nil {
		return err
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

// GetSettings returns the effective settings after applying the settings
// file, environment variables and defaults
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, Settings{
		LibraryRoot: config.GetLibraryRoot(),
		PlaylistDir: config.GetPlaylistDir(),
	})
}

// UpdateSettings updates the user settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var newSettings Settings
	if err := c.ShouldBindJSON(&newSettings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid settings format",
			"details": err.Error(),
		})
		return
	}

	if newSettings.LibraryRoot == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "libraryRoot is required",
		})
		return
	}

	// Validate the library root path
	if err := validatePath(newSettings.LibraryRoot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid library root",
			"details": err.Error(),
		})
		return
	}

	// Playlist directory is optional; validate only when set
	if newSettings.PlaylistDir != "" {
		if err := validatePath(newSettings.PlaylistDir); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid playlist directory",
				"details": err.Error(),
			})
			return
		}
	}

	// Save the settings
	userSettings := config.UserSettings{
		LibraryRoot: newSettings.LibraryRoot,
		PlaylistDir: newSettings.PlaylistDir,
	}
	if err := config.SaveUserSettings(&userSettings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": newSettings,
	})
}
