package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// GetLibraryRoot returns the directory holding the audio library. The user
// settings file wins over the CADENZA_LIBRARY environment variable; without
// either, the OS music folder is used.
func GetLibraryRoot() string {
	if settings, err := LoadUserSettings(); err == nil && settings.LibraryRoot != "" {
		return settings.LibraryRoot
	}

	if customPath := os.Getenv("CADENZA_LIBRARY"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if can't get home dir
		return filepath.Join(".", "music")
	}

	return filepath.Join(homeDir, "Music")
}

// GetPlaylistDir returns the directory exported playlists are written to.
// Resolution order matches GetLibraryRoot: settings file, then the
// CADENZA_PLAYLISTS environment variable, then a folder under the library.
func GetPlaylistDir() string {
	if settings, err := LoadUserSettings(); err == nil && settings.PlaylistDir != "" {
		return settings.PlaylistDir
	}

	if customPath := os.Getenv("CADENZA_PLAYLISTS"); customPath != "" {
		return customPath
	}

	return filepath.Join(GetLibraryRoot(), "Playlists")
}

// GetCatalogWorkers returns the extraction pool size from CATALOG_WORKERS,
// or 0 to let the catalog package pick its default.
func GetCatalogWorkers() int {
	raw := os.Getenv("CATALOG_WORKERS")
	if raw == "" {
		return 0
	}

	workers, err := strconv.Atoi(raw)
	if err != nil || workers < 1 {
		return 0
	}
	return workers
}

// UserSettings represents the user's personal settings
type UserSettings struct {
	LibraryRoot string `json:"libraryRoot"`
	PlaylistDir string `json:"playlistDir"`
}

// SettingsFilePath returns the path to the settings file
func SettingsFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cadenza-settings.json")
}

// LoadUserSettings reads the settings file. A missing file yields empty
// settings rather than an error so callers can fall through to env vars.
func LoadUserSettings() (*UserSettings, error) {
	settingsPath := SettingsFilePath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return &UserSettings{}, nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveUserSettings writes the settings file.
func SaveUserSettings(settings *UserSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(SettingsFilePath(), data, 0644)
}
