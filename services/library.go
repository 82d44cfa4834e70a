package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"cadenza/audio"
	"cadenza/catalog"
	"cadenza/config"
	"cadenza/scanner"
	"cadenza/types"
)

// LibraryService interface defines methods for serving the configured
// audio library
type LibraryService interface {
	ListTracks(ctx context.Context) (*catalog.Result, error)
	Resolve(path string) (*types.TrackRecord, bool)
	ValidateFilePath(path string) error
	ContentType(path string) string
	CoverArt(path string) (*types.Picture, error)
}

// libraryService implements the LibraryService interface
type libraryService struct {
	builder *catalog.Builder

	mu     sync.RWMutex
	byPath map[string]*types.TrackRecord
}

// NewLibraryService creates a new library service
func NewLibraryService() LibraryService {
	return &libraryService{
		builder: catalog.NewBuilder(catalog.Options{Workers: config.GetCatalogWorkers()}),
		byPath:  make(map[string]*types.TrackRecord),
	}
}

// ListTracks catalogs the configured library root synchronously and caches
// the records by absolute path for later lookups.
func (ls *libraryService) ListTracks(ctx context.Context) (*catalog.Result, error) {
	result, err := ls.builder.Build(ctx, config.GetLibraryRoot(), scanner.DefaultOptions())
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]*types.TrackRecord, len(result.Tracks))
	for i := range result.Tracks {
		byPath[result.Tracks[i].Path] = &result.Tracks[i]
	}

	ls.mu.Lock()
	ls.byPath = byPath
	ls.mu.Unlock()

	return result, nil
}

// Resolve returns the cached record for an absolute library path. The cache
// reflects the last ListTracks call; an unknown path reports false.
func (ls *libraryService) Resolve(path string) (*types.TrackRecord, bool) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	record, ok := ls.byPath[path]
	return record, ok
}

// ValidateFilePath checks for path traversal attempts and other security issues
func (ls *libraryService) ValidateFilePath(path string) error {
	// Check for path traversal attempts
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Check for absolute paths
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute paths not allowed")
	}

	// Check for empty path
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path not allowed")
	}

	return nil
}

// ContentType returns the MIME type streamed for a library path.
func (ls *libraryService) ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return types.FormatFLAC.ContentType()
	case ".mp3":
		return types.FormatMP3.ContentType()
	default:
		return types.FormatUnsupported.ContentType()
	}
}

// CoverArt extracts the embedded picture from an audio file.
func (ls *libraryService) CoverArt(path string) (*types.Picture, error) {
	record, err := audio.Extract(path, audio.Classify(path))
	if err != nil {
		return nil, err
	}

	if !record.HasCover() {
		return nil, fmt.Errorf("no embedded cover art in %s", filepath.Base(path))
	}

	return record.CoverArt, nil
}
