package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cadenza/playlist"
	"cadenza/xspf"
)

// ErrPlaylistNotFound is returned when a playlist ID has no entry in the store.
var ErrPlaylistNotFound = errors.New("playlist not found")

// PlaylistView is the wire representation of a stored playlist.
type PlaylistView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Entries   []string  `json:"entries"`
}

// PlaylistStore interface defines methods for managing in-memory playlists
type PlaylistStore interface {
	Create(title string) PlaylistView
	Get(id string) (PlaylistView, bool)
	List() []PlaylistView
	Delete(id string) bool
	Append(id, trackPath string) (PlaylistView, error)
	InsertAt(id string, index int, trackPath string) (PlaylistView, error)
	RemoveAt(id string, index int) (PlaylistView, error)
	Move(id string, from, to int) (PlaylistView, error)
	ImportXSPF(data []byte) (PlaylistView, error)
	ExportXSPF(id string, resolve xspf.Resolver) ([]byte, error)
}

// playlistStore guards a map of playlists with a single lock; the playlist
// model itself is not safe for concurrent use.
type playlistStore struct {
	mu        sync.RWMutex
	playlists map[string]*playlist.Playlist
}

// NewPlaylistStore creates a new in-memory playlist store
func NewPlaylistStore() PlaylistStore {
	return &playlistStore{
		playlists: make(map[string]*playlist.Playlist),
	}
}

// Create adds a new empty playlist and returns its view.
func (ps *playlistStore) Create(title string) PlaylistView {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	id := uuid.New().String()
	ps.playlists[id] = playlist.New(title)
	return ps.view(id)
}

// Get returns the view of one playlist.
func (ps *playlistStore) Get(id string) (PlaylistView, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if _, ok := ps.playlists[id]; !ok {
		return PlaylistView{}, false
	}
	return ps.view(id), true
}

// List returns views of every stored playlist.
func (ps *playlistStore) List() []PlaylistView {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	views := make([]PlaylistView, 0, len(ps.playlists))
	for id := range ps.playlists {
		views = append(views, ps.view(id))
	}
	return views
}

// Delete removes a playlist, reporting whether it existed.
func (ps *playlistStore) Delete(id string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.playlists[id]; !ok {
		return false
	}
	delete(ps.playlists, id)
	return true
}

// Append adds a track path to the end of a playlist.
func (ps *playlistStore) Append(id, trackPath string) (PlaylistView, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	pl, ok := ps.playlists[id]
	if !ok {
		return PlaylistView{}, ErrPlaylistNotFound
	}

	pl.Append(trackPath)
	return ps.view(id), nil
}

// InsertAt adds a track path at a position in a playlist.
func (ps *playlistStore) InsertAt(id string, index int, trackPath string) (PlaylistView, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	pl, ok := ps.playlists[id]
	if !ok {
		return PlaylistView{}, ErrPlaylistNotFound
	}

	if err := pl.InsertAt(index, trackPath); err != nil {
		return PlaylistView{}, err
	}
	return ps.view(id), nil
}

// RemoveAt removes the entry at a position in a playlist.
func (ps *playlistStore) RemoveAt(id string, index int) (PlaylistView, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	pl, ok := ps.playlists[id]
	if !ok {
		return PlaylistView{}, ErrPlaylistNotFound
	}

	if _, err := pl.RemoveAt(index); err != nil {
		return PlaylistView{}, err
	}
	return ps.view(id), nil
}

// Move repositions an entry within a playlist.
func (ps *playlistStore) Move(id string, from, to int) (PlaylistView, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	pl, ok := ps.playlists[id]
	if !ok {
		return PlaylistView{}, ErrPlaylistNotFound
	}

	if err := pl.MoveEntry(from, to); err != nil {
		return PlaylistView{}, err
	}
	return ps.view(id), nil
}

// ImportXSPF parses an XSPF document and stores it as a new playlist.
func (ps *playlistStore) ImportXSPF(data []byte) (PlaylistView, error) {
	pl, err := xspf.Parse(data)
	if err != nil {
		return PlaylistView{}, fmt.Errorf("import playlist: %w", err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	id := uuid.New().String()
	ps.playlists[id] = pl
	return ps.view(id), nil
}

// ExportXSPF serializes a stored playlist, filling display fields through
// the resolver.
func (ps *playlistStore) ExportXSPF(id string, resolve xspf.Resolver) ([]byte, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	pl, ok := ps.playlists[id]
	if !ok {
		return nil, ErrPlaylistNotFound
	}

	return xspf.Serialize(pl, resolve)
}

// view snapshots one playlist. Callers must hold at least the read lock.
func (ps *playlistStore) view(id string) PlaylistView {
	pl := ps.playlists[id]
	entries := pl.Entries()

	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.TrackPath
	}

	return PlaylistView{
		ID:        id,
		Title:     pl.Title,
		CreatedAt: pl.CreatedAt,
		Entries:   paths,
	}
}
