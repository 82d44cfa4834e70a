// Package playlist models an ordered, mutable list of track references.
// Entries reference tracks by path only; the metadata lives with whoever
// cataloged the files, so several playlists can point at the same track
// without copying it.
package playlist

import (
	"errors"
	"fmt"
	"time"

	"cadenza/types"
)

// ErrIndexOutOfRange is returned by position-taking operations when the
// index does not exist in the playlist.
var ErrIndexOutOfRange = errors.New("index out of range")

// Entry is one slot in a playlist. The same path may appear in any number
// of slots.
type Entry struct {
	TrackPath string
}

// Playlist is an ordered sequence of entries plus list-level metadata.
// Mutations take effect immediately. A Playlist is not safe for concurrent
// use; callers that share one must serialize access.
type Playlist struct {
	Title     string
	CreatedAt time.Time

	entries []Entry
}

// New creates an empty playlist stamped with the current time.
func New(title string) *Playlist {
	return &Playlist{Title: title, CreatedAt: time.Now().UTC()}
}

// Len reports the number of entries.
func (p *Playlist) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the entry sequence in order.
func (p *Playlist) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// At returns the entry at index.
func (p *Playlist) At(index int) (Entry, error) {
	if index < 0 || index >= len(p.entries) {
		return Entry{}, fmt.Errorf("entry %d of %d: %w", index, len(p.entries), ErrIndexOutOfRange)
	}
	return p.entries[index], nil
}

// Append adds a track reference at the end.
func (p *Playlist) Append(trackPath string) {
	p.entries = append(p.entries, Entry{TrackPath: trackPath})
}

// InsertAt places a track reference at index, shifting later entries back.
// Index may equal Len, which appends.
func (p *Playlist) InsertAt(index int, trackPath string) error {
	if index < 0 || index > len(p.entries) {
		return fmt.Errorf("insert at %d of %d: %w", index, len(p.entries), ErrIndexOutOfRange)
	}
	p.entries = append(p.entries, Entry{})
	copy(p.entries[index+1:], p.entries[index:])
	p.entries[index] = Entry{TrackPath: trackPath}
	return nil
}

// RemoveAt deletes and returns the entry at index.
func (p *Playlist) RemoveAt(index int) (Entry, error) {
	if index < 0 || index >= len(p.entries) {
		return Entry{}, fmt.Errorf("remove at %d of %d: %w", index, len(p.entries), ErrIndexOutOfRange)
	}
	removed := p.entries[index]
	p.entries = append(p.entries[:index], p.entries[index+1:]...)
	return removed, nil
}

// MoveEntry relocates the entry at from so it ends up at index to. The
// relative order of every other entry is preserved.
func (p *Playlist) MoveEntry(from, to int) error {
	n := len(p.entries)
	if from < 0 || from >= n {
		return fmt.Errorf("move from %d of %d: %w", from, n, ErrIndexOutOfRange)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("move to %d of %d: %w", to, n, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}

	moved := p.entries[from]
	p.entries = append(p.entries[:from], p.entries[from+1:]...)
	p.entries = append(p.entries, Entry{})
	copy(p.entries[to+1:], p.entries[to:])
	p.entries[to] = moved
	return nil
}

// Clear removes every entry, keeping title and creation time.
func (p *Playlist) Clear() {
	p.entries = p.entries[:0]
}

// TotalDuration sums the durations of the entries that resolve to a known
// track. Unresolvable entries contribute nothing.
func (p *Playlist) TotalDuration(resolve func(path string) (*types.TrackRecord, bool)) time.Duration {
	if resolve == nil {
		return 0
	}
	var seconds int
	for _, entry := range p.entries {
		if record, ok := resolve(entry.TrackPath); ok {
			seconds += record.DurationSeconds
		}
	}
	return time.Duration(seconds) * time.Second
}
