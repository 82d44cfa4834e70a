// Package scanner walks a directory tree and classifies the audio files it
// finds. The walk is lazy: entries stream over a channel in deterministic
// lexicographic order while per-path problems are collected instead of
// aborting the traversal.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cadenza/audio"
	"cadenza/types"
)

// ErrSymlinkCycle marks a directory reached twice through symlinks.
var ErrSymlinkCycle = errors.New("symlink cycle detected")

// PathError records a single path the scanner could not process. The walk
// continues past it.
type PathError struct {
	Path string
	Err  error
}

func (e PathError) Error() string {
	return fmt.Sprintf("scan: %s: %v", e.Path, e.Err)
}

func (e PathError) Unwrap() error {
	return e.Err
}

// Options configure a scan. The zero value means unlimited depth, the
// default audio extensions, no symlink traversal, and hidden entries
// skipped.
type Options struct {
	// MaxDepth bounds how deep below the root files are picked up.
	// 0 means unlimited; 1 restricts the scan to the root's immediate
	// entries.
	MaxDepth int
	// Extensions is the allow-list of file extensions, matched without
	// case sensitivity and with or without the leading dot. Nil selects
	// the defaults.
	Extensions []string
	// FollowSymlinks descends into symlinked directories and picks up
	// symlinked files. Cycles are detected and recorded as path errors.
	// When false, symlink entries are skipped entirely.
	FollowSymlinks bool
	// IncludeHidden also visits dot-prefixed files and directories.
	IncludeHidden bool
}

// DefaultOptions returns the options used when callers pass the zero value.
func DefaultOptions() Options {
	return Options{Extensions: []string{".mp3", ".flac"}}
}

func (o Options) withDefaults() Options {
	if o.Extensions == nil {
		o.Extensions = DefaultOptions().Extensions
	}
	return o
}

// Scan is one in-flight traversal. It is finite and not restartable; run
// Start again to walk the tree anew.
type Scan struct {
	root    string
	opts    Options
	entries chan types.ScanEntry
	visited map[string]bool

	mu   sync.Mutex
	errs []PathError
}

// Start validates the root and begins walking it in the background. An
// unreadable or non-directory root fails here; everything after that is
// reported through Errors. Cancelling the context stops the walk and closes
// the entry channel without leaking the goroutine.
func Start(ctx context.Context, root string, opts Options) (*Scan, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", abs)
	}

	s := &Scan{
		root:    abs,
		opts:    opts.withDefaults(),
		entries: make(chan types.ScanEntry, 64),
		visited: make(map[string]bool),
	}
	go func() {
		defer close(s.entries)
		s.walk(ctx, abs, 1)
	}()
	return s, nil
}

// Entries streams the classified files as the walk discovers them. The
// channel closes when the tree is exhausted or the context is cancelled.
func (s *Scan) Entries() <-chan types.ScanEntry {
	return s.entries
}

// Errors returns the per-path failures collected so far. The list is
// complete once Entries has closed.
func (s *Scan) Errors() []PathError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PathError, len(s.errs))
	copy(out, s.errs)
	return out
}

// Root returns the absolute path the scan started from.
func (s *Scan) Root() string {
	return s.root
}

func (s *Scan) record(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, PathError{Path: path, Err: err})
}

// walk visits dir, whose direct entries sit at the given depth. os.ReadDir
// returns entries sorted by name, which is what makes repeated scans of an
// unchanged tree deterministic.
func (s *Scan) walk(ctx context.Context, dir string, depth int) {
	if s.opts.FollowSymlinks {
		canonical, err := filepath.EvalSymlinks(dir)
		if err != nil {
			s.record(dir, err)
			return
		}
		if s.visited[canonical] {
			s.record(dir, ErrSymlinkCycle)
			return
		}
		s.visited[canonical] = true
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		s.record(dir, err)
		return
	}

	for _, dirent := range dirents {
		if ctx.Err() != nil {
			return
		}

		name := dirent.Name()
		if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		isDir := dirent.IsDir()
		var size int64
		if dirent.Type()&fs.ModeSymlink != 0 {
			if !s.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				s.record(path, err)
				continue
			}
			isDir = target.IsDir()
			size = target.Size()
		} else if !isDir {
			info, err := dirent.Info()
			if err != nil {
				s.record(path, err)
				continue
			}
			size = info.Size()
		}

		if isDir {
			if s.opts.MaxDepth == 0 || depth < s.opts.MaxDepth {
				s.walk(ctx, path, depth+1)
			}
			continue
		}

		if !matchExt(name, s.opts.Extensions) {
			continue
		}

		entry := types.ScanEntry{
			Path:      path,
			Format:    audio.Classify(path),
			SizeBytes: size,
		}
		select {
		case s.entries <- entry:
		case <-ctx.Done():
			return
		}
	}
}

func matchExt(name string, allowed []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, a := range allowed {
		if strings.EqualFold(ext, strings.TrimPrefix(a, ".")) {
			return true
		}
	}
	return false
}
