package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalFLAC is a metadata-only FLAC stream: marker plus a single
// STREAMINFO block flagged last. 44100 Hz, 2 channels, 16 bps, ten seconds.
func minimalFLAC() []byte {
	return []byte("fLaC" +
		"\x80\x00\x00\x22" +
		"\x10\x00\x10\x00" +
		"\x00\x00\x00\x00\x00\x00" +
		"\x0a\xc4\x42\xf0" +
		"\x00\x06\xba\xa8" +
		"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
}

// writeLibrary creates tagless FLAC files under dir and returns their
// absolute paths in the order given.
func writeLibrary(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, minimalFLAC(), 0644))
		paths = append(paths, full)
	}
	return paths
}
