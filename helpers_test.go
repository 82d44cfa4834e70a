package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cadenza/cmd"
	"cadenza/musicbrainz"
	"cadenza/services"
	"cadenza/types"
	"cadenza/websocket"
)

// TestHelper provides common utilities for API integration tests. Each
// helper runs the real route table against a throwaway library root and
// playlist directory.
type TestHelper struct {
	Server      *httptest.Server
	MusicBrainz *httptest.Server
	LibraryDir  string
	PlaylistDir string
	JobQueue    services.JobQueue
}

// NewTestHelper creates a test environment with a running server and a
// small seeded library: one fully tagged MP3 and one untagged FLAC.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	gin.SetMode(gin.TestMode)

	libraryDir := t.TempDir()
	playlistDir := t.TempDir()

	// Point HOME at an empty directory so a developer's settings file
	// cannot leak into the test environment.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CADENZA_LIBRARY", libraryDir)
	t.Setenv("CADENZA_PLAYLISTS", playlistDir)

	hub := websocket.NewHub()
	go hub.Run()

	jobQueue := services.NewJobQueue(2, hub)
	jobQueue.Start()

	library := services.NewLibraryService()
	playlists := services.NewPlaylistStore()

	mbServer := newMusicBrainzStub()
	mbClient := musicbrainz.NewClient()
	mbClient.BaseURL = mbServer.URL

	router := cmd.NewRouter(jobQueue, hub, library, playlists, mbClient)

	helper := &TestHelper{
		Server:      httptest.NewServer(router),
		MusicBrainz: mbServer,
		LibraryDir:  libraryDir,
		PlaylistDir: playlistDir,
		JobQueue:    jobQueue,
	}
	helper.setupTestData(t)

	return helper
}

// Cleanup shuts down the test servers
func (h *TestHelper) Cleanup(t *testing.T) {
	t.Helper()
	h.Server.Close()
	h.MusicBrainz.Close()
}

// setupTestData seeds the library root with two known tracks
func (h *TestHelper) setupTestData(t *testing.T) {
	t.Helper()

	h.CreateTestFile(t, "Test Artist/Test Album/01 - First Song.mp3", taggedMP3([][2]string{
		{"TIT2", "First Song"},
		{"TPE1", "Test Artist"},
		{"TALB", "Test Album"},
		{"TCON", "Rock"},
		{"TYER", "2024"},
		{"TRCK", "1"},
	}, 39))
	h.CreateTestFile(t, "Test Artist/Test Album/02 - Second Song.flac", minimalFLAC())
}

// CreateTestFile writes a file under the library root, creating parent
// directories as needed, and returns its absolute path.
func (h *TestHelper) CreateTestFile(t *testing.T, relPath string, content []byte) string {
	t.Helper()

	fullPath := filepath.Join(h.LibraryDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, content, 0644))
	return fullPath
}

// AssertFileExists fails the test when the given path does not exist
func (h *TestHelper) AssertFileExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.NoError(t, err, "expected file to exist: %s", path)
}

// MakeRequest performs an HTTP request against the test server
func (h *TestHelper) MakeRequest(t *testing.T, method, path string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, h.Server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// GetJSON performs a GET request and decodes the JSON response into target
func (h *TestHelper) GetJSON(t *testing.T, path string, target interface{}) *http.Response {
	t.Helper()

	resp := h.MakeRequest(t, "GET", path, nil)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if target != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, target), "response body: %s", data)
	}
	return resp
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into target
func (h *TestHelper) PostJSON(t *testing.T, path string, payload, target interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	resp := h.MakeRequest(t, "POST", path, body)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if target != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, target), "response body: %s", data)
	}
	return resp
}

// WaitForJobCompletion polls a job until it reaches a terminal status
func (h *TestHelper) WaitForJobCompletion(t *testing.T, jobID string, timeout time.Duration) *types.CatalogJob {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var response struct {
			Job *types.CatalogJob `json:"job"`
		}
		resp := h.GetJSON(t, "/api/catalogs/"+jobID, &response)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, response.Job)

		switch response.Job.Status {
		case types.JobStatusCompleted, types.JobStatusFailed, types.JobStatusCancelled:
			return response.Job
		}

		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("job %s did not reach a terminal status within %v", jobID, timeout)
	return nil
}

// newMusicBrainzStub serves canned recording search results
func newMusicBrainzStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 2,
			"offset": 0,
			"recordings": [
				{
					"id": "d4c5a4e6-0001-4000-8000-000000000001",
					"title": "Test Song",
					"score": 100,
					"length": 215000,
					"artist-credit": [{"name": "Test Artist"}],
					"releases": [{"id": "rel-1", "title": "Test Album", "date": "2024-01-05"}]
				},
				{
					"id": "d4c5a4e6-0002-4000-8000-000000000002",
					"title": "Test Song (Live)",
					"score": 87,
					"length": 230000,
					"artist-credit": [{"name": "Test Artist"}],
					"releases": [{"id": "rel-2", "title": "Live Sessions"}]
				}
			]
		}`)
	}))
}

// minimalFLAC is a complete metadata-only FLAC stream: marker plus a single
// STREAMINFO block flagged last. 44100 Hz, 2 channels, 16 bps, 441000 total
// samples (exactly 10 seconds).
func minimalFLAC() []byte {
	return []byte("fLaC" +
		"\x80\x00\x00\x22" + // last-block flag, type 0, length 34
		"\x10\x00\x10\x00" + // min/max block size 4096
		"\x00\x00\x00\x00\x00\x00" + // frame sizes unknown
		"\x0a\xc4\x42\xf0" + // 44100 Hz, 2 ch, 16 bps
		"\x00\x06\xba\xa8" + // 441000 samples
		"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
}

// mp3Frames produces n valid MPEG-1 Layer III frames (128 kbps, 44100 Hz,
// silence). Each frame accounts for 1152 samples, about 26ms.
func mp3Frames(n int) []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	return bytes.Repeat(frame, n)
}

// id3v23Tag builds an ID3v2.3 tag with ISO-8859-1 text frames, in order.
func id3v23Tag(frames [][2]string) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		payload := append([]byte{0}, []byte(f[1])...)
		body.WriteString(f[0])
		binary.Write(&body, binary.BigEndian, uint32(len(payload)))
		body.Write([]byte{0, 0})
		body.Write(payload)
	}

	size := body.Len()
	header := []byte{
		'I', 'D', '3', 3, 0, 0,
		byte(size>>21) & 0x7F, byte(size>>14) & 0x7F, byte(size>>7) & 0x7F, byte(size) & 0x7F,
	}
	return append(header, body.Bytes()...)
}

// taggedMP3 is an ID3v2.3 tag followed by real audio frames.
func taggedMP3(frames [][2]string, audioFrames int) []byte {
	return append(id3v23Tag(frames), mp3Frames(audioFrames)...)
}
