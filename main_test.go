package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadenza/musicbrainz"
	"cadenza/tagger"
	"cadenza/types"
	"cadenza/xspf"
)

// TestHealthEndpoint tests the basic health check endpoint
func TestHealthEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.GetJSON(t, "/health", &response)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "cadenza", response["service"])
}

// TestAPIStatus tests that the status endpoint reports the effective paths
func TestAPIStatus(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.GetJSON(t, "/api/status", &response)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, helper.LibraryDir, response["library_root"])
	assert.Equal(t, helper.PlaylistDir, response["playlist_dir"])
}

// TestCatalogWorkflow tests the complete catalog job workflow
func TestCatalogWorkflow(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	// Step 1: Queue a catalog job
	var queueResponse struct {
		Message string            `json:"message"`
		Job     *types.CatalogJob `json:"job"`
	}

	resp := helper.PostJSON(t, "/api/catalogs", map[string]string{"root": helper.LibraryDir}, &queueResponse)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, queueResponse.Job)
	require.NotEmpty(t, queueResponse.Job.ID)

	jobID := queueResponse.Job.ID
	assert.Equal(t, types.JobTypeCatalog, queueResponse.Job.Type)
	assert.Equal(t, helper.LibraryDir, queueResponse.Job.Root)

	// Step 2: Check job status
	var statusResponse struct {
		Job *types.CatalogJob `json:"job"`
	}

	resp = helper.GetJSON(t, "/api/catalogs/"+jobID, &statusResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, statusResponse.Job)
	assert.Equal(t, jobID, statusResponse.Job.ID)

	// Step 3: Wait for completion and inspect the report
	job := helper.WaitForJobCompletion(t, jobID, 10*time.Second)
	require.Equal(t, types.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Report)

	assert.Equal(t, 2, job.Report.Succeeded)
	assert.Equal(t, 1, job.Report.Partial)
	assert.Equal(t, 0, job.Report.Failed)
	assert.Equal(t, 2, job.Total)
	assert.Equal(t, job.Total, job.Progress)
	assert.NotNil(t, job.CompletedAt)

	// Step 4: Fetch the extracted track records
	var tracksResponse struct {
		Tracks []types.TrackRecord `json:"tracks"`
		Count  int                 `json:"count"`
	}

	resp = helper.GetJSON(t, "/api/catalogs/"+jobID+"/tracks", &tracksResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, tracksResponse.Count)

	first := tracksResponse.Tracks[0]
	assert.Equal(t, "First Song", first.Title)
	assert.Equal(t, "Test Artist", first.Artist)
	assert.Equal(t, "Test Album", first.Album)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, 1, first.TrackNumber)
	assert.Equal(t, types.FormatMP3, first.Format)
	assert.Equal(t, 1, first.DurationSeconds)

	second := tracksResponse.Tracks[1]
	assert.Empty(t, second.Title)
	assert.Equal(t, types.FormatFLAC, second.Format)
	assert.Equal(t, 10, second.DurationSeconds)
}

// TestCatalogJobValidation tests rejection of malformed job submissions
func TestCatalogJobValidation(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.PostJSON(t, "/api/catalogs", map[string]string{}, &response)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "root directory is required", response["error"])
}

// TestCatalogJobNotFound tests behavior for unknown job IDs
func TestCatalogJobNotFound(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.GetJSON(t, "/api/catalogs/non-existent-job", &response)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "job not found", response["error"])

	del := helper.MakeRequest(t, "DELETE", "/api/catalogs/non-existent-job", nil)
	defer del.Body.Close()
	assert.Equal(t, http.StatusBadRequest, del.StatusCode)
}

// TestExportWorkflow tests cataloging straight into an XSPF playlist file
func TestExportWorkflow(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var queueResponse struct {
		Job *types.CatalogJob `json:"job"`
	}

	payload := map[string]string{"root": helper.LibraryDir, "title": "My Mix"}
	resp := helper.PostJSON(t, "/api/catalogs/export", payload, &queueResponse)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, queueResponse.Job)
	assert.Equal(t, types.JobTypeExport, queueResponse.Job.Type)

	job := helper.WaitForJobCompletion(t, queueResponse.Job.ID, 10*time.Second)
	require.Equal(t, types.JobStatusCompleted, job.Status)

	expectedPath := filepath.Join(helper.PlaylistDir, "My Mix.xspf")
	assert.Equal(t, expectedPath, job.OutputPath)
	assert.Equal(t, "My Mix", job.PlaylistTitle)
	helper.AssertFileExists(t, expectedPath)

	data, err := os.ReadFile(expectedPath)
	require.NoError(t, err)

	pl, err := xspf.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "My Mix", pl.Title)
	require.Len(t, pl.Entries(), 2)
	assert.Contains(t, pl.Entries()[0].TrackPath, "01 - First Song.mp3")
}

// TestLibraryEndpoint tests on-demand cataloging of the library root
func TestLibraryEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response struct {
		Root   string               `json:"root"`
		Tracks []types.TrackRecord  `json:"tracks"`
		Count  int                  `json:"count"`
		Report *types.CatalogReport `json:"report"`
	}

	resp := helper.GetJSON(t, "/api/library", &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, helper.LibraryDir, response.Root)
	require.Equal(t, 2, response.Count)
	require.NotNil(t, response.Report)
	assert.Equal(t, 2, response.Report.Succeeded)
	assert.Equal(t, 1, response.Report.Partial)

	titles := []string{response.Tracks[0].Title, response.Tracks[1].Title}
	assert.Contains(t, titles, "First Song")
}

// TestGetTrackEndpoint tests single-file metadata extraction over HTTP
func TestGetTrackEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response struct {
		Track *types.TrackRecord `json:"track"`
	}

	resp := helper.GetJSON(t, "/api/library/track/Test Artist/Test Album/01 - First Song.mp3", &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, response.Track)

	assert.Equal(t, "First Song", response.Track.Title)
	assert.Equal(t, "Test Artist", response.Track.Artist)
	assert.Equal(t, 1, response.Track.DurationSeconds)

	// Unknown file
	var errResponse map[string]interface{}
	resp = helper.GetJSON(t, "/api/library/track/Test Artist/missing.mp3", &errResponse)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Plain text is rejected as not audio
	helper.CreateTestFile(t, "notes.txt", []byte("not audio at all"))
	resp = helper.GetJSON(t, "/api/library/track/notes.txt", &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestStreamTrack tests full and partial audio streaming
func TestStreamTrack(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	relPath := "Test Artist/Test Album/01 - First Song.mp3"
	original, err := os.ReadFile(filepath.Join(helper.LibraryDir, relPath))
	require.NoError(t, err)

	// Full request
	resp := helper.MakeRequest(t, "GET", "/api/library/stream/"+relPath, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, original, body)

	// Range request for the first 100 bytes
	req, err := http.NewRequest("GET", helper.Server.URL+"/api/library/stream/"+relPath, nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=0-99")

	rangeResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rangeResp.Body.Close()

	require.Equal(t, http.StatusPartialContent, rangeResp.StatusCode)
	assert.Equal(t, fmt.Sprintf("bytes 0-99/%d", len(original)), rangeResp.Header.Get("Content-Range"))

	partial, err := io.ReadAll(rangeResp.Body)
	require.NoError(t, err)
	require.Len(t, partial, 100)
	assert.Equal(t, original[:100], partial)
}

// TestStreamTrackSecurity tests path and extension restrictions on streaming
func TestStreamTrackSecurity(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "path traversal",
			path:           "/api/library/stream/../outside.mp3",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "disallowed extension",
			path:           "/api/library/stream/notes.txt",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing file",
			path:           "/api/library/stream/Test Artist/nope.mp3",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := helper.MakeRequest(t, "GET", tt.path, nil)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// TestCoverArtEndpoint tests raw and scaled cover art retrieval
func TestCoverArtEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	// Embed a known PNG into a fresh FLAC file
	cover := testPNG(t)
	fullPath := helper.CreateTestFile(t, "Covered/track.flac", minimalFLAC())
	require.NoError(t, tagger.WriteTags(fullPath, tagger.TagUpdate{
		Picture: &types.Picture{MIMEType: "image/png", Data: cover},
	}))

	// Raw cover art comes back byte for byte
	resp := helper.MakeRequest(t, "GET", "/api/library/cover/Covered/track.flac", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, cover, body)

	// Scaled cover art is re-encoded as a bounded JPEG
	scaledResp := helper.MakeRequest(t, "GET", "/api/library/cover/Covered/track.flac?size=8", nil)
	defer scaledResp.Body.Close()
	require.Equal(t, http.StatusOK, scaledResp.StatusCode)
	assert.Equal(t, "image/jpeg", scaledResp.Header.Get("Content-Type"))

	scaled, err := io.ReadAll(scaledResp.Body)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(scaled))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 8)
	assert.LessOrEqual(t, img.Bounds().Dy(), 8)

	// Files without embedded art report not found
	var errResponse map[string]interface{}
	errResp := helper.GetJSON(t, "/api/library/cover/Test Artist/Test Album/02 - Second Song.flac", &errResponse)
	assert.Equal(t, http.StatusNotFound, errResp.StatusCode)
	assert.Equal(t, "no cover art found", errResponse["error"])
}

// TestUpdateTagsEndpoint tests rewriting tags through the API
func TestUpdateTagsEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	payload := map[string]interface{}{
		"path":        "Test Artist/Test Album/02 - Second Song.flac",
		"title":       "Second Song",
		"artist":      "Test Artist",
		"album":       "Test Album",
		"year":        2024,
		"trackNumber": 2,
	}

	var response map[string]interface{}
	resp := helper.PostJSON(t, "/api/library/tags", payload, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tags updated successfully", response["message"])

	// The rewritten file now extracts as a complete record
	var trackResponse struct {
		Track *types.TrackRecord `json:"track"`
	}
	resp = helper.GetJSON(t, "/api/library/track/Test Artist/Test Album/02 - Second Song.flac", &trackResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, trackResponse.Track)

	assert.Equal(t, "Second Song", trackResponse.Track.Title)
	assert.Equal(t, "Test Artist", trackResponse.Track.Artist)
	assert.Equal(t, 2024, trackResponse.Track.Year)
	assert.Equal(t, 2, trackResponse.Track.TrackNumber)
	assert.Equal(t, 10, trackResponse.Track.DurationSeconds)

	// Validation failures
	var errResponse map[string]interface{}
	resp = helper.PostJSON(t, "/api/library/tags", map[string]string{"title": "No Path"}, &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = helper.PostJSON(t, "/api/library/tags", map[string]string{"path": "../outside.mp3", "title": "X"}, &errResponse)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// TestPlaylistCRUD tests playlist lifecycle and entry editing
func TestPlaylistCRUD(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	type playlistResponse struct {
		Playlist struct {
			ID      string   `json:"id"`
			Title   string   `json:"title"`
			Entries []string `json:"entries"`
		} `json:"playlist"`
	}

	// Create
	var created playlistResponse
	resp := helper.PostJSON(t, "/api/playlists", map[string]string{"title": "Road Trip"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.Playlist.ID)
	assert.Equal(t, "Road Trip", created.Playlist.Title)
	assert.Empty(t, created.Playlist.Entries)

	id := created.Playlist.ID

	// Append two entries, then insert one at the front
	var updated playlistResponse
	resp = helper.PostJSON(t, "/api/playlists/entries/"+id, map[string]interface{}{"path": "/music/a.mp3"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = helper.PostJSON(t, "/api/playlists/entries/"+id, map[string]interface{}{"path": "/music/b.mp3"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = helper.PostJSON(t, "/api/playlists/entries/"+id, map[string]interface{}{"path": "/music/c.mp3", "index": 0}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"/music/c.mp3", "/music/a.mp3", "/music/b.mp3"}, updated.Playlist.Entries)

	// Move the first entry to the end
	resp = helper.PostJSON(t, "/api/playlists/move/"+id, map[string]int{"from": 0, "to": 2}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"/music/a.mp3", "/music/b.mp3", "/music/c.mp3"}, updated.Playlist.Entries)

	// Remove the middle entry
	resp = helper.PostJSON(t, "/api/playlists/remove/"+id, map[string]int{"index": 1}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"/music/a.mp3", "/music/c.mp3"}, updated.Playlist.Entries)

	// Out-of-range index is a client error
	var errResponse map[string]interface{}
	resp = helper.PostJSON(t, "/api/playlists/remove/"+id, map[string]int{"index": 9}, &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "index out of range", errResponse["error"])

	// List and fetch
	var listResponse struct {
		Total int `json:"total"`
	}
	resp = helper.GetJSON(t, "/api/playlists", &listResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, listResponse.Total)

	var fetched playlistResponse
	resp = helper.GetJSON(t, "/api/playlists/"+id, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"/music/a.mp3", "/music/c.mp3"}, fetched.Playlist.Entries)

	// Export round-trips through the XSPF parser
	exportResp := helper.MakeRequest(t, "GET", "/api/playlists/"+id+"/export", nil)
	defer exportResp.Body.Close()
	require.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Equal(t, "application/xspf+xml", exportResp.Header.Get("Content-Type"))

	doc, err := io.ReadAll(exportResp.Body)
	require.NoError(t, err)
	pl, err := xspf.Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", pl.Title)
	require.Len(t, pl.Entries(), 2)

	// Delete
	del := helper.MakeRequest(t, "DELETE", "/api/playlists/"+id, nil)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	resp = helper.GetJSON(t, "/api/playlists/"+id, &errResponse)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestPlaylistImport tests loading an XSPF document into the store
func TestPlaylistImport(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <title>Imported Mix</title>
  <trackList>
    <track><location>file:///music/a.mp3</location></track>
    <track><location>file:///music/b.flac</location></track>
  </trackList>
</playlist>`

	resp := helper.MakeRequest(t, "POST", "/api/playlists/import", strings.NewReader(doc))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var response struct {
		Playlist struct {
			ID      string   `json:"id"`
			Title   string   `json:"title"`
			Entries []string `json:"entries"`
		} `json:"playlist"`
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &response))

	assert.Equal(t, "Imported Mix", response.Playlist.Title)
	assert.Equal(t, []string{"/music/a.mp3", "/music/b.flac"}, response.Playlist.Entries)

	// Malformed documents are rejected
	badResp := helper.MakeRequest(t, "POST", "/api/playlists/import", strings.NewReader("<playlist><trackList><track></track></trackList></playlist>"))
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

// TestSearchEndpoint tests the MusicBrainz recording lookup
func TestSearchEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response struct {
		Artist  string                  `json:"artist"`
		Title   string                  `json:"title"`
		Results []musicbrainz.Recording `json:"results"`
	}

	resp := helper.GetJSON(t, "/api/search?artist=Test+Artist&title=Test+Song", &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "Test Artist", response.Artist)
	assert.Equal(t, "Test Song", response.Title)
	require.Len(t, response.Results, 2)
	assert.Equal(t, "Test Song", response.Results[0].Title)
	assert.Equal(t, 100, response.Results[0].Score)
	assert.Equal(t, "Test Artist", response.Results[0].Artist())

	// Missing title is a client error
	var errResponse map[string]interface{}
	resp = helper.GetJSON(t, "/api/search?artist=Someone", &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-numeric limit is a client error
	resp = helper.GetJSON(t, "/api/search?title=x&limit=many", &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestSettingsEndpoints tests reading and persisting user settings
func TestSettingsEndpoints(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	// Without a settings file the environment values win
	var settings map[string]interface{}
	resp := helper.GetJSON(t, "/api/settings", &settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, helper.LibraryDir, settings["libraryRoot"])
	assert.Equal(t, helper.PlaylistDir, settings["playlistDir"])

	// Persist a new library root
	newRoot := t.TempDir()
	var updateResponse map[string]interface{}
	resp = helper.PostJSON(t, "/api/settings", map[string]string{"libraryRoot": newRoot}, &updateResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Settings updated successfully", updateResponse["message"])

	// The settings file now takes precedence over the environment
	resp = helper.GetJSON(t, "/api/settings", &settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, newRoot, settings["libraryRoot"])
	assert.Equal(t, helper.PlaylistDir, settings["playlistDir"])

	// Rejected updates
	var errResponse map[string]interface{}
	resp = helper.PostJSON(t, "/api/settings", map[string]string{}, &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	filePath := helper.CreateTestFile(t, "not-a-dir.txt", []byte("x"))
	resp = helper.PostJSON(t, "/api/settings", map[string]string{"libraryRoot": filePath}, &errResponse)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestConcurrentCatalogJobs tests multiple simultaneous catalog jobs
func TestConcurrentCatalogJobs(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	numJobs := 3
	jobIDs := make([]string, numJobs)

	for i := 0; i < numJobs; i++ {
		var response struct {
			Job *types.CatalogJob `json:"job"`
		}
		resp := helper.PostJSON(t, "/api/catalogs", map[string]string{"root": helper.LibraryDir}, &response)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotNil(t, response.Job)
		jobIDs[i] = response.Job.ID
	}

	// Verify all jobs were created with unique IDs
	uniqueIDs := make(map[string]bool)
	for _, id := range jobIDs {
		assert.False(t, uniqueIDs[id], "Job ID should be unique: %s", id)
		uniqueIDs[id] = true
	}

	for _, jobID := range jobIDs {
		job := helper.WaitForJobCompletion(t, jobID, 15*time.Second)
		assert.Equal(t, types.JobStatusCompleted, job.Status)
	}

	var listResponse struct {
		Total int `json:"total"`
	}
	resp := helper.GetJSON(t, "/api/catalogs", &listResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, numJobs, listResponse.Total)
}

// testPNG encodes a small in-memory image as PNG
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
