// Package musicbrainz is a small client for the MusicBrainz recording
// search API. The catalog uses it to suggest tags for poorly labeled
// files; nothing here writes back to disk.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://musicbrainz.org/ws/2"
	defaultUserAgent = "cadenza/1.0"
	defaultLimit     = 5
)

// Client talks to one MusicBrainz endpoint. The zero value is not usable;
// call NewClient. BaseURL and HTTPClient are exported so tests and callers
// behind mirrors can redirect it.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		BaseURL:    defaultBaseURL,
		UserAgent:  defaultUserAgent,
	}
}

// ArtistCredit is one credited artist on a recording.
type ArtistCredit struct {
	Name string `json:"name"`
}

// Release is an album or single a recording appeared on.
type Release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
}

// Recording is one search hit, ordered by the server-side match score.
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Score        int            `json:"score"`
	LengthMillis int            `json:"length"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Releases     []Release      `json:"releases"`
}

// Artist joins the credited artist names into one display string.
func (r Recording) Artist() string {
	names := make([]string, 0, len(r.ArtistCredit))
	for _, credit := range r.ArtistCredit {
		if credit.Name != "" {
			names = append(names, credit.Name)
		}
	}
	return strings.Join(names, ", ")
}

// DurationSeconds converts the reported length to whole seconds.
func (r Recording) DurationSeconds() int {
	return (r.LengthMillis + 500) / 1000
}

// LookupRecording searches recordings by title, optionally narrowed by
// artist. Results arrive best match first.
func (c *Client) LookupRecording(ctx context.Context, artist, title string, limit int) ([]Recording, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("musicbrainz: title is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	query := fmt.Sprintf("recording:%q", title)
	if artist != "" {
		query = fmt.Sprintf("artist:%q AND %s", artist, query)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/recording?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("musicbrainz: unexpected status %s", resp.Status)
	}

	var payload struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode response: %w", err)
	}
	return payload.Recordings, nil
}
