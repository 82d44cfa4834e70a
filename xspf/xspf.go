// Package xspf renders playlists to the XML Shareable Playlist Format and
// parses them back. Documents carry only location references plus display
// fields; full track metadata is re-resolved from the catalog on load
// rather than stored redundantly in the playlist file.
package xspf

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cadenza/playlist"
	"cadenza/types"
)

const xmlns = "http://xspf.org/ns/0/"

// FormatError reports a structurally invalid playlist document.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("xspf: %s: %v", e.Reason, e.Err)
	}
	return "xspf: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Resolver looks up the cataloged record behind a playlist entry so its
// display fields can be written alongside the location. Entries that do
// not resolve are written as bare locations.
type Resolver func(path string) (*types.TrackRecord, bool)

type xmlPlaylist struct {
	XMLName   xml.Name      `xml:"playlist"`
	Version   string        `xml:"version,attr"`
	Namespace string        `xml:"xmlns,attr"`
	Title     string        `xml:"title,omitempty"`
	Date      string        `xml:"date,omitempty"`
	TrackList *xmlTrackList `xml:"trackList"`
}

type xmlTrackList struct {
	Tracks []xmlTrack `xml:"track"`
}

type xmlTrack struct {
	Location string `xml:"location"`
	Title    string `xml:"title,omitempty"`
	Creator  string `xml:"creator,omitempty"`
	Album    string `xml:"album,omitempty"`
	TrackNum int    `xml:"trackNum,omitempty"`
	Duration int    `xml:"duration,omitempty"` // milliseconds
}

// Serialize renders the playlist as an XSPF 1.0 document. Display fields
// are omitted entirely when absent, never written as empty elements.
func Serialize(p *playlist.Playlist, resolve Resolver) ([]byte, error) {
	doc := xmlPlaylist{
		Version:   "1",
		Namespace: xmlns,
		Title:     p.Title,
		Date:      p.CreatedAt.UTC().Format(time.RFC3339),
		TrackList: &xmlTrackList{Tracks: []xmlTrack{}},
	}

	for _, entry := range p.Entries() {
		location, err := fileURI(entry.TrackPath)
		if err != nil {
			return nil, fmt.Errorf("xspf: location for %s: %w", entry.TrackPath, err)
		}

		track := xmlTrack{Location: location}
		if resolve != nil {
			if record, ok := resolve(entry.TrackPath); ok && record != nil {
				track.Title = record.Title
				track.Creator = record.Artist
				track.Album = record.Album
				track.TrackNum = record.TrackNumber
				track.Duration = record.DurationSeconds * 1000
			}
		}
		doc.TrackList.Tracks = append(doc.TrackList.Tracks, track)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("xspf: marshal: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Write serializes the playlist onto w.
func Write(w io.Writer, p *playlist.Playlist, resolve Resolver) error {
	data, err := Serialize(p, resolve)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Parse loads an XSPF document back into a playlist. Unknown elements are
// ignored for forward compatibility; a missing root element, a missing
// trackList, or an unparseable location fails with FormatError.
func Parse(data []byte) (*playlist.Playlist, error) {
	var doc xmlPlaylist
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Reason: "not an xspf playlist", Err: err}
	}
	if doc.TrackList == nil {
		return nil, &FormatError{Reason: "missing trackList element"}
	}

	p := playlist.New(doc.Title)
	if doc.Date != "" {
		if ts, err := time.Parse(time.RFC3339, doc.Date); err == nil {
			p.CreatedAt = ts.UTC()
		}
	}

	for i, track := range doc.TrackList.Tracks {
		location := strings.TrimSpace(track.Location)
		if location == "" {
			return nil, &FormatError{Reason: fmt.Sprintf("track %d: missing location", i)}
		}
		path, err := locationPath(location)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("track %d: bad location %q", i, location), Err: err}
		}
		p.Append(path)
	}
	return p, nil
}

// Read parses an XSPF document from r.
func Read(r io.Reader) (*playlist.Playlist, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// fileURI converts a file path into a percent-encoded file URI. Relative
// paths are resolved against the working directory first so the document
// stays meaningful away from where it was written.
func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		// Windows drive paths need a root slash ahead of the volume.
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String(), nil
}

// locationPath maps a track location URI back to a filesystem path.
// Scheme-less locations are tolerated as plain paths; non-file schemes are
// kept verbatim so foreign playlists still round-trip.
func locationPath(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "file":
		path := u.Path
		if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		return filepath.FromSlash(path), nil
	case "":
		return filepath.FromSlash(u.Path), nil
	default:
		return location, nil
	}
}
