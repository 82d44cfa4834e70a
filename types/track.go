package types

// Format identifies the audio container of a file, decided by content
// signature rather than extension.
type Format string

const (
	FormatMP3         Format = "mp3"
	FormatFLAC        Format = "flac"
	FormatUnsupported Format = "unsupported"
)

// ContentType returns the MIME type served for files of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatFLAC:
		return "audio/flac"
	case FormatMP3:
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

// Picture is an embedded or externally supplied cover image. Data is never
// serialized to JSON; only its MIME type is exposed.
type Picture struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// ScanEntry is one classified file produced by a directory scan.
type ScanEntry struct {
	Path      string `json:"path"`
	Format    Format `json:"format"`
	SizeBytes int64  `json:"sizeBytes"`
}

// TrackRecord holds the normalized metadata of a single audio file.
// Path and Format are fixed at construction; every other field is derived
// from file content at extraction time. Optional tag fields keep their zero
// value when the source field is missing or empty.
type TrackRecord struct {
	Path            string   `json:"path"`
	Format          Format   `json:"format"`
	SizeBytes       int64    `json:"sizeBytes"`
	DurationSeconds int      `json:"durationSeconds,omitempty"`
	Title           string   `json:"title,omitempty"`
	Artist          string   `json:"artist,omitempty"`
	Album           string   `json:"album,omitempty"`
	Genre           string   `json:"genre,omitempty"`
	Year            int      `json:"year,omitempty"`
	TrackNumber     int      `json:"trackNumber,omitempty"`
	CoverArt        *Picture `json:"coverArt,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// HasCover reports whether an embedded or attached picture is present.
func (r *TrackRecord) HasCover() bool {
	return r.CoverArt != nil && len(r.CoverArt.Data) > 0
}

// IsPartial reports whether extraction succeeded with gaps: a core tag field
// is absent or a soft warning was recorded while parsing.
func (r *TrackRecord) IsPartial() bool {
	if len(r.Warnings) > 0 {
		return true
	}
	return r.Title == "" || r.Artist == "" || r.Album == "" || r.Year == 0 || r.TrackNumber == 0
}
