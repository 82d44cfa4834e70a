package types

import "time"

// JobType represents the type of catalog job
type JobType string

const (
	JobTypeCatalog JobType = "catalog"
	JobTypeExport  JobType = "export"
)

// JobStatus represents the current status of a catalog job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// CatalogJob represents a scan-and-extract job in the queue. Export jobs
// additionally serialize the finished catalog to an XSPF document.
type CatalogJob struct {
	ID            string         `json:"id"`
	Type          JobType        `json:"type"`
	Status        JobStatus      `json:"status"`
	Root          string         `json:"root"`
	PlaylistTitle string         `json:"playlistTitle,omitempty"`
	OutputPath    string         `json:"outputPath,omitempty"`
	Progress      int            `json:"progress"`
	Total         int            `json:"total"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	StartedAt     *time.Time     `json:"startedAt,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	Report        *CatalogReport `json:"report,omitempty"`
}

// CatalogReport is the wire-level summary of a finished catalog build:
// outcome counts plus the detailed per-path failure lists.
type CatalogReport struct {
	Succeeded  int                 `json:"succeeded"`
	Partial    int                 `json:"partial"`
	Failed     int                 `json:"failed"`
	Cancelled  bool                `json:"cancelled,omitempty"`
	Failures   []ExtractionFailure `json:"failures,omitempty"`
	PathErrors []PathFailure       `json:"pathErrors,omitempty"`
}

// ExtractionFailure describes one file that could not be cataloged.
type ExtractionFailure struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// PathFailure describes one directory entry the scanner could not visit.
type PathFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
