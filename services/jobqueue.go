package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cadenza/catalog"
	"cadenza/config"
	"cadenza/playlist"
	"cadenza/scanner"
	"cadenza/types"
	"cadenza/websocket"
	"cadenza/xspf"
)

// JobQueue interface defines the methods for managing catalog jobs
type JobQueue interface {
	Start()
	EnqueueCatalog(root string, opts scanner.Options) *types.CatalogJob
	EnqueueExport(root, title, outputPath string, opts scanner.Options) *types.CatalogJob
	GetJob(id string) (*types.CatalogJob, bool)
	GetAllJobs() []*types.CatalogJob
	CancelJob(id string) bool
	Result(id string) (*catalog.Result, bool)
	UpdateJobProgress(id string, processed, total int, currentPath string)
	SetJobStatus(id string, status types.JobStatus, errorMsg string)
}

// jobQueue manages catalog jobs
type jobQueue struct {
	jobs       map[string]*types.CatalogJob
	results    map[string]*catalog.Result
	cancels    map[string]context.CancelFunc
	scanOpts   map[string]scanner.Options
	queue      chan *types.CatalogJob
	mu         sync.RWMutex
	maxWorkers int
	hub        websocket.Hub
}

// NewJobQueue creates a new job queue
func NewJobQueue(maxWorkers int, hub websocket.Hub) JobQueue {
	return &jobQueue{
		jobs:       make(map[string]*types.CatalogJob),
		results:    make(map[string]*catalog.Result),
		cancels:    make(map[string]context.CancelFunc),
		scanOpts:   make(map[string]scanner.Options),
		queue:      make(chan *types.CatalogJob, 100), // Buffer for 100 jobs
		maxWorkers: maxWorkers,
		hub:        hub,
	}
}

// EnqueueCatalog adds a new catalog job to the queue
func (jq *jobQueue) EnqueueCatalog(root string, opts scanner.Options) *types.CatalogJob {
	return jq.enqueue(types.JobTypeCatalog, root, "", "", opts)
}

// EnqueueExport adds a catalog job that finishes by writing the result to
// an XSPF playlist file
func (jq *jobQueue) EnqueueExport(root, title, outputPath string, opts scanner.Options) *types.CatalogJob {
	return jq.enqueue(types.JobTypeExport, root, title, outputPath, opts)
}

func (jq *jobQueue) enqueue(jobType types.JobType, root, title, outputPath string, opts scanner.Options) *types.CatalogJob {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job := &types.CatalogJob{
		ID:            uuid.New().String(),
		Type:          jobType,
		Status:        types.JobStatusQueued,
		Root:          root,
		PlaylistTitle: title,
		OutputPath:    outputPath,
		CreatedAt:     time.Now(),
	}

	jq.jobs[job.ID] = job
	jq.scanOpts[job.ID] = opts
	jq.queue <- job

	return job
}

// GetJob retrieves a job by ID
func (jq *jobQueue) GetJob(id string) (*types.CatalogJob, bool) {
	jq.mu.RLock()
	defer jq.mu.RUnlock()
	job, exists := jq.jobs[id]
	return job, exists
}

// GetAllJobs returns all jobs
func (jq *jobQueue) GetAllJobs() []*types.CatalogJob {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]*types.CatalogJob, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Result returns the catalog built by a finished or cancelled job.
func (jq *jobQueue) Result(id string) (*catalog.Result, bool) {
	jq.mu.RLock()
	defer jq.mu.RUnlock()
	result, exists := jq.results[id]
	return result, exists
}

// CancelJob cancels a job. Queued jobs are marked cancelled in place;
// running jobs get their build context cancelled and settle with whatever
// partial result the workers had finished.
func (jq *jobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, exists := jq.jobs[id]
	if !exists {
		return false
	}

	switch job.Status {
	case types.JobStatusQueued:
		job.Status = types.JobStatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		return true
	case types.JobStatusProcessing:
		if cancel, ok := jq.cancels[id]; ok {
			cancel()
			return true
		}
	}

	return false
}

// UpdateJobProgress updates job progress
func (jq *jobQueue) UpdateJobProgress(id string, processed, total int, currentPath string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, exists := jq.jobs[id]; exists {
		job.Progress = processed
		job.Total = total

		// Broadcast progress update via WebSocket
		if jq.hub != nil && total > 0 {
			progressPercent := float64(processed) / float64(total) * 100
			jq.hub.BroadcastProgress(id, websocket.TypeProgress, string(job.Status), currentPath,
				fmt.Sprintf("Extracted %d of %d files", processed, total), processed, total, progressPercent)
		}
	}
}

// SetJobStatus updates job status
func (jq *jobQueue) SetJobStatus(id string, status types.JobStatus, errorMsg string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, exists := jq.jobs[id]; exists {
		job.Status = status
		if errorMsg != "" {
			job.Error = errorMsg
		}

		now := time.Now()
		if status == types.JobStatusProcessing && job.StartedAt == nil {
			job.StartedAt = &now
		} else if status == types.JobStatusCompleted || status == types.JobStatusFailed || status == types.JobStatusCancelled {
			job.CompletedAt = &now
			delete(jq.cancels, id)
		}

		// Broadcast status update via WebSocket
		if jq.hub != nil {
			msgType := websocket.TypeStatus
			message := string(status)
			progress := 0.0
			if job.Total > 0 {
				progress = float64(job.Progress) / float64(job.Total) * 100
			}

			if status == types.JobStatusCompleted {
				msgType = websocket.TypeComplete
				progress = 100.0
				message = fmt.Sprintf("Catalog of %s completed", job.Root)
			} else if status == types.JobStatusFailed {
				msgType = websocket.TypeError
				message = errorMsg
			} else if status == types.JobStatusProcessing {
				message = fmt.Sprintf("Started cataloging %s", job.Root)
			}

			jq.hub.BroadcastProgress(id, msgType, string(status), "", message, job.Progress, job.Total, progress)
		}
	}
}

// Start begins processing jobs
func (jq *jobQueue) Start() {
	for i := 0; i < jq.maxWorkers; i++ {
		go jq.worker()
	}
}

// worker processes jobs from the queue
func (jq *jobQueue) worker() {
	for job := range jq.queue {
		jq.mu.RLock()
		skip := job.Status == types.JobStatusCancelled
		jq.mu.RUnlock()
		if skip {
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		jq.mu.Lock()
		jq.cancels[job.ID] = cancel
		jq.mu.Unlock()

		jq.SetJobStatus(job.ID, types.JobStatusProcessing, "")

		err := jq.processCatalogJob(ctx, job)
		cancelled := ctx.Err() != nil
		cancel()

		switch {
		case cancelled:
			jq.SetJobStatus(job.ID, types.JobStatusCancelled, "")
			log.Printf("Job %s cancelled", job.ID)
		case err != nil:
			jq.SetJobStatus(job.ID, types.JobStatusFailed, err.Error())
			log.Printf("Job %s failed: %v", job.ID, err)
		default:
			jq.SetJobStatus(job.ID, types.JobStatusCompleted, "")
			log.Printf("Job %s completed successfully", job.ID)
		}
	}
}

// processCatalogJob runs the scan-and-extract build for a job and retains
// the result. Export jobs additionally write the XSPF playlist file.
func (jq *jobQueue) processCatalogJob(ctx context.Context, job *types.CatalogJob) error {
	jq.mu.RLock()
	opts := jq.scanOpts[job.ID]
	jq.mu.RUnlock()

	builder := catalog.NewBuilder(catalog.Options{
		Workers: config.GetCatalogWorkers(),
		Progress: func(processed, total int, path string) {
			jq.UpdateJobProgress(job.ID, processed, total, path)
		},
	})

	result, err := builder.Build(ctx, job.Root, opts)
	if err != nil {
		return fmt.Errorf("catalog build failed: %w", err)
	}

	jq.mu.Lock()
	jq.results[job.ID] = result
	job.Report = result.Report()
	jq.mu.Unlock()

	if job.Type == types.JobTypeExport && ctx.Err() == nil {
		return jq.writePlaylist(job, result)
	}
	return nil
}

// writePlaylist serializes a finished catalog to the job's output path,
// defaulting the title to the root folder name and the location to the
// configured playlist directory.
func (jq *jobQueue) writePlaylist(job *types.CatalogJob, result *catalog.Result) error {
	title := job.PlaylistTitle
	if title == "" {
		title = filepath.Base(job.Root)
	}

	pl := playlist.New(title)
	for _, track := range result.Tracks {
		pl.Append(track.Path)
	}

	outputPath := job.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(config.GetPlaylistDir(), title+".xspf")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create playlist directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create playlist file: %w", err)
	}
	defer f.Close()

	if err := xspf.Write(f, pl, catalogResolver(result)); err != nil {
		return err
	}

	jq.mu.Lock()
	job.PlaylistTitle = title
	job.OutputPath = outputPath
	jq.mu.Unlock()
	return nil
}

// catalogResolver adapts a build result into the lookup the serializer
// uses to fill display fields.
func catalogResolver(result *catalog.Result) xspf.Resolver {
	byPath := make(map[string]*types.TrackRecord, len(result.Tracks))
	for i := range result.Tracks {
		byPath[result.Tracks[i].Path] = &result.Tracks[i]
	}

	return func(path string) (*types.TrackRecord, bool) {
		record, ok := byPath[path]
		return record, ok
	}
}
