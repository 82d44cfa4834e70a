// Package catalog turns scanned directory entries into an ordered collection
// of track records. Extraction runs across a bounded worker pool; results
// are reassembled in entry order so the catalog is deterministic regardless
// of completion order.
package catalog

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"cadenza/audio"
	"cadenza/scanner"
	"cadenza/types"
)

// Status reports how a build ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Failure pairs a path with the hard extraction error it produced.
type Failure struct {
	Path string
	Err  *audio.ExtractionError
}

// Result is the outcome of one catalog build. Tracks preserves the input
// entry order. On cancellation the records finished so far are kept and
// Status is StatusCancelled.
type Result struct {
	Tracks     []types.TrackRecord
	Failures   []Failure
	PathErrors []scanner.PathError
	Status     Status
}

// Report condenses the result into outcome counts plus the detailed
// failure lists.
func (r *Result) Report() *types.CatalogReport {
	report := &types.CatalogReport{
		Succeeded: len(r.Tracks),
		Failed:    len(r.Failures),
		Cancelled: r.Status == StatusCancelled,
	}
	for i := range r.Tracks {
		if r.Tracks[i].IsPartial() {
			report.Partial++
		}
	}
	for _, f := range r.Failures {
		report.Failures = append(report.Failures, types.ExtractionFailure{
			Path:  f.Path,
			Kind:  string(f.Err.Kind),
			Error: f.Err.Error(),
		})
	}
	for _, pe := range r.PathErrors {
		report.PathErrors = append(report.PathErrors, types.PathFailure{
			Path:  pe.Path,
			Error: pe.Err.Error(),
		})
	}
	return report
}

// Options configure a Builder.
type Options struct {
	// Workers bounds the extraction pool. Values below 1 select twice the
	// CPU count.
	Workers int
	// Progress, when set, is called after each entry settles with the
	// number processed so far, the batch total, and the entry's path.
	// It is called from worker goroutines and must be safe for
	// concurrent use.
	Progress func(processed, total int, path string)
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return 2 * runtime.NumCPU()
}

// Builder runs catalog builds with a fixed set of options.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build scans root and catalogs everything the scanner yields. Scanner
// path errors are carried into the result; an invalid root fails
// immediately.
func (b *Builder) Build(ctx context.Context, root string, scanOpts scanner.Options) (*Result, error) {
	scan, err := scanner.Start(ctx, root, scanOpts)
	if err != nil {
		return nil, err
	}

	var entries []types.ScanEntry
	for entry := range scan.Entries() {
		entries = append(entries, entry)
	}

	result := b.BuildEntries(ctx, entries)
	result.PathErrors = scan.Errors()
	return result, nil
}

// BuildEntries catalogs an already-collected entry list. Every entry
// settles as exactly one track or one failure; entries not reached before
// cancellation are left out and the result is marked cancelled.
func (b *Builder) BuildEntries(ctx context.Context, entries []types.ScanEntry) *Result {
	type outcome struct {
		done   bool
		record *types.TrackRecord
		err    *audio.ExtractionError
	}

	total := len(entries)
	outcomes := make([]outcome, total)
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.workers())

	for i, entry := range entries {
		i, entry := i, entry
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			record, xerr := extractEntry(entry)
			if xerr != nil {
				outcomes[i] = outcome{done: true, err: xerr}
			} else {
				outcomes[i] = outcome{done: true, record: record}
			}

			if b.opts.Progress != nil {
				b.opts.Progress(int(processed.Add(1)), total, entry.Path)
			}
			return nil
		})
	}
	g.Wait()

	result := &Result{Status: StatusCompleted}
	if ctx.Err() != nil {
		result.Status = StatusCancelled
	}
	for i := range outcomes {
		switch {
		case !outcomes[i].done:
			// Not reached before cancellation.
		case outcomes[i].err != nil:
			result.Failures = append(result.Failures, Failure{Path: entries[i].Path, Err: outcomes[i].err})
		default:
			result.Tracks = append(result.Tracks, *outcomes[i].record)
		}
	}
	return result
}

// extractEntry maps one scan entry to a record or a hard failure. Entries
// the probe could not recognize fail as not-audio without touching the
// extractor.
func extractEntry(entry types.ScanEntry) (*types.TrackRecord, *audio.ExtractionError) {
	if entry.Format == types.FormatUnsupported {
		return nil, &audio.ExtractionError{
			Path: entry.Path,
			Kind: audio.KindNotAudio,
			Err:  errors.New("unrecognized content"),
		}
	}

	record, err := audio.Extract(entry.Path, entry.Format)
	if err != nil {
		var xerr *audio.ExtractionError
		if !errors.As(err, &xerr) {
			xerr = &audio.ExtractionError{Path: entry.Path, Kind: audio.KindCorrupt, Err: err}
		}
		return nil, xerr
	}
	return record, nil
}
