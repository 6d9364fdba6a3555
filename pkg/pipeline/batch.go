package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/html2deck/pkg/browser"
	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/observability"
)

// Outcome is the final state of one file in a batch.
type Outcome int

const (
	// OutcomeConverted means the file was rendered and written.
	OutcomeConverted Outcome = iota
	// OutcomeCached means a cached deck was written.
	OutcomeCached
	// OutcomeFailed means the conversion returned an error.
	OutcomeFailed
	// OutcomeAbandoned means the file was never attempted because its
	// worker had no rendering session or the run was cancelled.
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverted:
		return "converted"
	case OutcomeCached:
		return "cached"
	case OutcomeFailed:
		return "failed"
	case OutcomeAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// FileResult is the outcome of one input in a batch.
type FileResult struct {
	Input    string
	Output   string
	Worker   int
	Outcome  Outcome
	Slides   int
	Duration time.Duration
	Err      error
}

// BatchResult collects per-file outcomes in input order.
type BatchResult struct {
	RunID    string
	Workers  int
	Files    []FileResult
	Duration time.Duration
}

// Count returns the number of files with outcome o.
func (b *BatchResult) Count(o Outcome) int {
	n := 0
	for _, f := range b.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// OK reports whether every file was converted or served from the cache.
func (b *BatchResult) OK() bool {
	return b.Count(OutcomeFailed) == 0 && b.Count(OutcomeAbandoned) == 0
}

// SurfaceFactory starts one rendering session for a worker.
type SurfaceFactory func(ctx context.Context, logger *log.Logger) (extract.Surface, error)

// BrowserSurfaces starts a headless Chromium session per worker.
func BrowserSurfaces(opts browser.Options) SurfaceFactory {
	return func(ctx context.Context, logger *log.Logger) (extract.Surface, error) {
		o := opts
		o.Logger = logger
		return browser.Launch(ctx, o)
	}
}

// ConvertAll converts inputs with a fixed pool of workers. Files are
// assigned round-robin up front; each worker converts its files in order
// with one rendering session, started on its first cache miss.
//
// Failures never stop the batch: a failed file is recorded and the worker
// moves on, and a worker whose session cannot start abandons its
// remaining files while the others continue. The returned error is
// non-nil only for invalid options or when ctx is cancelled.
func (r *Runner) ConvertAll(ctx context.Context, inputs []string, opts Options, newSurface SurfaceFactory) (*BatchResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	workers := opts.Workers
	if workers == 0 {
		workers = AutoWorkers(len(inputs), opts.MemoryPerWorkerMB)
	}
	workers = max(1, min(workers, len(inputs)))

	batch := &BatchResult{
		RunID:   opts.RunID,
		Workers: workers,
		Files:   make([]FileResult, len(inputs)),
	}
	if len(inputs) == 0 {
		return batch, nil
	}

	start := time.Now()
	logger := opts.Logger
	logger.Info("starting batch", "files", len(inputs), "workers", workers, "output", opts.OutputDir)
	observability.Pipeline().OnBatchStart(ctx, inputs, workers)

	// Each worker writes only the result slots of its own files.
	var g errgroup.Group
	for w, idxs := range partition(len(inputs), workers) {
		g.Go(func() error {
			r.worker(ctx, w, idxs, inputs, opts, newSurface, batch.Files)
			return nil
		})
	}
	_ = g.Wait()

	if !opts.KeepTemp {
		if err := os.RemoveAll(opts.RunDir()); err != nil {
			logger.Warn("remove temp dir", "dir", opts.RunDir(), "err", err)
		}
	}

	batch.Duration = time.Since(start)
	logger.Info("batch finished",
		"converted", batch.Count(OutcomeConverted),
		"cached", batch.Count(OutcomeCached),
		"failed", batch.Count(OutcomeFailed),
		"abandoned", batch.Count(OutcomeAbandoned),
		"duration", batch.Duration)
	return batch, ctx.Err()
}

func (r *Runner) worker(ctx context.Context, w int, idxs []int, inputs []string, opts Options, newSurface SurfaceFactory, results []FileResult) {
	hooks := observability.Pipeline()
	logger := opts.Logger.With("worker", w)
	hooks.OnWorkerStart(ctx, w, len(idxs))
	logger.Debug("worker started", "files", len(idxs))

	var (
		surface  extract.Surface
		startErr error
		started  bool
	)
	src := func(ctx context.Context) (extract.Surface, error) {
		if !started {
			started = true
			surface, startErr = newSurface(ctx, logger)
		}
		return surface, startErr
	}
	defer func() {
		if surface != nil {
			if err := surface.Close(); err != nil {
				logger.Debug("close rendering session", "err", err)
			}
		}
	}()

	abandon := func(rest []int, err error) {
		for _, i := range rest {
			results[i] = FileResult{
				Input:   inputs[i],
				Output:  OutputPath(opts.OutputDir, inputs[i]),
				Worker:  w,
				Outcome: OutcomeAbandoned,
				Err:     err,
			}
			hooks.OnFileAbandoned(ctx, w, inputs[i], err)
		}
	}

	for k, i := range idxs {
		if err := ctx.Err(); err != nil {
			abandon(idxs[k:], err)
			hooks.OnWorkerExit(ctx, w, err)
			return
		}

		input := inputs[i]
		output := OutputPath(opts.OutputDir, input)
		flog := logger.With("file", filepath.Base(input))
		fopts := opts
		fopts.Logger = flog

		hooks.OnFileStart(ctx, w, input)
		start := time.Now()
		res, err := r.ConvertFile(ctx, src, input, output, fopts)
		elapsed := time.Since(start)

		var se *SurfaceError
		if errors.As(err, &se) {
			logger.Error("rendering session failed to start, abandoning files",
				"abandoned", len(idxs)-k, "err", se.Err)
			abandon(idxs[k:], se)
			hooks.OnWorkerExit(ctx, w, se)
			return
		}

		fr := FileResult{Input: input, Output: output, Worker: w, Duration: elapsed}
		switch {
		case err != nil:
			fr.Outcome = OutcomeFailed
			fr.Err = err
			flog.Error("conversion failed", "err", err)
		case res.Cached:
			fr.Outcome = OutcomeCached
			fr.Slides = res.Slides
		default:
			fr.Outcome = OutcomeConverted
			fr.Slides = res.Slides
		}
		results[i] = fr
		hooks.OnFileComplete(ctx, w, input, fr.Slides, fr.Outcome == OutcomeCached, elapsed, err)
	}

	hooks.OnWorkerExit(ctx, w, nil)
	logger.Debug("worker finished")
}
