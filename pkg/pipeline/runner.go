package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/html2deck/pkg/buildinfo"
	"github.com/matzehuels/html2deck/pkg/cache"
	apperr "github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/inspect"
	"github.com/matzehuels/html2deck/pkg/observability"
	"github.com/matzehuels/html2deck/pkg/pptx"
	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/synth"
)

const cacheKeyType = "deck"

// SurfaceSource supplies a rendering surface when a conversion needs one.
// Batch workers hand out the same session on every call.
type SurfaceSource func(ctx context.Context) (extract.Surface, error)

// Surface returns a source that always yields s.
func Surface(s extract.Surface) SurfaceSource {
	return func(context.Context) (extract.Surface, error) { return s, nil }
}

// SurfaceError reports that no rendering surface could be obtained. For a
// batch worker this is fatal: its remaining files are abandoned.
type SurfaceError struct{ Err error }

func (e *SurfaceError) Error() string { return "rendering session: " + e.Err.Error() }
func (e *SurfaceError) Unwrap() error { return e.Err }

// Runner encapsulates conversion with caching. It holds no per-file state;
// several workers share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ConvertFile converts input and writes the deck to output. The surface is
// requested only when the deck is not cached.
func (r *Runner) ConvertFile(ctx context.Context, src SurfaceSource, input, output string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	if err := apperr.ValidateOutputName(filepath.Base(output)); err != nil {
		return nil, err
	}

	assets, err := inspect.FileAssets(input)
	if err != nil {
		return nil, err
	}
	result := &Result{Input: input, Output: output}

	contentHash, err := cache.HashFiles(input, inspect.AssetPaths(assets))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "read %s", input)
	}
	result.CacheKey = r.Keyer.DeckKey(contentHash, cache.DeckKeyOpts{
		Fingerprint: opts.Fingerprint(),
		Version:     buildinfo.CacheVersion(),
	})

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, result.CacheKey)
		if err != nil {
			logger.Warn("cache read failed", "err", err)
		}
		if hit {
			slides, cerr := pptx.SlideCount(data)
			if cerr != nil {
				logger.Warn("ignoring unreadable cached deck", "err", cerr)
			} else {
				observability.Cache().OnCacheHit(ctx, cacheKeyType)
				start := time.Now()
				if err := writeOutput(output, data); err != nil {
					return nil, err
				}
				result.Stats.WriteTime = time.Since(start)
				result.Cached = true
				result.Slides = slides
				result.Size = len(data)
				logger.Info("wrote cached deck", "output", output, "slides", result.Slides)
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	surface, err := src(ctx)
	if err != nil {
		return nil, &SurfaceError{Err: err}
	}

	workDir := opts.WorkDir(input)
	if !opts.KeepTemp {
		defer os.RemoveAll(workDir)
	}

	deck, err := r.extract(ctx, surface, input, workDir, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Deck = deck
	result.Slides = len(deck.Slides)
	result.Stats.Scene = deck.Stats()

	start := time.Now()
	ropts := opts.Render
	ropts.Logger = logger
	data, err := RenderDeck(deck, ropts)
	if err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(start)

	start = time.Now()
	if err := writeOutput(output, data); err != nil {
		return nil, err
	}
	result.Stats.WriteTime = time.Since(start)
	result.Size = len(data)

	if err := r.Cache.Set(ctx, result.CacheKey, data, opts.CacheTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}

	logger.Info("converted",
		"output", output,
		"slides", result.Slides,
		"texts", result.Stats.Scene.Texts,
		"rasters", result.Stats.Scene.Rasters,
		"duration", result.Stats.LoadTime+result.Stats.ExtractTime+result.Stats.RenderTime+result.Stats.WriteTime)
	return result, nil
}

// ExtractScene loads input and returns its scene graph. Rasters are
// written below workDir and stay there for the caller.
func (r *Runner) ExtractScene(ctx context.Context, surface extract.Surface, input, workDir string, opts Options) (*scene.Deck, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	var stats Stats
	return r.extract(ctx, surface, input, workDir, opts, &stats)
}

func (r *Runner) extract(ctx context.Context, surface extract.Surface, input, workDir string, opts Options, stats *Stats) (*scene.Deck, error) {
	logger := opts.Logger
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "resolve %s", input)
	}

	start := time.Now()
	if err := surface.Load(ctx, abs); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeBrowser, err, "load %s", input)
	}
	if err := surface.WaitForFonts(ctx, opts.FontTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("fonts not ready, continuing", "timeout", opts.FontTimeout, "err", err)
	}
	stats.LoadTime = time.Since(start)

	xopts := opts.Extract
	xopts.RasterDir = workDir
	xopts.Logger = logger

	start = time.Now()
	slides, err := extract.New(surface, xopts).Slides(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ErrCodeExtract, err, "extract %s", input)
	}
	stats.ExtractTime = time.Since(start)

	logger.Debug("extracted document", "slides", len(slides), "duration", stats.ExtractTime)
	return &scene.Deck{Source: input, Slides: slides}, nil
}

// RenderDeck synthesizes deck and returns the encoded presentation.
// Rasters that can no longer be read are left out with a warning.
func RenderDeck(deck *scene.Deck, opts synth.Options) ([]byte, error) {
	pres := synth.New(opts).Render(deck.Slides)
	pres.Title = deckTitle(deck.Source)

	var buf bytes.Buffer
	if err := pres.Write(&buf); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeRender, err, "encode presentation")
	}
	return buf.Bytes(), nil
}

func deckTitle(source string) string {
	base := filepath.Base(source)
	return base[:len(base)-len(filepath.Ext(base))]
}

// writeOutput replaces path with data through a temporary file in the same
// directory.
func writeOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return apperr.Wrap(apperr.ErrCodeOutput, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".html2deck-*"+OutputExt)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeOutput, err, "write %s", path)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.ErrCodeOutput, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.ErrCodeOutput, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.ErrCodeOutput, err, "write %s", path)
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
