// Package pipeline converts slide documents into presentations.
//
// One conversion loads an HTML file into a rendering surface, waits for web
// fonts, extracts the scene graph of every slide and synthesizes a
// presentation from it:
//
//  1. Load: the surface opens the document and lets it settle
//  2. Extract: [extract.Extractor] walks each slide container
//  3. Render: [synth.Renderer] emits shapes into a [pptx.Presentation]
//  4. Write: the presentation is saved next to the other outputs
//
// A [Runner] adds the artifact cache around these stages: when the
// document, its local assets, the options and the converter build are
// unchanged, the cached deck is written without touching a browser.
//
// Batch conversion distributes files round-robin over a fixed set of
// workers, each owning one rendering session for its lifetime.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{OutputDir: "out"}
//	batch, err := runner.ConvertAll(ctx, inputs, opts, pipeline.BrowserSurfaces(browserOpts))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(batch.Count(pipeline.OutcomeConverted), "converted")
package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/html2deck/pkg/browser"
	"github.com/matzehuels/html2deck/pkg/cache"
	apperr "github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/synth"
)

const (
	// DefaultFontTimeout bounds the wait for web fonts per file.
	DefaultFontTimeout = 10 * time.Second

	// DefaultMemoryPerWorkerMB is the memory budget assumed for one
	// rendering session when sizing the worker pool.
	DefaultMemoryPerWorkerMB = 512

	// OutputExt is appended to the input base name.
	OutputExt = ".pptx"
)

// Scene dump formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported scene dump formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a scene dump format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// Options configures conversion. Zero values mean "use the default".
type Options struct {
	OutputDir         string        `json:"output_dir,omitempty"`
	TempDir           string        `json:"temp_dir,omitempty"`
	KeepTemp          bool          `json:"keep_temp,omitempty"`
	Workers           int           `json:"workers,omitempty"`
	MemoryPerWorkerMB int           `json:"memory_per_worker_mb,omitempty"`
	FontTimeout       time.Duration `json:"font_timeout,omitempty"`
	CacheTTL          time.Duration `json:"cache_ttl,omitempty"`
	// Refresh ignores cached decks but still stores new ones.
	Refresh bool `json:"refresh,omitempty"`

	Extract extract.Options `json:"extract"`
	Render  synth.Options   `json:"render"`

	// ViewportWidth and ViewportHeight change layout and therefore the
	// output; they are part of the cache fingerprint.
	ViewportWidth  int `json:"viewport_width,omitempty"`
	ViewportHeight int `json:"viewport_height,omitempty"`

	// RunID names the temporary directory of one run. Generated when empty.
	RunID  string      `json:"-"`
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults rejects nonsensical values and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch {
	case o.Workers < 0:
		return apperr.New(apperr.ErrCodeInvalidConfig, "workers cannot be negative")
	case o.MemoryPerWorkerMB < 0:
		return apperr.New(apperr.ErrCodeInvalidConfig, "memory_per_worker_mb cannot be negative")
	case o.FontTimeout < 0:
		return apperr.New(apperr.ErrCodeInvalidConfig, "font_timeout cannot be negative")
	case o.CacheTTL < 0:
		return apperr.New(apperr.ErrCodeInvalidConfig, "cache_ttl cannot be negative")
	}

	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.TempDir == "" {
		o.TempDir = os.TempDir()
	}
	if o.MemoryPerWorkerMB == 0 {
		o.MemoryPerWorkerMB = DefaultMemoryPerWorkerMB
	}
	if o.FontTimeout == 0 {
		o.FontTimeout = DefaultFontTimeout
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = cache.TTLDeck
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = browser.DefaultViewportWidth
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = browser.DefaultViewportHeight
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Extract.SetDefaults()
	o.Render.SetDefaults()

	o.validated = true
	return nil
}

// Fingerprint identifies the options that change the produced deck.
// Paths, worker counts and loggers are excluded.
func (o *Options) Fingerprint() string {
	data, _ := json.Marshal(struct {
		Extract        extract.Options `json:"extract"`
		Render         synth.Options   `json:"render"`
		ViewportWidth  int             `json:"vw"`
		ViewportHeight int             `json:"vh"`
	}{o.Extract, o.Render, o.ViewportWidth, o.ViewportHeight})
	return cache.Hash(data)
}

// RunDir is the temporary directory holding every raster of this run.
func (o *Options) RunDir() string {
	return filepath.Join(o.TempDir, "html2deck-"+o.RunID)
}

// WorkDir is the temporary directory for the rasters of one input.
func (o *Options) WorkDir(input string) string {
	return filepath.Join(o.RunDir(), apperr.SanitizeName(input))
}

// OutputPath returns where the deck for input is written.
func OutputPath(outputDir, input string) string {
	base := filepath.Base(input)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+OutputExt)
}

// Result describes one converted file.
type Result struct {
	Input  string
	Output string

	// Deck is the extracted scene graph. Nil when the deck was cached.
	Deck *scene.Deck

	// Slides is the number of slides written.
	Slides int

	// Size is the size of the written file in bytes.
	Size int

	// CacheKey identifies the deck in the artifact cache.
	CacheKey string

	// Cached reports that the deck was served from the cache.
	Cached bool

	Stats Stats
}

// Stats contains per-file timings and scene counts.
type Stats struct {
	LoadTime    time.Duration
	ExtractTime time.Duration
	RenderTime  time.Duration
	WriteTime   time.Duration
	Scene       scene.Stats
}
