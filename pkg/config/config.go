// Package config loads html2deck settings from TOML.
//
// A config file is optional. It is looked up at the path given by
// --config, then ./html2deck.toml, then $XDG_CONFIG_HOME/html2deck/config.toml.
// Every field has a default and zero values mean "use the default";
// command-line flags override file values.
//
//	[convert]
//	workers = 4
//	output_dir = "out"
//	cache_ttl = "72h"
//
//	[browser]
//	font_timeout = "10s"
//	no_sandbox = true
//
//	[extract]
//	icon_classes = ["material-icons", "fa"]
//
//	[render]
//	width_factor = 1.2
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/html2deck/pkg/browser"
	apperr "github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/pipeline"
	"github.com/matzehuels/html2deck/pkg/synth"
)

// FileName is the config file looked up in the working directory.
const FileName = "html2deck.toml"

// Config is the full file layout.
type Config struct {
	Convert Convert         `toml:"convert"`
	Browser Browser         `toml:"browser"`
	Extract extract.Options `toml:"extract"`
	Render  synth.Options   `toml:"render"`
}

// Convert holds batch and cache settings.
type Convert struct {
	Workers           int           `toml:"workers"`
	OutputDir         string        `toml:"output_dir"`
	TempDir           string        `toml:"temp_dir"`
	KeepTemp          bool          `toml:"keep_temp"`
	MemoryPerWorkerMB int           `toml:"memory_per_worker_mb"`
	Cache             *bool         `toml:"cache"`
	CacheDir          string        `toml:"cache_dir"`
	CacheURL          string        `toml:"cache_url"` // redis://host:port/db, shared by service instances
	CacheTTL          time.Duration `toml:"cache_ttl"`
}

// CacheEnabled reports whether the artifact cache is on. It defaults to on.
func (c Convert) CacheEnabled() bool { return c.Cache == nil || *c.Cache }

// Browser holds rendering session settings.
type Browser struct {
	Bin            string        `toml:"bin"`
	Headless       *bool         `toml:"headless"`
	NoSandbox      bool          `toml:"no_sandbox"`
	ViewportWidth  int           `toml:"viewport_width"`
	ViewportHeight int           `toml:"viewport_height"`
	FontTimeout    time.Duration `toml:"font_timeout"`
	Settle         time.Duration `toml:"settle"`
}

// Load reads the config file. An explicit path must exist; otherwise the
// default locations are searched and a missing file yields the zero
// Config. The path actually read is returned, or "" when none was.
func Load(path string) (Config, string, error) {
	if path == "" {
		path = find()
		if path == "" {
			return Config{}, "", nil
		}
	} else if _, err := os.Stat(path); err != nil {
		return Config{}, "", apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config file %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, "", apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Parse decodes TOML. Unknown keys are rejected so that typos do not pass
// silently.
func Parse(data []byte) (Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, apperr.New(apperr.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "html2deck", "config.toml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Validate rejects negative and out-of-range values.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return apperr.New(apperr.ErrCodeInvalidConfig, format, args...)
	}
	switch {
	case c.Convert.Workers < 0:
		return invalid("convert.workers cannot be negative")
	case c.Convert.MemoryPerWorkerMB < 0:
		return invalid("convert.memory_per_worker_mb cannot be negative")
	case c.Convert.CacheTTL < 0:
		return invalid("convert.cache_ttl cannot be negative")
	case c.Convert.CacheURL != "" && !validCacheURL(c.Convert.CacheURL):
		return invalid("convert.cache_url must be a redis://, rediss:// or unix:// URL")
	case c.Browser.ViewportWidth < 0, c.Browser.ViewportHeight < 0:
		return invalid("browser viewport cannot be negative")
	case c.Browser.FontTimeout < 0:
		return invalid("browser.font_timeout cannot be negative")
	case c.Browser.Settle < 0:
		return invalid("browser.settle cannot be negative")
	case c.Extract.IconScale < 0:
		return invalid("extract.icon_scale cannot be negative")
	case c.Extract.InlinePad < 0:
		return invalid("extract.inline_pad cannot be negative")
	case c.Render.WidthFactor != 0 && c.Render.WidthFactor < 1:
		return invalid("render.width_factor must be at least 1")
	case c.Render.FontScale < 0:
		return invalid("render.font_scale cannot be negative")
	case c.Render.SlideWidthPx < 0, c.Render.RightMarginPx < 0, c.Render.MinPicturePx < 0:
		return invalid("render sizes cannot be negative")
	case c.Render.MaxCornerFraction < 0 || c.Render.MaxCornerFraction > 0.5:
		return invalid("render.max_corner_fraction must be within [0, 0.5]")
	}
	return nil
}

func validCacheURL(u string) bool {
	for _, scheme := range []string{"redis://", "rediss://", "unix://"} {
		if strings.HasPrefix(u, scheme) {
			return true
		}
	}
	return false
}

// PipelineOptions maps the file onto conversion options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		OutputDir:         c.Convert.OutputDir,
		TempDir:           c.Convert.TempDir,
		KeepTemp:          c.Convert.KeepTemp,
		Workers:           c.Convert.Workers,
		MemoryPerWorkerMB: c.Convert.MemoryPerWorkerMB,
		FontTimeout:       c.Browser.FontTimeout,
		CacheTTL:          c.Convert.CacheTTL,
		Extract:           c.Extract,
		Render:            c.Render,
		ViewportWidth:     c.Browser.ViewportWidth,
		ViewportHeight:    c.Browser.ViewportHeight,
	}
}

// BrowserOptions maps the file onto session options. Headless defaults
// to true.
func (c Config) BrowserOptions() browser.Options {
	headless := c.Browser.Headless == nil || *c.Browser.Headless
	return browser.Options{
		Bin:            c.Browser.Bin,
		Headless:       headless,
		NoSandbox:      c.Browser.NoSandbox,
		ViewportWidth:  c.Browser.ViewportWidth,
		ViewportHeight: c.Browser.ViewportHeight,
		Settle:         c.Browser.Settle,
		SlideSelector:  c.Extract.SlideSelector,
	}
}
