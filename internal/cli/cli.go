// Package cli implements the html2deck command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/html2deck/pkg/buildinfo"
	"github.com/matzehuels/html2deck/pkg/cache"
	"github.com/matzehuels/html2deck/pkg/config"
	"github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "html2deck"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty searches the default locations.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "html2deck rebuilds HTML slide decks as editable PowerPoint files",
		Long: `html2deck renders HTML slides in headless Chromium, captures their layout and
styles, and rebuilds each slide as native PowerPoint shapes: filled rectangles,
text boxes and pictures for icons and code blocks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ./"+config.FileName+")")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.sceneCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config or found in the
// default locations.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, path, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped when
// scope is non-empty so that different front ends never share entries.
func (c *CLI) newRunner(cfg config.Config, noCache bool, scope string) (*pipeline.Runner, error) {
	ch, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// redisPrefix namespaces html2deck entries in a shared Redis database.
const redisPrefix = appName + ":"

func newCache(cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || !cfg.Convert.CacheEnabled() {
		return cache.NewNullCache(), nil
	}
	if cfg.Convert.CacheURL != "" {
		rc, err := cache.NewRedisCache(cfg.Convert.CacheURL, redisPrefix)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache_url")
		}
		return rc, nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the configured cache directory, or the user cache
// directory (~/.cache/html2deck on Linux).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Convert.CacheDir != "" {
		return cfg.Convert.CacheDir, nil
	}
	return cache.DefaultDir()
}
