package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/html2deck/pkg/browser"
	"github.com/matzehuels/html2deck/pkg/config"
	"github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/observability"
	"github.com/matzehuels/html2deck/pkg/pipeline"
)

// sessionFlags are the browser and extraction flags shared by every
// command that renders pages.
type sessionFlags struct {
	tempDir     string
	keepTemp    bool
	fontTimeout time.Duration
	settle      time.Duration
	browserBin  string
	headful     bool
	noSandbox   bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tempDir, "temp-dir", "", "directory for captured images (default system temp)")
	cmd.Flags().BoolVar(&f.keepTemp, "keep-temp", false, "keep captured images after conversion")
	cmd.Flags().DurationVar(&f.fontTimeout, "font-timeout", pipeline.DefaultFontTimeout, "maximum wait for web fonts")
	cmd.Flags().DurationVar(&f.settle, "settle", browser.DefaultSettle, "wait after load for script-driven layout")
	cmd.Flags().StringVar(&f.browserBin, "browser", "", "chromium binary (default: find or download)")
	cmd.Flags().BoolVar(&f.headful, "headful", false, "show the browser window")
	cmd.Flags().BoolVar(&f.noSandbox, "no-sandbox", false, "disable the chromium sandbox (containers)")
}

// apply overrides config values with the flags the user set explicitly.
func (f *sessionFlags) apply(cmd *cobra.Command, opts *pipeline.Options, bopts *browser.Options) {
	changed := cmd.Flags().Changed
	if changed("temp-dir") {
		opts.TempDir = f.tempDir
	}
	if changed("keep-temp") {
		opts.KeepTemp = f.keepTemp
	}
	if changed("font-timeout") {
		opts.FontTimeout = f.fontTimeout
	}
	if changed("settle") {
		bopts.Settle = f.settle
	}
	if changed("browser") {
		bopts.Bin = f.browserBin
	}
	if changed("headful") {
		bopts.Headless = !f.headful
	}
	if changed("no-sandbox") {
		bopts.NoSandbox = f.noSandbox
	}
}

// sessionOptions loads the config and applies sf on top of it.
func (c *CLI) sessionOptions(cmd *cobra.Command, sf *sessionFlags) (config.Config, pipeline.Options, browser.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return config.Config{}, pipeline.Options{}, browser.Options{}, err
	}
	opts := cfg.PipelineOptions()
	bopts := cfg.BrowserOptions()
	sf.apply(cmd, &opts, &bopts)
	opts.Logger = c.Logger
	return cfg, opts, bopts, nil
}

// convertFlags holds the command-line flags for the convert command.
type convertFlags struct {
	sessionFlags
	output  string
	workers int
	noCache bool
	refresh bool
	noTable bool
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <file|dir>",
		Short: "Convert HTML slides to PowerPoint",
		Long: `Convert an HTML slide deck, or every .html file in a directory, to .pptx.

Files named file_<n>.html are converted in numeric order. Each worker runs its
own headless Chromium; the worker count defaults to what CPU and memory allow.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHTML,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), cmd, args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default .)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "parallel browser sessions (default auto)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the conversion cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "convert even when a cached deck exists")
	cmd.Flags().BoolVar(&flags.noTable, "no-table", false, "log progress instead of showing a status table")
	flags.sessionFlags.register(cmd)

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, cmd *cobra.Command, input string, flags *convertFlags) error {
	inputs, err := pipeline.DiscoverInputs(input)
	if err != nil {
		if errors.IsClientError(err) {
			c.Logger.Error("nothing to convert", "input", input, "err", errors.UserMessage(err))
			return nil
		}
		return err
	}
	if len(inputs) == 0 {
		c.Logger.Warn("no html files found", "dir", input)
		return nil
	}

	cfg, opts, bopts, err := c.sessionOptions(cmd, &flags.sessionFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		opts.OutputDir = flags.output
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = flags.workers
	}
	opts.Refresh = flags.refresh
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "create output directory")
	}

	runner, err := c.newRunner(cfg, flags.noCache, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	surfaces := pipeline.BrowserSurfaces(bopts)
	var res *pipeline.BatchResult
	if len(inputs) > 1 && !flags.noTable && isTerminal(os.Stderr) {
		res, err = c.convertWithTable(ctx, runner, inputs, opts, surfaces)
	} else {
		res, err = runner.ConvertAll(ctx, inputs, opts, surfaces)
	}
	if res != nil {
		printBatchSummary(res)
	}
	return err
}

// convertWithTable runs the batch behind a live status table. Log output
// is held back while the table owns the terminal and printed afterwards.
func (c *CLI) convertWithTable(ctx context.Context, runner *pipeline.Runner, inputs []string, opts pipeline.Options, surfaces pipeline.SurfaceFactory) (*pipeline.BatchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var held heldLog
	defer held.flush(os.Stderr)
	opts.Logger = newLogger(&held, c.Logger.GetLevel())

	p := tea.NewProgram(NewBatchModel(inputs, cancel), tea.WithOutput(os.Stderr))
	observability.SetPipelineHooks(batchHooks{send: p.Send})
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})

	var (
		res    *pipeline.BatchResult
		runErr error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		res, runErr = runner.ConvertAll(ctx, inputs, opts, surfaces)
		p.Send(batchDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return res, fmt.Errorf("status table: %w", err)
	}
	<-done
	return res, runErr
}
