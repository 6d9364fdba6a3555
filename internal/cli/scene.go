package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/pipeline"
	"github.com/matzehuels/html2deck/pkg/scene"
)

// sceneFlags holds the command-line flags for the scene command.
type sceneFlags struct {
	sessionFlags
	format   string
	output   string
	detailed bool
}

// sceneCommand creates the scene command, which dumps the extracted scene
// graph of one file instead of building a deck.
func (c *CLI) sceneCommand() *cobra.Command {
	flags := sceneFlags{format: pipeline.FormatJSON}

	cmd := &cobra.Command{
		Use:   "scene <file>",
		Short: "Dump the scene graph extracted from an HTML deck",
		Long: `Render one HTML deck and print the scene graph the converter would build from.

Formats:
  json  the full graph, including styles and raster paths
  dot   Graphviz source, one cluster per slide
  svg   the dot graph laid out and rendered`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHTML,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(flags.format); err != nil {
				return err
			}
			return c.runScene(cmd.Context(), cmd, args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", flags.format, "output format: json, dot, svg")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include geometry and text in dot/svg labels")
	flags.sessionFlags.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runScene(ctx context.Context, cmd *cobra.Command, input string, flags *sceneFlags) error {
	cfg, opts, bopts, err := c.sessionOptions(cmd, &flags.sessionFlags)
	if err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, true, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Starting browser")
	spinner.Start()
	prog := newProgress(c.Logger)

	surface, err := pipeline.BrowserSurfaces(bopts)(ctx, c.Logger)
	if err != nil {
		spinner.Stop()
		return errors.Wrap(errors.ErrCodeBrowser, err, "start browser")
	}
	defer surface.Close()

	spinner.SetMessage("Extracting " + input)
	workDir := opts.WorkDir(input)
	deck, err := runner.ExtractScene(ctx, surface, input, workDir, opts)
	spinner.Stop()
	if !opts.KeepTemp {
		defer os.RemoveAll(opts.RunDir())
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %s", plural(len(deck.Slides), "slide")))

	data, err := encodeScene(ctx, deck, flags.format, flags.detailed)
	if err != nil {
		return err
	}
	if flags.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flags.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "write %s", flags.output)
	}
	printSuccess("Wrote scene graph")
	printFile(flags.output)
	if flags.format == pipeline.FormatJSON && !opts.KeepTemp {
		printDetail("raster paths point into a removed temp dir; pass --keep-temp to keep them")
	}
	return nil
}

func encodeScene(ctx context.Context, deck *scene.Deck, format string, detailed bool) ([]byte, error) {
	switch format {
	case pipeline.FormatJSON:
		return scene.Marshal(deck)
	case pipeline.FormatDOT:
		return []byte(scene.ToDOT(deck, scene.DOTOptions{Detailed: detailed})), nil
	case pipeline.FormatSVG:
		return scene.RenderSVG(ctx, scene.ToDOT(deck, scene.DOTOptions{Detailed: detailed}))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}
