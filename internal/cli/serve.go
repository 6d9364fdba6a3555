package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/html2deck/pkg/cache"
	"github.com/matzehuels/html2deck/pkg/pipeline"
	"github.com/matzehuels/html2deck/pkg/server"
)

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	sessionFlags
	addr      string
	workers   int
	noCache   bool
	cacheURL  string
	maxUpload int64
}

// serveCommand creates the serve command, which runs the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{addr: server.DefaultAddr, workers: 2}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Run an HTTP service that converts uploaded HTML decks.

  POST /v1/convert   HTML body, or multipart form with a "file" field
  GET  /healthz      liveness

  curl --data-binary @deck.html -o deck.pptx localhost:8080/v1/convert?name=deck`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", flags.addr, "listen address")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", flags.workers, "concurrent conversions (one browser each)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the conversion cache")
	cmd.Flags().StringVar(&flags.cacheURL, "cache-url", "", "share the conversion cache through Redis (redis://host:6379/0)")
	cmd.Flags().Int64Var(&flags.maxUpload, "max-upload", server.DefaultMaxUploadBytes, "largest accepted upload in bytes")
	flags.sessionFlags.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, flags *serveFlags) error {
	cfg, opts, bopts, err := c.sessionOptions(cmd, &flags.sessionFlags)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("cache-url") {
		cfg.Convert.CacheURL = flags.cacheURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(cfg, flags.noCache, server.CacheScope)
	if err != nil {
		return err
	}
	defer runner.Close()

	if rc, ok := runner.Cache.(*cache.RedisCache); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			c.Logger.Warn("redis cache unreachable, conversions will not be cached", "err", err)
		}
	}

	srv, err := server.New(server.Config{
		Runner:         runner,
		Options:        opts,
		Surfaces:       pipeline.BrowserSurfaces(bopts),
		Workers:        flags.workers,
		MaxUploadBytes: flags.maxUpload,
		Logger:         c.Logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	printInfo("Listening on %s with %s", StyleValue.Render("http://"+flags.addr), plural(flags.workers, "worker"))
	printDetail("POST /v1/convert · GET /healthz · ctrl+c to stop")
	return srv.ListenAndServe(ctx, flags.addr)
}
