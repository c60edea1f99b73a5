package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mmr-tortoise/doctumcfg/internal/docker"
	"github.com/mmr-tortoise/doctumcfg/internal/finder"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
	"github.com/mmr-tortoise/doctumcfg/internal/watch"
)

// watchFlags holds the flag values for the watch command.
type watchFlags struct {
	runFlags

	// serve also serves the build directory while watching.
	serve bool

	server serveFlags
}

// NewWatchCommand creates the "watch" cobra command.
func NewWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the documentation whenever sources change",
		Long: `Run "doctum update" once, then again after every change to a file
matching DOCTUM_SOURCE_REGEX below the source directories.

With --serve the build directory is served at the same time, so the
browser always shows the latest build.

Examples:
  doctumcfg watch
  doctumcfg watch --serve
  doctumcfg watch --serve --port 9000 --next-free`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", "", "Container image (default: DOCTUM_IMAGE)")
	cmd.Flags().BoolVar(&flags.pull, "pull", false, "Pull the image before the first build")
	cmd.Flags().BoolVar(&flags.serve, "serve", false, "Serve the build directory while watching")
	cmd.Flags().IntVar(&flags.server.port, "port", 0, "Port to serve on (default: DOCTUM_SERVER_PORT)")
	cmd.Flags().StringVar(&flags.server.host, "host", "127.0.0.1", "Address to bind")
	cmd.Flags().BoolVar(&flags.server.nextFree, "next-free", false, "Use the next free port if the requested one is taken")

	return cmd
}

// runWatch is the main logic function for the watch command.
func runWatch(ctx context.Context, stdout, stderr io.Writer, flags *watchFlags) error {
	// Step 1: Build the configuration.
	cfg, cwd, err := loadConfiguration()
	if err != nil {
		return err
	}
	if flags.image != "" {
		cfg.Image = flags.image
	}

	// Step 2: Register the source directories before touching Docker, so a
	// bad root or regex fails fast.
	w, err := newWatcher(cwd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	// Step 3: Connect to Docker and build once.
	cli, spec, err := prepareContainer(ctx, cfg, cwd)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	opts := docker.RunOptions{Pull: flags.pull, Stdout: stdout, Stderr: stderr}
	build := func(ctx context.Context) error {
		err := docker.RunDoctum(ctx, cli, spec, opts)
		opts.Pull = false
		return err
	}
	if err := build(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// The sources may simply be broken right now; keep watching.
		log.WithError(err).Warn("initial build failed")
	}

	// Step 4: Watch, and serve alongside when asked.
	g, gctx := errgroup.WithContext(ctx)
	if flags.serve {
		srv, addr, err := prepareServer(cfg, &flags.server)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Serving %s on http://%s/\n", cfg.BuildDir, addr)
		g.Go(func() error {
			return serveError(addr, srv.ListenAndServe(gctx, addr))
		})
	}
	g.Go(func() error {
		return w.Run(gctx, build)
	})

	fmt.Fprintf(stdout, "Watching %s for changes\n", strings.Join(cfg.SourceRoots, ":"))
	return g.Wait()
}

// newWatcher creates the source watcher and maps its errors to exit codes.
func newWatcher(cwd string, cfg *model.Configuration) (*watch.Watcher, error) {
	w, err := watch.New(cwd, cfg, log)
	if err != nil {
		if errors.Is(err, finder.ErrDirectoryNotFound) {
			return nil, model.WrapCLIError(model.ExitSourceNotFound, "source directory not found", err)
		}
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to watch sources", err)
	}
	return w, nil
}
