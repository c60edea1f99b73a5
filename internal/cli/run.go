package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/docker"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// runFlags holds the flag values for the run command.
type runFlags struct {
	// image overrides DOCTUM_IMAGE.
	image string

	// pull fetches the image before running.
	pull bool
}

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run doctum update in a container for the current project",
		Long: `Run "doctum update" inside a Docker container.

The working directory is mounted at TLR_CODE (default /code). Build, cache
and source directories outside the project are mounted at the same path,
so the resolved configuration stays valid inside the container. Generator
output is streamed to the terminal and the container is removed afterwards.

Examples:
  doctumcfg run
  doctumcfg run --pull
  doctumcfg run --image korowai/doctum:5.5`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", "", "Container image (default: DOCTUM_IMAGE)")
	cmd.Flags().BoolVar(&flags.pull, "pull", false, "Pull the image before running")

	return cmd
}

// runRun is the main logic function for the run command.
func runRun(ctx context.Context, stdout, stderr io.Writer, flags *runFlags) error {
	// Step 1: Build the configuration.
	cfg, cwd, err := loadConfiguration()
	if err != nil {
		return err
	}
	if flags.image != "" {
		cfg.Image = flags.image
	}

	// Step 2: Connect to Docker and map the configuration onto a container.
	cli, spec, err := prepareContainer(ctx, cfg, cwd)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	// Step 3: Run it.
	if err := docker.RunDoctum(ctx, cli, spec, docker.RunOptions{
		Pull:   flags.pull,
		Stdout: stdout,
		Stderr: stderr,
	}); err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(stdout, map[string]string{"build_dir": cfg.BuildDir})
	}
	fmt.Fprintf(stdout, "Documentation written to %s\n", cfg.BuildDir)
	return nil
}

// prepareContainer connects to Docker, creates the output directories and
// builds the container spec for the project at cwd. The caller closes the
// returned client.
func prepareContainer(ctx context.Context, cfg *model.Configuration, cwd string) (*docker.Client, *docker.Spec, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return nil, nil, err // NewClient already returns CLIError with ExitDockerNotRunning
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	VerboseLog("Connected to Docker daemon")

	// Bind mounts fail on missing sources, so create the output
	// directories up front.
	for _, dir := range []string{cfg.BuildDir, cfg.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = cli.Close()
			return nil, nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to create %s", dir), err)
		}
	}

	spec := docker.NewSpec(cfg, cwd)
	log.WithFields(logrus.Fields{
		"image":  spec.Image,
		"cmd":    spec.Cmd,
		"mounts": len(spec.Mounts),
	}).Debug("container spec")

	return cli, spec, nil
}
