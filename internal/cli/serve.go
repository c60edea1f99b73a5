package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
	"github.com/mmr-tortoise/doctumcfg/internal/port"
	"github.com/mmr-tortoise/doctumcfg/internal/serve"
)

// nextFreeRange is how many ports above the requested one --next-free
// will try.
const nextFreeRange = 100

// serveFlags holds the flag values for the serve command.
type serveFlags struct {
	// port overrides DOCTUM_SERVER_PORT when non-zero.
	port int

	// host is the bind address.
	host string

	// nextFree picks the next free port instead of failing when the
	// requested one is taken.
	nextFree bool
}

// NewServeCommand creates the "serve" cobra command.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated documentation over HTTP",
		Long: `Serve the build directory over HTTP until interrupted.

The port defaults to DOCTUM_SERVER_PORT (8001).

Examples:
  doctumcfg serve
  doctumcfg serve --port 9000
  doctumcfg serve --host 0.0.0.0 --next-free`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().IntVar(&flags.port, "port", 0, "Port to listen on (default: DOCTUM_SERVER_PORT)")
	cmd.Flags().StringVar(&flags.host, "host", "127.0.0.1", "Address to bind")
	cmd.Flags().BoolVar(&flags.nextFree, "next-free", false, "Use the next free port if the requested one is taken")

	return cmd
}

// runServe is the main logic function for the serve command.
func runServe(ctx context.Context, w io.Writer, flags *serveFlags) error {
	// Step 1: Build the configuration.
	cfg, _, err := loadConfiguration()
	if err != nil {
		return err
	}

	// Step 2: Resolve a bindable port and check there is something to serve.
	srv, addr, err := prepareServer(cfg, flags)
	if err != nil {
		return err
	}

	// Step 3: Serve until the context is cancelled by a signal.
	fmt.Fprintf(w, "Serving %s on http://%s/\n", cfg.BuildDir, addr)
	return serveError(addr, srv.ListenAndServe(ctx, addr))
}

// prepareServer picks the port and creates the server for cfg.BuildDir.
func prepareServer(cfg *model.Configuration, flags *serveFlags) (*serve.Server, string, error) {
	scanner := port.NewScanner(flags.host)
	p, err := resolvePort(scanner, cfg.ServerPort, flags)
	if err != nil {
		return nil, "", err
	}

	srv, err := serve.NewServer(cfg.BuildDir, log)
	if err != nil {
		return nil, "", model.WrapCLIError(model.ExitSourceNotFound,
			"nothing to serve, run doctum first", err)
	}
	return srv, scanner.Addr(p), nil
}

// serveError maps a server error to a CLIError. Only a failure to bind
// the listener means the port is unavailable.
func serveError(addr string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "listen" {
		return model.WrapCLIError(model.ExitPortUnavailable,
			fmt.Sprintf("failed to listen on %s", addr), err)
	}
	return model.WrapCLIError(model.ExitGeneralError,
		fmt.Sprintf("server on %s failed", addr), err)
}

// resolvePort returns the port to bind: the --port flag or the configured
// port, or the next free one above it with --next-free.
func resolvePort(scanner *port.Scanner, configured int, flags *serveFlags) (int, error) {
	p := configured
	if flags.port != 0 {
		p = flags.port
	}
	if p < 1 || p > 65535 {
		return 0, model.NewCLIError(model.ExitPortUnavailable,
			fmt.Sprintf("port %d out of range (1-65535)", p))
	}

	if scanner.IsPortAvailable(p) {
		return p, nil
	}
	if !flags.nextFree {
		return 0, model.NewCLIError(model.ExitPortUnavailable,
			fmt.Sprintf("port %d is already in use", p))
	}

	end := p + nextFreeRange
	if end > 65535 {
		end = 65535
	}
	free, err := scanner.FindAvailablePort(p+1, end)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitPortUnavailable,
			fmt.Sprintf("port %d is already in use", p), err)
	}
	VerboseLog("Port %d is in use, using %d", p, free)
	return free, nil
}
