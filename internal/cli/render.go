package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
	"github.com/mmr-tortoise/doctumcfg/internal/render"
)

// renderFlags holds the flag values for the render command.
type renderFlags struct {
	// output is the file to write; "" or "-" means stdout.
	output string

	// toConfig writes to the configured DOCTUM_CONFIG path instead.
	toConfig bool
}

// NewRenderCommand creates the "render" cobra command.
func NewRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the Doctum PHP configuration file",
		Long: `Render a doctum.conf.php with every setting resolved.

The generated file builds the Symfony Finder iterator over the source
directories and returns the Doctum instance, ready for "doctum update".

Examples:
  doctumcfg render
  doctumcfg render -o doctum.conf.php
  doctumcfg render --to-config`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&flags.toConfig, "to-config", false, "Write to the DOCTUM_CONFIG path")
	cmd.MarkFlagsMutuallyExclusive("output", "to-config")

	return cmd
}

// renderResult is the --json output of the render command when a file
// was written.
type renderResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// runRender renders the PHP config to stdout or a file.
func runRender(w io.Writer, flags *renderFlags) error {
	cfg, _, err := loadConfiguration()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.PHP(&buf, cfg); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render PHP configuration", err)
	}

	path := flags.output
	if flags.toConfig {
		path = cfg.ConfigPath
	}
	if path == "" || path == "-" {
		_, err := w.Write(buf.Bytes())
		return err
	}

	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	VerboseLog("Wrote %s", path)

	if IsJSONOutput() {
		return printJSON(w, renderResult{Path: path, Bytes: buf.Len()})
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to create directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
