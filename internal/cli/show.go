package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
	"github.com/mmr-tortoise/doctumcfg/internal/render"
)

// showFlags holds the flag values for the show command.
type showFlags struct {
	// format selects the output: text (default), json, yaml, php or env.
	// The global --json flag is shorthand for --format json.
	format string
}

// NewShowCommand creates the "show" cobra command.
func NewShowCommand() *cobra.Command {
	flags := &showFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration built from the DOCTUM_* environment variables.

Examples:
  doctumcfg show
  doctumcfg show --json
  doctumcfg show --format yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", render.FormatText,
		"Output format: text, json, yaml, php, env")

	return cmd
}

// runShow builds the configuration and writes it in the requested format.
func runShow(w io.Writer, flags *showFlags) error {
	cfg, _, err := loadConfiguration()
	if err != nil {
		return err
	}

	format := flags.format
	if IsJSONOutput() {
		format = render.FormatJSON
	}

	if format == render.FormatText {
		printConfigurationText(w, cfg)
		return nil
	}
	if err := render.Write(w, format, cfg); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render configuration", err)
	}
	return nil
}

// printConfigurationText outputs cfg as an aligned two-column table.
//
//	TITLE        API Documentation
//	SOURCE       src
//	             packages/*
//	BUILD DIR    /home/u/proj/docs/build/html/api
func printConfigurationText(w io.Writer, cfg *model.Configuration) {
	row := func(key, value string) {
		fmt.Fprintf(w, "%-12s %s\n", key, value)
	}

	row("TITLE", cfg.Title)
	row("THEME", cfg.Theme)
	for i, root := range cfg.SourceRoots {
		key := ""
		if i == 0 {
			key = "SOURCE"
		}
		row(key, root)
	}
	row("BUILD DIR", cfg.BuildDir)
	row("CACHE DIR", cfg.CacheDir)
	row("FILTER", cfg.Filter.String())
	row("CONFIG", cfg.ConfigPath)
	row("FLAGS", FormatFlags(cfg.Flags))
	row("PORT", fmt.Sprintf("%d", cfg.ServerPort))
	row("CODE DIR", cfg.CodeDir)
	row("IMAGE", cfg.Image)
}

// FormatFlags joins generator flags for display. Returns "-" when there
// are none.
func FormatFlags(flags []string) string {
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, " ")
}
