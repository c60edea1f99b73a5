package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/render"
)

// envFlags holds the flag values for the env command.
type envFlags struct {
	// defaults prints DEFAULT_* lines instead of the resolved values.
	defaults bool

	// export prefixes each resolved line with "export".
	export bool
}

// NewEnvCommand creates the "env" cobra command.
func NewEnvCommand() *cobra.Command {
	flags := &envFlags{}

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the settings as shell variable assignments",
		Long: `Print every setting as a shell assignment that can be sourced.

With --defaults the default values are printed as DEFAULT_<NAME> instead
of the resolved ones. A project settings file changes these defaults.

Examples:
  doctumcfg env
  eval "$(doctumcfg env --export)"
  doctumcfg env --defaults`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.defaults, "defaults", false, "Print the default values")
	cmd.Flags().BoolVar(&flags.export, "export", false, "Prefix each line with export")

	return cmd
}

// runEnv writes the resolved or default settings as shell assignments,
// or as a JSON object with --json.
func runEnv(w io.Writer, flags *envFlags) error {
	cfg, cwd, err := loadConfiguration()
	if err != nil {
		return err
	}

	if flags.defaults {
		defaults, err := loadDefaults(cwd)
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			return printJSON(w, defaults)
		}
		return render.Defaults(w, defaults)
	}

	if IsJSONOutput() {
		return printJSON(w, render.Values(cfg))
	}
	return render.Shell(w, cfg, flags.export)
}
