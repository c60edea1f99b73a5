package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/finder"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// filesFlags holds the flag values for the files command.
type filesFlags struct {
	// count prints only the number of matched files.
	count bool
}

// NewFilesCommand creates the "files" cobra command.
func NewFilesCommand() *cobra.Command {
	flags := &filesFlags{}

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the PHP files Doctum will parse",
		Long: `List the files selected by the discovery filter: *.php under every
source directory, skipping tests, resources, behat and vendor subtrees.

Source entries that are not directories are expanded as glob patterns,
so "packages/*" selects every package directory.

Examples:
  doctumcfg files
  doctumcfg files --count
  doctumcfg files --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.count, "count", false, "Print only the number of files")

	return cmd
}

// filesResult is the --json output of the files command.
type filesResult struct {
	Filter string   `json:"filter"`
	Count  int      `json:"count"`
	Files  []string `json:"files"`
}

// runFiles runs discovery against the working directory.
func runFiles(w io.Writer, flags *filesFlags) error {
	cfg, cwd, err := loadConfiguration()
	if err != nil {
		return err
	}

	files, err := finder.DiscoverOS(cwd, cfg.Filter)
	if err != nil {
		if errors.Is(err, finder.ErrDirectoryNotFound) {
			return model.WrapCLIError(model.ExitSourceNotFound, "source directory not found", err)
		}
		return model.WrapCLIError(model.ExitGeneralError, "failed to list source files", err)
	}
	VerboseLog("Discovered %d files with %s", len(files), cfg.Filter)

	if IsJSONOutput() {
		if files == nil {
			files = []string{}
		}
		return printJSON(w, filesResult{Filter: cfg.Filter.String(), Count: len(files), Files: files})
	}

	if flags.count {
		fmt.Fprintln(w, len(files))
		return nil
	}
	for _, f := range files {
		fmt.Fprintln(w, f)
	}
	return nil
}
