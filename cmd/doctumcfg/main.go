// Package main is the entry point for the doctumcfg CLI.
//
// doctumcfg builds the Doctum API documentation settings from DOCTUM_*
// environment variables and applies them: it renders the PHP config file,
// runs Doctum in a container, and serves the generated HTML. All
// functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags.
// During development they default to "dev", "none", and "unknown".
package main

import (
	"github.com/mmr-tortoise/doctumcfg/internal/cli"
)

// version, commit, and date are set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.2.0 -X main.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package before the
	// root command reads it.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
