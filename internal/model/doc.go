// Package model defines the domain types and value objects for the
// doctumcfg CLI.
//
// This package contains pure data structures with no external dependencies.
// The Configuration is a transient value: it is constructed once per
// invocation from the process environment and the working directory, handed
// to the documentation tool (or one of its renderers), and never persisted.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
