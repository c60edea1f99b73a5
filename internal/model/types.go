package model

import (
	"fmt"
	"path"
	"strings"
)

// Configuration is the complete set of parameters handed to the Doctum
// documentation generator. The first five fields mirror the settings that
// the generator's own config file understands; the remaining fields drive
// the surrounding tooling (container runs, the static server).
//
// Invariant: BuildDir and CacheDir are always absolute by the time a
// Configuration is returned from the builder.
type Configuration struct {
	// SourceRoots lists the directories (or glob patterns such as
	// "packages/*") that are searched for PHP sources, in the order given.
	SourceRoots []string `json:"source_roots" yaml:"source_roots"`

	// BuildDir is the absolute directory the rendered HTML is written to.
	BuildDir string `json:"build_dir" yaml:"build_dir"`

	// CacheDir is the absolute directory for the generator's parse cache.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Title is the project title shown in the generated documentation.
	Title string `json:"title" yaml:"title"`

	// Theme is the name of the rendering theme.
	Theme string `json:"theme" yaml:"theme"`

	// Filter is the file discovery filter over SourceRoots.
	Filter FileFilter `json:"filter" yaml:"filter"`

	// ConfigPath is where the rendered Doctum PHP config is expected to live.
	ConfigPath string `json:"config_path" yaml:"config_path"`

	// Flags are extra command-line flags for "doctum update".
	Flags []string `json:"flags" yaml:"flags"`

	// ServerPort is the TCP port used when serving BuildDir.
	ServerPort int `json:"server_port" yaml:"server_port"`

	// CodeDir is the mount point of the project inside the Doctum container.
	CodeDir string `json:"code_dir" yaml:"code_dir"`

	// Image is the container image used to run Doctum.
	Image string `json:"image" yaml:"image"`

	// SourceRegex selects which changed files trigger a rebuild in watch
	// mode. It uses basic regular expression syntax, as find and grep do.
	SourceRegex string `json:"source_regex" yaml:"source_regex"`

	// Warnings collects non-fatal problems found while building, such as a
	// non-numeric server port that was replaced by its default.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FileFilter is a declarative description of which files to enumerate:
// the roots to search, the file name pattern to match, and the directory
// names whose subtrees are skipped at any depth.
type FileFilter struct {
	// Roots are the search roots. Entries that do not name an existing
	// directory are treated as glob patterns.
	Roots []string `json:"roots" yaml:"roots"`

	// NamePattern is a glob matched against file base names (e.g. "*.php").
	NamePattern string `json:"name_pattern" yaml:"name_pattern"`

	// ExcludeDirs are directory base names pruned from the walk.
	ExcludeDirs []string `json:"exclude_dirs" yaml:"exclude_dirs"`

	// Recursive enables descent into subdirectories.
	Recursive bool `json:"recursive" yaml:"recursive"`
}

// Excludes reports whether a directory with the given name (or slash path,
// in which case only its base name is considered) is pruned by the filter.
func (f FileFilter) Excludes(dir string) bool {
	base := path.Base(strings.TrimSuffix(dir, "/"))
	for _, ex := range f.ExcludeDirs {
		if base == ex {
			return true
		}
	}
	return false
}

// String returns a compact human-readable description of the filter,
// used by the text output of the "show" command.
//
// Example:
//
//	*.php in [src packages/*] excluding [tests resources behat vendor]
func (f FileFilter) String() string {
	return fmt.Sprintf("%s in %v excluding %v", f.NamePattern, f.Roots, f.ExcludeDirs)
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitSourceNotFound indicates a source root did not resolve to any
	// existing directory.
	ExitSourceNotFound ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitPortUnavailable indicates the server port is already in use.
	ExitPortUnavailable ExitCode = 4

	// ExitInvalidSettings indicates the project settings file could not be
	// read, parsed, or validated.
	ExitInvalidSettings ExitCode = 5

	// ExitContainerFailed indicates the Doctum container exited non-zero
	// or could not be run.
	ExitContainerFailed ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
