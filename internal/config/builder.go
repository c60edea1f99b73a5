package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// Build constructs the documentation configuration from env and cwd using
// the built-in defaults. It is a pure function: the same env and cwd always
// produce a deeply equal Configuration.
//
// Steps:
//  1. Read each setting, substituting the default when unset or empty
//  2. Resolve the build and cache directories against cwd if relative
//  3. Split the source directory list on ":"
//  4. Attach the fixed *.php discovery filter over the source roots
func Build(env Environment, cwd string) *model.Configuration {
	return BuildWithDefaults(env, cwd, BuiltinDefaults())
}

// BuildWithDefaults is Build with a caller-supplied set of defaults, used
// when a project settings file lowers some of them. Names missing from
// defaults fall back to the built-in value.
func BuildWithDefaults(env Environment, cwd string, defaults Defaults) *model.Configuration {
	merged := BuiltinDefaults()
	for name, v := range defaults {
		if v != "" {
			merged[name] = v
		}
	}

	sourceRoots := SplitSourceDirs(lookup(env, merged, EnvSourceDir))

	cfg := &model.Configuration{
		SourceRoots: sourceRoots,
		BuildDir:    ResolveDir(lookup(env, merged, EnvBuildDir), cwd),
		CacheDir:    ResolveDir(lookup(env, merged, EnvCacheDir), cwd),
		Title:       lookup(env, merged, EnvProjectTitle),
		Theme:       lookup(env, merged, EnvTheme),
		Filter:      NewPHPFilter(sourceRoots),
		ConfigPath:  lookup(env, merged, EnvConfig),
		Flags:       strings.Fields(lookup(env, merged, EnvFlags)),
		CodeDir:     lookup(env, merged, EnvCode),
		Image:       lookup(env, merged, EnvImage),
		SourceRegex: lookup(env, merged, EnvSourceRegex),
	}

	port, err := parsePort(lookup(env, merged, EnvServerPort))
	if err != nil {
		// A bad port only matters to "serve"; fall back rather than fail.
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("%s: %v, using %s", EnvServerPort, err, DefaultServerPort))
		port, _ = strconv.Atoi(DefaultServerPort)
	}
	cfg.ServerPort = port

	return cfg
}

// FromProcess builds the configuration from the real process environment
// and working directory. Failure to determine the working directory is the
// only error and is returned to the caller unchanged apart from context.
func FromProcess(defaults Defaults) (*model.Configuration, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return BuildWithDefaults(ProcessEnvironment(), cwd, defaults), nil
}

// ResolveDir returns dir unchanged when it is already absolute according to
// the platform rules (filepath.IsAbs); otherwise cwd and a path separator
// are prepended. The result is deliberately not cleaned, so the relative
// part is kept verbatim.
//
// Examples (Unix):
//
//	ResolveDir("out/api", "/home/u/proj")  → "/home/u/proj/out/api"
//	ResolveDir("/tmp/api", "/home/u/proj") → "/tmp/api"
func ResolveDir(dir, cwd string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return cwd + string(filepath.Separator) + dir
}

// SplitSourceDirs splits a colon-separated list of source roots. Empty
// segments are kept as-is; the order of the input is preserved.
func SplitSourceDirs(s string) []string {
	return strings.Split(s, ":")
}

// NewPHPFilter returns the discovery filter used for every
// configuration: recursive, matching *.php, and excluding the tests,
// resources, behat and vendor subtrees at any depth.
func NewPHPFilter(roots []string) model.FileFilter {
	r := make([]string, len(roots))
	copy(r, roots)
	return model.FileFilter{
		Roots:       r,
		NamePattern: PHPNamePattern,
		ExcludeDirs: ExcludedDirs(),
		Recursive:   true,
	}
}

// parsePort converts a port setting to an int in the range 1-65535.
func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range (1-65535)", port)
	}
	return port, nil
}
