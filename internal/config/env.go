package config

import (
	"os"
	"strings"
)

// Environment variable names read by the builder.
const (
	EnvSourceDir    = "DOCTUM_SOURCE_DIR"
	EnvBuildDir     = "DOCTUM_BUILD_DIR"
	EnvCacheDir     = "DOCTUM_CACHE_DIR"
	EnvProjectTitle = "DOCTUM_PROJECT_TITLE"
	EnvTheme        = "DOCTUM_THEME"
	EnvConfig       = "DOCTUM_CONFIG"
	EnvFlags        = "DOCTUM_FLAGS"
	EnvServerPort   = "DOCTUM_SERVER_PORT"
	EnvSourceRegex  = "DOCTUM_SOURCE_REGEX"
	EnvImage        = "DOCTUM_IMAGE"
	EnvCode         = "TLR_CODE"
)

// Environment is a read-only view of environment variables. Get returns the
// empty string for variables that are not set.
type Environment interface {
	Get(name string) string
}

// MapEnvironment is an Environment backed by an explicit map. It is what
// tests use, and what ProcessEnvironment snapshots the real environment into.
type MapEnvironment map[string]string

// Get returns the value stored under name, or "" if absent.
func (m MapEnvironment) Get(name string) string {
	return m[name]
}

// ProcessEnvironment returns a snapshot of the current process environment.
// Later changes to the process environment are not reflected in the result.
func ProcessEnvironment() MapEnvironment {
	env := make(MapEnvironment)
	for _, kv := range os.Environ() {
		// os.Environ yields "KEY=value"; a value may itself contain "=".
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[name] = value
	}
	return env
}

// lookup applies the falsy-default policy: the environment value wins only
// when it is non-empty.
func lookup(env Environment, defaults Defaults, name string) string {
	if v := env.Get(name); v != "" {
		return v
	}
	return defaults[name]
}
