package config

// Built-in default values, one per environment variable.
const (
	DefaultSourceDir    = "src:packages/*"
	DefaultBuildDir     = "docs/build/html/api"
	DefaultCacheDir     = "docs/cache/html/api"
	DefaultProjectTitle = "API Documentation"
	DefaultTheme        = "default"
	DefaultConfig       = "/etc/doctum/doctum.conf.php"
	DefaultFlags        = "-v --force"
	DefaultServerPort   = "8001"
	DefaultSourceRegex  = `\.\(php\|txt\|rst\)$`
	DefaultImage        = "korowai/doctum:latest"
	DefaultCode         = "/code"
)

// PHPNamePattern is the file name glob used by the discovery filter.
const PHPNamePattern = "*.php"

// excludedDirs are the subtree names that are never scanned for sources.
// The order matches the order the generator's finder applies them in.
var excludedDirs = []string{"tests", "resources", "behat", "vendor"}

// ExcludedDirs returns a fresh copy of the directory names that the
// discovery filter always skips.
func ExcludedDirs() []string {
	out := make([]string, len(excludedDirs))
	copy(out, excludedDirs)
	return out
}

// Defaults maps environment variable names to the value used when the
// variable is unset or empty.
type Defaults map[string]string

// variableOrder is the stable order used when listing settings, e.g. for
// shell export output.
var variableOrder = []string{
	EnvCode,
	EnvConfig,
	EnvProjectTitle,
	EnvSourceDir,
	EnvBuildDir,
	EnvCacheDir,
	EnvFlags,
	EnvServerPort,
	EnvSourceRegex,
	EnvTheme,
	EnvImage,
}

// Variables returns the names of all environment variables understood by
// the builder, in a stable order.
func Variables() []string {
	out := make([]string, len(variableOrder))
	copy(out, variableOrder)
	return out
}

// BuiltinDefaults returns a fresh copy of the built-in defaults. Callers may
// modify the result freely.
func BuiltinDefaults() Defaults {
	return Defaults{
		EnvSourceDir:    DefaultSourceDir,
		EnvBuildDir:     DefaultBuildDir,
		EnvCacheDir:     DefaultCacheDir,
		EnvProjectTitle: DefaultProjectTitle,
		EnvTheme:        DefaultTheme,
		EnvConfig:       DefaultConfig,
		EnvFlags:        DefaultFlags,
		EnvServerPort:   DefaultServerPort,
		EnvSourceRegex:  DefaultSourceRegex,
		EnvImage:        DefaultImage,
		EnvCode:         DefaultCode,
	}
}
