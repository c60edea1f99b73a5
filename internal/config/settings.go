// settings.go loads the optional project settings file.
//
// The settings file lets a project commit its own defaults (e.g. a custom
// title or a different source layout) instead of exporting environment
// variables in every shell. It is a JSONC document whose keys mirror the
// environment variables:
//
//	{
//	  // comments are allowed
//	  "source_dir": "lib:modules/*",
//	  "project_title": "Acme SDK",
//	  "server_port": 8080,
//	}
//
// Values from the file replace the built-in defaults only; a non-empty
// environment variable always takes precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/doctumcfg/internal/finder"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// SettingsFileNames are the file names searched for in the project
// directory, in priority order.
var SettingsFileNames = []string{".doctum.jsonc", ".doctum.json"}

// Settings is the parsed content of a project settings file. Fields that
// are omitted (or empty) leave the corresponding default untouched.
type Settings struct {
	SourceDir    string `json:"source_dir,omitempty"`
	BuildDir     string `json:"build_dir,omitempty"`
	CacheDir     string `json:"cache_dir,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`
	Theme        string `json:"theme,omitempty"`
	Config       string `json:"config,omitempty"`
	Flags        string `json:"flags,omitempty"`
	Image        string `json:"image,omitempty"`
	Code         string `json:"code,omitempty"`
	SourceRegex  string `json:"source_regex,omitempty"`

	// ServerPort is a pointer so that an explicit 0 can be told apart from
	// an omitted key during validation.
	ServerPort *int `json:"server_port,omitempty"`
}

// ValidationError represents a specific validation failure in a settings file.
type ValidationError struct {
	// Field is the JSON key that failed validation (e.g., "server_port").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings validation error: %s: %s", e.Field, e.Message)
}

// LoadSettings reads a settings file, strips JSONC comments and trailing
// commas, and parses it into a Settings struct. Unknown keys are ignored.
//
// Returns a CLIError with ExitInvalidSettings if the file cannot be read or
// parsed.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitInvalidSettings,
			fmt.Sprintf("failed to read settings file %s", path),
			err,
		)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses JSONC settings content. The name is only used in
// error messages.
func ParseSettings(data []byte, name string) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return nil, model.WrapCLIError(
			model.ExitInvalidSettings,
			fmt.Sprintf("failed to parse settings file %s", name),
			err,
		)
	}
	return &s, nil
}

// FindSettingsFile looks for a settings file in dir and returns its path.
// The boolean is false when none of SettingsFileNames exists.
func FindSettingsFile(dir string) (string, bool) {
	for _, name := range SettingsFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// ValidateSettings performs sanity checks on parsed settings. It returns
// a list of validation errors (empty list = valid settings).
//
// Checks performed:
//   - server_port, when present, must be in 1-65535
//   - source_dir must not contain empty ":"-separated segments
//   - source_regex, when present, must compile
//   - build_dir and cache_dir must not name the same directory
func ValidateSettings(s *Settings) []ValidationError {
	var errs []ValidationError

	if s.ServerPort != nil && (*s.ServerPort < 1 || *s.ServerPort > 65535) {
		errs = append(errs, ValidationError{
			Field:   "server_port",
			Message: fmt.Sprintf("port %d out of range (1-65535)", *s.ServerPort),
		})
	}

	if s.SourceDir != "" {
		for i, root := range SplitSourceDirs(s.SourceDir) {
			if root == "" {
				errs = append(errs, ValidationError{
					Field:   "source_dir",
					Message: fmt.Sprintf("entry %d is empty", i),
				})
			}
		}
	}

	if s.SourceRegex != "" {
		if _, err := finder.CompileSourceRegex(s.SourceRegex); err != nil {
			errs = append(errs, ValidationError{
				Field:   "source_regex",
				Message: err.Error(),
			})
		}
	}

	if s.BuildDir != "" && s.BuildDir == s.CacheDir {
		errs = append(errs, ValidationError{
			Field:   "cache_dir",
			Message: "cache_dir must differ from build_dir",
		})
	}

	return errs
}

// Defaults returns the built-in defaults with every non-empty settings
// value applied on top.
func (s *Settings) Defaults() Defaults {
	d := BuiltinDefaults()
	set := func(name, v string) {
		if v != "" {
			d[name] = v
		}
	}
	set(EnvSourceDir, s.SourceDir)
	set(EnvBuildDir, s.BuildDir)
	set(EnvCacheDir, s.CacheDir)
	set(EnvProjectTitle, s.ProjectTitle)
	set(EnvTheme, s.Theme)
	set(EnvConfig, s.Config)
	set(EnvFlags, s.Flags)
	set(EnvImage, s.Image)
	set(EnvCode, s.Code)
	set(EnvSourceRegex, s.SourceRegex)
	if s.ServerPort != nil {
		d[EnvServerPort] = strconv.Itoa(*s.ServerPort)
	}
	return d
}
