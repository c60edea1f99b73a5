package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/doctumcfg/internal/config"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// loadConfiguration builds the configuration every subcommand works from.
//
// Precedence, lowest first: built-in defaults, the project settings file
// (--settings or one found in the working directory), then non-empty
// DOCTUM_* environment variables. The working directory is returned too
// since discovery and the container mount are relative to it.
func loadConfiguration() (*model.Configuration, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", model.WrapCLIError(model.ExitGeneralError,
			"failed to get current directory", err)
	}
	return loadConfigurationIn(cwd)
}

// loadConfigurationIn is loadConfiguration for an explicit working
// directory.
func loadConfigurationIn(cwd string) (*model.Configuration, string, error) {
	// Step 1: Apply the settings file, if any, over the built-in defaults.
	defaults, err := loadDefaults(cwd)
	if err != nil {
		return nil, "", err
	}

	// Step 2: Layer the process environment on top. The same cwd is used
	// for resolution and returned to the caller.
	cfg := config.BuildWithDefaults(config.ProcessEnvironment(), cwd, defaults)

	for _, w := range cfg.Warnings {
		log.Warn(w)
	}
	log.WithFields(logrus.Fields{
		"source_roots": strings.Join(cfg.SourceRoots, ":"),
		"build_dir":    cfg.BuildDir,
		"cache_dir":    cfg.CacheDir,
	}).Debug("configuration built")

	return cfg, cwd, nil
}

// loadDefaults returns the defaults to build with. Without a settings file
// these are the built-in defaults.
func loadDefaults(cwd string) (config.Defaults, error) {
	path := settingsPath
	if path == "" {
		found, ok := config.FindSettingsFile(cwd)
		if !ok {
			VerboseLog("No settings file in %s", cwd)
			return config.BuiltinDefaults(), nil
		}
		path = found
	}
	VerboseLog("Loading settings from %s", path)

	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}

	if errs := config.ValidateSettings(s); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, model.NewCLIError(model.ExitInvalidSettings,
			fmt.Sprintf("invalid settings file %s: %s", path, strings.Join(msgs, "; ")))
	}

	return s.Defaults(), nil
}
