package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/doctumcfg/internal/config"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// Format names accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatPHP  = "php"
	FormatEnv  = "env"
)

// Write renders cfg in the named format. FormatText is not handled here
// because its layout belongs to the CLI.
func Write(w io.Writer, format string, cfg *model.Configuration) error {
	switch format {
	case FormatJSON:
		return JSON(w, cfg)
	case FormatYAML:
		return YAML(w, cfg)
	case FormatPHP:
		return PHP(w, cfg)
	case FormatEnv:
		return Shell(w, cfg, false)
	default:
		return fmt.Errorf("unsupported format %q (valid: json, yaml, php, env)", format)
	}
}

// JSON writes cfg as indented JSON.
func JSON(w io.Writer, cfg *model.Configuration) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// YAML writes cfg as a YAML document with two-space indentation.
func YAML(w io.Writer, cfg *model.Configuration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return enc.Close()
}

// Values returns the resolved value of every environment variable for cfg,
// keyed by variable name. Build and cache directories are the absolute
// resolved paths, not the raw input.
func Values(cfg *model.Configuration) map[string]string {
	return map[string]string{
		config.EnvCode:         cfg.CodeDir,
		config.EnvConfig:       cfg.ConfigPath,
		config.EnvProjectTitle: cfg.Title,
		config.EnvSourceDir:    strings.Join(cfg.SourceRoots, ":"),
		config.EnvBuildDir:     cfg.BuildDir,
		config.EnvCacheDir:     cfg.CacheDir,
		config.EnvFlags:        strings.Join(cfg.Flags, " "),
		config.EnvServerPort:   strconv.Itoa(cfg.ServerPort),
		config.EnvTheme:        cfg.Theme,
		config.EnvImage:        cfg.Image,
		config.EnvSourceRegex:  cfg.SourceRegex,
	}
}

// Shell writes one KEY='value' line per variable, in config.Variables
// order. With export set every line is prefixed with "export ".
func Shell(w io.Writer, cfg *model.Configuration, export bool) error {
	values := Values(cfg)
	prefix := ""
	if export {
		prefix = "export "
	}
	for _, name := range config.Variables() {
		if _, err := fmt.Fprintf(w, "%s%s=%s\n", prefix, name, ShellQuote(values[name])); err != nil {
			return err
		}
	}
	return nil
}

// Defaults writes one DEFAULT_KEY='value' line per variable, in
// config.Variables order.
func Defaults(w io.Writer, defaults config.Defaults) error {
	for _, name := range config.Variables() {
		if _, err := fmt.Fprintf(w, "DEFAULT_%s=%s\n", name, ShellQuote(defaults[name])); err != nil {
			return err
		}
	}
	return nil
}

// ShellQuote quotes s for POSIX shells using single quotes. An embedded
// single quote is written as '\''.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
