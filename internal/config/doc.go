// Package config builds the Doctum documentation configuration from the
// process environment.
//
// The builder is a pure function of an explicit Environment and a working
// directory string, so it can be tested without touching real process
// state. Every setting follows the same falsy-default policy: a variable
// that is unset and a variable set to the empty string are treated alike
// and replaced by the default value.
//
// Defaults can be lowered into a project settings file (.doctum.jsonc),
// which is parsed with github.com/tidwall/jsonc so comments and trailing
// commas are allowed. The settings file never overrides a non-empty
// environment variable.
package config
