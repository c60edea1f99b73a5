// Package render serializes a model.Configuration into the formats the
// surrounding tooling consumes:
//   - PHP: a self-contained Doctum config file with every value baked in
//   - JSON and YAML: machine-readable dumps for scripts and CI
//   - Shell: KEY='value' assignments, suitable for eval or an env file
package render
