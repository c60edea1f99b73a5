// Package docker provides Docker Engine API wrappers for running the
// Doctum generator in a container.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Mapping a model.Configuration onto a container spec (environment,
//     bind mounts, working directory, command)
//   - The container lifecycle for one generator run: pull, create, start,
//     stream logs, wait, remove
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
