// runner.go runs the Doctum generator inside a container.
//
// The project directory is bind-mounted at the configuration's CodeDir
// (TLR_CODE, "/code" by default) and used as the working directory, so
// relative paths in the environment resolve the same way they would on
// the host. Build and cache directories outside the project are mounted
// at their own absolute path.
package docker

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/mmr-tortoise/doctumcfg/internal/config"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// Label keys set on every container started by the runner, so leftovers
// can be found with `docker ps -a --filter label=doctum.managed-by`.
const (
	LabelManagedBy = "doctum.managed-by"
	LabelProject   = "doctum.project"
	ManagedByValue = "doctumcfg"
)

// engine is the subset of the Docker SDK client used by this package.
// *client.Client satisfies it; tests substitute a fake.
type engine interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

// Spec is everything needed to create the Doctum container. It is built by
// NewSpec without touching Docker, which keeps the path mapping testable.
type Spec struct {
	Image      string
	Cmd        []string
	Env        []string
	WorkingDir string
	Mounts     []mount.Mount
	Labels     map[string]string
}

// NewSpec maps cfg onto a container running "doctum update" against the
// project at projectDir (an absolute host path).
//
// Path mapping rules:
//   - the project is mounted at cfg.CodeDir, which is also the working dir
//   - paths inside the project are passed relative to it
//   - absolute paths outside the project are mounted at the same path
//   - relative source roots that climb out of the project ("../lib") are
//     made absolute first and mounted like any other outside path
func NewSpec(cfg *model.Configuration, projectDir string) *Spec {
	codeDir := cfg.CodeDir
	if codeDir == "" {
		codeDir = config.DefaultCode
	}

	mounts := map[string]mount.Mount{
		codeDir: {Type: mount.TypeBind, Source: projectDir, Target: codeDir},
	}

	mapPath := func(p string, mountIt bool) string {
		if !filepath.IsAbs(p) {
			return filepath.ToSlash(p)
		}
		if rel, ok := within(projectDir, p); ok {
			return rel
		}
		target := filepath.ToSlash(p)
		if mountIt {
			mounts[target] = mount.Mount{Type: mount.TypeBind, Source: p, Target: target}
		}
		return target
	}

	roots := make([]string, 0, len(cfg.SourceRoots))
	for _, r := range cfg.SourceRoots {
		// A relative root climbing out of the project would resolve under
		// the parent of the code dir; treat it as the absolute host path.
		if r != "" && !filepath.IsAbs(r) {
			abs := filepath.Join(projectDir, r)
			if _, ok := within(projectDir, abs); !ok {
				r = abs
			}
		}
		// Glob roots cannot be mounted directly; mount their parent.
		if filepath.IsAbs(r) && strings.ContainsAny(r, "*?[") {
			if _, ok := within(projectDir, r); !ok {
				parent := filepath.Dir(r)
				mounts[filepath.ToSlash(parent)] = mount.Mount{
					Type: mount.TypeBind, Source: parent, Target: filepath.ToSlash(parent), ReadOnly: true,
				}
			}
			roots = append(roots, mapPath(r, false))
			continue
		}
		roots = append(roots, mapPath(r, true))
	}

	env := []string{
		config.EnvCode + "=" + codeDir,
		config.EnvConfig + "=" + cfg.ConfigPath,
		config.EnvProjectTitle + "=" + cfg.Title,
		config.EnvSourceDir + "=" + strings.Join(roots, ":"),
		config.EnvBuildDir + "=" + mapPath(cfg.BuildDir, true),
		config.EnvCacheDir + "=" + mapPath(cfg.CacheDir, true),
		config.EnvFlags + "=" + strings.Join(cfg.Flags, " "),
		config.EnvTheme + "=" + cfg.Theme,
		config.EnvSourceRegex + "=" + cfg.SourceRegex,
	}

	targets := make([]string, 0, len(mounts))
	for t := range mounts {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	ms := make([]mount.Mount, 0, len(targets))
	for _, t := range targets {
		ms = append(ms, mounts[t])
	}

	cmd := append([]string{"doctum", "update", cfg.ConfigPath}, cfg.Flags...)

	return &Spec{
		Image:      cfg.Image,
		Cmd:        cmd,
		Env:        env,
		WorkingDir: codeDir,
		Mounts:     ms,
		Labels: map[string]string{
			LabelManagedBy: ManagedByValue,
			LabelProject:   projectDir,
		},
	}
}

// within reports whether p lies inside dir and, if so, returns the
// slash-separated relative path ("." for dir itself).
func within(dir, p string) (string, bool) {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return path.Clean(rel), true
}

// RunOptions control a single RunDoctum invocation.
type RunOptions struct {
	// Pull fetches the image before creating the container.
	Pull bool

	// Stdout and Stderr receive the container's demultiplexed output.
	// A nil writer discards that stream.
	Stdout io.Writer
	Stderr io.Writer
}

// RunDoctum creates the container described by spec, starts it, streams its
// logs, and waits for it to exit. The container is always removed
// afterwards, even when ctx is cancelled.
//
// A non-zero exit status is reported as a CLIError with
// ExitContainerFailed; Docker API failures keep ExitDockerNotRunning.
func RunDoctum(ctx context.Context, c *Client, spec *Spec, opts RunOptions) error {
	api := c.inner

	if opts.Pull {
		rc, err := api.ImagePull(ctx, spec.Image, image.PullOptions{})
		if err != nil {
			return model.WrapCLIError(model.ExitDockerNotRunning,
				fmt.Sprintf("failed to pull image %s", spec.Image), err)
		}
		// The pull only completes once the progress stream is drained.
		_, copyErr := io.Copy(io.Discard, rc)
		_ = rc.Close()
		if copyErr != nil {
			return model.WrapCLIError(model.ExitDockerNotRunning,
				fmt.Sprintf("failed to pull image %s", spec.Image), copyErr)
		}
	}

	created, err := api.ContainerCreate(ctx,
		&container.Config{
			Image:      spec.Image,
			Cmd:        spec.Cmd,
			Env:        spec.Env,
			WorkingDir: spec.WorkingDir,
			Labels:     spec.Labels,
		},
		&container.HostConfig{Mounts: spec.Mounts},
		nil, nil, "")
	if err != nil {
		return model.WrapCLIError(model.ExitContainerFailed,
			fmt.Sprintf("failed to create container from %s", spec.Image), err)
	}
	defer func() {
		_ = api.ContainerRemove(context.Background(), created.ID, container.RemoveOptions{Force: true})
	}()

	// Register the wait before starting so a fast exit is not missed.
	waitCh, errCh := api.ContainerWait(ctx, created.ID, container.WaitConditionNextExit)

	if err := api.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return model.WrapCLIError(model.ExitContainerFailed, "failed to start container", err)
	}

	logs, err := api.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return model.WrapCLIError(model.ExitContainerFailed, "failed to attach to container logs", err)
	}
	_, copyErr := stdcopy.StdCopy(writerOrDiscard(opts.Stdout), writerOrDiscard(opts.Stderr), logs)
	_ = logs.Close()
	if copyErr != nil && ctx.Err() == nil {
		return model.WrapCLIError(model.ExitContainerFailed, "failed to read container logs", copyErr)
	}

	select {
	case err := <-errCh:
		return model.WrapCLIError(model.ExitContainerFailed, "failed waiting for container", err)
	case res := <-waitCh:
		if res.Error != nil {
			return model.NewCLIError(model.ExitContainerFailed,
				fmt.Sprintf("container wait failed: %s", res.Error.Message))
		}
		if res.StatusCode != 0 {
			return model.NewCLIError(model.ExitContainerFailed,
				fmt.Sprintf("doctum exited with status %d", res.StatusCode))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
