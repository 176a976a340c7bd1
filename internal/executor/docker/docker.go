// Package docker runs executor Commands inside throwaway containers.
//
// Every Command gets its own container: no network, read-only root
// filesystem, memory/CPU/pids limits. The workspace root is bind-mounted at
// the same path it has on the host, so the adapters' absolute paths work
// unchanged. When the time budget runs out the container is force-removed,
// which takes the program down with it.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/codesense/internal/executor"
)

// Exit codes a shell uses for "cannot execute" and "command not found".
const (
	exitNotExecutable = 126
	exitNotFound      = 127
)

// Runner implements executor.Runner using Docker.
type Runner struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pools  map[executor.Language]*Pool
}

var _ executor.Runner = (*Runner)(nil)

// New connects to the Docker daemon, pulls every configured image and
// starts one pool per image. An image that cannot be pulled only disables
// its languages; New fails if no image is usable at all.
func New(cfg Config, logger *slog.Logger) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker: creating client: %w", err)
	}

	r := &Runner{
		cli:    cli,
		config: cfg,
		logger: logger,
		pools:  make(map[executor.Language]*Pool),
	}

	byImage := make(map[string]*Pool)
	for lang, img := range cfg.Images {
		pool, ok := byImage[img]
		if !ok {
			if err := r.pullImage(img); err != nil {
				logger.Warn("image unavailable, language disabled",
					slog.String("language", string(lang)),
					slog.String("image", img),
					slog.String("error", err.Error()),
				)
				continue
			}
			pool = NewPool(cli, img, cfg, logger)
			pool.Start()
			byImage[img] = pool
		}
		r.pools[lang] = pool
	}

	if len(r.pools) == 0 {
		cli.Close()
		return nil, fmt.Errorf("docker: no execution image could be pulled")
	}

	return r, nil
}

func (r *Runner) pullImage(img string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	r.logger.Info("ensuring docker image is available", slog.String("image", img))
	reader, err := r.cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling %s: %w", img, err)
	}
	defer reader.Close()

	// Read everything to block until the pull is complete
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("pulling %s: %w", img, err)
	}
	return nil
}

// Close stops every pool and the docker client.
func (r *Runner) Close() error {
	stopped := make(map[*Pool]bool)
	for _, pool := range r.pools {
		if !stopped[pool] {
			pool.Stop()
			stopped[pool] = true
		}
	}
	return r.cli.Close()
}

// Run executes c in a fresh container from the language's pool.
func (r *Runner) Run(ctx context.Context, c executor.Command) (*executor.Output, error) {
	pool, ok := r.pools[c.Language]
	if !ok {
		return nil, executor.UnavailableError(c.Language, c.Name)
	}

	start := time.Now()

	containerID, err := pool.GetContainer(ctx)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &executor.Output{TimedOut: true, ExitCode: -1, Duration: time.Since(start)}, nil
		}
		return nil, fmt.Errorf("docker: waiting for container: %w", err)
	}

	// Always remove the container we acquired; this is also what stops a
	// program that overran its budget.
	defer pool.removeContainer(containerID)

	execResp, err := r.cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		AttachStdin:  c.Stdin != "",
		AttachStdout: true,
		AttachStderr: true,
		WorkingDir:   c.Dir,
		Env:          c.Env,
		Cmd:          append([]string{c.Name}, c.Args...),
	})
	if err != nil {
		return nil, fmt.Errorf("docker: creating exec: %w", err)
	}

	attach, err := r.cli.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("docker: attaching to exec: %w", err)
	}
	defer attach.Close()

	if c.Stdin != "" {
		if _, err := io.WriteString(attach.Conn, c.Stdin); err != nil {
			return nil, fmt.Errorf("docker: writing stdin: %w", err)
		}
		if err := attach.CloseWrite(); err != nil {
			return nil, fmt.Errorf("docker: closing stdin: %w", err)
		}
	}

	stdout := executor.NewLimitedBuffer(r.config.MaxOutputBytes)
	stderr := executor.NewLimitedBuffer(r.config.MaxOutputBytes)

	done := make(chan struct{})
	go func() {
		// stdcopy demultiplexes the single attach stream into stdout/stderr
		_, _ = stdcopy.StdCopy(stdout, stderr, attach.Reader)
		close(done)
	}()

	out := &executor.Output{}

	select {
	case <-done:
		inspectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		inspect, err := r.cli.ContainerExecInspect(inspectCtx, execResp.ID)
		if err != nil {
			return nil, fmt.Errorf("docker: inspecting exec: %w", err)
		}
		out.ExitCode = inspect.ExitCode
	case <-ctx.Done():
		// Close the stream so the copy goroutine returns, then wait for it
		// before reading the buffers.
		attach.Close()
		<-done
		out.ExitCode = -1
		if ctx.Err() == context.DeadlineExceeded {
			out.TimedOut = true
		}
	}

	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	out.Truncated = stdout.Truncated() || stderr.Truncated()
	out.Duration = time.Since(start)

	r.logger.Debug("container execution completed",
		slog.String("language", string(c.Language)),
		slog.String("command", c.Name),
		slog.Int("exitCode", out.ExitCode),
		slog.Duration("elapsed", out.Duration),
	)

	if !out.TimedOut && (out.ExitCode == exitNotFound || out.ExitCode == exitNotExecutable) && out.Stdout == "" {
		return nil, executor.UnavailableError(c.Language, c.Name)
	}
	if ctx.Err() != nil && !out.TimedOut {
		return out, ctx.Err()
	}

	return out, nil
}
