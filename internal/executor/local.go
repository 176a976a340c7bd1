package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay is how long Wait keeps draining pipes after the process was
// killed. Grandchildren that inherited stdout would otherwise block Wait.
const waitDelay = 2 * time.Second

// LocalRunner runs commands directly on the host with os/exec.
type LocalRunner struct {
	maxOutput int
	logger    *slog.Logger
}

var _ Runner = (*LocalRunner)(nil)

// NewLocalRunner creates a runner that captures at most maxOutput bytes of
// stdout and of stderr per command.
func NewLocalRunner(maxOutput int, logger *slog.Logger) *LocalRunner {
	return &LocalRunner{maxOutput: maxOutput, logger: logger}
}

// Run starts the command in its own process group and waits for it.
// When ctx is done the whole group is killed, so a program that forked
// helpers cannot outlive its budget.
func (r *LocalRunner) Run(ctx context.Context, c Command) (*Output, error) {
	bin, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, UnavailableError(c.Language, c.Name)
	}

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	stdout := NewLimitedBuffer(r.maxOutput)
	stderr := NewLimitedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	out := &Output{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}

	r.logger.Debug("process finished",
		slog.String("language", string(c.Language)),
		slog.String("command", c.Name),
		slog.Duration("elapsed", out.Duration),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			out.TimedOut = true
			return out, nil
		}
		return out, ctxErr
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		case errors.Is(runErr, exec.ErrWaitDelay):
			// The process exited; a leftover child held the pipes open.
			return out, nil
		default:
			return nil, fmt.Errorf("executor: running %s: %w", c.Name, runErr)
		}
	}

	return out, nil
}
