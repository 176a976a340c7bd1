package executor

import (
	"bytes"
	"context"
	"time"
)

// outputTruncatedMsg is appended when captured output hit the limit.
const outputTruncatedMsg = "\n... output truncated ..."

// Command describes one child process: a compiler or a program run.
type Command struct {
	Language Language
	// Dir is the working directory, always the execution's workspace.
	Dir   string
	Name  string
	Args  []string
	Stdin string
	// Env holds extra KEY=value pairs on top of the runner's environment.
	Env []string
}

// Output is what a Runner observed. A non-zero ExitCode is not an error;
// Run only returns errors for failures to launch (or a missing toolchain).
type Output struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	TimedOut  bool
	Truncated bool
	Duration  time.Duration
}

// Runner starts a Command and waits for it. Implementations must stop the
// process when ctx is done and report that as Output.TimedOut when the
// context's deadline was exceeded.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// LimitedBuffer is a bytes.Buffer that stops accepting writes after a limit.
// Writes past the limit are discarded but reported as successful so the
// child process is not killed by EPIPE.
type LimitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

// NewLimitedBuffer returns a buffer that keeps at most limit bytes.
func NewLimitedBuffer(limit int) *LimitedBuffer {
	return &LimitedBuffer{limit: limit}
}

func (lb *LimitedBuffer) Write(p []byte) (int, error) {
	if lb.truncated {
		return len(p), nil
	}

	remaining := lb.limit - lb.buf.Len()
	if remaining <= 0 {
		lb.truncated = true
		return len(p), nil
	}

	n := len(p)
	if n > remaining {
		lb.truncated = true
		p = p[:remaining]
	}
	lb.buf.Write(p)
	return n, nil
}

// Truncated reports whether any write was cut off.
func (lb *LimitedBuffer) Truncated() bool {
	return lb.truncated
}

// String returns the captured text, with a notice if it was truncated.
func (lb *LimitedBuffer) String() string {
	if lb.truncated {
		return lb.buf.String() + outputTruncatedMsg
	}
	return lb.buf.String()
}
