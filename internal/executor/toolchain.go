package executor

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// toolchain wraps a Runner with the time budgets. Every adapter goes through
// compile or run, so no invocation can escape its wall-clock limit.
type toolchain struct {
	runner         Runner
	runTimeout     time.Duration
	compileTimeout time.Duration
}

// compile runs a compiler. A non-zero exit becomes a compilation error
// carrying the compiler's diagnostics.
func (t *toolchain) compile(ctx context.Context, c Command) error {
	ctx, cancel := context.WithTimeout(ctx, t.compileTimeout)
	defer cancel()

	out, err := t.runner.Run(ctx, c)
	if err != nil {
		return err
	}
	if out.TimedOut {
		return timeoutError(c.Language, "compilation", t.compileTimeout)
	}
	if out.ExitCode != 0 {
		return compilationError(c.Language, diagnostics(out))
	}
	return nil
}

// run executes a program or interpreter and returns its raw stdout.
func (t *toolchain) run(ctx context.Context, c Command) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.runTimeout)
	defer cancel()

	out, err := t.runner.Run(ctx, c)
	if err != nil {
		return "", err
	}
	if out.TimedOut {
		return "", timeoutError(c.Language, "execution", t.runTimeout)
	}
	if out.ExitCode != 0 {
		return "", runtimeError(c.Language, diagnostics(out))
	}
	return out.Stdout, nil
}

// diagnostics picks the most useful text from a failed invocation.
// Some compilers (mcs, javac on some JDKs) write errors to stdout.
func diagnostics(out *Output) string {
	if s := strings.TrimSpace(out.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(out.Stdout); s != "" {
		return s
	}
	return fmt.Sprintf("process exited with status %d", out.ExitCode)
}

// withNewline terminates stdin input with a newline, as line-reading
// programs (input(), Scanner.nextLine, getline) expect one.
func withNewline(input string) string {
	if input == "" || strings.HasSuffix(input, "\n") {
		return input
	}
	return input + "\n"
}
