package executor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error kinds. Use errors.Is against these; the concrete value is *Error.
var (
	ErrCompilation          = errors.New("compilation error")
	ErrTimeout              = errors.New("execution timeout")
	ErrRuntime              = errors.New("runtime error")
	ErrToolchainUnavailable = errors.New("toolchain unavailable")
)

// Error is a failure produced by an adapter or runner.
// Message is already user-facing ("Java compilation error: ...").
type Error struct {
	Kind     error
	Language Language
	Message  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func compilationError(lang Language, detail string) *Error {
	return &Error{
		Kind:     ErrCompilation,
		Language: lang,
		Message:  fmt.Sprintf("%s compilation error: %s", lang.DisplayName(), strings.TrimSpace(detail)),
	}
}

func runtimeError(lang Language, detail string) *Error {
	return &Error{
		Kind:     ErrRuntime,
		Language: lang,
		Message:  fmt.Sprintf("%s execution error: %s", lang.DisplayName(), strings.TrimSpace(detail)),
	}
}

func timeoutError(lang Language, phase string, limit time.Duration) *Error {
	return &Error{
		Kind:     ErrTimeout,
		Language: lang,
		Message:  fmt.Sprintf("%s %s timeout (%s)", lang.DisplayName(), phase, formatSeconds(limit)),
	}
}

// UnavailableError reports a missing interpreter or compiler.
// Exported for runners living outside this package.
func UnavailableError(lang Language, binary string) *Error {
	return &Error{
		Kind:     ErrToolchainUnavailable,
		Language: lang,
		Message:  fmt.Sprintf("%s toolchain not installed (%q not found)", lang.DisplayName(), binary),
	}
}

// statusOf maps an adapter error onto a Status.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrCompilation):
		return StatusCompilationError
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrRuntime):
		return StatusRuntimeError
	case errors.Is(err, ErrToolchainUnavailable):
		return StatusToolchainUnavailable
	default:
		return StatusInternalError
	}
}

// formatSeconds renders 30s as "30 seconds" and 1500ms as "1.5 seconds".
func formatSeconds(d time.Duration) string {
	s := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	if s == "1" {
		return "1 second"
	}
	return s + " seconds"
}
