// Package executor runs user-submitted snippets through per-language
// toolchain adapters.
//
// EXECUTION FLOW:
//
//	Dispatcher.Execute
//	  → pick the adapter for the request's language (or the simulated path)
//	  → create an isolated Workspace (one directory per execution)
//	  → adapter writes sources, compiles, runs via a Runner
//	  → Workspace is removed, whatever happened
//	  → the outcome is folded into a Result
//
// Adapters never spawn processes themselves. They describe a Command and
// hand it to a Runner (LocalRunner for host toolchains, docker.Runner for
// containers), so the time budget and output limits are applied in one place.
package executor

import (
	"context"
	"strings"
)

// Language identifies a supported (or requested) programming language.
type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
	Java       Language = "java"
	Cpp        Language = "cpp"
	C          Language = "c"
	CSharp     Language = "csharp"
)

// aliases maps the spellings clients commonly send onto canonical names.
var aliases = map[string]Language{
	"js":      JavaScript,
	"node":    JavaScript,
	"nodejs":  JavaScript,
	"py":      Python,
	"python3": Python,
	"c++":     Cpp,
	"cxx":     Cpp,
	"cs":      CSharp,
	"c#":      CSharp,
}

// ParseLanguage normalizes a client-supplied language name.
// Unknown names are returned lower-cased, so they still reach the simulated path.
func ParseLanguage(s string) Language {
	name := strings.ToLower(strings.TrimSpace(s))
	if lang, ok := aliases[name]; ok {
		return lang
	}
	return Language(name)
}

// DisplayName is the human-readable name used in error messages.
func (l Language) DisplayName() string {
	switch l {
	case JavaScript:
		return "JavaScript"
	case Python:
		return "Python"
	case Java:
		return "Java"
	case Cpp:
		return "C++"
	case C:
		return "C"
	case CSharp:
		return "C#"
	}
	if l == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}

// Status classifies how an execution ended.
type Status string

const (
	StatusSuccess              Status = "success"
	StatusSimulated            Status = "simulated"
	StatusCompilationError     Status = "compilation_error"
	StatusRuntimeError         Status = "runtime_error"
	StatusTimeout              Status = "timeout"
	StatusToolchainUnavailable Status = "toolchain_unavailable"
	StatusInvalidRequest       Status = "invalid_request"
	StatusInternalError        Status = "internal_error"
)

// Request is a single execution request. It lives for one HTTP call.
type Request struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Input    string `json:"input"`
}

// Result is the stable shape every execution resolves to.
//
// Output holds the program's stdout on success, or "Error: <message>" on
// failure. ExecutionTime is the completion timestamp in Unix milliseconds;
// DurationMs is how long the execution actually took.
type Result struct {
	Success       bool   `json:"success"`
	Output        string `json:"output"`
	Language      string `json:"language"`
	Status        Status `json:"status"`
	ExecutionTime int64  `json:"executionTime"`
	DurationMs    int64  `json:"durationMs"`
}

// Executor is the contract the HTTP layer depends on.
// Execute always returns a Result; failures are reported inside it.
type Executor interface {
	Execute(ctx context.Context, req Request) *Result
	Languages() []Language
}
