package executor

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the limits and toolchain locations used by the Dispatcher.
type Config struct {
	// WorkDir is the parent of every per-execution workspace.
	WorkDir string
	// RunTimeout bounds every program/interpreter invocation.
	RunTimeout time.Duration
	// CompileTimeout bounds every compiler invocation.
	CompileTimeout time.Duration
	// MaxOutputBytes caps captured stdout and stderr, each.
	MaxOutputBytes int
	// Toolchains names the binaries each adapter invokes.
	Toolchains Toolchains
}

// Toolchains lists the executables adapters call. Bare names are resolved
// through PATH (or inside the container image for the docker runner).
type Toolchains struct {
	Node   string
	Python string
	Javac  string
	Java   string
	Gpp    string
	Gcc    string
	Mcs    string
	Mono   string
	Dotnet string
}

// DefaultConfig mirrors the limits the service has always used: 30 seconds
// per invocation and a 1 MB output buffer.
func DefaultConfig() Config {
	return Config{
		WorkDir:        filepath.Join(os.TempDir(), "codesense"),
		RunTimeout:     30 * time.Second,
		CompileTimeout: 30 * time.Second,
		MaxOutputBytes: 1024 * 1024,
		Toolchains: Toolchains{
			Node:   "node",
			Python: "python3",
			Javac:  "javac",
			Java:   "java",
			Gpp:    "g++",
			Gcc:    "gcc",
			Mcs:    "mcs",
			Mono:   "mono",
			Dotnet: "dotnet",
		},
	}
}
