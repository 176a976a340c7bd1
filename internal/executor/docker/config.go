package docker

import (
	"fmt"
	"os"

	"github.com/sakif/codesense/internal/executor"
)

// Config holds the configuration for container-backed execution.
type Config struct {
	// Images maps each language to the image that carries its toolchain.
	// Languages without an image report "toolchain not installed".
	Images map[executor.Language]string
	// MountDir is the workspace root. It is bind-mounted into every
	// container at the same path, so host paths in Commands stay valid.
	MountDir string
	// MemoryLimit is the maximum amount of memory a container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs a container can use.
	CPULimit float64
	// PidsLimit caps the number of processes, which stops fork bombs.
	PidsLimit int64
	// PoolSize is the number of pre-warmed containers kept per image.
	PoolSize int
	// User is the uid:gid processes run as. It must be able to write MountDir.
	User string
	// MaxOutputBytes caps captured stdout and stderr, each.
	MaxOutputBytes int
}

// DefaultConfig provides sensible defaults for the supported toolchains.
func DefaultConfig(mountDir string) Config {
	return Config{
		Images: map[executor.Language]string{
			executor.Python:     "python:3.12-alpine",
			executor.JavaScript: "node:22-alpine",
			executor.Java:       "eclipse-temurin:21-jdk-alpine",
			executor.Cpp:        "gcc:14",
			executor.C:          "gcc:14",
			executor.CSharp:     "mono:6.12",
		},
		MountDir: mountDir,
		// 256 MB: javac and g++ need more than a bare interpreter
		MemoryLimit:    256 * 1024 * 1024,
		CPULimit:       1,
		PidsLimit:      64,
		PoolSize:       2,
		User:           fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		MaxOutputBytes: 1024 * 1024,
	}
}
