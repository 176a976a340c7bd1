// Package main is the entry point for the CodeSense server.
//
// The main package stays minimal. Its job is to:
//  1. Read configuration from environment variables (and .env, if present)
//  2. Create the logger and the code executor
//  3. Hand everything to internal/server and start it
//
// All actual logic lives in the internal packages.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/codesense/internal/executor"
	"github.com/sakif/codesense/internal/executor/docker"
	"github.com/sakif/codesense/internal/server"
)

func main() {
	// === 0. LOAD .env ===
	// Variables already set in the environment win over the file.
	envErr := loadEnvFile(envString("ENV_FILE", ".env"))

	// === 1. SET UP LOGGING ===
	// LOG_LEVEL: debug | info | warn | error (default info)
	// LOG_FORMAT: text | json (default text)
	logger := newLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if envErr != nil {
		logger.Warn("ignoring env file", slog.String("error", envErr.Error()))
	}

	if err := run(logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// === 2. READ CONFIGURATION ===
	port, err := envInt("PORT", 3001)
	if err != nil {
		return err
	}

	dbPath := envString("DB_PATH", "data/codesense.db")
	if dbPath != ":memory:" {
		// mkdir -p for the directory holding the database file.
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	execCfg, err := executorConfig()
	if err != nil {
		return err
	}

	// === 3. INITIALIZE EXECUTOR ===
	// EXEC_BACKEND=local runs toolchains installed on this host;
	// EXEC_BACKEND=docker runs them in sandboxed, pre-warmed containers.
	var runner executor.Runner
	switch backend := envString("EXEC_BACKEND", "local"); backend {
	case "local":
		runner = executor.NewLocalRunner(execCfg.MaxOutputBytes, logger)
	case "docker":
		dcfg, err := dockerConfig(execCfg)
		if err != nil {
			return err
		}
		dr, err := docker.New(dcfg, logger)
		if err != nil {
			return fmt.Errorf("starting docker backend: %w", err)
		}
		defer dr.Close()
		runner = dr
	default:
		return fmt.Errorf("invalid EXEC_BACKEND %q (want local or docker)", backend)
	}

	exec, err := executor.New(runner, execCfg, logger)
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}
	logger.Info("executor ready",
		slog.Any("languages", exec.Languages()),
		slog.String("workdir", execCfg.WorkDir),
	)

	// === 4. AUTH CONFIGURATION ===
	// JWT_SECRET must be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	// Without it a random secret is generated, so every restart signs
	// everyone out.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("JWT_SECRET not set: using a random secret, sessions will not survive a restart")
	}

	rps, err := envFloat("RATE_LIMIT_RPS", 100.0/(15*60)) // 100 requests per 15 minutes
	if err != nil {
		return err
	}
	burst, err := envInt("RATE_LIMIT_BURST", 100)
	if err != nil {
		return err
	}
	secure, err := envBool("COOKIE_SECURE", false)
	if err != nil {
		return err
	}
	metricsOn, err := envBool("METRICS_ENABLED", true)
	if err != nil {
		return err
	}

	// === 5. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  envString("GITHUB_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/github/callback", port)),
		FrontendURL:        envString("FRONTEND_URL", "http://localhost:5173"),
		SecureCookie:       secure,
		CORSOrigins:        splitList(envString("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		// compile + run + a margin for writing the response
		WriteTimeout:   execCfg.CompileTimeout + execCfg.RunTimeout + 30*time.Second,
		MetricsEnabled: metricsOn,
	}

	srv, err := server.New(cfg, logger, exec)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM.
	return srv.Start()
}

// loadEnvFile applies KEY=value lines from path. A missing file is not an
// error; most deployments set the environment directly.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil || level == "" {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// executorConfig starts from executor.DefaultConfig and applies the EXEC_*
// overrides.
func executorConfig() (executor.Config, error) {
	cfg := executor.DefaultConfig()
	cfg.WorkDir = envString("EXEC_WORKDIR", cfg.WorkDir)

	var err error
	if cfg.RunTimeout, err = envDuration("EXEC_TIMEOUT", cfg.RunTimeout); err != nil {
		return cfg, err
	}
	if cfg.CompileTimeout, err = envDuration("EXEC_COMPILE_TIMEOUT", cfg.CompileTimeout); err != nil {
		return cfg, err
	}
	if cfg.MaxOutputBytes, err = envInt("EXEC_MAX_OUTPUT", cfg.MaxOutputBytes); err != nil {
		return cfg, err
	}

	// Containers bind-mount the workspace root at the same path, so it
	// must be absolute.
	abs, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return cfg, fmt.Errorf("resolving EXEC_WORKDIR: %w", err)
	}
	cfg.WorkDir = abs
	return cfg, nil
}

func dockerConfig(execCfg executor.Config) (docker.Config, error) {
	cfg := docker.DefaultConfig(execCfg.WorkDir)
	cfg.MaxOutputBytes = execCfg.MaxOutputBytes

	var err error
	if cfg.PoolSize, err = envInt("DOCKER_POOL_SIZE", cfg.PoolSize); err != nil {
		return cfg, err
	}
	memMB, err := envInt("DOCKER_MEMORY_MB", int(cfg.MemoryLimit/(1024*1024)))
	if err != nil {
		return cfg, err
	}
	cfg.MemoryLimit = int64(memMB) * 1024 * 1024
	if cfg.CPULimit, err = envFloat("DOCKER_CPUS", cfg.CPULimit); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// === ENV HELPERS ===
// os.Getenv returns "" when a variable is unset, so each helper falls back
// to def and only fails on a value that is set but malformed.

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

// envDuration accepts Go durations ("45s") or plain milliseconds ("30000").
func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
