package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"
)

// NoOutput is returned when a program succeeded but printed nothing.
const NoOutput = "Code executed successfully (no output)"

// Adapter turns a snippet into a finished process run for one language.
// All files must be created inside ws; the Dispatcher removes it afterwards.
type Adapter interface {
	Run(ctx context.Context, ws *Workspace, code, input string) (string, error)
}

// Dispatcher routes requests to adapters. It is safe for concurrent use:
// it holds no per-request state.
type Dispatcher struct {
	adapters map[Language]Adapter
	config   Config
	logger   *slog.Logger
}

var _ Executor = (*Dispatcher)(nil)

// New creates a Dispatcher with the built-in adapters, all running through
// runner. The workspace root is created if it does not exist.
func New(runner Runner, cfg Config, logger *slog.Logger) (*Dispatcher, error) {
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("executor: creating work dir %s: %w", cfg.WorkDir, err)
	}

	tc := &toolchain{
		runner:         runner,
		runTimeout:     cfg.RunTimeout,
		compileTimeout: cfg.CompileTimeout,
	}
	bins := cfg.Toolchains

	d := &Dispatcher{
		config: cfg,
		logger: logger,
		adapters: map[Language]Adapter{
			JavaScript: &javascriptAdapter{tc: tc, bin: bins.Node},
			Python:     &pythonAdapter{tc: tc, bin: bins.Python},
			Java:       &javaAdapter{tc: tc, javac: bins.Javac, java: bins.Java},
			Cpp:        newCppAdapter(tc, bins.Gpp),
			C:          newCAdapter(tc, bins.Gcc),
			CSharp:     &csharpAdapter{tc: tc, mcs: bins.Mcs, mono: bins.Mono, dotnet: bins.Dotnet},
		},
	}
	return d, nil
}

// Register installs (or replaces) the adapter for lang.
func (d *Dispatcher) Register(lang Language, a Adapter) {
	d.adapters[lang] = a
}

// Languages lists the languages with a real adapter, sorted.
func (d *Dispatcher) Languages() []Language {
	langs := make([]Language, 0, len(d.adapters))
	for l := range d.adapters {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Execute runs req and always returns a Result. Adapter errors, and even
// adapter panics, come back as Success=false with "Error: ..." output.
func (d *Dispatcher) Execute(ctx context.Context, req Request) *Result {
	start := time.Now()
	lang := ParseLanguage(req.Language)

	res := &Result{Language: string(lang)}
	defer func() {
		res.DurationMs = time.Since(start).Milliseconds()
		res.ExecutionTime = time.Now().UnixMilli()
	}()

	if strings.TrimSpace(req.Code) == "" {
		res.Status = StatusInvalidRequest
		res.Output = "Error: source code is empty"
		return res
	}

	adapter, ok := d.adapters[lang]
	if !ok {
		d.logger.Info("no adapter for language, simulating", slog.String("language", string(lang)))
		res.Success = true
		res.Status = StatusSimulated
		res.Output = simulate(lang)
		return res
	}

	output, err := d.run(ctx, adapter, lang, req)
	res.Status = statusOf(err)
	if err != nil {
		res.Output = "Error: " + err.Error()
		d.logger.Info("execution failed",
			slog.String("language", string(lang)),
			slog.String("status", string(res.Status)),
			slog.Duration("elapsed", time.Since(start)),
		)
		return res
	}

	res.Success = true
	res.Output = output
	d.logger.Info("execution succeeded",
		slog.String("language", string(lang)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res
}

func (d *Dispatcher) run(ctx context.Context, a Adapter, lang Language, req Request) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("adapter panicked",
				slog.String("language", string(lang)),
				slog.Any("panic", r),
			)
			err = fmt.Errorf("%s adapter failed: %v", lang.DisplayName(), r)
		}
	}()

	ws, err := newWorkspace(d.config.WorkDir)
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			d.logger.Warn("failed to remove workspace",
				slog.String("workspace", ws.ID),
				slog.String("error", rmErr.Error()),
			)
		}
	}()

	d.logger.Debug("running adapter",
		slog.String("language", string(lang)),
		slog.String("workspace", ws.ID),
	)

	out, err := a.Run(ctx, ws, req.Code, req.Input)
	if err != nil {
		return "", err
	}
	return normalizeOutput(out), nil
}

// normalizeOutput drops trailing whitespace and substitutes NoOutput for
// an empty result.
func normalizeOutput(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return NoOutput
	}
	return s
}
