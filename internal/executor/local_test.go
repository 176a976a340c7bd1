package executor

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run real toolchains. Each one skips when the binary it needs
// is not installed on the machine running the tests.

func requireBinaries(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not installed", name)
		}
	}
}

func newLocalDispatcher(t *testing.T, timeout time.Duration) (*Dispatcher, string) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WorkDir = filepath.Join(t.TempDir(), "work")
	cfg.RunTimeout = timeout
	cfg.CompileTimeout = 60 * time.Second

	d, err := New(NewLocalRunner(cfg.MaxOutputBytes, testLogger()), cfg, testLogger())
	require.NoError(t, err)
	return d, cfg.WorkDir
}

func TestLocalRunner_MissingBinary(t *testing.T) {
	r := NewLocalRunner(1024, testLogger())

	_, err := r.Run(context.Background(), Command{
		Language: Python,
		Dir:      t.TempDir(),
		Name:     "definitely-not-a-real-interpreter",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolchainUnavailable)
}

func TestLocalRunner_CapturesExitCodeAndStderr(t *testing.T) {
	requireBinaries(t, "sh")
	r := NewLocalRunner(1024, testLogger())

	out, err := r.Run(context.Background(), Command{
		Dir:  t.TempDir(),
		Name: "sh",
		Args: []string{"-c", "echo out; echo err 1>&2; exit 3"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
	assert.False(t, out.TimedOut)
}

func TestLocalRunner_PipesStdin(t *testing.T) {
	requireBinaries(t, "cat")
	r := NewLocalRunner(1024, testLogger())

	out, err := r.Run(context.Background(), Command{Dir: t.TempDir(), Name: "cat", Stdin: "ping\n"})

	require.NoError(t, err)
	assert.Equal(t, "ping\n", out.Stdout)
}

func TestLocalRunner_BoundsOutput(t *testing.T) {
	requireBinaries(t, "sh")
	r := NewLocalRunner(16, testLogger())

	out, err := r.Run(context.Background(), Command{
		Dir:  t.TempDir(),
		Name: "sh",
		Args: []string{"-c", "i=0; while [ $i -lt 1000 ]; do echo line; i=$((i+1)); done"},
	})

	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.Equal(t, "line\nline\nline\nl"+outputTruncatedMsg, out.Stdout)
}

func TestLocalRunner_KillsProcessGroupOnTimeout(t *testing.T) {
	requireBinaries(t, "sh", "sleep")
	r := NewLocalRunner(1024, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	// The background sleep keeps stdout open; only a group kill ends it promptly.
	out, err := r.Run(ctx, Command{Dir: t.TempDir(), Name: "sh", Args: []string{"-c", "sleep 30 & sleep 30"}})

	require.NoError(t, err)
	assert.True(t, out.TimedOut)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestLocal_PythonHello(t *testing.T) {
	requireBinaries(t, "python3")
	d, workDir := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{Code: "print('hello')", Language: "python"})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "hello", res.Output)
	assertWorkDirEmpty(t, workDir)
}

func TestLocal_PythonReadsStdin(t *testing.T) {
	requireBinaries(t, "python3")
	d, _ := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{
		Code:     "n = int(input())\nprint(n * 2)",
		Language: "python",
		Input:    "21",
	})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "42", res.Output)
}

func TestLocal_PythonInfiniteLoopTimesOut(t *testing.T) {
	requireBinaries(t, "python3")
	d, workDir := newLocalDispatcher(t, time.Second)

	start := time.Now()
	res := d.Execute(context.Background(), Request{Code: "while True: pass", Language: "python"})

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.False(t, res.Success)
	assert.Equal(t, StatusTimeout, res.Status)
	assert.Contains(t, res.Output, "timeout")
	assertWorkDirEmpty(t, workDir)
}

func TestLocal_JavaScriptExpression(t *testing.T) {
	requireBinaries(t, "node")
	d, workDir := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{Code: "console.log(2+3)", Language: "javascript"})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "5", res.Output)
	assertWorkDirEmpty(t, workDir)
}

func TestLocal_JavaScriptCallsAddWithInput(t *testing.T) {
	requireBinaries(t, "node")
	d, _ := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{
		Code:     "function add(a, b) { return a + b; }",
		Language: "javascript",
		Input:    "2, 3",
	})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "5", res.Output)
}

func TestLocal_JavaCompilationError(t *testing.T) {
	requireBinaries(t, "javac", "java")
	d, workDir := newLocalDispatcher(t, 30*time.Second)

	code := "public class Main {\n    public static void main(String[] args) {\n        System.out.println(1);\n    }\n"
	res := d.Execute(context.Background(), Request{Code: code, Language: "java"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "compilation error")

	matches, _ := filepath.Glob(filepath.Join(workDir, "*", "*.class"))
	assert.Empty(t, matches)
	assertWorkDirEmpty(t, workDir)
}

func TestLocal_JavaBareStatements(t *testing.T) {
	requireBinaries(t, "javac", "java")
	d, _ := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{Code: `System.out.println("hello");`, Language: "java"})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "hello", res.Output)
}

func TestLocal_CppBareStatements(t *testing.T) {
	requireBinaries(t, "g++")
	d, workDir := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{Code: `cout << "hello" << endl;`, Language: "cpp"})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "hello", res.Output)
	assertWorkDirEmpty(t, workDir)
}

func TestLocal_CHello(t *testing.T) {
	requireBinaries(t, "gcc")
	d, _ := newLocalDispatcher(t, 30*time.Second)

	res := d.Execute(context.Background(), Request{Code: `printf("hello\n");`, Language: "c"})

	assert.True(t, res.Success, res.Output)
	assert.Equal(t, "hello", res.Output)
}
