package executor

import (
	"context"
	"strings"
)

type pythonAdapter struct {
	tc  *toolchain
	bin string
}

func (a *pythonAdapter) Run(ctx context.Context, ws *Workspace, code, input string) (string, error) {
	path, err := ws.WriteFile("main.py", strings.TrimSpace(code)+"\n")
	if err != nil {
		return "", err
	}

	// -u: unbuffered, so output written before a crash or timeout is kept.
	// -B: no __pycache__ inside the workspace.
	return a.tc.run(ctx, Command{
		Language: Python,
		Dir:      ws.Dir,
		Name:     a.bin,
		Args:     []string{"-u", "-B", path},
		Stdin:    withNewline(input),
	})
}
