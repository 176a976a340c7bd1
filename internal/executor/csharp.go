package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const csharpScaffold = `using System;
using System.Collections.Generic;
using System.Linq;

class Program {
    static void Main(string[] args) {
%s
    }
}
`

// csharpAdapter prefers Mono (mcs + mono) and falls back to the .NET SDK's
// single-file `dotnet run app.cs` when Mono is not installed.
type csharpAdapter struct {
	tc     *toolchain
	mcs    string
	mono   string
	dotnet string
}

func (a *csharpAdapter) Run(ctx context.Context, ws *Workspace, code, input string) (string, error) {
	if !strings.Contains(code, "class ") && !strings.Contains(code, "namespace") {
		code = fmt.Sprintf(csharpScaffold, indent(code, "        "))
	}

	src, err := ws.WriteFile("Program.cs", code)
	if err != nil {
		return "", err
	}
	exe := ws.Path("program.exe")

	err = a.tc.compile(ctx, Command{
		Language: CSharp,
		Dir:      ws.Dir,
		Name:     a.mcs,
		Args:     []string{"-out:" + exe, src},
	})
	if errors.Is(err, ErrToolchainUnavailable) {
		return a.runDotnet(ctx, ws, src, input)
	}
	if err != nil {
		return "", err
	}

	return a.tc.run(ctx, Command{
		Language: CSharp,
		Dir:      ws.Dir,
		Name:     a.mono,
		Args:     []string{exe},
		Stdin:    withNewline(input),
	})
}

// runDotnet builds and runs in one step, so compiler errors surface as a
// failed run. The SDK's caches are pointed into the workspace.
func (a *csharpAdapter) runDotnet(ctx context.Context, ws *Workspace, src, input string) (string, error) {
	out, err := a.tc.run(ctx, Command{
		Language: CSharp,
		Dir:      ws.Dir,
		Name:     a.dotnet,
		Args:     []string{"run", src},
		Stdin:    withNewline(input),
		Env: []string{
			"DOTNET_CLI_HOME=" + ws.Dir,
			"DOTNET_NOLOGO=1",
			"DOTNET_CLI_TELEMETRY_OPTOUT=1",
		},
	})
	if errors.Is(err, ErrToolchainUnavailable) {
		return "", UnavailableError(CSharp, a.mcs+" or "+a.dotnet)
	}
	return out, err
}
