package executor

import (
	"context"
	"fmt"
	"regexp"
)

var nativeMain = regexp.MustCompile(`\bmain\s*\(`)

const cppScaffold = `#include <iostream>
#include <string>
#include <vector>
#include <algorithm>
#include <cmath>
using namespace std;

int main() {
%s
    return 0;
}
`

const cScaffold = `#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <math.h>

int main(void) {
%s
    return 0;
}
`

// nativeAdapter compiles C or C++ to a binary inside the workspace and runs it.
type nativeAdapter struct {
	tc       *toolchain
	lang     Language
	compiler string
	source   string
	scaffold string
	flags    []string
}

func newCppAdapter(tc *toolchain, compiler string) *nativeAdapter {
	return &nativeAdapter{
		tc:       tc,
		lang:     Cpp,
		compiler: compiler,
		source:   "main.cpp",
		scaffold: cppScaffold,
		flags:    []string{"-std=c++17", "-O2"},
	}
}

func newCAdapter(tc *toolchain, compiler string) *nativeAdapter {
	return &nativeAdapter{
		tc:       tc,
		lang:     C,
		compiler: compiler,
		source:   "main.c",
		scaffold: cScaffold,
		flags:    []string{"-std=c11", "-O2"},
	}
}

func (a *nativeAdapter) Run(ctx context.Context, ws *Workspace, code, input string) (string, error) {
	if !nativeMain.MatchString(code) {
		code = fmt.Sprintf(a.scaffold, indent(code, "    "))
	}

	src, err := ws.WriteFile(a.source, code)
	if err != nil {
		return "", err
	}
	bin := ws.Path("program")

	args := append([]string{}, a.flags...)
	args = append(args, "-o", bin, src)
	if a.lang == C {
		args = append(args, "-lm")
	}

	if err := a.tc.compile(ctx, Command{
		Language: a.lang,
		Dir:      ws.Dir,
		Name:     a.compiler,
		Args:     args,
	}); err != nil {
		return "", err
	}

	return a.tc.run(ctx, Command{
		Language: a.lang,
		Dir:      ws.Dir,
		Name:     bin,
		Stdin:    withNewline(input),
	})
}
