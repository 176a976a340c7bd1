package executor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const javaDefaultClass = "Main"

var (
	javaPublicClass = regexp.MustCompile(`public\s+(?:(?:final|abstract)\s+)*class\s+([A-Za-z_$][\w$]*)`)
	javaAnyClass    = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`)
)

// javaScaffold wraps bare statements so `System.out.println("hi");` runs
// without the user writing a class.
const javaScaffold = `import java.util.*;
import java.io.*;

public class %s {
    public static void main(String[] args) throws Exception {
%s
    }
}
`

type javaAdapter struct {
	tc    *toolchain
	javac string
	java  string
}

func (a *javaAdapter) Run(ctx context.Context, ws *Workspace, code, input string) (string, error) {
	source, className := prepareJava(code)

	// javac insists that a public class lives in <ClassName>.java.
	path, err := ws.WriteFile(className+".java", source)
	if err != nil {
		return "", err
	}

	if err := a.tc.compile(ctx, Command{
		Language: Java,
		Dir:      ws.Dir,
		Name:     a.javac,
		Args:     []string{"-d", ws.Dir, path},
	}); err != nil {
		return "", err
	}

	return a.tc.run(ctx, Command{
		Language: Java,
		Dir:      ws.Dir,
		Name:     a.java,
		Args:     []string{"-cp", ws.Dir, className},
		Stdin:    withNewline(input),
	})
}

// prepareJava returns the source to compile and the class to launch.
func prepareJava(code string) (source, className string) {
	if m := javaPublicClass.FindStringSubmatch(code); m != nil {
		return code, m[1]
	}
	if m := javaAnyClass.FindStringSubmatch(code); m != nil {
		return code, m[1]
	}
	return fmt.Sprintf(javaScaffold, javaDefaultClass, indent(code, "        ")), javaDefaultClass
}

// indent prefixes every non-empty line of code.
func indent(code, prefix string) string {
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
