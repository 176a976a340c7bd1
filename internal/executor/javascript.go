package executor

import (
	"context"
	"strings"
)

// jsHarness runs after the user's code in the same script. If the snippet
// defines add, factorial or main, it is called with the comma-separated
// input and a returned value is printed.
const jsHarness = `
;(function (__args) {
  var __result;
  if (typeof add === 'function' && __args.length >= 2) {
    __result = add(Number(__args[0]), Number(__args[1]));
  } else if (typeof factorial === 'function' && __args.length >= 1) {
    __result = factorial(Number(__args[0]));
  } else if (typeof main === 'function') {
    __result = main.apply(null, __args);
  }
  if (__result !== undefined) {
    console.log(__result);
  }
})(process.argv.slice(2));
`

// javascriptAdapter runs snippets in a separate node process. Nothing
// is evaluated inside the server.
type javascriptAdapter struct {
	tc  *toolchain
	bin string
}

func (a *javascriptAdapter) Run(ctx context.Context, ws *Workspace, code, input string) (string, error) {
	path, err := ws.WriteFile("main.js", code+"\n"+jsHarness)
	if err != nil {
		return "", err
	}

	args := append([]string{path}, splitArgs(input)...)
	return a.tc.run(ctx, Command{
		Language: JavaScript,
		Dir:      ws.Dir,
		Name:     a.bin,
		Args:     args,
		Stdin:    withNewline(input),
	})
}

// splitArgs turns "2, 3" into ["2", "3"].
func splitArgs(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, strings.TrimSpace(p))
	}
	return args
}
