// Package suggest guesses a sample input and expected output for a snippet.
//
// It never runs code. Each language has an ordered list of rules that look
// at the source text; the first rule that matches wins. Known algorithms
// (factorial, fibonacci, prime) come before generic shapes (add, sum, max,
// length), and a literal "print(a + b)" is evaluated last.
package suggest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sakif/codesense/internal/executor"
)

// Suggestion is a pre-filled input and the output the snippet should print
// for it. Both are empty when nothing matched.
type Suggestion struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// rule reports a suggestion when it recognises code.
type rule func(code string) (Suggestion, bool)

// contains matches when code has any of subs.
func contains(input, output string, subs ...string) rule {
	return func(code string) (Suggestion, bool) {
		for _, s := range subs {
			if strings.Contains(code, s) {
				return Suggestion{Input: input, Output: output}, true
			}
		}
		return Suggestion{}, false
	}
}

// printedSum evaluates a literal sum printed by code, e.g. print(2 + 3).
// re must capture the two operands.
func printedSum(re *regexp.Regexp) rule {
	return func(code string) (Suggestion, bool) {
		m := re.FindStringSubmatch(code)
		if m == nil {
			return Suggestion{}, false
		}
		a, errA := strconv.ParseInt(m[1], 10, 64)
		b, errB := strconv.ParseInt(m[2], 10, 64)
		if errA != nil || errB != nil {
			return Suggestion{}, false
		}
		return Suggestion{Output: strconv.FormatInt(a+b, 10)}, true
	}
}

// operands matches "<a> + <b>" with small integer literals.
const operands = `\s*(-?\d{1,18})\s*\+\s*(-?\d{1,18})\s*`

var (
	jsPrint     = regexp.MustCompile(`console\.log\(` + operands + `\)`)
	pyPrint     = regexp.MustCompile(`print\(` + operands + `\)`)
	javaPrint   = regexp.MustCompile(`System\.out\.print(?:ln)?\(` + operands + `\)`)
	coutPrint   = regexp.MustCompile(`cout\s*<<\s*\(?` + operands)
	printfPrint = regexp.MustCompile(`printf\(\s*"%d\\n"\s*,` + operands + `\)`)
	csPrint     = regexp.MustCompile(`Console\.Write(?:Line)?\(` + operands + `\)`)
)

var nativeRules = []rule{
	contains("5", "120", "factorial"),
	contains("6", "8", "fibonacci", "int fib("),
	contains("7", "1", "isPrime", "is_prime"),
	contains("2, 3", "5", "int add"),
	contains("1, 2, 3", "6", "int sum"),
	contains("3, 7, 2", "7", "int max", "max("),
	contains("hello", "5", "strlen(", ".size()", ".length()"),
	printedSum(coutPrint),
	printedSum(printfPrint),
}

var rules = map[executor.Language][]rule{
	executor.JavaScript: {
		contains("5", "120", "factorial"),
		contains("6", "8", "fibonacci", "function fib("),
		contains("7", "true", "isPrime"),
		contains("2, 3", "5", "function add", "const add", "let add"),
		contains("1, 2, 3", "6", "function sum", "const sum"),
		contains("3, 7, 2", "7", "function max", "Math.max"),
		contains("hello", "5", ".length"),
		printedSum(jsPrint),
	},
	executor.Python: {
		contains("5", "120", "def factorial"),
		contains("6", "8", "def fibonacci", "def fib("),
		contains("7", "True", "def is_prime"),
		contains("[1,2,3,4,5]", "15", "TreeNode", "binary tree"),
		contains("2, 3", "5", "def add"),
		contains("1, 2, 3", "6", "def sum", "def total"),
		contains("3, 7, 2", "7", "def max", "def find_max"),
		contains("hello", "5", "len("),
		printedSum(pyPrint),
	},
	executor.Java: {
		contains("5", "120", "factorial"),
		contains("6", "8", "fibonacci", "int fib("),
		contains("7", "true", "isPrime"),
		contains("2, 3", "5", "public static int add", "static int add"),
		contains("1, 2, 3", "6", "static int sum"),
		contains("3, 7, 2", "7", "static int max", "Math.max"),
		contains("hello", "5", ".length()"),
		printedSum(javaPrint),
	},
	executor.Cpp: nativeRules,
	executor.C:   nativeRules,
	executor.CSharp: {
		contains("5", "120", "Factorial", "factorial"),
		contains("6", "8", "Fibonacci", "fibonacci"),
		contains("7", "True", "IsPrime"),
		contains("2, 3", "5", "static int Add"),
		contains("1, 2, 3", "6", "static int Sum"),
		contains("3, 7, 2", "7", "static int Max", "Math.Max"),
		contains("hello", "5", ".Length"),
		printedSum(csPrint),
	},
}

// Suggest returns the first matching suggestion for code, or an empty one.
func Suggest(code string, lang executor.Language) Suggestion {
	if strings.TrimSpace(code) == "" {
		return Suggestion{}
	}
	for _, r := range rules[lang] {
		if s, ok := r(code); ok {
			return s
		}
	}
	return Suggestion{}
}
