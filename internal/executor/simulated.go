package executor

import (
	"fmt"
	"sort"
)

// simulatedMessages covers languages users ask for often enough to deserve
// a specific hint.
var simulatedMessages = map[Language]string{
	"php":    "PHP execution requires PHP interpreter setup",
	"ruby":   "Ruby execution requires Ruby interpreter setup",
	"go":     "Go execution requires Go compiler setup",
	"rust":   "Rust execution requires Rust compiler setup",
	"kotlin": "Kotlin execution requires Kotlin compiler setup",
	"swift":  "Swift execution requires Swift compiler setup",
	"sql":    "SQL execution requires database connection setup",
}

// simulate builds the placeholder returned for languages without an adapter.
func simulate(lang Language) string {
	msg, ok := simulatedMessages[lang]
	if !ok {
		msg = fmt.Sprintf("%s execution not yet implemented", lang)
	}
	return fmt.Sprintf("Simulated execution: %s\n\nTo enable real execution for %s, please install the required compiler/interpreter.", msg, lang)
}

// SimulatedLanguages lists the languages that have a specific placeholder
// message, sorted. Any other unknown language is simulated too.
func SimulatedLanguages() []Language {
	langs := make([]Language, 0, len(simulatedMessages))
	for l := range simulatedMessages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
