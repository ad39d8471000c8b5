// Package semantics maps free-text prompts onto a fixed table of semantic
// contexts: expected color families, animation vocabulary, and moods.
package semantics

import "strings"

// Resolve returns the context whose keywords have the most substring matches
// in the lower-cased prompt. Ties resolve to the first context in declaration
// order. Returns nil when no keyword matches, meaning the prompt carries no
// contextual constraints.
func Resolve(prompt string) *Context {
	lowered := strings.ToLower(prompt)

	var best *Context
	bestCount := 0
	for i := range contexts {
		count := 0
		for _, kw := range contexts[i].Keywords {
			if strings.Contains(lowered, kw) {
				count++
			}
		}
		// Strict > keeps the first declared context on ties.
		if count > bestCount {
			best = &contexts[i]
			bestCount = count
		}
	}
	return best
}
