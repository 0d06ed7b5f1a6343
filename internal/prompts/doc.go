// Package prompts contains all LLM prompt templates used by SagarMitra.
//
// Prompt text is Go code rather than config files because it is program
// logic: templates use fmt.Sprintf interpolation, benefit from
// compile-time embedding, and can be validated by tests.
//
// Convention: each prompt category gets its own file (system.go,
// summary.go, memory.go) with an exported function that accepts the
// dynamic parts and returns the fully interpolated prompt string.
package prompts
