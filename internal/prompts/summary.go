package prompts

import "fmt"

// summaryTemplate is the prompt sent to a model to condense older
// conversation turns. The single format verb is the transcript text.
const summaryTemplate = `Summarise the following conversation between a fisherman and an AI assistant. Keep the summary under 200 words. Focus on: topics discussed, decisions made, any specific data mentioned (species, locations, dates). Write in plain language.

%s

Summary:`

// SummaryUnavailable is stored in place of a summary when no model
// could produce one. Kept distinct from the empty string so the
// placeholder is not endlessly regenerated.
const SummaryUnavailable = "(Summary unavailable)"

// SummaryPrompt returns the interpolated summarisation prompt. The
// caller passes the formatted transcript ("User: ..." / "Assistant: ..."
// lines) to be condensed.
func SummaryPrompt(transcript string) string {
	return fmt.Sprintf(summaryTemplate, transcript)
}
