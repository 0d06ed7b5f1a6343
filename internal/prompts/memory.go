package prompts

import "fmt"

// NoFactsRecorded is the placeholder shown to the merge model when the
// user has no long-term memory yet.
const NoFactsRecorded = "No facts recorded yet."

// memoryMergeTemplate asks the model to fold new durable facts from the
// latest exchange into the existing fact list. The format verbs receive
// the existing facts, the user message, and the assistant response.
const memoryMergeTemplate = `You are a memory extraction system. Given the EXISTING facts about a fisherman user and their LATEST conversation exchange, determine if there are any NEW permanent facts worth remembering (e.g. home port, boat type, preferred fish, family details, experience).

EXISTING FACTS:
%s

USER MESSAGE:
%s

ASSISTANT RESPONSE:
%s

If there are new facts, output the COMPLETE updated fact list (merge old + new). If nothing new, output the existing facts unchanged. Keep the format as a simple bullet list. Be concise.

UPDATED FACTS:`

// MemoryMergePrompt returns the interpolated long-term memory merge
// prompt. An empty existing fact list is replaced with NoFactsRecorded.
func MemoryMergePrompt(existing, userMessage, assistantResponse string) string {
	if existing == "" {
		existing = NoFactsRecorded
	}
	return fmt.Sprintf(memoryMergeTemplate, existing, userMessage, assistantResponse)
}
