// Package memory orchestrates short-term and long-term memory for the
// agent.
//
// Short-term: the last N messages verbatim, with older turns condensed
// into a rolling summary cached on the conversation record.
// Long-term: durable user facts merged by the model and persisted as a
// single replaceable document per user.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oceanai/sagarmitra/internal/llm"
	"github.com/oceanai/sagarmitra/internal/prompts"
	"github.com/oceanai/sagarmitra/internal/store"
)

// fetchLimit caps how much history one conversation contributes to
// summarisation.
const fetchLimit = 500

// transcriptClip bounds each message's contribution to the summary
// transcript.
const transcriptClip = 300

// Chatter is the slice of the model client the memory manager needs.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, tools []map[string]any) (*llm.ChatResponse, error)
}

// Manager coordinates history assembly, summarisation, and long-term
// fact extraction.
type Manager struct {
	store          *store.Store
	llm            Chatter
	shortTermLimit int
	logger         *slog.Logger
}

// NewManager creates a memory manager. shortTermLimit is the number of
// recent messages kept verbatim in the model context.
func NewManager(st *store.Store, chatter Chatter, shortTermLimit int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if shortTermLimit <= 0 {
		shortTermLimit = 10
	}
	return &Manager{
		store:          st,
		llm:            chatter,
		shortTermLimit: shortTermLimit,
		logger:         logger.With("component", "memory"),
	}
}

// BuildHistory returns the recent message window for a conversation plus
// the summary of everything older. The summary is cached on the
// conversation record; it is synthesized (and persisted) on first need.
func (m *Manager) BuildHistory(ctx context.Context, conversationID string) ([]llm.Message, string, error) {
	all, err := m.store.ListMessages(conversationID, fetchLimit, true)
	if err != nil {
		return nil, "", fmt.Errorf("list messages: %w", err)
	}

	recent := all
	if len(all) > m.shortTermLimit {
		recent = all[len(all)-m.shortTermLimit:]
	}

	var summary string
	conv, err := m.store.GetConversation(conversationID)
	if err == nil {
		summary = conv.Summary
	}

	if len(all) > m.shortTermLimit && summary == "" {
		older := all[:len(all)-m.shortTermLimit]
		summary = m.summarize(ctx, older)
		if upErr := m.store.UpdateConversation(conversationID, store.ConversationUpdate{Summary: &summary}); upErr != nil {
			m.logger.Warn("persist summary failed", "conversation_id", conversationID, "error", upErr)
		}
	}

	return toModelMessages(recent), summary, nil
}

// RefreshSummary re-summarises the older portion of a conversation. No-op
// while the whole history still fits in the short-term window.
func (m *Manager) RefreshSummary(ctx context.Context, conversationID string) error {
	total, err := m.store.CountMessages(conversationID)
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}
	if total <= m.shortTermLimit {
		return nil
	}

	all, err := m.store.ListMessages(conversationID, fetchLimit, true)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	older := all[:len(all)-m.shortTermLimit]

	summary := m.summarize(ctx, older)
	if err := m.store.UpdateConversation(conversationID, store.ConversationUpdate{Summary: &summary}); err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	return nil
}

// UpdateLongTerm asks the model whether the latest exchange reveals new
// durable facts about the user and persists the merged fact list. The
// merge replaces the stored document wholesale.
func (m *Manager) UpdateLongTerm(ctx context.Context, userID, userMessage, assistantResponse string) error {
	existing, err := m.store.GetUserFacts(userID)
	if err != nil {
		return fmt.Errorf("get user facts: %w", err)
	}

	prompt := prompts.MemoryMergePrompt(existing, userMessage, assistantResponse)
	resp, err := m.llm.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		return fmt.Errorf("memory merge: %w", err)
	}

	updated := strings.TrimSpace(resp.Message.Content)
	if updated == "" {
		return nil
	}
	if err := m.store.PutUserFacts(userID, updated); err != nil {
		return fmt.Errorf("put user facts: %w", err)
	}

	m.logger.Debug("long-term memory updated", "user_id", userID, "facts_len", len(updated))
	return nil
}

// summarize asks the model to condense messages. Failures degrade to a
// placeholder so callers never lose a turn over summarisation.
func (m *Manager) summarize(ctx context.Context, messages []*store.Message) string {
	transcript := formatTranscript(messages)
	resp, err := m.llm.Chat(ctx, []llm.Message{{Role: "user", Content: prompts.SummaryPrompt(transcript)}}, nil)
	if err != nil {
		m.logger.Warn("summary generation failed", "error", err)
		return prompts.SummaryUnavailable
	}
	summary := strings.TrimSpace(resp.Message.Content)
	if summary == "" {
		return prompts.SummaryUnavailable
	}
	return summary
}

// formatTranscript renders messages as speaker-labelled lines, clipping
// each to keep the prompt bounded.
func formatTranscript(messages []*store.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		speaker := "Assistant"
		if msg.Role == "user" {
			speaker = "User"
		}
		content := msg.Content
		if runes := []rune(content); len(runes) > transcriptClip {
			content = string(runes[:transcriptClip])
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// toModelMessages converts stored messages to model messages. Tool
// bookkeeping is not replayed; only the role and content matter for
// context.
func toModelMessages(messages []*store.Message) []llm.Message {
	result := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "user", "assistant", "system":
			result = append(result, llm.Message{Role: msg.Role, Content: msg.Content})
		}
	}
	return result
}
