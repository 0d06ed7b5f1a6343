// Package agent implements the core turn-processing loop.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oceanai/sagarmitra/internal/fallback"
	"github.com/oceanai/sagarmitra/internal/language"
	"github.com/oceanai/sagarmitra/internal/llm"
	"github.com/oceanai/sagarmitra/internal/memory"
	"github.com/oceanai/sagarmitra/internal/prompts"
	"github.com/oceanai/sagarmitra/internal/store"
	"github.com/oceanai/sagarmitra/internal/tools"
)

// DefaultTitle is the placeholder title replaced by the first message.
const DefaultTitle = "New Chat"

// toolOutputClip bounds each tool output recorded in turn metadata.
const toolOutputClip = 500

// backgroundTimeout bounds the detached memory work after a turn.
const backgroundTimeout = 60 * time.Second

// Chatter is the slice of the model client the loop needs.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, tools []map[string]any) (*llm.ChatResponse, error)
}

// TurnRequest is one inbound human turn.
type TurnRequest struct {
	UserID         string
	ConversationID string
	Language       string // optional override; falls back to the conversation's language
	Text           string
}

// ToolCallRecord captures one tool invocation made during a turn.
type ToolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// TurnResult is the outcome of processing one turn.
type TurnResult struct {
	ResponseText     string           `json:"response_text"`
	MessageID        string           `json:"message_id,omitempty"`
	LanguageRejected bool             `json:"language_rejected,omitempty"`
	ToolCalls        []ToolCallRecord `json:"tool_calls,omitempty"`
}

// Loop sequences the guard, context assembly, model invocation, tool
// execution, and memory update for each turn.
type Loop struct {
	store         *store.Store
	memory        *memory.Manager
	llm           Chatter
	registry      *tools.Registry
	maxToolRounds int
	logger        *slog.Logger

	bg sync.WaitGroup
}

// NewLoop creates the agent loop.
func NewLoop(st *store.Store, mem *memory.Manager, chatter Chatter, registry *tools.Registry, maxToolRounds int, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if maxToolRounds <= 0 {
		maxToolRounds = 6
	}
	return &Loop{
		store:         st,
		memory:        mem,
		llm:           chatter,
		registry:      registry,
		maxToolRounds: maxToolRounds,
		logger:        logger.With("component", "agent"),
	}
}

// Wait blocks until detached memory work from prior turns has finished.
// Production callers use it on shutdown; tests use it to observe the
// fire-and-forget updates deterministically.
func (l *Loop) Wait() {
	l.bg.Wait()
}

// ProcessTurn runs one human input through to a persisted assistant
// response. Failures of the model, tools, or memory degrade to fallback
// text; only store failures surface as errors.
func (l *Loop) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	conv, err := l.store.GetConversation(req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = conv.Language
	}
	lang = language.Normalize(lang, "en")

	l.logger.Info("turn started",
		"conversation_id", conv.ID,
		"user_id", req.UserID,
		"language", lang,
		"input_len", len(req.Text),
	)

	// Language guard runs before any model work. A rejection is a
	// normal terminal outcome, not an error.
	if ok, reason := language.Validate(req.Text, lang); !ok {
		return l.rejectTurn(conv.ID, lang, req.Text, reason)
	}

	// Assemble context before persisting the new message so the window
	// holds only prior turns.
	recent, summary, err := l.memory.BuildHistory(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("build history: %w", err)
	}
	facts, err := l.store.GetUserFacts(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user facts: %w", err)
	}

	if _, err := l.store.AppendMessage(conv.ID, "user", req.Text, nil, nil); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	running := make([]llm.Message, 0, len(recent)+2)
	running = append(running, llm.Message{Role: "system", Content: prompts.SystemPrompt(lang, summary, facts)})
	running = append(running, recent...)
	running = append(running, llm.Message{Role: "user", Content: req.Text})

	finalText, records, toolOutputs := l.runModelLoop(ctx, req, lang, running)

	var callMeta []store.ToolCallMeta
	for _, rec := range records {
		callMeta = append(callMeta, store.ToolCallMeta{Name: rec.Name, Args: rec.Args})
	}
	var metadata map[string]any
	if len(toolOutputs) > 0 {
		metadata = map[string]any{"tool_outputs": toolOutputs}
	}

	saved, err := l.store.AppendMessage(conv.ID, "assistant", finalText, callMeta, metadata)
	if err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	if err := l.touchConversation(conv, req.Text); err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}

	l.detachMemoryUpdate(req.UserID, conv.ID, req.Text, finalText)

	l.logger.Info("turn completed",
		"conversation_id", conv.ID,
		"tool_calls", len(records),
		"response_len", len(finalText),
	)

	return &TurnResult{
		ResponseText: finalText,
		MessageID:    saved.ID,
		ToolCalls:    records,
	}, nil
}

// rejectTurn persists the user input and a canned refusal in the
// selected language. The model is never invoked on this path.
func (l *Loop) rejectTurn(conversationID, lang, text, reason string) (*TurnResult, error) {
	l.logger.Info("language guard rejected input",
		"conversation_id", conversationID,
		"language", lang,
		"reason", reason,
	)

	if _, err := l.store.AppendMessage(conversationID, "user", text, nil, nil); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	refusal := language.RejectionMessage(lang)
	if reason != "" {
		refusal = reason + "\n\n" + refusal
	}
	saved, err := l.store.AppendMessage(conversationID, "assistant", refusal, nil, map[string]any{
		"language_rejected": true,
		"reason":            reason,
	})
	if err != nil {
		return nil, fmt.Errorf("persist refusal: %w", err)
	}

	return &TurnResult{
		ResponseText:     refusal,
		MessageID:        saved.ID,
		LanguageRejected: true,
	}, nil
}

// runModelLoop alternates model invocations and tool executions until
// the model produces a final text answer, the model fails (keyword
// fallback), or the round limit is hit.
func (l *Loop) runModelLoop(ctx context.Context, req TurnRequest, lang string, running []llm.Message) (string, []ToolCallRecord, []string) {
	toolCtx := tools.WithUserID(ctx, req.UserID)
	toolSpecs := l.registry.List()

	var records []ToolCallRecord
	var outputs []string

	for round := 0; round < l.maxToolRounds; round++ {
		resp, err := l.llm.Chat(ctx, running, toolSpecs)
		if err != nil {
			l.logger.Warn("model call failed, using canned response",
				"conversation_id", req.ConversationID,
				"round", round,
				"error", err,
			)
			return fallback.Respond(req.Text, lang), records, outputs
		}

		running = append(running, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			text := strings.TrimSpace(resp.Message.Content)
			if text == "" {
				text = fallback.EmptyResponse(lang)
			}
			return text, records, outputs
		}

		for _, call := range resp.Message.ToolCalls {
			name := call.Function.Name
			records = append(records, ToolCallRecord{Name: name, Args: call.Function.Arguments})

			result, execErr := l.registry.Execute(toolCtx, name, call.Function.Arguments)
			if execErr != nil {
				// One failing call never aborts its siblings or the turn.
				result = fmt.Sprintf("tool error: %v", execErr)
				l.logger.Warn("tool execution failed", "tool", name, "error", execErr)
			}
			outputs = append(outputs, clip(result, toolOutputClip))

			running = append(running, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	l.logger.Warn("tool round limit reached",
		"conversation_id", req.ConversationID,
		"rounds", l.maxToolRounds,
	)
	return fallback.CouldNotComplete(lang), records, outputs
}

// touchConversation bumps the message count and sets the auto-title on
// the first exchange.
func (l *Loop) touchConversation(conv *store.Conversation, firstMessage string) error {
	upd := store.ConversationUpdate{}

	count := conv.MessageCount + 2 // user + assistant
	upd.MessageCount = &count

	if conv.Title == DefaultTitle && firstMessage != "" {
		title := clip(firstMessage, 60)
		if title != firstMessage {
			title += "…"
		}
		upd.Title = &title
	}

	return l.store.UpdateConversation(conv.ID, upd)
}

// detachMemoryUpdate runs long-term memory extraction and summary
// refresh after the response is already decided. Failures are logged
// and suppressed.
func (l *Loop) detachMemoryUpdate(userID, conversationID, userText, assistantText string) {
	l.bg.Add(1)
	go func() {
		defer l.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := l.memory.UpdateLongTerm(ctx, userID, userText, assistantText); err != nil {
			l.logger.Warn("long-term memory update failed",
				"user_id", userID,
				"error", err,
			)
		}
		if err := l.memory.RefreshSummary(ctx, conversationID); err != nil {
			l.logger.Warn("summary refresh failed",
				"conversation_id", conversationID,
				"error", err,
			)
		}
	}()
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
