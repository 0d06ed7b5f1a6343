package api

import (
	"encoding/json"
	"net/http"

	"github.com/oceanai/sagarmitra/internal/agent"
)

// SendMessageRequest is the body for POST /conversations/{id}/messages.
// Language overrides the conversation language for this message only.
type SendMessageRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

// MessageResponse is the assistant's reply inside a send-message response.
type MessageResponse struct {
	Role             string                 `json:"role"`
	Content          string                 `json:"content"`
	MessageID        string                 `json:"message_id,omitempty"`
	LanguageRejected bool                   `json:"language_rejected,omitempty"`
	ToolCalls        []agent.ToolCallRecord `json:"tool_calls,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	conv, ok := s.ownedConversation(w, userID, r.PathValue("id"))
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.loop.ProcessTurn(r.Context(), agent.TurnRequest{
		UserID:         userID,
		ConversationID: conv.ID,
		Language:       req.Language,
		Text:           req.Message,
	})
	if err != nil {
		s.logger.Error("turn failed", "conversation_id", conv.ID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "turn failed: storage error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success": true,
		"response": MessageResponse{
			Role:             "assistant",
			Content:          result.ResponseText,
			MessageID:        result.MessageID,
			LanguageRejected: result.LanguageRejected,
			ToolCalls:        result.ToolCalls,
		},
	}, s.logger)
}

func (s *Server) handleMessageHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	conv, ok := s.ownedConversation(w, userID, r.PathValue("id"))
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	msgs, err := s.store.ListMessages(conv.ID, limit, true)
	if err != nil {
		s.logger.Error("list messages failed", "conversation_id", conv.ID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success":  true,
		"messages": msgs,
		"summary":  conv.Summary,
	}, s.logger)
}
