package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/oceanai/sagarmitra/internal/agent"
	"github.com/oceanai/sagarmitra/internal/language"
	"github.com/oceanai/sagarmitra/internal/store"
)

// CreateConversationRequest is the body for POST /conversations.
type CreateConversationRequest struct {
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
}

// UpdateConversationRequest is the body for PATCH /conversations/{id}.
// Nil fields are left unchanged.
type UpdateConversationRequest struct {
	Title    *string `json:"title,omitempty"`
	Language *string `json:"language,omitempty"`
}

func (s *Server) handleConversationCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	// An empty body means all defaults.
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := req.Title
	if title == "" {
		title = agent.DefaultTitle
	}
	lang := language.Normalize(req.Language, "en")

	conv, err := s.store.CreateConversation(userID, title, lang)
	if err != nil {
		s.logger.Error("create conversation failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success":      true,
		"conversation": conv,
	}, s.logger)
}

func (s *Server) handleConversationList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 20)
	convs, err := s.store.ListConversations(userID, limit)
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success":       true,
		"conversations": convs,
	}, s.logger)
}

func (s *Server) handleConversationGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	conv, ok := s.ownedConversation(w, userID, r.PathValue("id"))
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success":      true,
		"conversation": conv,
	}, s.logger)
}

func (s *Server) handleConversationUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	conv, ok := s.ownedConversation(w, userID, r.PathValue("id"))
	if !ok {
		return
	}

	var req UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil || req.Language != nil {
		upd := store.ConversationUpdate{Title: req.Title}
		if req.Language != nil {
			lang := language.Normalize(*req.Language, conv.Language)
			upd.Language = &lang
		}
		if err := s.store.UpdateConversation(conv.ID, upd); err != nil {
			s.logger.Error("update conversation failed", "conversation_id", conv.ID, "error", err)
			s.errorResponse(w, http.StatusInternalServerError, "storage error")
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"success": true}, s.logger)
}

func (s *Server) handleConversationDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	conv, ok := s.ownedConversation(w, userID, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.store.DeleteConversation(conv.ID); err != nil {
		s.logger.Error("delete conversation failed", "conversation_id", conv.ID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"success": true}, s.logger)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
