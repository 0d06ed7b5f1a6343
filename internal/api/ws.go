package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/oceanai/sagarmitra/internal/agent"
	"github.com/oceanai/sagarmitra/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	// The gateway in front of this service enforces origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsTurnRequest is one client frame on the chat socket.
type wsTurnRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	Language       string `json:"language,omitempty"`
}

// wsTurnReply is one server frame. Type is "turn" for completed turns
// and "error" for per-frame failures that leave the socket open.
type wsTurnReply struct {
	Type           string           `json:"type"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Response       *MessageResponse `json:"response,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// handleChatSocket runs whole turns over a single WebSocket: the client
// sends wsTurnRequest frames, the server answers each with a wsTurnReply.
// Token-level streaming is not supported.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("chat socket opened", "user_id", userID)

	for {
		var req wsTurnRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("chat socket read failed", "user_id", userID, "error", err)
			}
			return
		}

		reply := s.runSocketTurn(r, userID, req)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("chat socket write failed", "user_id", userID, "error", err)
			return
		}
	}
}

// runSocketTurn validates and executes one socket frame. Failures come
// back as an error reply rather than closing the connection.
func (s *Server) runSocketTurn(r *http.Request, userID string, req wsTurnRequest) wsTurnReply {
	if req.Message == "" {
		return wsTurnReply{Type: "error", ConversationID: req.ConversationID, Error: "message is required"}
	}

	conv, err := s.store.GetConversation(req.ConversationID)
	if errors.Is(err, store.ErrNotFound) {
		return wsTurnReply{Type: "error", ConversationID: req.ConversationID, Error: "Conversation not found"}
	}
	if err != nil {
		s.logger.Error("load conversation failed", "conversation_id", req.ConversationID, "error", err)
		return wsTurnReply{Type: "error", ConversationID: req.ConversationID, Error: "storage error"}
	}
	if conv.UserID != userID {
		return wsTurnReply{Type: "error", ConversationID: req.ConversationID, Error: "Not your conversation"}
	}

	result, err := s.loop.ProcessTurn(r.Context(), agent.TurnRequest{
		UserID:         userID,
		ConversationID: conv.ID,
		Language:       req.Language,
		Text:           req.Message,
	})
	if err != nil {
		s.logger.Error("turn failed", "conversation_id", conv.ID, "error", err)
		return wsTurnReply{Type: "error", ConversationID: conv.ID, Error: "turn failed: storage error"}
	}

	return wsTurnReply{
		Type:           "turn",
		ConversationID: conv.ID,
		Response: &MessageResponse{
			Role:             "assistant",
			Content:          result.ResponseText,
			MessageID:        result.MessageID,
			LanguageRejected: result.LanguageRejected,
			ToolCalls:        result.ToolCalls,
		},
	}
}
