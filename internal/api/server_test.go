package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/oceanai/sagarmitra/internal/agent"
	"github.com/oceanai/sagarmitra/internal/llm"
	"github.com/oceanai/sagarmitra/internal/memory"
	"github.com/oceanai/sagarmitra/internal/store"
	"github.com/oceanai/sagarmitra/internal/tools"

	_ "modernc.org/sqlite"
)

// cannedChatter answers every model call with the same text. Memory
// prompts get the same answer, which is harmless for these tests.
type cannedChatter struct {
	reply string
}

func (c *cannedChatter) Chat(ctx context.Context, messages []llm.Message, toolSpecs []map[string]any) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: c.reply}}, nil
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := store.OpenDB(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	chat := &cannedChatter{reply: "vanakkam!"}
	mem := memory.NewManager(st, chat, 10, nil)
	registry := tools.NewRegistry(st, nil, nil)
	loop := agent.NewLoop(st, mem, chat, registry, 6, nil)
	srv := NewServer("127.0.0.1", 0, st, loop, nil)
	t.Cleanup(loop.Wait)
	return srv, st
}

func doJSON(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestConversationLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, "POST", "/conversations", "fisher-1", CreateConversationRequest{Language: "ta"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	conv := body["conversation"].(map[string]any)
	convID := conv["id"].(string)
	if conv["title"] != agent.DefaultTitle {
		t.Errorf("expected default title, got %v", conv["title"])
	}
	if conv["language"] != "ta" {
		t.Errorf("expected language ta, got %v", conv["language"])
	}

	rec = doJSON(t, h, "GET", "/conversations", "fisher-1", nil)
	body = decodeBody(t, rec)
	if n := len(body["conversations"].([]any)); n != 1 {
		t.Errorf("expected 1 conversation listed, got %d", n)
	}

	title := "Morning catch plan"
	rec = doJSON(t, h, "PATCH", "/conversations/"+convID, "fisher-1",
		UpdateConversationRequest{Title: &title})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/conversations/"+convID, "fisher-1", nil)
	body = decodeBody(t, rec)
	if got := body["conversation"].(map[string]any)["title"]; got != title {
		t.Errorf("expected updated title, got %v", got)
	}

	rec = doJSON(t, h, "DELETE", "/conversations/"+convID, "fisher-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/conversations/"+convID, "fisher-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestIdentityRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, "GET", "/conversations", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without X-User-ID, got %d", rec.Code)
	}
}

func TestConversationOwnership(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	conv, err := st.CreateConversation("fisher-1", agent.DefaultTitle, "en")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	for _, tc := range []struct {
		method, path string
	}{
		{"GET", "/conversations/" + conv.ID},
		{"PATCH", "/conversations/" + conv.ID},
		{"DELETE", "/conversations/" + conv.ID},
		{"GET", "/conversations/" + conv.ID + "/messages"},
	} {
		rec := doJSON(t, h, tc.method, tc.path, "fisher-2", map[string]any{})
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 for foreign user, got %d", tc.method, tc.path, rec.Code)
		}
	}

	rec := doJSON(t, h, "POST", "/conversations/"+conv.ID+"/messages", "fisher-2",
		SendMessageRequest{Message: "hello"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("send to foreign conversation: expected 403, got %d", rec.Code)
	}
}

func TestSendMessageAndHistory(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	conv, err := st.CreateConversation("fisher-1", agent.DefaultTitle, "en")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	rec := doJSON(t, h, "POST", "/conversations/"+conv.ID+"/messages", "fisher-1",
		SendMessageRequest{Message: "hello there"})
	if rec.Code != http.StatusOK {
		t.Fatalf("send: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	resp := body["response"].(map[string]any)
	if resp["content"] != "vanakkam!" {
		t.Errorf("unexpected assistant content %v", resp["content"])
	}
	if resp["message_id"] == "" {
		t.Error("expected a message id")
	}

	rec = doJSON(t, h, "GET", "/conversations/"+conv.ID+"/messages", "fisher-1", nil)
	body = decodeBody(t, rec)
	msgs := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages in history, got %d", len(msgs))
	}
	first := msgs[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "hello there" {
		t.Errorf("unexpected first history entry %v", first)
	}
}

func TestSendMessageValidation(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	conv, _ := st.CreateConversation("fisher-1", agent.DefaultTitle, "en")

	rec := doJSON(t, h, "POST", "/conversations/"+conv.ID+"/messages", "fisher-1",
		SendMessageRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/conversations/conv_missing/messages", "fisher-1",
		SendMessageRequest{Message: "hi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown conversation: expected 404, got %d", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, "GET", "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: status %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "healthy" {
		t.Errorf("healthz body %v", body)
	}

	rec = doJSON(t, h, "GET", "/version", "", nil)
	if body := decodeBody(t, rec); body["version"] == "" {
		t.Errorf("version body %v", body)
	}
}

func TestChatSocket(t *testing.T) {
	srv, st := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conv, err := st.CreateConversation("fisher-1", agent.DefaultTitle, "en")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	header := http.Header{"X-User-ID": []string{"fisher-1"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsTurnRequest{ConversationID: conv.ID, Message: "hello"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var reply wsTurnReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if reply.Type != "turn" || reply.Response == nil || reply.Response.Content != "vanakkam!" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	// A bad frame reports an error and keeps the socket usable.
	if err := conn.WriteJSON(wsTurnRequest{ConversationID: "conv_missing", Message: "hi"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if reply.Type != "error" || reply.Error != "Conversation not found" {
		t.Fatalf("expected not-found error frame, got %+v", reply)
	}

	if err := conn.WriteJSON(wsTurnRequest{ConversationID: conv.ID, Message: "still here?"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if reply.Type != "turn" {
		t.Fatalf("socket should survive an error frame, got %+v", reply)
	}
}

func TestChatSocketRequiresIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail without identity")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		t.Errorf("expected 401, got %d", code)
	}
}
