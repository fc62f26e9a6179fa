package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/PabloGalante/zap-agent/internal/adapters/http"
	"github.com/PabloGalante/zap-agent/internal/adapters/llm"
	"github.com/PabloGalante/zap-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/zap-agent/internal/app/simulator"
	"github.com/PabloGalante/zap-agent/internal/domain"
)

func newTestServer(t *testing.T) (http.Handler, *llm.MockChatService) {
	t.Helper()

	mock := llm.NewMockChatService()
	// Single-bubble replies keep handler tests free of pacing delays.
	mock.SetReply(func(_ domain.CompiledPrompt, userText string) string {
		return "Recebi: " + userText
	})

	agents := memory.NewAgentStore()
	sim := simulator.NewService(mock, agents, memory.NewMessageLog())
	srv := httpadapter.NewServer(agents, sim, httpadapter.Options{})

	return srv, mock
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createAgent(t *testing.T, srv http.Handler) string {
	t.Helper()

	w := doJSON(t, srv, http.MethodPost, "/agents", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected agent id in create response")
	}
	return resp.ID
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateAgentFromDefaultTemplate(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/agents", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Novo Assistente") {
		t.Errorf("default agent should use the template name, body=%s", w.Body.String())
	}
}

func TestAgentLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createAgent(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/agents", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), id) {
		t.Fatalf("list should contain the created agent, got %d %s", w.Code, w.Body.String())
	}

	update := map[string]any{
		"name":                "Ana",
		"company_name":        "Tech Solutions",
		"role":                "Vendas",
		"tone":                "Casual",
		"system_instructions": "Seja direta.",
		"max_response_length": 150,
	}
	w = doJSON(t, srv, http.MethodPut, "/agents/"+id, update)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/agents/"+id, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Ana") {
		t.Fatalf("get should reflect the update, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodDelete, "/agents/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/agents/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestUpdateRejectsInvalidBase64Media(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createAgent(t, srv)

	update := map[string]any{
		"name":                "Ana",
		"max_response_length": 150,
		"documents": []map[string]any{{
			"name":      "catalog.pdf",
			"type":      "file",
			"mime_type": "application/pdf",
			"content":   "not base64!!!",
		}},
	}
	w := doJSON(t, srv, http.MethodPut, "/agents/"+id, update)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid base64 media, got %d", w.Code)
	}
}

func TestUpdateRejectsOversizedKnowledge(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createAgent(t, srv)

	update := map[string]any{
		"name":                "Ana",
		"max_response_length": 150,
		"documents": []map[string]any{{
			"name":    "huge",
			"type":    "text",
			"content": strings.Repeat("x", 500_001),
		}},
	}
	w := doJSON(t, srv, http.MethodPut, "/agents/"+id, update)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized knowledge, got %d", w.Code)
	}
}

func TestSendMessageRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createAgent(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/agents/"+id+"/messages", map[string]string{"text": "Qual o preço?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		UserMessage struct {
			Text   string `json:"text"`
			Sender string `json:"sender"`
		} `json:"user_message"`
		Bubbles []struct {
			Text   string `json:"text"`
			Sender string `json:"sender"`
		} `json:"bubbles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.UserMessage.Text != "Qual o preço?" || resp.UserMessage.Sender != "USER" {
		t.Errorf("unexpected user message %+v", resp.UserMessage)
	}
	if len(resp.Bubbles) != 1 || resp.Bubbles[0].Text != "Recebi: Qual o preço?" {
		t.Errorf("unexpected bubbles %+v", resp.Bubbles)
	}

	w = doJSON(t, srv, http.MethodGet, "/agents/"+id+"/messages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for transcript, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Recebi: Qual o preço?") {
		t.Errorf("transcript missing bot bubble, body=%s", w.Body.String())
	}
}

func TestSendMessageRejectsBlankText(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createAgent(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/agents/"+id+"/messages", map[string]string{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", w.Code)
	}
}

func TestSendMessageUnknownAgent(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/agents/nope/messages", map[string]string{"text": "oi"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown agent, got %d", w.Code)
	}
}

func TestResetSessionEndpoint(t *testing.T) {
	srv, mock := newTestServer(t)
	id := createAgent(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/agents/"+id+"/session", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(mock.OpenedPrompts()) != 1 {
		t.Fatalf("expected one opened session, got %d", len(mock.OpenedPrompts()))
	}
}

// Saving configuration changes must invalidate the live session, so
// the next message talks to a session compiled from the new snapshot.
func TestUpdateInvalidatesSession(t *testing.T) {
	srv, mock := newTestServer(t)
	id := createAgent(t, srv)

	doJSON(t, srv, http.MethodPost, "/agents/"+id+"/messages", map[string]string{"text": "oi"})

	update := map[string]any{
		"name":                "Clara",
		"max_response_length": 120,
	}
	if w := doJSON(t, srv, http.MethodPut, "/agents/"+id, update); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", w.Code)
	}

	doJSON(t, srv, http.MethodPost, "/agents/"+id+"/messages", map[string]string{"text": "oi de novo"})

	prompts := mock.OpenedPrompts()
	if len(prompts) != 2 {
		t.Fatalf("expected a fresh session after the update, got %d sessions", len(prompts))
	}
	if !strings.Contains(prompts[1].SystemInstruction, "Clara") {
		t.Error("second session should be compiled from the updated configuration")
	}
}

func TestBridgeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createAgent(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/agents/"+id+"/bridge", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("unexpected content type %q", ct)
	}
	for _, want := range []string{"app.post('/webhook'", "'|||'", "sendText"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("bridge code missing %q", want)
		}
	}
}
