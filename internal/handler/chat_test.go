package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleanexit/cleanexit/internal/handler/dto"
)

func TestChatHandler_Respond(t *testing.T) {
	th := newTestHandlers(t)
	session := th.login(t, "grace")

	rec := httptest.NewRecorder()
	th.chat.Respond(rec, withSession(jsonRequest(http.MethodPost, "/api/chat", `{"message":"We had a BREACH"}`), session))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ChatResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Topic != "emergency" || !strings.HasPrefix(resp.Response, "I understand this is urgent.") {
		t.Errorf("unexpected reply: %+v", resp)
	}
	if resp.User != "grace" {
		t.Errorf("expected user grace, got %s", resp.User)
	}
	if got := th.metrics.Snapshot().ChatResponses["emergency"]; got != 1 {
		t.Errorf("expected one emergency reply counted, got %d", got)
	}
}

func TestChatHandler_Respond_EmptyMessage(t *testing.T) {
	th := newTestHandlers(t)
	session := th.login(t, "grace")

	rec := httptest.NewRecorder()
	th.chat.Respond(rec, withSession(jsonRequest(http.MethodPost, "/api/chat", `{"message":"   "}`), session))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec, nil); env.Error != "No message provided" {
		t.Errorf("unexpected error: %q", env.Error)
	}
}
