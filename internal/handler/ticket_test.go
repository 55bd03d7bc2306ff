package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleanexit/cleanexit/internal/handler/dto"
)

func TestTicketHandler_CreateAndGet(t *testing.T) {
	th := newTestHandlers(t)

	rec := httptest.NewRecorder()
	th.tickets.Create(rec, jsonRequest(http.MethodPost, "/api/support/ticket",
		`{"name":"Erin","email":"erin@example.com","subject":"Wipe failed","message":"The wipe stopped at 40%."}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created map[string]dto.TicketResponse
	decodeEnvelope(t, rec, &created)
	ticket := created["ticket"]
	if ticket.Reference == "" || ticket.Status != "open" {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	rec = httptest.NewRecorder()
	th.tickets.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/api/support/ticket/"+ticket.Reference, nil),
		"reference", ticket.Reference))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status map[string]dto.TicketStatusResponse
	decodeEnvelope(t, rec, &status)
	if status["ticket"].Subject != "Wipe failed" {
		t.Errorf("unexpected status view: %+v", status["ticket"])
	}
	if got := rec.Body.String(); strings.Contains(got, "erin@example.com") {
		t.Error("status view must not expose contact details")
	}
}

func TestTicketHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{"name":"Erin"}`, "Missing required fields: email, subject, message"},
		{"bad email", `{"name":"Erin","email":"erin","subject":"s","message":"m"}`, "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandlers(t)

			rec := httptest.NewRecorder()
			th.tickets.Create(rec, jsonRequest(http.MethodPost, "/api/support/ticket", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if env := decodeEnvelope(t, rec, nil); env.Error != tt.message {
				t.Errorf("expected %q, got %q", tt.message, env.Error)
			}
		})
	}
}

func TestTicketHandler_Get_NotFound(t *testing.T) {
	th := newTestHandlers(t)

	rec := httptest.NewRecorder()
	th.tickets.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "reference", "TKT-NOPE"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
