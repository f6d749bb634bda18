package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo := newTestService()
	return NewHandler(svc), repo, echo.New()
}

func asPrincipal(c echo.Context, id int64, role auth.Role) echo.Context {
	ctx := auth.WithPrincipal(c.Request().Context(),
		&auth.Principal{ID: id, OpenID: "test", Role: role})
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func TestHandler_CreateConversation(t *testing.T) {
	h, repo, e := newTestHandler()

	body := `{"channel_id":3,"subject":"Agendamento"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)

	if err := h.CreateConversation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var conv Conversation
	json.Unmarshal(rec.Body.Bytes(), &conv)
	if conv.Status != StatusOpen {
		t.Errorf("expected open, got %s", conv.Status)
	}
	if conv.Priority != PriorityMedium {
		t.Errorf("expected medium, got %s", conv.Priority)
	}
	if conv.PatientID != 12 {
		t.Errorf("expected patient from principal, got %d", conv.PatientID)
	}
	if len(repo.convs) != 1 {
		t.Errorf("expected 1 stored conversation, got %d", len(repo.convs))
	}
}

func TestHandler_CreateConversation_MissingChannel(t *testing.T) {
	h, repo, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)

	err := h.CreateConversation(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	if len(repo.convs) != 0 {
		t.Error("expected no row after validation failure")
	}
}

func TestHandler_GetConversation_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)
	c.SetParamNames("id")
	c.SetParamValues("9999")

	err := h.GetConversation(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandler_Assign(t *testing.T) {
	h, repo, e := newTestHandler()
	for i := 0; i < 5; i++ {
		repo.CreateConversation(context.Background(),
			&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"attendant_id":7}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 3, auth.RoleManager)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Assign(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var conv Conversation
	json.Unmarshal(rec.Body.Bytes(), &conv)
	if conv.AttendantID == nil || *conv.AttendantID != 7 {
		t.Error("expected attendant 7 in response")
	}
	if conv.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", conv.Status)
	}
}

func TestHandler_SendMessage_Scenario(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.CreateConversation(context.Background(),
		&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"Olá"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 7, auth.RoleAttendant)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var msg Message
	json.Unmarshal(rec.Body.Bytes(), &msg)
	if msg.SenderType != SenderAttendant {
		t.Errorf("expected sender_type atendente, got %s", msg.SenderType)
	}
	if msg.IsRead {
		t.Error("expected is_read false")
	}
}

func TestHandler_SendMessage_MissingConversation(t *testing.T) {
	h, repo, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)
	c.SetParamNames("id")
	c.SetParamValues("9999")

	err := h.SendMessage(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
	if len(repo.messages) != 0 {
		t.Error("expected no message row")
	}
}

func TestHandler_SendMessage_EmptyContent(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.CreateConversation(context.Background(),
		&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.SendMessage(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_MarkMessagesRead(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.CreateConversation(context.Background(),
		&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})
	repo.CreateMessage(context.Background(),
		&Message{ConversationID: 1, SenderID: 12, SenderType: SenderPatient, Content: "a"})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 7, auth.RoleAttendant)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.MarkMessagesRead(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp map[string]int64
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["marked"] != 1 {
		t.Errorf("expected 1 marked, got %d", resp["marked"])
	}
}

// Tier gating: a denied request never reaches the handler, so no state
// can change.
func TestTierGate_AttendantCannotAssign(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.CreateConversation(context.Background(),
		&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"attendant_id":7}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 7, auth.RoleAttendant)
	c.SetParamNames("id")
	c.SetParamValues("1")

	gated := auth.RequireTier(auth.TierManager)(h.Assign)
	err := gated(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
	if repo.convs[1].AttendantID != nil {
		t.Error("expected no assignment after denial")
	}
	if repo.convs[1].Status != StatusOpen {
		t.Error("expected status unchanged after denial")
	}
}

func TestTierGate_PatientCannotReadNotes(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.CreateConversation(context.Background(),
		&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)
	c.SetParamNames("id")
	c.SetParamValues("1")

	gated := auth.RequireTier(auth.TierAttendant)(h.ListNotes)
	err := gated(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestHandler_CreateNote(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.CreateConversation(context.Background(),
		&Conversation{PatientID: 12, ChannelID: 1, Status: StatusOpen, Priority: PriorityMedium})

	body := `{"note":"paciente prefere contato por email","note_type":"followup"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 7, auth.RoleAttendant)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.CreateNote(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var note ConversationNote
	json.Unmarshal(rec.Body.Bytes(), &note)
	if note.AttendantID != 7 {
		t.Errorf("expected attendant from principal, got %d", note.AttendantID)
	}
	if note.NoteType != NoteFollowup {
		t.Errorf("expected followup, got %s", note.NoteType)
	}
}

func TestHandler_ListMine_EmptyIsArray(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := asPrincipal(e.NewContext(req, rec), 12, auth.RolePatient)

	if err := h.ListMine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", rec.Body.String())
	}
}
