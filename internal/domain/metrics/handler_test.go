package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo := newTestService()
	return NewHandler(svc), repo, echo.New()
}

func TestHandler_ListByAttendant_MissingRange(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics?attendant_id=7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListByAttendant(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_ListByAttendant(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.Upsert(context.Background(), &AttendanceMetric{AttendantID: 7, Date: day("2025-06-10"), TotalConversations: 4})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/metrics?attendant_id=7&start=2025-06-01&end=2025-06-30", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListByAttendant(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var result []AttendanceMetric
	json.Unmarshal(rec.Body.Bytes(), &result)
	if len(result) != 1 {
		t.Errorf("expected 1 metric, got %d", len(result))
	}
}

func TestHandler_ListOverall_MissingRange(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/overall", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListOverall(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_Upsert(t *testing.T) {
	h, repo, e := newTestHandler()

	body := `{"attendant_id":7,"date":"2025-06-01","total_conversations":10,"total_messages":42}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/metrics", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upsert(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(repo.rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(repo.rows))
	}
}

func TestHandler_Upsert_BadDate(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"attendant_id":7,"date":"June 1st"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/metrics", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Upsert(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}
