package sync

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/occuhealth/capture/internal/offline"
)

func newTestHandler(online bool) (*Handler, *fixture) {
	f := newFixture(online)
	return NewHandler(f.orch, f.store, f.net), f
}

func doRequest(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e.Group("/workspace"))
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const completeSections = `{
	"sections": {
		"incident": {"clinic_name": "Harborview Occ Health", "incident_date": "2025-03-02", "employer_name": "Acme Manufacturing", "injury_cause": "Caught in press"},
		"patient": {"first_name": "Ana", "last_name": "Ruiz", "date_of_birth": "1988-07-14"},
		"providers": {"treating_provider": "Dr. Okafor"},
		"assessments": {"injury_classification": "laceration"},
		"narrative": {"text": "Deep laceration to the left forearm sustained while clearing a jam."},
		"disposition": {"work_status": "modified-duty"},
		"disclosureAcknowledgments": {"patient_signature": "Ana Ruiz"}
	}
}`

func TestHandler_SaveOffline(t *testing.T) {
	h, f := newTestHandler(false)
	rec := doRequest(h, http.MethodPost, "/workspace/encounters/local-w1/save", completeSections)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"sync_state":"pending"`) {
		t.Errorf("expected pending sync state: %s", rec.Body.String())
	}
	if n, _ := f.store.Count(nil); n != 1 {
		t.Errorf("expected one envelope, got %d", n)
	}
}

func TestHandler_SubmitIncomplete(t *testing.T) {
	h, _ := newTestHandler(true)
	rec := doRequest(h, http.MethodPost, "/workspace/encounters/local-w2/submit", `{"sections":{}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"first_invalid_section":"incident"`) {
		t.Errorf("expected first invalid section in body: %s", rec.Body.String())
	}
}

func TestHandler_SubmitComplete(t *testing.T) {
	h, f := newTestHandler(true)
	rec := doRequest(h, http.MethodPost, "/workspace/encounters/local-w3/submit", completeSections)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"submitted":true`) {
		t.Errorf("expected submitted result: %s", rec.Body.String())
	}
	if f.nav.away != 1 {
		t.Errorf("expected navigate-away signal, got %d", f.nav.away)
	}
}

func TestHandler_ValidateIsSpeculative(t *testing.T) {
	h, f := newTestHandler(true)
	rec := doRequest(h, http.MethodPost, "/workspace/encounters/local-w4/validate", `{"sections":{}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if n, _ := f.store.Count(nil); n != 0 {
		t.Error("speculative validation must not persist anything")
	}
	if c, u, s := f.remote.calls(); c+u+s != 0 {
		t.Error("speculative validation must not call the remote service")
	}
}

func TestHandler_LocalWriteFailure(t *testing.T) {
	h, f := newTestHandler(true)
	f.store.FailNextSave(offline.ErrWriteFailed)
	rec := doRequest(h, http.MethodPost, "/workspace/encounters/local-w5/save", completeSections)
	if rec.Code != http.StatusInsufficientStorage {
		t.Fatalf("local write failure must be a distinct hard failure, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "retry") {
		t.Errorf("expected retry guidance: %s", rec.Body.String())
	}
}

func TestHandler_QueueStatus(t *testing.T) {
	h, _ := newTestHandler(false)
	doRequest(h, http.MethodPost, "/workspace/encounters/local-w6/save", completeSections)

	rec := doRequest(h, http.MethodGet, "/workspace/queue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) || !strings.Contains(rec.Body.String(), `"has_any":true`) {
		t.Errorf("unexpected queue status: %s", rec.Body.String())
	}
}

func TestHandler_ReadEnvelopeNotFound(t *testing.T) {
	h, _ := newTestHandler(true)
	rec := doRequest(h, http.MethodGet, "/workspace/encounters/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_Replay(t *testing.T) {
	h, f := newTestHandler(false)
	doRequest(h, http.MethodPost, "/workspace/encounters/local-w7/submit", completeSections)

	f.net.IsOnline = true
	rec := doRequest(h, http.MethodPost, "/workspace/replay", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"replayed":1`) {
		t.Errorf("expected one replayed envelope: %s", rec.Body.String())
	}
}
