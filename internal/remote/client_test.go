package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	syncpkg "github.com/occuhealth/capture/internal/sync"
)

func TestCreateEncounter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/encounters" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["clinic_name"] != payload["clinicName"] {
			t.Error("expected both naming conventions in payload")
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "srv-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	id, err := c.CreateEncounter(context.Background(), map[string]interface{}{
		"clinic_name": "Harborview Occ Health",
		"clinicName":  "Harborview Occ Health",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "srv-42" {
		t.Errorf("expected srv-42, got %s", id)
	}
}

func TestUpdateEncounter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/encounters/srv-42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "srv-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.UpdateEncounter(context.Background(), "srv-42", nil); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestSubmitForReview_ValidationErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "validation failed",
			"errors":  map[string]string{"narrativeForm.text": "too short"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.SubmitForReview(context.Background(), "srv-42", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Errors["narrativeForm.text"] != "too short" {
		t.Errorf("expected structured errors, got %+v", resp.Errors)
	}
}

func TestDo_UnauthorizedIsSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateEncounter(context.Background(), nil)
	if !errors.Is(err, syncpkg.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestDo_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateEncounter(context.Background(), nil)
	if !errors.Is(err, syncpkg.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDo_ConnectionRefusedIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.CreateEncounter(context.Background(), nil)
	if !errors.Is(err, syncpkg.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDo_ExpiredTokenSkipsRoundTrip(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c := NewClient(srv.URL, WithTokenSource(func() string { return signed }))
	_, err = c.CreateEncounter(context.Background(), nil)
	if !errors.Is(err, syncpkg.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if called {
		t.Error("expired token must not reach the server")
	}
}

func TestDo_BearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"id": "srv-1"})
	}))
	defer srv.Close()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := tok.SignedString([]byte("secret"))

	c := NewClient(srv.URL, WithTokenSource(func() string { return signed }))
	if _, err := c.CreateEncounter(context.Background(), nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotAuth != "Bearer "+signed {
		t.Errorf("expected bearer token attached, got %q", gotAuth)
	}
}
