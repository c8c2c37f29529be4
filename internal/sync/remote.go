// Package sync contains the orchestrator that decides, per save or submit
// action, whether an encounter is written locally only or locally then
// remotely, and that reconciles the client-local identifier with the
// server-assigned one exactly once.
package sync

import (
	"context"
	"errors"
)

var (
	// ErrSessionExpired marks an authentication failure on a remote call.
	// The local copy is safe; the user must re-authenticate. Reported
	// distinctly from generic connectivity failure.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnavailable wraps transport-level remote failures. The orchestrator
	// downgrades these to a queued outcome; they never surface as data loss.
	ErrUnavailable = errors.New("remote service unavailable")
	// ErrSubmitInFlight is returned when a submit is invoked while a
	// previous submit for the same encounter has not yet resolved.
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// SubmitResponse is the remote submit-for-review reply. When Success is
// false, Errors carries server-side validation failures keyed by wire field
// names (e.g. "narrativeForm.text").
type SubmitResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// RemoteService is the remote encounter contract consumed by the
// orchestrator. Create and Update return the server identifier.
// Implementations must surface authentication failure as ErrSessionExpired.
type RemoteService interface {
	CreateEncounter(ctx context.Context, payload map[string]interface{}) (string, error)
	UpdateEncounter(ctx context.Context, id string, payload map[string]interface{}) (string, error)
	SubmitForReview(ctx context.Context, id string, payload map[string]interface{}) (*SubmitResponse, error)
}
