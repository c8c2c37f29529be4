// Package offline is the local durability layer: a persistent key-value
// store of encounter envelopes that survives process restarts and network
// loss. A save here must complete before any remote call is attempted for
// the same action; that ordering is the pipeline's core durability
// guarantee.
package offline

import (
	"context"
	"errors"
	"time"

	"github.com/occuhealth/capture/internal/domain/record"
)

var (
	// ErrNotFound is returned when no envelope exists under the key.
	ErrNotFound = errors.New("offline envelope not found")
	// ErrWriteFailed wraps a failed local write. This is the one case where
	// data loss is possible and callers must surface it as a hard failure,
	// never as "sync pending".
	ErrWriteFailed = errors.New("offline write failed")
)

// Offline envelope statuses.
const (
	StatusDraft             = "draft"
	StatusPendingSubmission = "pending_submission"
	StatusSynced            = "synced"
)

// Envelope is the unit written to durable storage: the record snapshot plus
// sync bookkeeping. For a given key the lifecycle fields are monotonically
// non-decreasing; the orchestrator carries them forward on every write, the
// store itself performs a plain overwrite-by-key.
type Envelope struct {
	Key             string        `json:"key"`
	Record          record.Record `json:"record"`
	OfflineStatus   string        `json:"offline_status"`
	SavedAt         time.Time     `json:"saved_at"`
	AttemptedSubmit bool          `json:"attempted_submit"`
	SubmittedAt     *time.Time    `json:"submitted_at,omitempty"`
	ServerSyncedAt  *time.Time    `json:"server_synced_at,omitempty"`
}

// Store is the durable envelope store contract. Save overwrites by key,
// last write wins, no merge. Keys are either the client-local identifier
// or, once assigned, the server identifier; callers use the latest known
// key.
type Store interface {
	Save(ctx context.Context, key string, env *Envelope) error
	Read(ctx context.Context, key string) (*Envelope, error)
	Delete(ctx context.Context, key string) error
	Count(ctx context.Context) (int, error)
	HasAny(ctx context.Context) (bool, error)
	// ListPending returns envelopes with an attempted submission that has
	// not yet reached the server, for explicit replay.
	ListPending(ctx context.Context) ([]*Envelope, error)
}
