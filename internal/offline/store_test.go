package offline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/occuhealth/capture/internal/domain/record"
)

func testEnvelope(key, status string, attempted bool) *Envelope {
	return &Envelope{
		Key: key,
		Record: record.Record{
			LocalID: key,
			Status:  record.StatusDraft,
			Incident: record.Incident{
				ClinicName: "Harborview Occ Health",
			},
		},
		OfflineStatus:   status,
		SavedAt:         time.Now().UTC(),
		AttemptedSubmit: attempted,
	}
}

// Both implementations must behave identically against the Store contract.
func storeImpls(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "offline.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStore_SaveReadRoundTrip(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := testEnvelope("local-1", StatusDraft, false)
			if err := s.Save(ctx, "local-1", env); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := s.Read(ctx, "local-1")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if got.Record.Incident.ClinicName != "Harborview Occ Health" {
				t.Errorf("record not preserved: %+v", got.Record)
			}
			if got.OfflineStatus != StatusDraft {
				t.Errorf("expected draft, got %s", got.OfflineStatus)
			}
		})
	}
}

func TestStore_ReadMissing(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Read(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_OverwriteByKey(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Save(ctx, "local-2", testEnvelope("local-2", StatusDraft, false))
			s.Save(ctx, "local-2", testEnvelope("local-2", StatusPendingSubmission, true))

			got, err := s.Read(ctx, "local-2")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if got.OfflineStatus != StatusPendingSubmission || !got.AttemptedSubmit {
				t.Errorf("last write must win, got %+v", got)
			}
			n, _ := s.Count(ctx)
			if n != 1 {
				t.Errorf("overwrite must not grow the store, count=%d", n)
			}
		})
	}
}

func TestStore_CountAndHasAny(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if has, _ := s.HasAny(ctx); has {
				t.Error("empty store must report no envelopes")
			}
			s.Save(ctx, "a", testEnvelope("a", StatusDraft, false))
			s.Save(ctx, "b", testEnvelope("b", StatusDraft, false))
			n, err := s.Count(ctx)
			if err != nil || n != 2 {
				t.Errorf("expected count 2, got %d (%v)", n, err)
			}
			if has, _ := s.HasAny(ctx); !has {
				t.Error("expected HasAny true")
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Save(ctx, "gone", testEnvelope("gone", StatusDraft, false))
			if err := s.Delete(ctx, "gone"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := s.Read(ctx, "gone"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete(ctx, "gone"); !errors.Is(err, ErrNotFound) {
				t.Errorf("double delete must report ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_ListPending(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Save(ctx, "d1", testEnvelope("d1", StatusDraft, false))
			s.Save(ctx, "p1", testEnvelope("p1", StatusPendingSubmission, true))
			s.Save(ctx, "s1", testEnvelope("s1", StatusSynced, true))

			pending, err := s.ListPending(ctx)
			if err != nil {
				t.Fatalf("list pending: %v", err)
			}
			if len(pending) != 1 || pending[0].Key != "p1" {
				t.Errorf("expected only p1 pending, got %+v", pending)
			}
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, "local-9", testEnvelope("local-9", StatusPendingSubmission, true)); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Read(ctx, "local-9")
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if !got.AttemptedSubmit || got.OfflineStatus != StatusPendingSubmission {
		t.Errorf("envelope did not survive restart: %+v", got)
	}
}

func TestMemoryStore_FailNextSave(t *testing.T) {
	s := NewMemoryStore()
	s.FailNextSave(ErrWriteFailed)
	err := s.Save(context.Background(), "k", testEnvelope("k", StatusDraft, false))
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	// Next save proceeds normally.
	if err := s.Save(context.Background(), "k", testEnvelope("k", StatusDraft, false)); err != nil {
		t.Fatalf("expected recovery after injected failure, got %v", err)
	}
}
