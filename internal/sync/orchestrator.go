package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/occuhealth/capture/internal/domain/record"
	"github.com/occuhealth/capture/internal/domain/validation"
	"github.com/occuhealth/capture/internal/offline"
)

// SyncState describes how far a save or submit action got beyond the local
// write.
type SyncState string

const (
	// SyncStateSynced: the remote call for this action succeeded.
	SyncStateSynced SyncState = "synced"
	// SyncStatePending: the local copy is durable; the remote call was
	// skipped (offline) or failed and will be replayed later.
	SyncStatePending SyncState = "pending"
	// SyncStateSessionExpired: the local copy is durable but the user must
	// re-authenticate before syncing can resume.
	SyncStateSessionExpired SyncState = "session_expired"
)

// SaveResult reports the outcome of a non-terminal save. The local write
// always succeeded when a SaveResult is returned; only SyncState differs.
type SaveResult struct {
	Key       string    `json:"key"`
	ServerID  string    `json:"server_id,omitempty"`
	Created   bool      `json:"created"`
	SyncState SyncState `json:"sync_state"`
}

// SubmitResult reports the outcome of a terminal submit intent.
type SubmitResult struct {
	Submitted           bool              `json:"submitted"`
	Queued              bool              `json:"queued"`
	SessionExpired      bool              `json:"session_expired"`
	ServerRejected      bool              `json:"server_rejected"`
	Errors              []validation.Error `json:"errors,omitempty"`
	CompletionPercentage int              `json:"completion_percentage,omitempty"`
	FirstInvalidSection string            `json:"first_invalid_section,omitempty"`
	Message             string            `json:"message,omitempty"`
	ServerID            string            `json:"server_id,omitempty"`
}

// Orchestrator runs the save/submit state machine for encounter records.
// The local durable write always completes before any remote call for the
// same action is dispatched; remote failures are downgraded to a pending
// outcome and never look like data loss.
type Orchestrator struct {
	store  offline.Store
	remote RemoteService
	net    Connectivity
	nav    Navigator
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the orchestrator's time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(store offline.Store, remote RemoteService, net Connectivity, nav Navigator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		remote:   remote,
		net:      net,
		nav:      nav,
		log:      zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		inFlight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var statusRank = map[string]int{
	offline.StatusDraft:             0,
	offline.StatusPendingSubmission: 1,
	offline.StatusSynced:            2,
}

// writeEnvelope persists the record under its current key, carrying the
// sticky lifecycle fields forward from any existing envelope so the stage
// never regresses: attemptedSubmit never flips back to false and
// offlineStatus never ranks below what was already recorded. The store
// itself is a plain overwrite; monotonicity lives here.
func (o *Orchestrator) writeEnvelope(ctx context.Context, rec *record.Record, status string, attemptedSubmit bool) (*offline.Envelope, error) {
	env := &offline.Envelope{
		Key:             rec.Key(),
		Record:          *rec,
		OfflineStatus:   status,
		SavedAt:         o.now(),
		AttemptedSubmit: attemptedSubmit,
	}
	if attemptedSubmit {
		t := o.now()
		env.SubmittedAt = &t
	}

	prev, err := o.store.Read(ctx, rec.Key())
	if err != nil && !errors.Is(err, offline.ErrNotFound) {
		return nil, err
	}
	if prev != nil {
		if prev.AttemptedSubmit {
			env.AttemptedSubmit = true
			env.SubmittedAt = prev.SubmittedAt
		}
		if statusRank[prev.OfflineStatus] > statusRank[env.OfflineStatus] {
			env.OfflineStatus = prev.OfflineStatus
		}
		if prev.ServerSyncedAt != nil {
			env.ServerSyncedAt = prev.ServerSyncedAt
		}
	}

	if err := o.store.Save(ctx, rec.Key(), env); err != nil {
		return nil, err
	}
	return env, nil
}

// reconcile stores the server identifier onto the record and re-keys the
// envelope under it, retiring the client-local key. This happens exactly
// once per encounter, at the first successful remote create, and emits the
// redirect signal so any URL referencing the local identifier is updated.
func (o *Orchestrator) reconcile(ctx context.Context, rec *record.Record, serverID string) {
	localKey := rec.Key()
	rec.ServerID = serverID

	env, err := o.store.Read(ctx, localKey)
	if err == nil {
		env.Record = *rec
		if err := o.store.Save(ctx, serverID, env); err != nil {
			// Remote create succeeded but the re-key write failed; the
			// local-key envelope is still intact, so nothing is lost.
			o.log.Error().Err(err).Str("server_id", serverID).Msg("re-key envelope write failed")
		} else if localKey != serverID {
			if err := o.store.Delete(ctx, localKey); err != nil && !errors.Is(err, offline.ErrNotFound) {
				o.log.Warn().Err(err).Str("key", localKey).Msg("retire local envelope key failed")
			}
		}
	}

	o.nav.RedirectTo(serverID)
	o.log.Info().Str("local_id", rec.LocalID).Str("server_id", serverID).Msg("identifier reconciled")
}

// Save persists a non-terminal edit. The offline envelope is written first,
// unconditionally; a failed local write is the only hard error. When
// online, the record is created remotely on first save and updated on every
// save after that; create and update are mutually exclusive per encounter.
func (o *Orchestrator) Save(ctx context.Context, rec *record.Record) (*SaveResult, error) {
	if _, err := o.writeEnvelope(ctx, rec, offline.StatusDraft, false); err != nil {
		o.log.Error().Err(err).Str("key", rec.Key()).Msg("local save failed")
		return nil, err
	}

	res := &SaveResult{Key: rec.Key(), ServerID: rec.ServerID, SyncState: SyncStatePending}
	if !o.net.Online() {
		o.log.Debug().Str("key", rec.Key()).Msg("offline, save queued")
		return res, nil
	}

	payload := record.BuildPayload(rec)
	if rec.ServerID == "" {
		serverID, err := o.remote.CreateEncounter(ctx, payload)
		if err != nil {
			res.SyncState = degradedState(err)
			o.log.Warn().Err(err).Str("key", rec.Key()).Msg("remote create failed, envelope retained")
			return res, nil
		}
		o.reconcile(ctx, rec, serverID)
		res.Key = rec.Key()
		res.ServerID = serverID
		res.Created = true
		res.SyncState = SyncStateSynced
		return res, nil
	}

	if _, err := o.remote.UpdateEncounter(ctx, rec.ServerID, payload); err != nil {
		res.SyncState = degradedState(err)
		o.log.Warn().Err(err).Str("server_id", rec.ServerID).Msg("remote update failed, envelope retained")
		return res, nil
	}
	res.SyncState = SyncStateSynced
	return res, nil
}

// Submit runs the terminal submission transition. Validation happens before
// any persistence side effect; an invalid record produces errors and the
// first invalid section without touching the store or the network. A valid
// record is written locally as pending_submission with attemptedSubmit set,
// then submitted remotely when possible. Re-entrant submits for the same
// encounter are rejected by the entry guard while one is in flight.
func (o *Orchestrator) Submit(ctx context.Context, rec *record.Record) (*SubmitResult, error) {
	if !o.begin(rec.LocalID) {
		return nil, ErrSubmitInFlight
	}
	defer o.end(rec.LocalID)

	verdict := validation.Validate(rec)
	if !verdict.IsValid {
		return &SubmitResult{
			Errors:               verdict.Errors,
			CompletionPercentage: verdict.CompletionPercentage,
			FirstInvalidSection:  validation.FirstInvalidSection(rec),
			Message:              "encounter is incomplete",
		}, nil
	}

	rec.Status = record.StatusPendingSubmission
	if _, err := o.writeEnvelope(ctx, rec, offline.StatusPendingSubmission, true); err != nil {
		o.log.Error().Err(err).Str("key", rec.Key()).Msg("local submit write failed")
		return nil, err
	}

	if !o.net.Online() {
		o.log.Info().Str("key", rec.Key()).Msg("offline, submission queued")
		return &SubmitResult{Queued: true, Message: "encounter queued for submission"}, nil
	}

	// A never-saved encounter needs its server identifier first; this goes
	// through the same creation path Save uses, so reconciliation still
	// happens exactly once.
	if rec.ServerID == "" {
		serverID, err := o.remote.CreateEncounter(ctx, record.BuildPayload(rec))
		if err != nil {
			return o.degradedSubmit(rec, err), nil
		}
		o.reconcile(ctx, rec, serverID)
	}

	resp, err := o.remote.SubmitForReview(ctx, rec.ServerID, record.BuildPayload(rec))
	if err != nil {
		return o.degradedSubmit(rec, err), nil
	}

	if !resp.Success {
		// The server is the authority here even though the client engine
		// passed: re-enter the validation-failure path with mapped errors.
		errs := validation.MapServerErrors(resp.Errors)
		o.log.Info().Str("server_id", rec.ServerID).Int("errors", len(errs)).Msg("server rejected submission")
		return &SubmitResult{
			ServerRejected:      true,
			Errors:              errs,
			FirstInvalidSection: validation.FirstSection(errs),
			Message:             resp.Message,
			ServerID:            rec.ServerID,
		}, nil
	}

	rec.Status = record.StatusSubmitted
	env := &offline.Envelope{
		Key:             rec.Key(),
		Record:          *rec,
		OfflineStatus:   offline.StatusSynced,
		SavedAt:         o.now(),
		AttemptedSubmit: true,
	}
	t := o.now()
	env.SubmittedAt = &t
	env.ServerSyncedAt = &t
	if err := o.store.Save(ctx, rec.Key(), env); err != nil {
		// The submission reached the server; a failed bookkeeping write is
		// logged but does not fail the action.
		o.log.Error().Err(err).Str("key", rec.Key()).Msg("synced envelope write failed")
	}
	rec.Status = record.StatusSynced

	o.nav.NavigateAway()
	o.log.Info().Str("server_id", rec.ServerID).Msg("encounter submitted")
	return &SubmitResult{Submitted: true, ServerID: rec.ServerID, Message: resp.Message}, nil
}

// ReplayPending re-runs the submit transition for envelopes left in
// pending_submission with an attempted submit, typically from a prior
// offline session. Replay is explicit, invoked by the operator or an
// endpoint rather than an automatic reconnect hook. Returns the number
// of envelopes that reached the server.
func (o *Orchestrator) ReplayPending(ctx context.Context) (int, error) {
	pending, err := o.store.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, env := range pending {
		rec := env.Record
		res, err := o.Submit(ctx, &rec)
		if err != nil {
			if errors.Is(err, ErrSubmitInFlight) {
				continue
			}
			return replayed, err
		}
		if res.Submitted {
			replayed++
		}
	}
	o.log.Info().Int("pending", len(pending)).Int("replayed", replayed).Msg("replay finished")
	return replayed, nil
}

func (o *Orchestrator) degradedSubmit(rec *record.Record, err error) *SubmitResult {
	if errors.Is(err, ErrSessionExpired) {
		o.log.Warn().Str("key", rec.Key()).Msg("session expired during submission")
		return &SubmitResult{SessionExpired: true, Message: "session expired, sign in to finish submitting"}
	}
	// Treated identically to offline: the pending envelope guarantees no
	// data loss, so the user is told the encounter is queued, not failed.
	o.log.Warn().Err(err).Str("key", rec.Key()).Msg("remote submission failed, queued")
	return &SubmitResult{Queued: true, Message: "encounter queued for submission"}
}

func degradedState(err error) SyncState {
	if errors.Is(err, ErrSessionExpired) {
		return SyncStateSessionExpired
	}
	return SyncStatePending
}

func (o *Orchestrator) begin(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[key] {
		return false
	}
	o.inFlight[key] = true
	return true
}

func (o *Orchestrator) end(key string) {
	o.mu.Lock()
	delete(o.inFlight, key)
	o.mu.Unlock()
}
