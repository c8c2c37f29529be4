package offline

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe, in-memory Store for tests and development.
type MemoryStore struct {
	mu        sync.RWMutex
	envelopes map[string]Envelope
	failNext  error
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{envelopes: make(map[string]Envelope)}
}

// FailNextSave makes the next Save return err, simulating a storage-quota
// style hard failure.
func (s *MemoryStore) FailNextSave(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

func (s *MemoryStore) Save(_ context.Context, key string, env *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	cp := *env
	cp.Key = key
	s.envelopes[key] = cp
	return nil
}

func (s *MemoryStore) Read(_ context.Context, key string) (*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	env, ok := s.envelopes[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := env
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.envelopes[key]; !ok {
		return ErrNotFound
	}
	delete(s.envelopes, key)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.envelopes), nil
}

func (s *MemoryStore) HasAny(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	return n > 0, err
}

func (s *MemoryStore) ListPending(_ context.Context) ([]*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []*Envelope
	for _, env := range s.envelopes {
		if env.AttemptedSubmit && env.OfflineStatus == StatusPendingSubmission {
			cp := env
			pending = append(pending, &cp)
		}
	}
	return pending, nil
}
