package storage

import (
	"context"
	"sync"

	"github.com/g-but/palfare/internal/domain/model"
)

// MemoryStore is an in-memory Store used by tests and ephemeral ledgers.
type MemoryStore struct {
	mu       sync.RWMutex
	txs      []model.Transaction
	bal      model.Balance
	hasState bool
	reports  map[string]model.AuditReport

	// FailNextSave, when set, makes the next SaveState return ErrWriteState
	// and clears itself. Lets tests exercise the rollback path.
	FailNextSave bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]model.AuditReport)}
}

// LoadTransactions returns the stored log or ErrNotFound before first save.
func (s *MemoryStore) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasState {
		return nil, ErrNotFound
	}
	out := make([]model.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

// LoadBalance returns the stored balance or ErrNotFound before first save.
func (s *MemoryStore) LoadBalance(ctx context.Context) (model.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasState {
		return model.Balance{}, ErrNotFound
	}
	return s.bal, nil
}

// SaveState replaces both documents under one lock.
func (s *MemoryStore) SaveState(ctx context.Context, txs []model.Transaction, bal model.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNextSave {
		s.FailNextSave = false
		return ErrWriteState
	}
	s.txs = make([]model.Transaction, len(txs))
	copy(s.txs, txs)
	s.bal = bal
	s.hasState = true
	return nil
}

// SaveReport stores an audit report under name.
func (s *MemoryStore) SaveReport(ctx context.Context, name string, r model.AuditReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[name] = r
	return nil
}

// LoadReport reads back a stored audit report.
func (s *MemoryStore) LoadReport(ctx context.Context, name string) (model.AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[name]
	if !ok {
		return model.AuditReport{}, ErrNotFound
	}
	return r, nil
}
