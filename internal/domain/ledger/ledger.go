// Package ledger implements the append-only transaction ledger with a
// derived balance aggregate and per-transaction integrity fingerprints.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/g-but/palfare/internal/adapters/storage"
	"github.com/g-but/palfare/internal/domain/digest"
	"github.com/g-but/palfare/internal/domain/model"
)

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithClock sets the time source used for defaulted timestamps. Tests use
// this to make fingerprints reproducible.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// Ledger owns the ordered transaction log and balance for one address.
// All mutations are serialized behind a single mutex and persisted inside
// the critical section, so concurrent appends never race on
// load-modify-save.
type Ledger struct {
	mu      sync.RWMutex
	address string
	store   storage.Store
	clock   func() time.Time

	txs []model.Transaction
	bal model.Balance
}

// New loads persisted state for address from store. Missing state is the
// documented bootstrap case: an empty log and a zeroed balance. Any other
// read failure propagates.
func New(ctx context.Context, address string, store storage.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		address: address,
		store:   store,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	txs, err := store.LoadTransactions(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		l.txs = nil
	case err != nil:
		return nil, fmt.Errorf("load transaction log: %w", err)
	default:
		l.txs = txs
	}

	bal, err := store.LoadBalance(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		l.bal = model.Balance{}
	case err != nil:
		return nil, fmt.Errorf("load balance: %w", err)
	default:
		l.bal = bal
	}

	return l, nil
}

// Address returns the address this ledger tracks.
func (l *Ledger) Address() string {
	return l.address
}

// Append validates and records a new transaction, updates the balance and
// persists both documents before the mutation becomes visible. A zero ts
// defaults to the current time. Transaction ids are not required to be
// unique; lookups use first-match semantics.
func (l *Ledger) Append(ctx context.Context, id string, amount int64, kind model.Kind, ts time.Time) (model.Transaction, error) {
	if !kind.Valid() {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ts.IsZero() {
		ts = l.clock()
	}

	fp, err := fingerprint(id, amount, kind, ts)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("compute fingerprint: %w", err)
	}

	tx := model.Transaction{
		ID:          id,
		Amount:      amount,
		Kind:        kind,
		Timestamp:   ts,
		Fingerprint: fp,
	}

	next := make([]model.Transaction, len(l.txs), len(l.txs)+1)
	copy(next, l.txs)
	next = append(next, tx)

	bal := l.bal
	switch kind {
	case model.KindReceived:
		bal.Current += amount
		bal.TotalReceived += amount
	case model.KindSent:
		bal.Current -= amount
		bal.TotalSent += amount
	}
	bal.LastUpdated = ts

	// Persist before committing so a write failure leaves the in-memory
	// state untouched.
	if err := l.store.SaveState(ctx, next, bal); err != nil {
		return model.Transaction{}, fmt.Errorf("persist ledger state: %w", err)
	}

	l.txs = next
	l.bal = bal
	return tx, nil
}

// Verify recomputes the fingerprint of the first transaction with the
// given id and compares it byte for byte to the stored one. An unknown id
// is reported as false, not as an error.
func (l *Ledger) Verify(ctx context.Context, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, tx := range l.txs {
		if tx.ID != id {
			continue
		}
		fp, err := fingerprint(tx.ID, tx.Amount, tx.Kind, tx.Timestamp)
		if err != nil {
			return false
		}
		return digest.Equal(fp, tx.Fingerprint)
	}
	return false
}

// Balance returns the current balance aggregate.
func (l *Ledger) Balance(ctx context.Context) model.Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bal
}

// Transactions returns a copy of the ordered transaction log.
func (l *Ledger) Transactions(ctx context.Context) []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Count returns the number of appended transactions.
func (l *Ledger) Count(ctx context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Snapshot builds a point-in-time ledger view with a digest over the full
// ordered transaction list. Side-effect free.
func (l *Ledger) Snapshot(ctx context.Context) (model.LedgerSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txs := make([]model.Transaction, len(l.txs))
	copy(txs, l.txs)

	d, err := digest.Canonical(txs)
	if err != nil {
		return model.LedgerSnapshot{}, fmt.Errorf("ledger digest: %w", err)
	}

	return model.LedgerSnapshot{
		Address:          l.address,
		Balance:          l.bal,
		TransactionCount: len(txs),
		Transactions:     txs,
		GeneratedAt:      l.clock(),
		LedgerDigest:     d,
	}, nil
}

// LiveDigest recomputes the digest over the current transaction list.
// Used by report verification to check the live ledger against a report.
func (l *Ledger) LiveDigest(ctx context.Context) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	// Copy into a non-nil slice so an empty ledger digests the same way
	// Snapshot encodes it.
	txs := make([]model.Transaction, len(l.txs))
	copy(txs, l.txs)
	return digest.Canonical(txs)
}

// fingerprint digests the canonical encoding of the four visible
// transaction fields, matching the persisted JSON key names.
func fingerprint(id string, amount int64, kind model.Kind, ts time.Time) (string, error) {
	return digest.Canonical(map[string]any{
		"txid":      id,
		"amount":    amount,
		"type":      kind,
		"timestamp": ts,
	})
}
