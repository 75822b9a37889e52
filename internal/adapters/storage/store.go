// Package storage defines the persistence interface for ledger state and
// audit reports, with file-backed and in-memory implementations.
package storage

import (
	"context"

	"github.com/g-but/palfare/internal/domain/model"
)

// Store provides durable access to the two ledger documents (transaction
// log and balance) and to composed audit reports.
type Store interface {
	// LoadTransactions returns the persisted ordered transaction log.
	// Returns ErrNotFound if no log has been written yet.
	LoadTransactions(ctx context.Context) ([]model.Transaction, error)

	// LoadBalance returns the persisted balance document.
	// Returns ErrNotFound if no balance has been written yet.
	LoadBalance(ctx context.Context) (model.Balance, error)

	// SaveState persists the transaction log and balance together. Both
	// documents must be replaced transactionally so a crash never leaves
	// a log without its matching balance.
	SaveState(ctx context.Context, txs []model.Transaction, bal model.Balance) error

	// SaveReport persists a composed audit report under name.
	SaveReport(ctx context.Context, name string, r model.AuditReport) error

	// LoadReport reads back a previously saved audit report.
	// Returns ErrNotFound if no report with that name exists.
	LoadReport(ctx context.Context, name string) (model.AuditReport, error)
}
