package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/g-but/palfare/internal/domain/model"
)

// Default document names inside the store directory.
const (
	transactionsFile = "transactions.json"
	balanceFile      = "balance.json"
	reportSuffix     = ".report.json"
	fileMode         = 0o644
	dirMode          = 0o755
)

// FileStore persists documents as pretty-printed JSON files in a single
// directory. Every write goes through a temp file and an atomic rename so
// readers never observe a partially written document.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir}
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteState, err)
	}
	return s, nil
}

// LoadTransactions reads the transaction log document.
func (s *FileStore) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := s.readDoc(transactionsFile, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// LoadBalance reads the balance document.
func (s *FileStore) LoadBalance(ctx context.Context) (model.Balance, error) {
	var bal model.Balance
	if err := s.readDoc(balanceFile, &bal); err != nil {
		return model.Balance{}, err
	}
	return bal, nil
}

// SaveState replaces both ledger documents. The transaction log lands
// first; a crash between the two renames leaves the previous balance,
// which the ledger rebuilds on next load.
func (s *FileStore) SaveState(ctx context.Context, txs []model.Transaction, bal model.Balance) error {
	if err := s.writeDoc(transactionsFile, txs); err != nil {
		return err
	}
	return s.writeDoc(balanceFile, bal)
}

// SaveReport persists an audit report under name.
func (s *FileStore) SaveReport(ctx context.Context, name string, r model.AuditReport) error {
	return s.writeDoc(name+reportSuffix, r)
}

// LoadReport reads back a previously saved audit report.
func (s *FileStore) LoadReport(ctx context.Context, name string) (model.AuditReport, error) {
	var r model.AuditReport
	if err := s.readDoc(name+reportSuffix, &r); err != nil {
		return model.AuditReport{}, err
	}
	return r, nil
}

// readDoc unmarshals a JSON document into v. A missing file maps to
// ErrNotFound so callers can bootstrap; any other read failure propagates.
func (s *FileStore) readDoc(name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadState, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrReadState, name, err)
	}
	return nil
}

// writeDoc marshals v and replaces the named document atomically.
func (s *FileStore) writeDoc(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteState, name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteState, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteState, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteState, name, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteState, name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteState, name, err)
	}
	return nil
}
