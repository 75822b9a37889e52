// Package service provides the core business service exposing the
// transparency pipeline operations to consumers.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/g-but/palfare/internal/adapters/storage"
	"github.com/g-but/palfare/internal/domain/ledger"
	"github.com/g-but/palfare/internal/domain/model"
	"github.com/g-but/palfare/internal/domain/report"
	"github.com/g-but/palfare/internal/domain/scoring"
	"github.com/g-but/palfare/pkg/logger"
	"github.com/g-but/palfare/pkg/metrics"
)

// Service wires the ledger, scorer and report composer over one store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    storage.Store
	ledger   *ledger.Ledger
	scorer   scoring.Scorer
	composer *report.Composer

	// Configuration
	dataDir         string
	address         string
	categoryWeights map[string]float64
	clock           func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the directory for the file-backed store.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithAddress sets the subject address the ledger tracks.
func WithAddress(address string) Option {
	return func(s *Service) {
		s.address = address
	}
}

// WithCategoryWeights sets the scoring weight table.
func WithCategoryWeights(weights map[string]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.categoryWeights = weights
		}
	}
}

// WithStore overrides the file-backed store, e.g. with a memory store in
// tests.
func WithStore(store storage.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock sets the time source for all components.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:         "data",
		categoryWeights: scoring.DefaultWeights(),
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components and loads persisted ledger state.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting transparency pipeline",
		logger.String("address", s.address),
		logger.String("dataDir", s.dataDir),
	)

	if s.store == nil {
		store, err := storage.NewFileStore(s.dataDir)
		if err != nil {
			return fmt.Errorf("open file store: %w", err)
		}
		s.store = store
	}

	l, err := ledger.New(ctx, s.address, s.store, ledger.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	s.ledger = l

	s.scorer = scoring.NewWeightedScorer(
		scoring.WithCategoryWeights(s.categoryWeights),
		scoring.WithClock(s.clock),
	)

	s.composer = report.NewComposer(s.ledger, s.scorer,
		report.WithStore(s.store),
		report.WithClock(s.clock),
	)

	s.started = true
	metrics.UpdateLedgerSize(s.ledger.Count(ctx))
	metrics.UpdateBalance(s.ledger.Balance(ctx).Current)
	s.logger.Info(ctx, "transparency pipeline started",
		logger.Int("transactions", s.ledger.Count(ctx)),
	)
	return nil
}

// Stop marks the service stopped. All work is synchronous, so there is
// nothing to drain.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "transparency pipeline stopped")
}

// Append records a transaction and returns the stored entry with its
// fingerprint.
func (s *Service) Append(ctx context.Context, id string, amount int64, kind model.Kind, ts time.Time) (model.Transaction, error) {
	start := time.Now()
	tx, err := s.ledger.Append(ctx, id, amount, kind, ts)
	metrics.RecordAppendLatency(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordAppendError()
		s.logger.Warn(ctx, "append rejected",
			logger.String("txid", id),
			logger.Error(err),
		)
		return model.Transaction{}, err
	}

	metrics.RecordTransactionAppended()
	metrics.UpdateLedgerSize(s.ledger.Count(ctx))
	metrics.UpdateBalance(s.ledger.Balance(ctx).Current)
	s.logger.Debug(ctx, "transaction appended",
		logger.String("txid", tx.ID),
		logger.Int64("amount", tx.Amount),
		logger.String("kind", string(tx.Kind)),
	)
	return tx, nil
}

// VerifyTransaction checks a stored transaction's fingerprint.
func (s *Service) VerifyTransaction(ctx context.Context, id string) bool {
	ok := s.ledger.Verify(ctx, id)
	metrics.RecordVerification(ok)
	return ok
}

// LedgerReport returns a point-in-time ledger snapshot with its digest.
func (s *Service) LedgerReport(ctx context.Context) (model.LedgerSnapshot, error) {
	return s.ledger.Snapshot(ctx)
}

// ScoreReport computes the transparency score for a metrics snapshot.
func (s *Service) ScoreReport(ctx context.Context, m model.Metrics) (model.ScoreReport, error) {
	r, err := s.scorer.Score(ctx, m)
	if err != nil {
		return model.ScoreReport{}, err
	}
	metrics.RecordScoreComputed(r.Score)
	return r, nil
}

// ComposeAuditReport builds the full audit document.
func (s *Service) ComposeAuditReport(ctx context.Context, m model.Metrics) (model.AuditReport, error) {
	start := time.Now()
	r, err := s.composer.Compose(ctx, m)
	metrics.RecordComposeLatency(time.Since(start).Seconds())
	if err != nil {
		return model.AuditReport{}, err
	}
	metrics.RecordReportComposed()
	metrics.RecordScoreComputed(r.ScoreSnapshot.Score)
	s.logger.Info(ctx, "audit report composed",
		logger.String("reportID", r.Metadata.ReportID),
		logger.Float64("score", r.ScoreSnapshot.Score),
		logger.Int("transactions", r.LedgerSnapshot.TransactionCount),
	)
	return r, nil
}

// VerifyAuditReport checks the three-level digest chain of a report.
func (s *Service) VerifyAuditReport(ctx context.Context, r model.AuditReport) bool {
	ok := s.composer.Verify(ctx, r)
	metrics.RecordReportVerification(ok)
	if !ok {
		s.logger.Warn(ctx, "audit report failed verification",
			logger.String("reportID", r.Metadata.ReportID),
		)
	}
	return ok
}

// SaveAuditReport persists a composed report under name.
func (s *Service) SaveAuditReport(ctx context.Context, name string, r model.AuditReport) error {
	return s.composer.Save(ctx, name, r)
}

// LoadAuditReport reads back a persisted report.
func (s *Service) LoadAuditReport(ctx context.Context, name string) (model.AuditReport, error) {
	return s.composer.Load(ctx, name)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"address": s.address,
	}
	if s.started {
		bal := s.ledger.Balance(ctx)
		stats["transactionCount"] = s.ledger.Count(ctx)
		stats["currentBalance"] = bal.Current
		stats["totalReceived"] = bal.TotalReceived
		stats["totalSent"] = bal.TotalSent
	}
	return stats
}
