// Package report composes ledger and score snapshots into a tamper-evident
// audit document and verifies the three-level digest chain.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/g-but/palfare/internal/adapters/storage"
	"github.com/g-but/palfare/internal/domain/digest"
	"github.com/g-but/palfare/internal/domain/ledger"
	"github.com/g-but/palfare/internal/domain/model"
	"github.com/g-but/palfare/internal/domain/scoring"
)

// Version identifies the audit report document format.
const Version = "1.0"

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithClock sets the time source used for report metadata timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Composer) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithStore enables report persistence through the given store.
func WithStore(store storage.Store) Option {
	return func(c *Composer) {
		if store != nil {
			c.store = store
		}
	}
}

// Composer chains a ledger snapshot and a score report into one audit
// document signed with a composite digest.
type Composer struct {
	ledger *ledger.Ledger
	scorer scoring.Scorer
	store  storage.Store
	clock  func() time.Time
}

// NewComposer wires a composer over the given ledger and scorer.
func NewComposer(l *ledger.Ledger, s scoring.Scorer, opts ...Option) *Composer {
	c := &Composer{
		ledger: l,
		scorer: s,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the full audit report. The transaction count in the
// metrics is always sourced from the ledger snapshot; the remaining flags
// come from the caller. The composite digest covers both snapshots and the
// metadata generation time, which is stored in the report so verification
// can recompute it deterministically.
func (c *Composer) Compose(ctx context.Context, m model.Metrics) (model.AuditReport, error) {
	snap, err := c.ledger.Snapshot(ctx)
	if err != nil {
		return model.AuditReport{}, fmt.Errorf("ledger snapshot: %w", err)
	}

	m = withLedgerCount(m, snap.TransactionCount)

	scoreReport, err := c.scorer.Score(ctx, m)
	if err != nil {
		return model.AuditReport{}, fmt.Errorf("score report: %w", err)
	}

	generatedAt := c.clock()
	composite, err := compositeDigest(snap, scoreReport, generatedAt)
	if err != nil {
		return model.AuditReport{}, fmt.Errorf("composite digest: %w", err)
	}

	return model.AuditReport{
		Metadata: model.ReportMetadata{
			Version:     Version,
			ReportID:    uuid.NewString(),
			GeneratedAt: generatedAt,
			Address:     snap.Address,
		},
		LedgerSnapshot: snap,
		ScoreSnapshot:  scoreReport,
		Verification: model.Verification{
			LedgerDigest:    snap.LedgerDigest,
			ScoreDigest:     scoreReport.Digest,
			CompositeDigest: composite,
		},
	}, nil
}

// Verify checks the three-level digest chain of a report. The ledger
// digest is recomputed from the ledger's current live state, so a report
// only verifies while the live ledger still matches what was reported.
// The score and composite digests are recomputed from the report's own
// stored payloads and timestamps. Malformed reports are reported as not
// verified, never as an error.
func (c *Composer) Verify(ctx context.Context, r model.AuditReport) (verified bool) {
	// A malformed report must read as "not verified", not crash the caller.
	defer func() {
		if recover() != nil {
			verified = false
		}
	}()

	live, err := c.ledger.LiveDigest(ctx)
	if err != nil || !digest.Equal(live, r.Verification.LedgerDigest) {
		return false
	}

	if !scoring.VerifyDigest(r.ScoreSnapshot) {
		return false
	}
	if !digest.Equal(r.ScoreSnapshot.Digest, r.Verification.ScoreDigest) {
		return false
	}

	composite, err := compositeDigest(r.LedgerSnapshot, r.ScoreSnapshot, r.Metadata.GeneratedAt)
	if err != nil {
		return false
	}
	return digest.Equal(composite, r.Verification.CompositeDigest)
}

// Save persists a composed report under name. Requires a store.
func (c *Composer) Save(ctx context.Context, name string, r model.AuditReport) error {
	if c.store == nil {
		return ErrNoStore
	}
	if err := c.store.SaveReport(ctx, name, r); err != nil {
		return fmt.Errorf("save audit report: %w", err)
	}
	return nil
}

// Load reads back a persisted report. Requires a store.
func (c *Composer) Load(ctx context.Context, name string) (model.AuditReport, error) {
	if c.store == nil {
		return model.AuditReport{}, ErrNoStore
	}
	r, err := c.store.LoadReport(ctx, name)
	if err != nil {
		return model.AuditReport{}, fmt.Errorf("load audit report: %w", err)
	}
	return r, nil
}

// withLedgerCount overlays the ledger-derived transaction count onto the
// caller's metrics, preserving an explicit visibility flag if one was set.
func withLedgerCount(m model.Metrics, count int) model.Metrics {
	visible := true
	if m.BitcoinTransactions != nil {
		visible = m.BitcoinTransactions.Visible
	}
	m.BitcoinTransactions = &model.BitcoinTxMetric{
		Visible: visible,
		Count:   count,
	}
	return m
}

// compositeDigest signs both snapshots together with the report
// generation time.
func compositeDigest(snap model.LedgerSnapshot, score model.ScoreReport, generatedAt time.Time) (string, error) {
	return digest.Canonical(map[string]any{
		"ledger_snapshot": snap,
		"score_snapshot":  score,
		"timestamp":       generatedAt,
	})
}
