// Package model contains domain models passed between layers.
package model

import "time"

// Kind classifies the direction of a ledger transaction.
type Kind string

// Transaction kinds accepted by the ledger.
const (
	KindReceived Kind = "received"
	KindSent     Kind = "sent"
)

// Valid reports whether k is one of the accepted transaction kinds.
func (k Kind) Valid() bool {
	return k == KindReceived || k == KindSent
}

// Transaction is a single immutable ledger entry. The fingerprint is a
// SHA-256 digest over the canonical encoding of the four visible fields,
// computed once at append time.
type Transaction struct {
	ID          string    `json:"txid"`
	Amount      int64     `json:"amount"`
	Kind        Kind      `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Fingerprint string    `json:"verification_hash"`
}

// Balance is the ledger's running aggregate. Current always equals
// TotalReceived - TotalSent; it is mutated only by Ledger.Append.
type Balance struct {
	Current       int64     `json:"current_balance"`
	TotalReceived int64     `json:"total_received"`
	TotalSent     int64     `json:"total_sent"`
	LastUpdated   time.Time `json:"last_updated"`
}

// LedgerSnapshot is a point-in-time view of the ledger with a digest over
// the full ordered transaction list.
type LedgerSnapshot struct {
	Address          string        `json:"address"`
	Balance          Balance       `json:"balance"`
	TransactionCount int           `json:"transaction_count"`
	Transactions     []Transaction `json:"transactions"`
	GeneratedAt      time.Time     `json:"report_generated"`
	LedgerDigest     string        `json:"verification_hash"`
}

// Metrics is the scoring input. Each category is explicitly optional:
// a nil sub-struct (or false flag) means the category is absent and
// contributes nothing to the score.
type Metrics struct {
	ScreenRecording     *ScreenRecordingMetric `json:"screen_recording,omitempty"`
	BitcoinTransactions *BitcoinTxMetric       `json:"bitcoin_transactions,omitempty"`
	BalanceVisible      bool                   `json:"balance_visible"`
	CodeVisible         bool                   `json:"code_visible"`
	ActivityLogging     *ActivityLogMetric     `json:"activity_logging,omitempty"`
	OpenSourceUsage     *OpenSourceMetric      `json:"open_source_usage,omitempty"`
}

// ScreenRecordingMetric reports recorded screen time.
type ScreenRecordingMetric struct {
	Enabled       bool    `json:"enabled"`
	DurationHours float64 `json:"duration_hours"`
}

// BitcoinTxMetric reports how many transactions are publicly visible.
type BitcoinTxMetric struct {
	Visible bool `json:"visible"`
	Count   int  `json:"count"`
}

// ActivityLogMetric reports the volume of logged activity entries.
type ActivityLogMetric struct {
	Enabled bool `json:"enabled"`
	Count   int  `json:"count"`
}

// OpenSourceMetric reports the tooling split between open and closed source.
type OpenSourceMetric struct {
	Enabled           bool     `json:"enabled"`
	Tools             []string `json:"tools"`
	ClosedSourceTools []string `json:"closed_source_tools"`
}

// CategoryDetail is the per-category breakdown inside a ScoreReport. Only
// the fields relevant to the category are populated.
type CategoryDetail struct {
	Score             float64  `json:"score"`
	MaxPossible       float64  `json:"max_possible"`
	DurationHours     float64  `json:"duration_hours,omitempty"`
	TransactionCount  int      `json:"transaction_count,omitempty"`
	LogCount          int      `json:"log_count,omitempty"`
	OpenSourceTools   []string `json:"open_source_tools,omitempty"`
	ClosedSourceTools []string `json:"closed_source_tools,omitempty"`
	Ratio             float64  `json:"ratio,omitempty"`
}

// ScoreReport is the scorer output. The digest covers score, details and
// GeneratedAt, so a stored report can be re-verified deterministically.
type ScoreReport struct {
	Score           float64                   `json:"score"`
	MaxScore        float64                   `json:"max_score"`
	Percentage      float64                   `json:"percentage"`
	Details         map[string]CategoryDetail `json:"details"`
	Recommendations []string                  `json:"recommendations"`
	GeneratedAt     time.Time                 `json:"timestamp"`
	Digest          string                    `json:"verification_hash"`
}

// ReportMetadata identifies a composed audit report.
type ReportMetadata struct {
	Version     string    `json:"version"`
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Address     string    `json:"address"`
}

// Verification carries the three digests an audit report is signed with.
type Verification struct {
	LedgerDigest    string `json:"ledger_hash"`
	ScoreDigest     string `json:"score_hash"`
	CompositeDigest string `json:"complete_hash"`
}

// AuditReport is the composed tamper-evident audit document.
type AuditReport struct {
	Metadata       ReportMetadata `json:"metadata"`
	LedgerSnapshot LedgerSnapshot `json:"ledger_snapshot"`
	ScoreSnapshot  ScoreReport    `json:"score_snapshot"`
	Verification   Verification   `json:"verification"`
}
