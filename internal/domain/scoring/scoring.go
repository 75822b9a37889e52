// Package scoring converts operational-transparency metrics into a bounded
// weighted score with improvement recommendations.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/g-but/palfare/internal/domain/digest"
	"github.com/g-but/palfare/internal/domain/model"
)

// MaxScore is the fixed score ceiling; category weights always sum to it.
const MaxScore = 100.0

// Category names used in score details and recommendations.
const (
	CategoryScreenRecording     = "screen_recording"
	CategoryBitcoinTransactions = "bitcoin_transactions"
	CategoryBalanceVisibility   = "balance_visibility"
	CategoryCodeVisibility      = "code_visibility"
	CategoryActivityLogging     = "activity_logging"
	CategoryOpenSourceUsage     = "open_source_usage"
)

// Normalization divisors: full marks at 24h of recording, 10 transactions
// and 100 activity log entries.
const (
	fullRecordingHours = 24.0
	fullTransactions   = 10.0
	fullLogEntries     = 100.0
)

// DefaultWeights is the standard weight table.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		CategoryScreenRecording:     20,
		CategoryBitcoinTransactions: 20,
		CategoryBalanceVisibility:   15,
		CategoryCodeVisibility:      25,
		CategoryActivityLogging:     10,
		CategoryOpenSourceUsage:     10,
	}
}

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithClock sets the time source used for report generation timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *WeightedScorer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCategoryWeights replaces the weight table. The replacement is only
// applied if it covers exactly the known categories and sums to MaxScore;
// otherwise the current table is kept.
func WithCategoryWeights(weights map[string]float64) Option {
	return func(s *WeightedScorer) {
		if !validWeights(weights) {
			return
		}
		w := make(map[string]float64, len(weights))
		for category, weight := range weights {
			w[category] = weight
		}
		s.weights = w
	}
}

func validWeights(weights map[string]float64) bool {
	defaults := DefaultWeights()
	if len(weights) != len(defaults) {
		return false
	}
	sum := 0.0
	for category, weight := range weights {
		if _, known := defaults[category]; !known || weight < 0 {
			return false
		}
		sum += weight
	}
	return sum == MaxScore
}

// Scorer computes a score report from a metrics snapshot.
type Scorer interface {
	// Score is a pure function of the metrics snapshot; it holds no state
	// beyond the fixed weight table.
	Score(ctx context.Context, m model.Metrics) (model.ScoreReport, error)
}

// WeightedScorer implements Scorer with the fixed six-category weight table.
type WeightedScorer struct {
	weights map[string]float64
	clock   func() time.Time
}

// NewWeightedScorer creates a scorer with the default weight table.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		weights: DefaultWeights(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weight returns the configured weight for a category, or an error for an
// unknown category name.
func (s *WeightedScorer) Weight(category string) (float64, error) {
	w, ok := s.weights[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return w, nil
}

// Score computes the weighted transparency score. Categories absent from
// the metrics contribute zero and are omitted from the details. The digest
// covers score, details and the stored generation time, so the report can
// be re-verified later from its own payload.
func (s *WeightedScorer) Score(ctx context.Context, m model.Metrics) (model.ScoreReport, error) {
	details := make(map[string]model.CategoryDetail)
	score := 0.0

	if rec := m.ScreenRecording; rec != nil && rec.Enabled {
		weight := s.weights[CategoryScreenRecording]
		sub := capped(rec.DurationHours/fullRecordingHours*weight, weight)
		score += sub
		details[CategoryScreenRecording] = model.CategoryDetail{
			Score:         sub,
			MaxPossible:   weight,
			DurationHours: rec.DurationHours,
		}
	}

	if btc := m.BitcoinTransactions; btc != nil && btc.Visible {
		weight := s.weights[CategoryBitcoinTransactions]
		sub := capped(float64(btc.Count)/fullTransactions*weight, weight)
		score += sub
		details[CategoryBitcoinTransactions] = model.CategoryDetail{
			Score:            sub,
			MaxPossible:      weight,
			TransactionCount: btc.Count,
		}
	}

	if m.BalanceVisible {
		weight := s.weights[CategoryBalanceVisibility]
		score += weight
		details[CategoryBalanceVisibility] = model.CategoryDetail{
			Score:       weight,
			MaxPossible: weight,
		}
	}

	if m.CodeVisible {
		weight := s.weights[CategoryCodeVisibility]
		score += weight
		details[CategoryCodeVisibility] = model.CategoryDetail{
			Score:       weight,
			MaxPossible: weight,
		}
	}

	if logs := m.ActivityLogging; logs != nil && logs.Enabled {
		weight := s.weights[CategoryActivityLogging]
		sub := capped(float64(logs.Count)/fullLogEntries*weight, weight)
		score += sub
		details[CategoryActivityLogging] = model.CategoryDetail{
			Score:       sub,
			MaxPossible: weight,
			LogCount:    logs.Count,
		}
	}

	if oss := m.OpenSourceUsage; oss != nil && oss.Enabled {
		total := len(oss.Tools) + len(oss.ClosedSourceTools)
		if total > 0 {
			weight := s.weights[CategoryOpenSourceUsage]
			ratio := float64(len(oss.Tools)) / float64(total)
			sub := ratio * weight
			score += sub
			details[CategoryOpenSourceUsage] = model.CategoryDetail{
				Score:             sub,
				MaxPossible:       weight,
				OpenSourceTools:   oss.Tools,
				ClosedSourceTools: oss.ClosedSourceTools,
				Ratio:             ratio,
			}
		}
	}

	generatedAt := s.clock()
	d, err := scoreDigest(score, details, generatedAt)
	if err != nil {
		return model.ScoreReport{}, err
	}

	report := model.ScoreReport{
		Score:       score,
		MaxScore:    MaxScore,
		Percentage:  score / MaxScore * 100,
		Details:     details,
		GeneratedAt: generatedAt,
		Digest:      d,
	}
	report.Recommendations = s.Recommendations(report)
	return report, nil
}

// Recommendations produces one improvement suggestion per category that is
// absent from the report or scored below its maximum.
func (s *WeightedScorer) Recommendations(report model.ScoreReport) []string {
	var recs []string

	if d, ok := report.Details[CategoryScreenRecording]; !ok {
		recs = append(recs, "Enable screen recording to increase transparency")
	} else if d.Score < d.MaxPossible {
		recs = append(recs, "Increase screen recording duration to improve score")
	}

	if d, ok := report.Details[CategoryBitcoinTransactions]; !ok {
		recs = append(recs, "Make Bitcoin transactions visible")
	} else if d.Score < d.MaxPossible {
		recs = append(recs, "Record more Bitcoin transactions to improve score")
	}

	if _, ok := report.Details[CategoryBalanceVisibility]; !ok {
		recs = append(recs, "Make balance visible to increase transparency")
	}

	if _, ok := report.Details[CategoryCodeVisibility]; !ok {
		recs = append(recs, "Make code publicly available")
	}

	if d, ok := report.Details[CategoryActivityLogging]; !ok {
		recs = append(recs, "Enable activity logging")
	} else if d.Score < d.MaxPossible {
		recs = append(recs, "Increase activity logging to improve score")
	}

	if d, ok := report.Details[CategoryOpenSourceUsage]; !ok {
		recs = append(recs, "Document your open source and closed source tool usage")
	} else if d.Ratio < 1.0 {
		closed := make([]string, len(d.ClosedSourceTools))
		copy(closed, d.ClosedSourceTools)
		sort.Strings(closed)
		recs = append(recs, "Consider open source alternatives for: "+strings.Join(closed, ", "))
	}

	return recs
}

// VerifyDigest recomputes the digest from the report's stored payload and
// generation time and compares it to the stored one.
func VerifyDigest(report model.ScoreReport) bool {
	d, err := scoreDigest(report.Score, report.Details, report.GeneratedAt)
	if err != nil {
		return false
	}
	return digest.Equal(d, report.Digest)
}

// scoreDigest signs the score payload together with its generation time.
// The timestamp is part of the signed payload, so recomputation from a
// stored report is deterministic.
func scoreDigest(score float64, details map[string]model.CategoryDetail, generatedAt time.Time) (string, error) {
	return digest.Canonical(map[string]any{
		"score":     score,
		"details":   details,
		"timestamp": generatedAt,
	})
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
