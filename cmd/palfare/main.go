// Command palfare drives the transparency verification pipeline: it
// appends and verifies ledger transactions, computes transparency scores
// and composes and verifies audit reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	service "github.com/g-but/palfare/internal/app"
	"github.com/g-but/palfare/internal/config"
	"github.com/g-but/palfare/internal/domain/model"
	"github.com/g-but/palfare/pkg/logger"
)

const usage = `usage: palfare <command> [flags]

commands:
  append        append a transaction to the ledger
  verify        verify a transaction fingerprint
  report        print the ledger snapshot
  score         compute a transparency score from metrics flags
  audit         compose (and optionally save) a full audit report
  audit-verify  verify a previously saved audit report
  stats         print service statistics
`

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("palfare: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		os.Stderr.WriteString(usage)
		return fmt.Errorf("missing command")
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(
		service.WithLogger(logger.Get()),
		service.WithDataDir(cfg.DataDir),
		service.WithAddress(cfg.Address),
		service.WithCategoryWeights(cfg.CategoryWeights),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	switch cmd := os.Args[1]; cmd {
	case "append":
		return runAppend(ctx, svc, os.Args[2:])
	case "verify":
		return runVerify(ctx, svc, os.Args[2:])
	case "report":
		return runReport(ctx, svc)
	case "score":
		return runScore(ctx, svc, os.Args[2:])
	case "audit":
		return runAudit(ctx, svc, os.Args[2:])
	case "audit-verify":
		return runAuditVerify(ctx, svc, os.Args[2:])
	case "stats":
		return printJSON(svc.GetStats(ctx))
	default:
		os.Stderr.WriteString(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runAppend(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	id := fs.String("txid", "", "transaction identifier")
	amount := fs.Int64("amount", 0, "transaction amount")
	kind := fs.String("kind", "", "transaction kind: received or sent")
	when := fs.String("timestamp", "", "RFC 3339 timestamp (defaults to now)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("txid is required")
	}

	var ts time.Time
	if *when != "" {
		parsed, err := time.Parse(time.RFC3339, *when)
		if err != nil {
			return fmt.Errorf("parse timestamp: %w", err)
		}
		ts = parsed
	}

	tx, err := svc.Append(ctx, *id, *amount, model.Kind(*kind), ts)
	if err != nil {
		return err
	}
	return printJSON(tx)
}

func runVerify(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	id := fs.String("txid", "", "transaction identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("txid is required")
	}
	return printJSON(map[string]any{
		"txid":     *id,
		"verified": svc.VerifyTransaction(ctx, *id),
	})
}

func runReport(ctx context.Context, svc *service.Service) error {
	snap, err := svc.LedgerReport(ctx)
	if err != nil {
		return err
	}
	return printJSON(snap)
}

func runScore(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	m := metricsFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := svc.ScoreReport(ctx, m())
	if err != nil {
		return err
	}
	return printJSON(r)
}

func runAudit(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	m := metricsFlags(fs)
	save := fs.String("save", "", "save the report under this name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := svc.ComposeAuditReport(ctx, m())
	if err != nil {
		return err
	}
	if *save != "" {
		if err := svc.SaveAuditReport(ctx, *save, r); err != nil {
			return err
		}
	}
	return printJSON(r)
}

func runAuditVerify(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("audit-verify", flag.ContinueOnError)
	name := fs.String("name", "", "name the report was saved under")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("name is required")
	}

	r, err := svc.LoadAuditReport(ctx, *name)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"name":     *name,
		"reportID": r.Metadata.ReportID,
		"verified": svc.VerifyAuditReport(ctx, r),
	})
}

// metricsFlags registers the scoring metric flags on fs and returns a
// builder that assembles the Metrics snapshot after parsing.
func metricsFlags(fs *flag.FlagSet) func() model.Metrics {
	recordingHours := fs.Float64("recording-hours", 0, "hours of screen recording (0 disables the category)")
	balanceVisible := fs.Bool("balance-visible", false, "balance is publicly visible")
	codeVisible := fs.Bool("code-visible", false, "code is publicly available")
	logCount := fs.Int("log-count", 0, "number of activity log entries (0 disables the category)")
	openTools := fs.String("open-tools", "", "comma-separated open source tools")
	closedTools := fs.String("closed-tools", "", "comma-separated closed source tools")

	return func() model.Metrics {
		m := model.Metrics{
			BalanceVisible: *balanceVisible,
			CodeVisible:    *codeVisible,
		}
		if *recordingHours > 0 {
			m.ScreenRecording = &model.ScreenRecordingMetric{
				Enabled:       true,
				DurationHours: *recordingHours,
			}
		}
		if *logCount > 0 {
			m.ActivityLogging = &model.ActivityLogMetric{
				Enabled: true,
				Count:   *logCount,
			}
		}
		open := splitList(*openTools)
		closed := splitList(*closedTools)
		if len(open) > 0 || len(closed) > 0 {
			m.OpenSourceUsage = &model.OpenSourceMetric{
				Enabled:           true,
				Tools:             open,
				ClosedSourceTools: closed,
			}
		}
		return m
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
