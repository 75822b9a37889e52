package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/g-but/palfare/internal/adapters/storage"
	service "github.com/g-but/palfare/internal/app"
	"github.com/g-but/palfare/internal/domain/ledger"
	"github.com/g-but/palfare/internal/domain/model"
	"github.com/g-but/palfare/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func startService(ctx context.Context, store storage.Store) *service.Service {
	svc := service.New(
		service.WithAddress("bc1qexample"),
		service.WithStore(store),
		service.WithClock(fixedClock),
		service.WithLogger(logger.Get()),
	)
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a configured service", t, func() {
		store := storage.NewMemoryStore()
		svc := startService(ctx, store)

		Convey("When starting it twice", func() {
			Convey("Then the second start should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping it", func() {
			svc.Stop()

			Convey("Then stats should report it stopped", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldBeFalse)
			})
		})
	})
}

func TestServicePipeline(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	t1 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	Convey("Given a started service", t, func() {
		store := storage.NewMemoryStore()
		svc := startService(ctx, store)

		Convey("When running the documented transaction scenario", func() {
			_, err := svc.Append(ctx, "tx1", 50000, model.KindReceived, t0)
			So(err, ShouldBeNil)
			_, err = svc.Append(ctx, "tx2", 20000, model.KindSent, t1)
			So(err, ShouldBeNil)

			Convey("Then the ledger report should match the expected balance", func() {
				snap, err := svc.LedgerReport(ctx)
				So(err, ShouldBeNil)
				So(snap.Balance.Current, ShouldEqual, 30000)
				So(snap.Balance.TotalReceived, ShouldEqual, 50000)
				So(snap.Balance.TotalSent, ShouldEqual, 20000)
				So(snap.TransactionCount, ShouldEqual, 2)
			})

			Convey("And transaction verification should behave per contract", func() {
				So(svc.VerifyTransaction(ctx, "tx1"), ShouldBeTrue)
				So(svc.VerifyTransaction(ctx, "tx3"), ShouldBeFalse)
			})

			Convey("And stats should reflect the ledger", func() {
				stats := svc.GetStats(ctx)
				So(stats["transactionCount"], ShouldEqual, 2)
				So(stats["currentBalance"], ShouldEqual, int64(30000))
			})
		})

		Convey("When appending with an invalid kind", func() {
			_, err := svc.Append(ctx, "tx1", 100, model.Kind("swap"), t0)

			Convey("Then the validation error should surface", func() {
				So(errors.Is(err, ledger.ErrInvalidKind), ShouldBeTrue)
			})
		})

		Convey("When composing an audit report", func() {
			_, err := svc.Append(ctx, "tx1", 50000, model.KindReceived, t0)
			So(err, ShouldBeNil)

			m := model.Metrics{
				ScreenRecording: &model.ScreenRecordingMetric{Enabled: true, DurationHours: 24},
				BalanceVisible:  true,
				CodeVisible:     true,
				ActivityLogging: &model.ActivityLogMetric{Enabled: true, Count: 100},
			}
			r, err := svc.ComposeAuditReport(ctx, m)
			So(err, ShouldBeNil)

			Convey("Then it should verify while the ledger is unchanged", func() {
				So(svc.VerifyAuditReport(ctx, r), ShouldBeTrue)
			})

			Convey("And it should fail verification after the ledger moves on", func() {
				_, err := svc.Append(ctx, "tx2", 1, model.KindSent, t1)
				So(err, ShouldBeNil)
				So(svc.VerifyAuditReport(ctx, r), ShouldBeFalse)
			})

			Convey("And it should round-trip through report persistence", func() {
				So(svc.SaveAuditReport(ctx, "audit", r), ShouldBeNil)
				loaded, err := svc.LoadAuditReport(ctx, "audit")
				So(err, ShouldBeNil)
				So(svc.VerifyAuditReport(ctx, loaded), ShouldBeTrue)
			})
		})

		Convey("When computing a score report directly", func() {
			r, err := svc.ScoreReport(ctx, model.Metrics{})
			So(err, ShouldBeNil)

			Convey("Then it should be the zero-score report", func() {
				So(r.Score, ShouldEqual, 0.0)
				So(r.Recommendations, ShouldHaveLength, 6)
			})
		})
	})

	Convey("Given persisted state from a previous run", t, func() {
		store := storage.NewMemoryStore()
		svc := startService(ctx, store)
		_, err := svc.Append(ctx, "tx1", 50000, model.KindReceived, t0)
		So(err, ShouldBeNil)
		svc.Stop()

		Convey("When starting a new service over the same store", func() {
			again := startService(ctx, store)

			Convey("Then the ledger state should carry over", func() {
				snap, err := again.LedgerReport(ctx)
				So(err, ShouldBeNil)
				So(snap.TransactionCount, ShouldEqual, 1)
				So(snap.Balance.Current, ShouldEqual, 50000)
				So(again.VerifyTransaction(ctx, "tx1"), ShouldBeTrue)
			})
		})
	})
}
