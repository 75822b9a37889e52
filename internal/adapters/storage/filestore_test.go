package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/g-but/palfare/internal/adapters/storage"
	"github.com/g-but/palfare/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleState() ([]model.Transaction, model.Balance) {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		{ID: "tx1", Amount: 50000, Kind: model.KindReceived, Timestamp: t0, Fingerprint: "aa11"},
		{ID: "tx2", Amount: 20000, Kind: model.KindSent, Timestamp: t0.Add(time.Hour), Fingerprint: "bb22"},
	}
	bal := model.Balance{
		Current:       30000,
		TotalReceived: 50000,
		TotalSent:     20000,
		LastUpdated:   t0.Add(time.Hour),
	}
	return txs, bal
}

func TestFileStoreState(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file store in a fresh directory", t, func() {
		dir := t.TempDir()
		store, err := storage.NewFileStore(dir)
		So(err, ShouldBeNil)

		Convey("When loading before anything was saved", func() {
			_, txErr := store.LoadTransactions(ctx)
			_, balErr := store.LoadBalance(ctx)

			Convey("Then both documents should report not found", func() {
				So(errors.Is(txErr, storage.ErrNotFound), ShouldBeTrue)
				So(errors.Is(balErr, storage.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When saving and reloading ledger state", func() {
			txs, bal := sampleState()
			So(store.SaveState(ctx, txs, bal), ShouldBeNil)

			gotTxs, err := store.LoadTransactions(ctx)
			So(err, ShouldBeNil)
			gotBal, err := store.LoadBalance(ctx)
			So(err, ShouldBeNil)

			Convey("Then the logical state should round-trip exactly", func() {
				want, err := json.Marshal(txs)
				So(err, ShouldBeNil)
				got, err := json.Marshal(gotTxs)
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, string(want))

				So(gotBal.Current, ShouldEqual, bal.Current)
				So(gotBal.TotalReceived, ShouldEqual, bal.TotalReceived)
				So(gotBal.TotalSent, ShouldEqual, bal.TotalSent)
				So(gotBal.LastUpdated.Equal(bal.LastUpdated), ShouldBeTrue)
			})

			Convey("And the order of the log should be preserved", func() {
				So(gotTxs, ShouldHaveLength, 2)
				So(gotTxs[0].ID, ShouldEqual, "tx1")
				So(gotTxs[1].ID, ShouldEqual, "tx2")
			})

			Convey("And no temp files should be left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				for _, e := range entries {
					So(e.Name(), ShouldNotContainSubstring, ".tmp-")
				}
			})
		})

		Convey("When a persisted document is corrupted", func() {
			txs, bal := sampleState()
			So(store.SaveState(ctx, txs, bal), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "transactions.json"), []byte("{not json"), 0o644), ShouldBeNil)

			Convey("Then loading should fail with a read error, not not-found", func() {
				_, err := store.LoadTransactions(ctx)
				So(errors.Is(err, storage.ErrReadState), ShouldBeTrue)
				So(errors.Is(err, storage.ErrNotFound), ShouldBeFalse)
			})
		})
	})
}

func TestFileStoreReports(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file store", t, func() {
		store, err := storage.NewFileStore(t.TempDir())
		So(err, ShouldBeNil)

		r := model.AuditReport{
			Metadata: model.ReportMetadata{
				Version:     "1.0",
				ReportID:    "r-1",
				GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
				Address:     "bc1qexample",
			},
			Verification: model.Verification{
				LedgerDigest:    "aa",
				ScoreDigest:     "bb",
				CompositeDigest: "cc",
			},
		}

		Convey("When saving and loading a report", func() {
			So(store.SaveReport(ctx, "q2", r), ShouldBeNil)
			got, err := store.LoadReport(ctx, "q2")

			Convey("Then the report should round-trip", func() {
				So(err, ShouldBeNil)
				So(got.Metadata.ReportID, ShouldEqual, "r-1")
				So(got.Verification, ShouldResemble, r.Verification)
			})
		})

		Convey("When loading a missing report", func() {
			_, err := store.LoadReport(ctx, "nope")

			Convey("Then it should report not found", func() {
				So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store", t, func() {
		store := storage.NewMemoryStore()

		Convey("When loading before anything was saved", func() {
			_, err := store.LoadTransactions(ctx)

			Convey("Then it should report not found", func() {
				So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When FailNextSave is armed", func() {
			store.FailNextSave = true
			txs, bal := sampleState()

			Convey("Then exactly one save should fail", func() {
				So(errors.Is(store.SaveState(ctx, txs, bal), storage.ErrWriteState), ShouldBeTrue)
				So(store.SaveState(ctx, txs, bal), ShouldBeNil)
			})
		})

		Convey("When saving state", func() {
			txs, bal := sampleState()
			So(store.SaveState(ctx, txs, bal), ShouldBeNil)

			Convey("Then mutating the caller's slice should not affect the store", func() {
				txs[0].Amount = 1
				got, err := store.LoadTransactions(ctx)
				So(err, ShouldBeNil)
				So(got[0].Amount, ShouldEqual, 50000)
			})
		})
	})
}
