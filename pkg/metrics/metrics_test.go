package metrics_test

import (
	"testing"

	"github.com/g-but/palfare/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func gatherCount(reg *prometheus.Registry) int {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	total := 0
	for _, f := range families {
		total += len(f.Metric)
	}
	return total
}

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithRegistry(reg),
			metrics.WithNamespace("palfare_test"),
			metrics.WithSubsystem("pipeline"),
		)

		Convey("When recording pipeline activity", func() {
			m.RecordTransactionAppended()
			m.RecordAppendError()
			m.RecordVerification(true)
			m.RecordVerification(false)
			m.UpdateLedgerSize(3)
			m.UpdateBalance(30000)
			m.RecordAppendLatency(0.002)
			m.RecordScoreComputed(90)
			m.RecordReportComposed()
			m.RecordReportVerification(true)
			m.RecordComposeLatency(0.01)

			Convey("Then the registry should expose the recorded series", func() {
				So(gatherCount(reg), ShouldBeGreaterThan, 0)

				families, err := reg.Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool)
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["palfare_test_pipeline_transactions_appended_total"], ShouldBeTrue)
				So(names["palfare_test_pipeline_transaction_verifications_total"], ShouldBeTrue)
				So(names["palfare_test_pipeline_last_score"], ShouldBeTrue)
				So(names["palfare_test_pipeline_report_verifications_total"], ShouldBeTrue)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithRegistry(reg),
			metrics.WithEnabled(false),
		)

		Convey("When recording activity", func() {
			m.RecordTransactionAppended()
			m.RecordScoreComputed(50)

			Convey("Then no samples should change", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				for _, f := range families {
					for _, sample := range f.Metric {
						if c := sample.GetCounter(); c != nil {
							So(c.GetValue(), ShouldEqual, 0.0)
						}
					}
				}
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package helpers should not panic", func() {
			So(func() {
				metrics.RecordTransactionAppended()
				metrics.RecordAppendError()
				metrics.RecordVerification(true)
				metrics.UpdateLedgerSize(1)
				metrics.UpdateBalance(100)
				metrics.RecordAppendLatency(0.001)
				metrics.RecordScoreComputed(75)
				metrics.RecordReportComposed()
				metrics.RecordReportVerification(false)
				metrics.RecordComposeLatency(0.005)
			}, ShouldNotPanic)
		})

		Convey("Then the registry accessor should return the custom registry", func() {
			So(metrics.Registry(), ShouldNotBeNil)
		})
	})
}
