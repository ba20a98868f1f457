package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applied to a manager", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the fields should reflect them", func() {
				So(m.namespace, ShouldEqual, "test_namespace")
				So(m.subsystem, ShouldEqual, "test_subsystem")
				So(m.metricPrefix, ShouldEqual, "test_prefix")
				So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(m.enabled, ShouldBeFalse)
				So(m.refreshInterval, ShouldEqual, 5*time.Second)
				So(m.customLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When given zero values", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace(""),
				WithRefreshInterval(-1*time.Second),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(m.namespace, ShouldEqual, "mealmax")
				So(m.refreshInterval, ShouldEqual, defaultRefreshInterval)
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricNames(t *testing.T) {
	Convey("Given a manager with a fresh registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When a battle counter is incremented", func() {
			m.battlesResolved.Inc()
			m.stagingRejected.WithLabelValues("full").Inc()

			Convey("Then the exported names should carry namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "mealmax_arena_battles_resolved_total")
				So(joined, ShouldContainSubstring, "mealmax_arena_staging_rejected_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		SetEnabled(true)

		Convey("When a battle is recorded", func() {
			before := value(globalManager.battlesResolved)
			upsetsBefore := value(globalManager.battleUpsets)
			RecordBattle(12.5, true, "HIGH", 3)

			Convey("Then the counters should advance", func() {
				So(value(globalManager.battlesResolved), ShouldEqual, before+1)
				So(value(globalManager.battleUpsets), ShouldEqual, upsetsBefore+1)
				So(value(globalManager.winsByDifficulty.WithLabelValues("HIGH")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateRosterSize(2)
			UpdateActiveMeals(7)
			UpdateQueueSize(3)
			UpdateQueueCapacity(100)
			UpdateWorkerCount(4)

			Convey("Then they should hold the last value", func() {
				So(value(globalManager.rosterSize), ShouldEqual, 2.0)
				So(value(globalManager.activeMeals), ShouldEqual, 7.0)
				So(value(globalManager.queueSize), ShouldEqual, 3.0)
				So(value(globalManager.queueCapacity), ShouldEqual, 100.0)
				So(value(globalManager.workerCount), ShouldEqual, 4.0)
			})
		})

		Convey("When the remaining recorders are called", func() {
			Convey("Then none of them should panic", func() {
				So(func() {
					RecordBattleFailure("random_source")
					RecordStagingRejected("duplicate")
					RecordLeaderboardQuery("wins", 1.2)
					RecordCacheHit()
					RecordCacheMiss()
					RecordCacheError()
					RecordStoreLatency("record_battle", 0.4)
					RecordStoreError("record_battle")
					RecordRandomSourceError()
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueDropped()
					RecordWorkerProcessingLatency(0.2)
					RecordWorkerError()
					RecordHTTPRequest("/battle", "GET", "200")
					RecordHTTPRequestDuration("/battle", "GET", "200", 4)
					RecordErrorByComponent("api", "not_found")
					RecordErrorByType("not_found", "warning")
					RecordErrorByEndpoint("/battle", "GET", "conflict")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When metrics are disabled", func() {
			SetEnabled(false)
			before := value(globalManager.battlesResolved)
			RecordBattle(1, false, "LOW", 1)
			SetEnabled(true)

			Convey("Then nothing should be recorded", func() {
				So(value(globalManager.battlesResolved), ShouldEqual, before)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		Convey("Then it should be the one the global manager registers on", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, customRegistry)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given settings from configuration", t, func() {
		prevManager, prevRegistry := globalManager, customRegistry
		Reset(func() {
			globalManager, customRegistry = prevManager, prevRegistry
		})

		Init(
			WithNamespace("ns"),
			WithSubsystem("sub"),
			WithMetricPrefix("px"),
			WithHistogramBuckets([]float64{1, 10, 100}),
			WithCustomLabels(map[string]string{"instance": "a"}),
			WithRefreshInterval(3*time.Second),
		)

		Convey("Then the global manager should be rebuilt on a new registry", func() {
			So(GetRegistry(), ShouldNotEqual, prevRegistry)
			So(RefreshInterval(), ShouldEqual, 3*time.Second)
			So(globalManager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
		})

		Convey("Then collectors should carry the configured names and labels", func() {
			RecordBattle(3, false, "HIGH", 1)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			var found bool
			for _, f := range families {
				if f.GetName() != "ns_sub_px_battles_resolved_total" {
					continue
				}
				found = true
				labels := f.GetMetric()[0].GetLabel()
				So(len(labels), ShouldEqual, 1)
				So(labels[0].GetName(), ShouldEqual, "instance")
				So(labels[0].GetValue(), ShouldEqual, "a")
				So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1.0)
			}
			So(found, ShouldBeTrue)
		})

		Convey("When recording is disabled", func() {
			Init(WithMetricsEnabled(false))

			Convey("Then recorders should leave collectors untouched", func() {
				RecordBattle(3, false, "HIGH", 1)
				So(Enabled(), ShouldBeFalse)
				So(value(globalManager.battlesResolved), ShouldEqual, 0.0)
			})
		})
	})
}

func value(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	return 0
}
