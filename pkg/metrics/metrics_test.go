package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func familyNames(reg *prometheus.Registry) map[string]bool {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{1, 10}),
			WithConstLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(reg),
		)
		So(m, ShouldNotBeNil)

		Convey("When a few series are touched", func() {
			m.similarityQueries.WithLabelValues("ok").Inc()
			m.populationSize.Set(3)
			m.cacheLookups.WithLabelValues("hit").Inc()

			Convey("Then they are exposed under the configured names", func() {
				names := familyNames(reg)
				So(names["test_unit_similarity_queries_total"], ShouldBeTrue)
				So(names["test_unit_population_size"], ShouldBeTrue)
				So(names["test_unit_cache_lookups_total"], ShouldBeTrue)
			})

			Convey("Then constant labels are attached", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				for _, f := range families {
					for _, metric := range f.GetMetric() {
						found := false
						for _, l := range metric.GetLabel() {
							if l.GetName() == "env" && l.GetValue() == "test" {
								found = true
							}
						}
						So(found, ShouldBeTrue)
					}
				}
			})
		})

		Convey("When a second manager uses the same registry", func() {
			Convey("Then registration panics on the duplicate names", func() {
				So(func() { NewManager(WithNamespace("test"), WithSubsystem("unit"), WithPrometheusRegistry(reg)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then every recorder accepts input without panicking", func() {
			So(func() {
				RecordSimilarityQuery("ok")
				RecordSimilarityLatency(0.4)
				RecordSimilarityScan(100, 10)
				UpdatePopulation(100, 2)
				RecordRepositoryReplaceDuration("sqlite", 12)
				RecordRepositoryQueryLatency("snapshot", 0.01)
				RecordImportJob("succeeded", 120)
				RecordImportRows(10, 2)
				RecordCacheLookup(true)
				RecordCacheLookup(false)
				RecordHTTPRequest("/api/players", "GET", StatusCode(200))
				RecordHTTPRequestDuration("/api/players", "GET", "200", 1.5)
				UpdateQueueSize(1)
				UpdateQueueCapacity(16)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(1)
				RecordErrorByComponent("api", "not_found")
				RecordErrorByType("not_found", "low")
				RecordErrorByEndpoint("/api/players/{id}", "GET", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry exposes the recorded families", func() {
			RecordSimilarityQuery("cached")
			names := familyNames(GetRegistry())
			So(names["scout_players_similarity_queries_total"], ShouldBeTrue)
			So(names["scout_players_http_requests_total"], ShouldBeTrue)
			So(names["scout_players_import_jobs_total"], ShouldBeTrue)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordSimilarityQuery("ok")
					RecordCacheLookup(j%2 == 0)
					UpdateQueueSize(j)
				}
			}()
		}
		wg.Wait()

		Convey("Then gathering still succeeds", func() {
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
