package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	reportsDesc = prometheus.NewDesc(
		"caredash_reports",
		"Number of generated reports stored in the warehouse by type",
		[]string{"type"},
		nil,
	)

	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "caredash_warehouse_query_duration_seconds",
		Help:    "Warehouse query latency by query name",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"query"})

	weatherFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "caredash_weather_fallback_total",
		Help: "Times the fallback weather was shown because the upstream call failed",
	})

	memoLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "caredash_memo_lookups_total",
		Help: "Session memo lookups by result",
	}, []string{"result"})
)

// ReportCounter counts stored reports per type.
type ReportCounter interface {
	CountReportsByType(ctx context.Context) (map[string]int64, error)
}

// ReportCollector is a custom Prometheus collector that reads report counts
// from the warehouse on each scrape.
type ReportCollector struct {
	counter ReportCounter
	timeout time.Duration
}

// Describe sends the metric descriptor to the channel.
func (c *ReportCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- reportsDesc
}

// Collect queries the warehouse for report counts and emits them as gauges.
func (c *ReportCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.counter.CountReportsByType(ctx)
	if err != nil {
		slog.Error("failed to collect report metrics", "error", err)
		return
	}
	for reportType, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			reportsDesc,
			prometheus.GaugeValue,
			float64(n),
			reportType,
		)
	}
}

var initOnce sync.Once

// Init registers all collectors. Must be called once at startup.
func Init(counter ReportCounter) {
	initOnce.Do(func() {
		prometheus.MustRegister(queryDuration, weatherFallbacks, memoLookups)
		prometheus.MustRegister(&ReportCollector{counter: counter, timeout: 10 * time.Second})
	})
}

// ObserveQuery records the latency of a warehouse query started at start.
func ObserveQuery(name string, start time.Time) {
	queryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// RecordWeatherFallback counts a fallback weather reading.
func RecordWeatherFallback() {
	weatherFallbacks.Inc()
}

// RecordMemoLookup counts a session memo hit or miss.
func RecordMemoLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	memoLookups.WithLabelValues(result).Inc()
}
