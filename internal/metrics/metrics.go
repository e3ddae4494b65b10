package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "asosingest"

var (
	ASOSAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asosingest_api_calls_total",
			Help: "Total ASOS hourly API calls",
		},
		[]string{"station", "status"},
	)

	ASOSAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asosingest_api_latency_seconds",
			Help:    "ASOS API call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"station"},
	)

	RowsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asosingest_rows_written_total",
			Help: "Total observation rows written to object storage",
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asosingest_runs_total",
			Help: "Total ingestion runs by outcome",
		},
		[]string{"outcome"},
	)
)

// Push sends the default registry to a Prometheus Pushgateway. Batch runs
// exit before any scrape could happen.
func Push(ctx context.Context, gatewayURL string) error {
	return push.New(gatewayURL, jobName).
		Gatherer(prometheus.DefaultGatherer).
		PushContext(ctx)
}
