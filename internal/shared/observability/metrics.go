package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Tracer is the process-wide tracer. Spans are no-ops unless a provider is installed.
var Tracer = otel.Tracer("domscan")

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "domscan_parsing_seconds",
		Help:    "Time spent parsing an HTML document.",
		Buckets: prometheus.DefBuckets,
	})

	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "domscan_scan_seconds",
		Help:    "Time spent running one scanner over one document.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scanner"})

	DocumentsScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "domscan_documents_scanned_total",
		Help: "Total number of documents analyzed.",
	})

	DocumentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "domscan_document_failures_total",
		Help: "Total number of documents whose analysis failed.",
	})

	FeaturesResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domscan_features_resolved_total",
		Help: "Total number of resolved features by kind.",
	}, []string{"kind"})

	ModelFeatures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "domscan_model_features",
		Help: "Number of features currently held in the analysis model.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "domscan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	StoreWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "domscan_store_write_seconds",
		Help:    "Latency for persisting one document's features.",
		Buckets: prometheus.DefBuckets,
	})
)
