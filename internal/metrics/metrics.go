package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ff_market"

var (
	// ScanDuration observes the duration of one history scan by view
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of ledger history scans.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"view"})

	// ScanSkippedTransactions counts transactions that could not be decoded
	ScanSkippedTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_skipped_transactions_total",
		Help:      "Transactions skipped because their envelope could not be decoded.",
	})

	// MetadataResolutions counts metadata resolutions by result
	MetadataResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metadata_resolutions_total",
		Help:      "Metadata resolutions by result.",
	}, []string{"result"})

	// Submissions counts submitted transactions by result and reason
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Transaction submissions by result and failure reason.",
	}, []string{"result", "reason"})

	// EventsPublished counts events published by the emitter
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Marketplace events published to the message broker.",
	}, []string{"type"})
)
