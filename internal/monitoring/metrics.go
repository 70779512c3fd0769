// internal/monitoring/metrics.go
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsManager exposes Prometheus metrics for the extraction pipeline.
// It satisfies the pipeline's Metrics interface.
type MetricsManager struct {
	referencesExtracted  prometheus.Counter
	assetsSelected       prometheus.Counter
	duplicatesSuppressed prometheus.Counter

	downloadsTotal   *prometheus.CounterVec
	downloadAttempts prometheus.Histogram
	downloadBytes    prometheus.Counter

	pagesProcessed prometheus.Counter
	pageImages     prometheus.Histogram
	pageVideos     prometheus.Histogram
	pageFailures   prometheus.Counter
}

// NewMetricsManager registers the pipeline metrics. namespace defaults to
// "mediascrapexter".
func NewMetricsManager(namespace string) *MetricsManager {
	if namespace == "" {
		namespace = "mediascrapexter"
	}

	return &MetricsManager{
		referencesExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "references_extracted_total",
			Help:      "Raw media references discovered in page markup",
		}),
		assetsSelected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_selected_total",
			Help:      "Assets selected for download after ranking and dedup",
		}),
		duplicatesSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_suppressed_total",
			Help:      "Winning candidates dropped as canonical-URL duplicates",
		}),
		downloadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download outcomes by status",
		}, []string{"status"}),
		downloadAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_attempts",
			Help:      "HTTP attempts consumed per download",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		downloadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes written to asset files",
		}),
		pagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_processed_total",
			Help:      "Pages that produced a report",
		}),
		pageImages: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_images",
			Help:      "Image assets per page",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		pageVideos: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_videos",
			Help:      "Video assets per page",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		pageFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_failures_total",
			Help:      "Assets whose download terminally failed",
		}),
	}
}

// ReferencesExtracted counts raw references found in markup
func (m *MetricsManager) ReferencesExtracted(count int) {
	m.referencesExtracted.Add(float64(count))
}

// AssetsSelected counts assets that survived ranking and dedup
func (m *MetricsManager) AssetsSelected(count int) {
	m.assetsSelected.Add(float64(count))
}

// DuplicatesSuppressed counts canonical-URL duplicates dropped
func (m *MetricsManager) DuplicatesSuppressed(count int) {
	m.duplicatesSuppressed.Add(float64(count))
}

// DownloadCompleted records one download outcome
func (m *MetricsManager) DownloadCompleted(success bool, attempts int, bytes int64) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.downloadsTotal.WithLabelValues(status).Inc()
	if attempts > 0 {
		m.downloadAttempts.Observe(float64(attempts))
	}
	if bytes > 0 {
		m.downloadBytes.Add(float64(bytes))
	}
}

// PageProcessed records per-page totals
func (m *MetricsManager) PageProcessed(images, videos, failures int) {
	m.pagesProcessed.Inc()
	m.pageImages.Observe(float64(images))
	m.pageVideos.Observe(float64(videos))
	m.pageFailures.Add(float64(failures))
}
