// Package metrics provides Prometheus metrics for monitoring the weekly task engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Weekly task engine metrics
var (
	// submissionTotal records the total number of task submission attempts.
	// Labels:
	//   - category: Task category (e.g., "communication", "community", "original")
	//   - status: Final attempt status (e.g., "succeeded", "failed")
	submissionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_submissions_total",
			Help: "Total number of task submission attempts",
		},
		[]string{"category", "status"},
	)

	// evidenceUploadTotal records the total number of evidence file uploads.
	// Labels:
	//   - category: Task category the evidence belongs to
	//   - status: Upload outcome (e.g., "success", "rejected", "failed")
	evidenceUploadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_uploads_total",
			Help: "Total number of evidence file uploads",
		},
		[]string{"category", "status"},
	)

	// evidenceUploadDuration records the duration of evidence batch uploads.
	// Labels:
	//   - category: Task category the evidence belongs to
	// Buckets: 0.1s, 0.5s, 1s, 2s, 5s, 10s, 30s, 60s
	evidenceUploadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evidence_upload_duration_seconds",
			Help:    "Duration of evidence batch uploads in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"category"},
	)

	// snapshotRefreshTotal records usage snapshot refresh calls.
	// Labels:
	//   - trigger: What caused the refresh (e.g., "mount", "post_submit", "delayed")
	//   - status: Refresh outcome (e.g., "success", "failed")
	snapshotRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usage_snapshot_refreshes_total",
			Help: "Total number of usage snapshot refresh calls",
		},
		[]string{"trigger", "status"},
	)
)

func init() {
	// Register all engine metrics with Prometheus
	prometheus.MustRegister(submissionTotal)
	prometheus.MustRegister(evidenceUploadTotal)
	prometheus.MustRegister(evidenceUploadDuration)
	prometheus.MustRegister(snapshotRefreshTotal)
}

// RecordSubmission records a finished submission attempt.
func RecordSubmission(category, status string) {
	submissionTotal.WithLabelValues(category, status).Inc()
}

// RecordEvidenceUpload records a single evidence file upload outcome.
func RecordEvidenceUpload(category, status string) {
	evidenceUploadTotal.WithLabelValues(category, status).Inc()
}

// RecordEvidenceUploadDuration records the duration of one evidence batch upload.
func RecordEvidenceUploadDuration(category string, durationSeconds float64) {
	evidenceUploadDuration.WithLabelValues(category).Observe(durationSeconds)
}

// RecordSnapshotRefresh records a usage snapshot refresh call.
func RecordSnapshotRefresh(trigger, status string) {
	snapshotRefreshTotal.WithLabelValues(trigger, status).Inc()
}
