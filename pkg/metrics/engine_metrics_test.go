package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestRecordSubmission(t *testing.T) {
	// Reset metrics before test
	submissionTotal.Reset()

	RecordSubmission("community", "succeeded")

	metric := &dto.Metric{}
	if err := submissionTotal.WithLabelValues("community", "succeeded").Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Expected counter value 1, got %f", metric.Counter.GetValue())
	}

	// Test multiple increments
	RecordSubmission("community", "succeeded")
	metric = &dto.Metric{}
	if err := submissionTotal.WithLabelValues("community", "succeeded").Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Expected counter value 2, got %f", metric.Counter.GetValue())
	}
}

func TestRecordEvidenceUpload(t *testing.T) {
	evidenceUploadTotal.Reset()

	RecordEvidenceUpload("original", "rejected")
	RecordEvidenceUpload("original", "rejected")
	RecordEvidenceUpload("original", "success")

	metric := &dto.Metric{}
	if err := evidenceUploadTotal.WithLabelValues("original", "rejected").Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Expected counter value 2, got %f", metric.Counter.GetValue())
	}
}

func TestRecordEvidenceUploadDuration(t *testing.T) {
	evidenceUploadDuration.Reset()

	// Verify recording does not panic; histogram internals are aggregated
	// across buckets and are not inspected here.
	RecordEvidenceUploadDuration("communication", 0.42)
	RecordEvidenceUploadDuration("communication", 3.1)
}

func TestRecordSnapshotRefresh(t *testing.T) {
	snapshotRefreshTotal.Reset()

	RecordSnapshotRefresh("post_submit", "success")
	RecordSnapshotRefresh("delayed", "failed")

	metric := &dto.Metric{}
	if err := snapshotRefreshTotal.WithLabelValues("delayed", "failed").Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Expected counter value 1, got %f", metric.Counter.GetValue())
	}
}
