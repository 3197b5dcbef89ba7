package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "test-job"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	runs := findMetricFamily(mfs, "cron_job_runs_total")
	if runs == nil {
		t.Fatal("runs metric missing")
	}
	for _, result := range []string{"success", "failure"} {
		if got, err := fetchCounterValue([]*dto.MetricFamily{runs}, "cron_job_runs_total", "result", result); err != nil {
			t.Fatalf("fetch %s: %v", result, err)
		} else if got != 1 {
			t.Fatalf("expected %s=1, got %f", result, got)
		}
	}
	if findMetricFamily(mfs, "cron_job_last_success_timestamp_seconds") == nil {
		t.Fatal("last success gauge missing")
	}

	if got, err := fetchHistogramSum(mfs, "cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestStoreMetricsRecordsResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	m.Observe("stores", "save", 10*time.Millisecond, nil)
	m.Observe("stores", "save", 10*time.Millisecond, fmt.Errorf("disk full"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "jsonstore_operations_total")
	if mf == nil {
		t.Fatalf("operations metric missing")
	}
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected ok and error series, got %d", len(mf.GetMetric()))
	}
}

func TestEmptyLabelsFallBackToUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewStoreMetrics(reg).Observe("", "load", time.Millisecond, nil)
	NewCronJobMetrics(reg).IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "jsonstore_operations_total", "collection", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown collection series, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cron_job_runs_total", "job", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown job series, got %f err=%v", got, err)
	}
}

func TestMailAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mail := NewMailMetrics(reg)
	mail.IncResult("sent")
	httpMetrics := NewHTTPMetrics(reg)
	httpMetrics.Observe("POST", "/orderProduct", 200, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "mail_send_total", "result", "sent"); err != nil || got != 1 {
		t.Fatalf("expected one sent mail, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/orderProduct"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f err=%v", got, err)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var store *StoreMetrics
	store.Observe("x", "load", time.Millisecond, nil)
	var mail *MailMetrics
	mail.IncResult("sent")
	var h *HTTPMetrics
	h.Observe("GET", "/", 200, time.Millisecond)
	NewCronJobMetrics(nil).IncSuccess("job")
}
