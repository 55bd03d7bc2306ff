package handler

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/cleanexit/cleanexit/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "cleanexit_logins_total{created=\"true\"} %d\n", snap.UsersCreated)
	writeMetric(w, "cleanexit_logins_total{created=\"false\"} %d\n", snap.LoginsExisting)

	writeMetric(w, "cleanexit_certificates_issued_total %d\n", snap.CertificatesIssued)
	writeMetric(w, "cleanexit_certificates_guest_total %d\n", snap.GuestCertificates)
	writeMetric(w, "cleanexit_quota_rejections_total %d\n", snap.QuotaRejections)
	writeMetric(w, "cleanexit_pdf_render_duration_seconds_count %d\n", snap.RenderDurationCount)
	writeMetric(w, "cleanexit_pdf_render_duration_seconds_sum %.6f\n", float64(snap.RenderDurationTotalNs)/1e9)

	writeMetric(w, "cleanexit_tickets_created_total %d\n", snap.TicketsCreated)

	topics := make([]string, 0, len(snap.ChatResponses))
	for topic := range snap.ChatResponses {
		topics = append(topics, topic)
	}
	slices.Sort(topics)
	for _, topic := range topics {
		writeMetric(w, "cleanexit_chat_responses_total{topic=%q} %d\n", topic, snap.ChatResponses[topic])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
