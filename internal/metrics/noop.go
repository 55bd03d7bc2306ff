package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(created bool) {}

// IncCertificateIssued is a no-op.
func (n *NoopRecorder) IncCertificateIssued(guest bool) {}

// IncQuotaRejected is a no-op.
func (n *NoopRecorder) IncQuotaRejected() {}

// ObserveRenderDuration is a no-op.
func (n *NoopRecorder) ObserveRenderDuration(duration time.Duration) {}

// IncTicketCreated is a no-op.
func (n *NoopRecorder) IncTicketCreated() {}

// IncChatResponse is a no-op.
func (n *NoopRecorder) IncChatResponse(topic string) {}
