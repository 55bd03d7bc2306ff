// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity metrics
	IncLogin(created bool)

	// Certificate metrics
	IncCertificateIssued(guest bool)
	IncQuotaRejected()
	ObserveRenderDuration(duration time.Duration)

	// Intake metrics
	IncTicketCreated()
	IncChatResponse(topic string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
