package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginsExisting        uint64
	UsersCreated          uint64
	CertificatesIssued    uint64
	GuestCertificates     uint64
	QuotaRejections       uint64
	RenderDurationCount   uint64
	RenderDurationTotalNs int64
	TicketsCreated        uint64
	ChatResponses         map[string]uint64
}

// InMemoryRecorder stores metrics in memory. The API process serves its
// snapshot on /metrics.
type InMemoryRecorder struct {
	loginsExisting        uint64
	usersCreated          uint64
	certificatesIssued    uint64
	guestCertificates     uint64
	quotaRejections       uint64
	renderDurationCount   uint64
	renderDurationTotalNs int64
	ticketsCreated        uint64

	mu            sync.Mutex
	chatResponses map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{chatResponses: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	chat := maps.Clone(m.chatResponses)
	m.mu.Unlock()

	return Snapshot{
		LoginsExisting:        atomic.LoadUint64(&m.loginsExisting),
		UsersCreated:          atomic.LoadUint64(&m.usersCreated),
		CertificatesIssued:    atomic.LoadUint64(&m.certificatesIssued),
		GuestCertificates:     atomic.LoadUint64(&m.guestCertificates),
		QuotaRejections:       atomic.LoadUint64(&m.quotaRejections),
		RenderDurationCount:   atomic.LoadUint64(&m.renderDurationCount),
		RenderDurationTotalNs: atomic.LoadInt64(&m.renderDurationTotalNs),
		TicketsCreated:        atomic.LoadUint64(&m.ticketsCreated),
		ChatResponses:         chat,
	}
}

// IncLogin counts a login, split by whether the account was created.
func (m *InMemoryRecorder) IncLogin(created bool) {
	if created {
		atomic.AddUint64(&m.usersCreated, 1)
		return
	}
	atomic.AddUint64(&m.loginsExisting, 1)
}

// IncCertificateIssued increments the issued counter.
func (m *InMemoryRecorder) IncCertificateIssued(guest bool) {
	atomic.AddUint64(&m.certificatesIssued, 1)
	if guest {
		atomic.AddUint64(&m.guestCertificates, 1)
	}
}

// IncQuotaRejected increments the quota rejection counter.
func (m *InMemoryRecorder) IncQuotaRejected() {
	atomic.AddUint64(&m.quotaRejections, 1)
}

// ObserveRenderDuration records PDF render duration.
func (m *InMemoryRecorder) ObserveRenderDuration(duration time.Duration) {
	atomic.AddUint64(&m.renderDurationCount, 1)
	atomic.AddInt64(&m.renderDurationTotalNs, duration.Nanoseconds())
}

// IncTicketCreated increments the ticket counter.
func (m *InMemoryRecorder) IncTicketCreated() {
	atomic.AddUint64(&m.ticketsCreated, 1)
}

// IncChatResponse counts a chat reply by matched topic.
func (m *InMemoryRecorder) IncChatResponse(topic string) {
	m.mu.Lock()
	m.chatResponses[topic]++
	m.mu.Unlock()
}
