// Package memory provides an in-process store with the same semantics as the
// Postgres repository. Tests and local tooling use it in place of a database.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
)

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu            sync.Mutex
	users         map[string]*model.User
	usernames     map[string]string
	plans         []*model.Plan
	subscriptions []*model.Subscription
	certificates  []*model.Certificate
	certIDs       map[string]int
	tickets       map[string]*model.Ticket
	failures      map[string]error
}

// New returns an empty store seeded with the default plan catalog.
func New() *Store {
	s := &Store{
		users:     make(map[string]*model.User),
		usernames: make(map[string]string),
		certIDs:   make(map[string]int),
		tickets:   make(map[string]*model.Ticket),
		failures:  make(map[string]error),
	}
	for _, p := range model.DefaultPlans {
		plan := p
		plan.Features = slices.Clone(p.Features)
		s.plans = append(s.plans, &plan)
	}
	return s
}

// FailWith makes every subsequent call of the named operation return err.
// Passing a nil error clears the failure.
func (s *Store) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Ping always succeeds unless a "Ping" failure is configured.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures["Ping"]
}

// CreateUser stores a user, enforcing username uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["CreateUser"]; err != nil {
		return err
	}
	if _, ok := s.usernames[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	u := *user
	s.users[u.ID] = &u
	s.usernames[u.Username] = u.ID
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["GetUserByID"]; err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetUserByUsername retrieves a user by exact username match.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["GetUserByUsername"]; err != nil {
		return nil, err
	}
	id, ok := s.usernames[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}

// ListPlans returns the plan catalog, cheapest first.
func (s *Store) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["ListPlans"]; err != nil {
		return nil, err
	}
	out := make([]*model.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plan := *p
		out = append(out, &plan)
	}
	return out, nil
}

// GetActiveSubscription returns the most recent active subscription for a user.
func (s *Store) GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["GetActiveSubscription"]; err != nil {
		return nil, err
	}
	sub := s.activeLocked(userID)
	if sub == nil {
		return nil, repository.ErrSubscriptionNotFound
	}
	return s.copySubscription(sub), nil
}

// GetOrCreateSubscription returns the active subscription, provisioning one from p if none exists.
func (s *Store) GetOrCreateSubscription(ctx context.Context, userID string, p repository.Provision) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["GetOrCreateSubscription"]; err != nil {
		return nil, err
	}
	sub, err := s.provisionLocked(userID, p)
	if err != nil {
		return nil, err
	}
	return s.copySubscription(sub), nil
}

// CreateCertificate mirrors the transactional issuance of the Postgres repository.
func (s *Store) CreateCertificate(ctx context.Context, cert *model.Certificate, p repository.Provision) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["CreateCertificate"]; err != nil {
		return nil, err
	}
	if _, ok := s.certIDs[cert.CertificateID]; ok {
		return nil, repository.ErrCertificateIDExists
	}

	var out *model.Subscription
	if !cert.IsGuest() {
		sub, err := s.provisionLocked(cert.UserID, p)
		if err != nil {
			return nil, err
		}
		if !sub.HasQuota() {
			return nil, repository.ErrQuotaExceeded
		}
		sub.DevicesUsed++
		sub.UpdatedAt = time.Now().UTC()
		out = s.copySubscription(sub)
	}

	c := *cert
	if c.IsGuest() {
		c.UserID = model.GuestUserID
	}
	s.certificates = append(s.certificates, &c)
	s.certIDs[c.CertificateID] = len(s.certificates) - 1
	return out, nil
}

// GetCertificateByCertificateID retrieves a certificate by its business key.
func (s *Store) GetCertificateByCertificateID(ctx context.Context, certificateID string) (*model.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["GetCertificateByCertificateID"]; err != nil {
		return nil, err
	}
	i, ok := s.certIDs[certificateID]
	if !ok {
		return nil, repository.ErrCertificateNotFound
	}
	c := *s.certificates[i]
	return &c, nil
}

// ListCertificatesByUser retrieves a user's certificates, newest first.
func (s *Store) ListCertificatesByUser(ctx context.Context, userID, cursor string, limit int) ([]*model.Certificate, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["ListCertificatesByUser"]; err != nil {
		return nil, "", err
	}

	var after *repository.PaginationCursor
	if cursor != "" {
		c, err := repository.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		after = c
	}

	var matched []*model.Certificate
	for _, c := range s.certificates {
		if c.UserID != userID {
			continue
		}
		if after != nil && !olderThan(c, after) {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}

	slices.SortFunc(matched, func(a, b *model.Certificate) int {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	})

	var next string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		next = repository.EncodeCursor(&repository.PaginationCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}
	return matched, next, nil
}

// CreateTicket stores a support ticket, enforcing reference uniqueness.
func (s *Store) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["CreateTicket"]; err != nil {
		return err
	}
	if _, ok := s.tickets[ticket.Reference]; ok {
		return repository.ErrTicketReferenceExists
	}
	t := *ticket
	s.tickets[t.Reference] = &t
	return nil
}

// GetTicketByReference retrieves a ticket by its public reference.
func (s *Store) GetTicketByReference(ctx context.Context, reference string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["GetTicketByReference"]; err != nil {
		return nil, err
	}
	t, ok := s.tickets[reference]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	out := *t
	return &out, nil
}

// SubscriptionCount returns how many subscriptions exist for a user.
func (s *Store) SubscriptionCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			n++
		}
	}
	return n
}

// CertificateCount returns the number of stored certificates.
func (s *Store) CertificateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.certificates)
}

func (s *Store) activeLocked(userID string) *model.Subscription {
	var latest *model.Subscription
	for _, sub := range s.subscriptions {
		if sub.UserID != userID || sub.Status != model.SubscriptionActive {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	return latest
}

func (s *Store) provisionLocked(userID string, p repository.Provision) (*model.Subscription, error) {
	if sub := s.activeLocked(userID); sub != nil {
		return sub, nil
	}

	plan := s.planLocked(p.PlanName)
	if plan == nil {
		return nil, repository.ErrPlanNotFound
	}

	now := time.Now().UTC()
	sub := &model.Subscription{
		ID:           p.SubscriptionID,
		UserID:       userID,
		PlanID:       plan.ID,
		DevicesLimit: plan.DevicesLimit,
		Status:       model.SubscriptionActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.subscriptions = append(s.subscriptions, sub)
	return sub, nil
}

func (s *Store) planLocked(name string) *model.Plan {
	for _, p := range s.plans {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (s *Store) copySubscription(sub *model.Subscription) *model.Subscription {
	out := *sub
	for _, p := range s.plans {
		if p.ID == sub.PlanID {
			plan := *p
			out.Plan = &plan
			break
		}
	}
	return &out
}

func olderThan(c *model.Certificate, cursor *repository.PaginationCursor) bool {
	if c.CreatedAt.Before(cursor.CreatedAt) {
		return true
	}
	return c.CreatedAt.Equal(cursor.CreatedAt) && c.ID < cursor.ID
}
