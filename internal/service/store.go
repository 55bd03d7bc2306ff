package service

import (
	"context"
	"time"

	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
)

// UserStore persists users. *repository.Repository and *memory.Store implement it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// SubscriptionStore persists plans and subscriptions.
type SubscriptionStore interface {
	ListPlans(ctx context.Context) ([]*model.Plan, error)
	GetOrCreateSubscription(ctx context.Context, userID string, p repository.Provision) (*model.Subscription, error)
}

// CertificateStore persists certificates together with quota consumption.
type CertificateStore interface {
	CreateCertificate(ctx context.Context, cert *model.Certificate, p repository.Provision) (*model.Subscription, error)
	GetCertificateByCertificateID(ctx context.Context, certificateID string) (*model.Certificate, error)
	ListCertificatesByUser(ctx context.Context, userID, cursor string, limit int) ([]*model.Certificate, string, error)
}

// TicketStore persists support tickets.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	GetTicketByReference(ctx context.Context, reference string) (*model.Ticket, error)
}

// Store is everything the services need from persistence.
type Store interface {
	UserStore
	SubscriptionStore
	CertificateStore
	TicketStore
}

// PlanCache caches the plan catalog. Implementations return an error on miss.
type PlanCache interface {
	GetPlans(ctx context.Context) ([]*model.Plan, error)
	SetPlans(ctx context.Context, plans []*model.Plan, ttl time.Duration) error
}
