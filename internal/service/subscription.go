package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
)

// DefaultPlanCacheTTL bounds how stale a cached plan catalog may be.
const DefaultPlanCacheTTL = 10 * time.Minute

// SubscriptionService exposes plans and per-user subscriptions.
type SubscriptionService struct {
	store       SubscriptionStore
	plans       PlanCache
	planTTL     time.Duration
	defaultPlan string
	logger      *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService. plans and logger may be nil.
func NewSubscriptionService(store SubscriptionStore, plans PlanCache, logger *slog.Logger) *SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionService{
		store:       store,
		plans:       plans,
		planTTL:     DefaultPlanCacheTTL,
		defaultPlan: model.PlanStarter,
		logger:      logger,
	}
}

// GetOrProvision returns the user's active subscription, provisioning the
// Starter plan on first access. At most one active subscription is ever
// created per user.
func (s *SubscriptionService) GetOrProvision(ctx context.Context, userID string) (*model.Subscription, error) {
	if strings.TrimSpace(userID) == "" || userID == model.GuestUserID {
		return nil, ErrUnauthenticated
	}

	sub, err := s.store.GetOrCreateSubscription(ctx, userID, s.provision())
	if err != nil {
		return nil, storageErr("get or create subscription", err)
	}
	return sub, nil
}

// Plans returns the plan catalog ordered by price. The cache is best-effort.
func (s *SubscriptionService) Plans(ctx context.Context) ([]*model.Plan, error) {
	if s.plans != nil {
		if cached, err := s.plans.GetPlans(ctx); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, storageErr("list plans", err)
	}

	if s.plans != nil && len(plans) > 0 {
		if err := s.plans.SetPlans(ctx, plans, s.planTTL); err != nil {
			s.logger.Warn("plan_cache_write_failed", "error", err.Error())
		}
	}
	return plans, nil
}

func (s *SubscriptionService) provision() repository.Provision {
	return repository.Provision{SubscriptionID: newID(), PlanName: s.defaultPlan}
}

