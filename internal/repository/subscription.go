package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/cleanexit/cleanexit/internal/model"
)

// Common errors for subscription repository operations.
var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrQuotaExceeded        = errors.New("device quota exceeded")
)

// Provision describes the subscription created when a user has none.
type Provision struct {
	SubscriptionID string
	PlanName       string
}

const planColumns = `id, name, price, currency, devices_limit, features, sort_order`

const subscriptionSelect = `
	SELECT s.id, s.user_id, s.plan_id, s.devices_limit, s.devices_used, s.status, s.created_at, s.updated_at,
	       p.id, p.name, p.price, p.currency, p.devices_limit, p.features, p.sort_order
	FROM user_subscriptions s
	JOIN subscription_plans p ON p.id = s.plan_id
`

// ListPlans returns the plan catalog, cheapest first.
func (r *Repository) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY sort_order, price`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*model.Plan
	for rows.Next() {
		var plan model.Plan
		var features []string
		if err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Price,
			&plan.Currency,
			&plan.DevicesLimit,
			pq.Array(&features),
			&plan.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plan.Features = features
		plans = append(plans, &plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}

// GetActiveSubscription returns the most recent active subscription for a user.
func (r *Repository) GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return getActiveSubscription(ctx, r.pool, userID)
}

// GetOrCreateSubscription returns the user's active subscription, provisioning
// one on the named plan with zero usage if none exists. Concurrent callers
// converge on one row through the one-active-subscription unique index.
func (r *Repository) GetOrCreateSubscription(ctx context.Context, userID string, p Provision) (*model.Subscription, error) {
	sub, err := r.GetActiveSubscription(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	if err := provisionSubscription(ctx, r.pool, userID, p); err != nil {
		return nil, err
	}

	return r.GetActiveSubscription(ctx, userID)
}

func getActiveSubscription(ctx context.Context, q dbtx, userID string) (*model.Subscription, error) {
	query := subscriptionSelect + `
		WHERE s.user_id = $1 AND s.status = 'active'
		ORDER BY s.created_at DESC
		LIMIT 1
	`

	sub, err := scanSubscription(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return sub, nil
}

// provisionSubscription inserts an active subscription unless one exists.
func provisionSubscription(ctx context.Context, q dbtx, userID string, p Provision) error {
	query := `
		INSERT INTO user_subscriptions (id, user_id, plan_id, devices_limit, devices_used, status, created_at, updated_at)
		SELECT $1, $2, p.id, p.devices_limit, 0, 'active', NOW(), NOW()
		FROM subscription_plans p
		WHERE p.name = $3
		ON CONFLICT (user_id) WHERE status = 'active' DO NOTHING
	`

	tag, err := q.Exec(ctx, query, p.SubscriptionID, userID, p.PlanName)
	if err != nil {
		return fmt.Errorf("failed to provision subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either another request won the race or the plan is missing.
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscription_plans WHERE name = $1)`, p.PlanName).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check plan: %w", err)
		}
		if !exists {
			return ErrPlanNotFound
		}
	}

	return nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var sub model.Subscription
	var plan model.Plan
	var features []string
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.DevicesLimit,
		&sub.DevicesUsed,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&plan.ID,
		&plan.Name,
		&plan.Price,
		&plan.Currency,
		&plan.DevicesLimit,
		pq.Array(&features),
		&plan.SortOrder,
	)
	if err != nil {
		return nil, err
	}
	plan.Features = features
	sub.Plan = &plan
	return &sub, nil
}
