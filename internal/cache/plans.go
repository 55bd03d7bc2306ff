package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cleanexit/cleanexit/internal/model"
)

const (
	plansKey = "plans:catalog"

	// DefaultPlansTTL is how long the plan catalog stays cached.
	DefaultPlansTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetPlans returns the cached plan catalog or ErrCacheMiss.
func (c *Cache) GetPlans(ctx context.Context) ([]*model.Plan, error) {
	data, err := c.client.Get(ctx, plansKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get plans: %w", err)
	}

	var plans []*model.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, ErrCacheMiss
	}
	return plans, nil
}

// SetPlans caches the plan catalog.
func (c *Cache) SetPlans(ctx context.Context, plans []*model.Plan, ttl time.Duration) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("marshal plans: %w", err)
	}
	return c.client.Set(ctx, plansKey, data, ttl).Err()
}

// InvalidatePlans drops the cached catalog.
func (c *Cache) InvalidatePlans(ctx context.Context) error {
	return c.client.Del(ctx, plansKey).Err()
}
