package model

import "time"

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// IsValid checks if the status is one of the known values.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionCancelled, SubscriptionExpired:
		return true
	}
	return false
}

// Plan names.
const (
	PlanStarter  = "Starter"
	PlanPro      = "Pro"
	PlanAdvanced = "Advanced"
)

// UnlimitedDevices is the devices_limit of plans without a quota.
const UnlimitedDevices = -1

// Plan is a subscription tier.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	Currency     string   `json:"currency"`
	DevicesLimit int      `json:"devices_limit"`
	Features     []string `json:"features"`
	SortOrder    int      `json:"-"`
}

// IsUnlimited returns true if the plan has no device quota.
func (p *Plan) IsUnlimited() bool {
	return p.DevicesLimit < 0
}

// DefaultPlans is the seeded catalog, cheapest first. The migration that
// creates subscription_plans inserts the same rows.
var DefaultPlans = []Plan{
	{
		ID: "plan_starter", Name: PlanStarter, Price: 0, Currency: "INR", DevicesLimit: 5, SortOrder: 1,
		Features: []string{"5 device wipes per month", "NIST 800-88 certificates", "Email support"},
	},
	{
		ID: "plan_pro", Name: PlanPro, Price: 299, Currency: "INR", DevicesLimit: 50, SortOrder: 2,
		Features: []string{"50 device wipes per month", "Audit trail exports", "Priority support"},
	},
	{
		ID: "plan_advanced", Name: PlanAdvanced, Price: 699, Currency: "INR", DevicesLimit: UnlimitedDevices, SortOrder: 3,
		Features: []string{"Unlimited device wipes", "Dedicated compliance manager", "24/7 emergency response"},
	},
}

// Subscription links a user to a plan and tracks quota consumption.
// DevicesLimit is copied from the plan when the subscription is created.
type Subscription struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	PlanID       string             `json:"plan_id"`
	DevicesLimit int                `json:"devices_limit"`
	DevicesUsed  int                `json:"devices_used"`
	Status       SubscriptionStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	Plan *Plan `json:"plan,omitempty"`
}

// IsUnlimited returns true if issuance never exhausts this subscription.
func (s *Subscription) IsUnlimited() bool {
	return s.DevicesLimit < 0
}

// DevicesRemaining is computed, never stored, and never negative. It is
// zero for unlimited subscriptions; check IsUnlimited before reporting it.
func (s *Subscription) DevicesRemaining() int {
	if s.IsUnlimited() {
		return 0
	}
	return max(0, s.DevicesLimit-s.DevicesUsed)
}

// HasQuota reports whether one more device may be wiped.
func (s *Subscription) HasQuota() bool {
	return s.IsUnlimited() || s.DevicesUsed < s.DevicesLimit
}
