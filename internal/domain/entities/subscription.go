package entities

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionPeriod is the access window granted by every activation.
const SubscriptionPeriod = 30 * 24 * time.Hour

// Plan is the billing state of a user.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// SubscriptionStatus is the stored lifecycle state of a subscription row.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// Subscription is a premium entitlement backed by the payment provider.
type Subscription struct {
	ID                     uuid.UUID
	UserID                 string
	ProviderSubscriptionID string
	ProviderCustomerID     string
	Plan                   Plan
	Status                 SubscriptionStatus
	StartedAt              time.Time
	ExpiresAt              time.Time
	CreatedAt              time.Time
}

// NewPremiumSubscription creates an active premium subscription starting at now.
func NewPremiumSubscription(userID, providerSubID, providerCustomerID string, now time.Time) *Subscription {
	return &Subscription{
		ID:                     uuid.New(),
		UserID:                 userID,
		ProviderSubscriptionID: providerSubID,
		ProviderCustomerID:     providerCustomerID,
		Plan:                   PlanPremium,
		Status:                 SubscriptionActive,
		StartedAt:              now,
		ExpiresAt:              now.Add(SubscriptionPeriod),
		CreatedAt:              now,
	}
}

// IsActive reports whether the subscription grants premium access at now.
// Expiry is evaluated lazily: a stored active row past ExpiresAt is not active.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionActive && now.Before(s.ExpiresAt)
}

// PlanStatus is the resolved plan of a user.
type PlanStatus struct {
	Plan      Plan
	Status    SubscriptionStatus // empty when the user never subscribed
	ExpiresAt *time.Time
}

// IsPremium reports whether the resolved plan is premium.
func (p PlanStatus) IsPremium() bool {
	return p.Plan == PlanPremium
}

// ResolvePlan derives the effective plan from the latest active subscription row.
func ResolvePlan(latest *Subscription, now time.Time) PlanStatus {
	if latest == nil {
		return PlanStatus{Plan: PlanFree}
	}

	expiresAt := latest.ExpiresAt
	if !latest.IsActive(now) {
		status := latest.Status
		if status == SubscriptionActive {
			status = SubscriptionExpired
		}
		return PlanStatus{Plan: PlanFree, Status: status, ExpiresAt: &expiresAt}
	}

	return PlanStatus{Plan: latest.Plan, Status: latest.Status, ExpiresAt: &expiresAt}
}
