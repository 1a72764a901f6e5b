package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
)

var ErrPaymentsDisabled = errors.New("payments are not configured")

// BillingService builds checkout and billing portal links.
type BillingService struct {
	provider      PaymentProvider
	subscriptions SubscriptionRepository
}

func NewBillingService(provider PaymentProvider, subscriptions SubscriptionRepository) *BillingService {
	return &BillingService{provider: provider, subscriptions: subscriptions}
}

// CheckoutURL returns a hosted checkout link that references the user.
func (s *BillingService) CheckoutURL(ctx context.Context, userID string) (string, error) {
	if s.provider == nil {
		return "", ErrPaymentsDisabled
	}
	url, err := s.provider.CheckoutURL(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}
	return url, nil
}

// PortalURL returns a billing portal link for the customer of the user's active subscription.
func (s *BillingService) PortalURL(ctx context.Context, userID string) (string, error) {
	if s.provider == nil {
		return "", ErrPaymentsDisabled
	}

	sub, err := s.subscriptions.LatestActive(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub.ProviderCustomerID == "" {
		return "", repository.ErrSubscriptionNotFound
	}

	url, err := s.provider.PortalURL(ctx, sub.ProviderCustomerID)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return url, nil
}
