package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
)

var ErrMissingUserReference = errors.New("payment event has no user reference")

// EntitlementService resolves plans, enforces the daily AI question quota and
// applies payment events to subscriptions.
type EntitlementService struct {
	subscriptions SubscriptionRepository
	questions     QuestionRepository
	limits        entities.QuotaLimits
	clock         Clock
	notifier      Notifier
	logger        *zap.Logger
}

func NewEntitlementService(
	subscriptions SubscriptionRepository,
	questions QuestionRepository,
	limits entities.QuotaLimits,
	clock Clock,
	logger *zap.Logger,
) *EntitlementService {
	if limits.Free <= 0 || limits.Premium <= 0 {
		limits = entities.DefaultQuotaLimits
	}
	return &EntitlementService{
		subscriptions: subscriptions,
		questions:     questions,
		limits:        limits,
		clock:         clock,
		logger:        logger,
	}
}

// SetNotifier sets the notifier used for welcome and cancellation messages.
func (s *EntitlementService) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// ResolvePlan returns the effective plan of a user. Expired rows resolve to free
// without being rewritten.
func (s *EntitlementService) ResolvePlan(ctx context.Context, userID string) (entities.PlanStatus, error) {
	sub, err := s.subscriptions.LatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return entities.ResolvePlan(nil, s.clock.Now()), nil
		}
		return entities.PlanStatus{}, fmt.Errorf("resolve plan: %w", err)
	}

	return entities.ResolvePlan(sub, s.clock.Now()), nil
}

// QuestionLimit returns the daily AI question limit of the user's plan.
func (s *EntitlementService) QuestionLimit(ctx context.Context, userID string) (int, error) {
	plan, err := s.ResolvePlan(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.limits.For(plan.Plan), nil
}

// CheckQuota counts the questions asked on the calendar day of today and decides
// whether one more is allowed. It must be called before RecordAsk.
func (s *EntitlementService) CheckQuota(ctx context.Context, userID string, today time.Time) (entities.QuotaDecision, error) {
	limit, err := s.QuestionLimit(ctx, userID)
	if err != nil {
		return entities.QuotaDecision{}, err
	}

	from, to := s.clock.Day(today)
	used, err := s.questions.CountBetween(ctx, userID, from, to)
	if err != nil {
		return entities.QuotaDecision{}, fmt.Errorf("check quota: %w", err)
	}

	return entities.Decide(used, limit), nil
}

// RecordAsk appends a question event. Empty questions are recorded as well.
func (s *EntitlementService) RecordAsk(ctx context.Context, userID, question string) error {
	event := &entities.QuestionAskEvent{
		UserID:   userID,
		Question: question,
		AskedAt:  s.clock.Now(),
	}
	if err := s.questions.Record(ctx, event); err != nil {
		return fmt.Errorf("record ask: %w", err)
	}
	return nil
}

// ActivateSubscription grants premium for one period. A previous active
// subscription is replaced, not extended.
func (s *EntitlementService) ActivateSubscription(
	ctx context.Context,
	userID, providerSubID, providerCustomerID string,
) (*entities.Subscription, error) {
	sub := entities.NewPremiumSubscription(userID, providerSubID, providerCustomerID, s.clock.Now())
	if err := s.subscriptions.Replace(ctx, sub); err != nil {
		return nil, fmt.Errorf("activate subscription: %w", err)
	}

	s.logger.Info("premium activated",
		zap.String("user_id", userID),
		zap.String("subscription_id", providerSubID),
		zap.Time("expires_at", sub.ExpiresAt),
	)

	return sub, nil
}

// CancelSubscription revokes premium immediately.
func (s *EntitlementService) CancelSubscription(ctx context.Context, userID, providerSubID string) error {
	if err := s.subscriptions.Cancel(ctx, userID, providerSubID); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	s.logger.Info("premium canceled",
		zap.String("user_id", userID),
		zap.String("subscription_id", providerSubID),
	)

	return nil
}

// CancelByProviderSubscription cancels a subscription known only by its provider id
// and returns the owning user.
func (s *EntitlementService) CancelByProviderSubscription(ctx context.Context, providerSubID string) (string, error) {
	userID, err := s.subscriptions.UserIDByProviderSubscription(ctx, providerSubID)
	if err != nil {
		return "", fmt.Errorf("find subscription owner: %w", err)
	}

	if err := s.CancelSubscription(ctx, userID, providerSubID); err != nil {
		return "", err
	}

	return userID, nil
}

// HandlePaymentEvent applies a verified payment event.
func (s *EntitlementService) HandlePaymentEvent(ctx context.Context, event entities.PaymentEvent) error {
	log := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.ProviderType),
		zap.String("subscription_id", event.ProviderSubscriptionID),
	)

	switch event.Type {
	case entities.PaymentCheckoutCompleted:
		if event.UserID == "" {
			return ErrMissingUserReference
		}
		if _, err := s.ActivateSubscription(ctx, event.UserID, event.ProviderSubscriptionID, event.ProviderCustomerID); err != nil {
			return err
		}
		s.notify(ctx, event.UserID, entities.Message{Kind: entities.MsgPremiumWelcome})

	case entities.PaymentSubscriptionDeleted:
		userID, err := s.CancelByProviderSubscription(ctx, event.ProviderSubscriptionID)
		if err != nil {
			if errors.Is(err, repository.ErrSubscriptionNotFound) {
				log.Warn("cancellation for unknown subscription")
				return nil
			}
			return err
		}
		s.notify(ctx, userID, entities.Message{Kind: entities.MsgPremiumCanceled})

	case entities.PaymentInvoiceSucceeded:
		log.Info("invoice paid")

	case entities.PaymentInvoiceFailed:
		log.Warn("invoice payment failed")

	default:
		log.Debug("payment event ignored")
	}

	return nil
}

func (s *EntitlementService) notify(ctx context.Context, userID string, msg entities.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, msg); err != nil {
		s.logger.Error("failed to notify user",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
