package httpapi

import (
	"context"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/scheduler"
)

// WebhookParser verifies and decodes payment provider webhooks.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (entities.PaymentEvent, error)
}

type EntitlementService interface {
	HandlePaymentEvent(ctx context.Context, event entities.PaymentEvent) error
	ActivateSubscription(ctx context.Context, userID, providerSubID, providerCustomerID string) (*entities.Subscription, error)
}

type UserService interface {
	EnsureUser(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]*entities.User, error)
	SetTier(ctx context.Context, userID string, tier entities.Tier) error
	Reset(ctx context.Context, userID string) error
}

type Dispatcher interface {
	SendLessonTo(ctx context.Context, userID string) error
	SendQuizTo(ctx context.Context, userID string) error
}

type JobRunner interface {
	Run(ctx context.Context, name string) (*entities.DispatchReport, error)
	Entries() []scheduler.JobInfo
}
