package service

import (
	"context"
	"time"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	GetByID(ctx context.Context, userID string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
	UpdateTier(ctx context.Context, userID string, tier entities.Tier) error
}

type LessonHistoryRepository interface {
	Record(ctx context.Context, rec *entities.LessonSendRecord) error
	RecentLessonIDs(ctx context.Context, userID string, since time.Time) ([]string, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

type QuizResultRepository interface {
	Save(ctx context.Context, res *entities.QuizResult) error
	Stats(ctx context.Context, userID string, since time.Time) (entities.QuizStats, error)
	WeakAreas(ctx context.Context, userID string, since time.Time) ([]entities.WeakArea, error)
}

type ReviewQueueRepository interface {
	Add(ctx context.Context, e *entities.ReviewQueueEntry) (int64, error)
	Head(ctx context.Context, userID string) (*entities.ReviewQueueEntry, error)
	List(ctx context.Context, userID string, limit int) ([]*entities.ReviewQueueEntry, error)
	Delete(ctx context.Context, id int64) error
}

type UserStateRepository interface {
	SetPendingQuiz(ctx context.Context, p *entities.PendingQuiz) error
	GetPendingQuiz(ctx context.Context, userID string) (*entities.PendingQuiz, error)
}

type QuestionRepository interface {
	Record(ctx context.Context, e *entities.QuestionAskEvent) error
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}

type SubscriptionRepository interface {
	LatestActive(ctx context.Context, userID string) (*entities.Subscription, error)
	Replace(ctx context.Context, sub *entities.Subscription) error
	Cancel(ctx context.Context, userID, providerSubID string) error
	UserIDByProviderSubscription(ctx context.Context, providerSubID string) (string, error)
}

type ResetRepository interface {
	ResetUser(ctx context.Context, userID string) error
}

// Catalog is the read-only lesson and quiz bank.
type Catalog interface {
	LessonByID(id string) (*entities.Lesson, error)
	QuizByID(id string) (*entities.Quiz, error)
	RandomLesson(tier entities.Tier, exclude map[string]struct{}) (*entities.Lesson, error)
	RandomQuiz(tier entities.Tier) (*entities.Quiz, error)
}

// Notifier pushes a message to a user outside of a reply.
type Notifier interface {
	Notify(ctx context.Context, userID string, msg entities.Message) error
}

// Completer answers free-form questions with an AI model.
type Completer interface {
	Complete(ctx context.Context, question string) (string, error)
}

// PaymentProvider creates hosted checkout and billing portal sessions.
type PaymentProvider interface {
	CheckoutURL(ctx context.Context, userID string) (string, error)
	PortalURL(ctx context.Context, customerID string) (string, error)
}
