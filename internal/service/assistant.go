package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

// AskStatus is the result of an AI question.
type AskStatus int

const (
	AskAnswered AskStatus = iota
	AskModerated
	AskQuotaExceeded
	AskFailed
)

// AskResult carries the answer and the quota state after the ask.
type AskResult struct {
	Status   AskStatus
	Answer   string
	Category string // moderation category when Status is AskModerated
	Quota    entities.QuotaDecision
}

// AssistantService answers free-form questions behind moderation and the daily quota.
type AssistantService struct {
	moderator    *Moderator
	entitlements *EntitlementService
	completer    Completer
	clock        Clock
	logger       *zap.Logger
}

func NewAssistantService(
	moderator *Moderator,
	entitlements *EntitlementService,
	completer Completer,
	clock Clock,
	logger *zap.Logger,
) *AssistantService {
	return &AssistantService{
		moderator:    moderator,
		entitlements: entitlements,
		completer:    completer,
		clock:        clock,
		logger:       logger,
	}
}

// Ask moderates the question, checks the quota, asks the model and records the ask.
// A failed completion does not consume quota.
func (s *AssistantService) Ask(ctx context.Context, userID, question string) (*AskResult, error) {
	if category, ok := s.moderator.Check(question); !ok {
		s.logger.Info("question rejected by moderation",
			zap.String("user_id", userID),
			zap.String("category", category),
		)
		return &AskResult{Status: AskModerated, Category: category}, nil
	}

	decision, err := s.entitlements.CheckQuota(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &AskResult{Status: AskQuotaExceeded, Quota: decision}, nil
	}

	if s.completer == nil {
		return &AskResult{Status: AskFailed, Quota: decision}, nil
	}

	answer, err := s.completer.Complete(ctx, question)
	if err != nil {
		s.logger.Error("ai completion failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return &AskResult{Status: AskFailed, Quota: decision}, nil
	}

	if err := s.entitlements.RecordAsk(ctx, userID, question); err != nil {
		s.logger.Error("failed to record ask",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return &AskResult{Status: AskAnswered, Answer: answer, Quota: decision}, nil
}
