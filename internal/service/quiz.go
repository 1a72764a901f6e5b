package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
)

var ErrInvalidAnswer = errors.New("answer must be a digit from 1 to 4")

// QuizService scores answers, promotes users and tracks weak areas.
type QuizService struct {
	users     UserRepository
	results   QuizResultRepository
	review    ReviewQueueRepository
	state     UserStateRepository
	catalog   Catalog
	selection *SelectionService
	clock     Clock
	logger    *zap.Logger
}

func NewQuizService(
	users UserRepository,
	results QuizResultRepository,
	review ReviewQueueRepository,
	state UserStateRepository,
	catalog Catalog,
	selection *SelectionService,
	clock Clock,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		users:     users,
		results:   results,
		review:    review,
		state:     state,
		catalog:   catalog,
		selection: selection,
		clock:     clock,
		logger:    logger,
	}
}

// SubmitAnswer scores a digit answer against the user's pending quiz and
// evaluates promotion. A missing pending quiz is an outcome, not an error.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, digit string) (*entities.AnswerOutcome, error) {
	if len(digit) != 1 || digit[0] < '1' || digit[0] > '4' {
		return nil, ErrInvalidAnswer
	}
	answer := int(digit[0] - '1')

	pending, err := s.state.GetPendingQuiz(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPendingQuiz) {
			return &entities.AnswerOutcome{Status: entities.AnswerNoActiveQuiz}, nil
		}
		return nil, fmt.Errorf("get pending quiz: %w", err)
	}

	quiz, err := s.catalog.QuizByID(pending.QuizID)
	if err != nil {
		s.logger.Warn("pending quiz missing from catalog",
			zap.String("user_id", userID),
			zap.String("quiz_id", pending.QuizID),
		)
		return &entities.AnswerOutcome{Status: entities.AnswerNoActiveQuiz}, nil
	}

	result := entities.NewQuizResult(userID, quiz, answer, s.clock.Now())
	if err := s.results.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("save quiz result: %w", err)
	}

	outcome := &entities.AnswerOutcome{
		Status:       entities.AnswerScored,
		Quiz:         quiz,
		Correct:      result.IsCorrect,
		CorrectIndex: quiz.CorrectAnswer,
	}

	promoted, err := s.evaluatePromotion(ctx, userID)
	if err != nil {
		return nil, err
	}
	outcome.Promoted = promoted

	return outcome, nil
}

func (s *QuizService) evaluatePromotion(ctx context.Context, userID string) (entities.Tier, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	stats, err := s.results.Stats(ctx, userID, s.clock.Now().Add(-entities.PromotionWindow))
	if err != nil {
		return "", fmt.Errorf("get promotion stats: %w", err)
	}

	next, ok := entities.NextTier(user.Tier, stats)
	if !ok {
		return "", nil
	}

	if err := s.users.UpdateTier(ctx, userID, next); err != nil {
		return "", fmt.Errorf("promote user: %w", err)
	}

	s.logger.Info("user promoted",
		zap.String("user_id", userID),
		zap.String("from", string(user.Tier)),
		zap.String("to", string(next)),
	)

	return next, nil
}

// Stats aggregates the user's results over the trailing number of days.
func (s *QuizService) Stats(ctx context.Context, userID string, days int) (entities.QuizStats, error) {
	return s.results.Stats(ctx, userID, s.clock.DaysAgo(days))
}

// WeakAreas returns quizzes with at least one wrong answer in the trailing days, weakest first.
func (s *QuizService) WeakAreas(ctx context.Context, userID string, days int) ([]entities.WeakArea, error) {
	areas, err := s.results.WeakAreas(ctx, userID, s.clock.DaysAgo(days))
	if err != nil {
		return nil, fmt.Errorf("get weak areas: %w", err)
	}
	return areas, nil
}

// WeakAreaViews resolves weak areas against the catalog, skipping deleted quizzes.
func (s *QuizService) WeakAreaViews(ctx context.Context, userID string, days, limit int) ([]entities.WeakAreaView, error) {
	areas, err := s.WeakAreas(ctx, userID, days)
	if err != nil {
		return nil, err
	}

	views := make([]entities.WeakAreaView, 0, min(limit, len(areas)))
	for _, a := range areas {
		quiz, err := s.catalog.QuizByID(a.QuizID)
		if err != nil {
			continue
		}
		views = append(views, entities.WeakAreaView{Area: a, Quiz: quiz})
		if len(views) == limit {
			break
		}
	}

	return views, nil
}

// AddWeakAreasToReview queues every quiz answered below 70% accuracy in the
// last 30 days. Repeated calls insert duplicate entries.
func (s *QuizService) AddWeakAreasToReview(ctx context.Context, userID string) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get user: %w", err)
	}

	areas, err := s.WeakAreas(ctx, userID, entities.WeakAreaWindowDays)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	added := 0
	for _, a := range areas {
		if a.Attempts == 0 || a.Ratio() >= entities.WeakAreaThreshold {
			continue
		}
		tier := user.Tier
		if quiz, err := s.catalog.QuizByID(a.QuizID); err == nil {
			tier = quiz.Tier
		}
		if _, err := s.review.Add(ctx, entities.NewWeakAreaReview(userID, tier, a, now)); err != nil {
			return added, fmt.Errorf("add review entry: %w", err)
		}
		added++
	}

	return added, nil
}

// ShouldSendReviewQuiz reports whether the user answered at least two quizzes in
// the last 7 days with an accuracy below 70%.
func (s *QuizService) ShouldSendReviewQuiz(ctx context.Context, userID string) (bool, error) {
	stats, err := s.Stats(ctx, userID, entities.ReviewQuizWindowDays)
	if err != nil {
		return false, fmt.Errorf("get review stats: %w", err)
	}

	return stats.Total >= entities.ReviewQuizMinAttempts && stats.Accuracy() < entities.ReviewQuizMaxAccuracy, nil
}

// ReviewQuiz issues the user's weakest quiz of the last 30 days as the pending quiz.
func (s *QuizService) ReviewQuiz(ctx context.Context, userID string) (*entities.Quiz, error) {
	areas, err := s.WeakAreas(ctx, userID, entities.WeakAreaWindowDays)
	if err != nil {
		return nil, err
	}

	for _, a := range areas {
		quiz, err := s.catalog.QuizByID(a.QuizID)
		if err != nil {
			continue
		}
		if err := s.selection.IssueQuiz(ctx, userID, quiz); err != nil {
			return nil, err
		}
		return quiz, nil
	}

	return nil, ErrNoQuizAvailable
}
