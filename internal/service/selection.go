package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
	catalog "github.com/aliskhannn/prompt-study-bot/internal/repository"
)

var (
	ErrNoLessonAvailable = errors.New("no lesson available")
	ErrNoQuizAvailable   = errors.New("no quiz available")
)

// SelectionService picks the next lesson and quiz for a user.
type SelectionService struct {
	users   UserRepository
	history LessonHistoryRepository
	review  ReviewQueueRepository
	state   UserStateRepository
	catalog Catalog
	clock   Clock
}

func NewSelectionService(
	users UserRepository,
	history LessonHistoryRepository,
	review ReviewQueueRepository,
	state UserStateRepository,
	catalog Catalog,
	clock Clock,
) *SelectionService {
	return &SelectionService{
		users:   users,
		history: history,
		review:  review,
		state:   state,
		catalog: catalog,
		clock:   clock,
	}
}

// NextLesson returns, in order of preference, the first queued review entry
// that resolves to a lesson, a random tier lesson not sent in the last 7 days,
// or any random tier lesson. It does not record the send.
func (s *SelectionService) NextLesson(ctx context.Context, userID string) (*entities.LessonPick, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	entries, err := s.review.List(ctx, userID, entities.ReviewScanLimit)
	if err != nil {
		return nil, fmt.Errorf("list review entries: %w", err)
	}
	for _, e := range entries {
		if lesson, ok := s.reviewLesson(e.ItemID); ok {
			return &entities.LessonPick{Lesson: lesson, Review: e}, nil
		}
	}

	since := s.clock.Now().Add(-entities.RecentLessonWindow)
	recent, err := s.history.RecentLessonIDs(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get recent lessons: %w", err)
	}

	exclude := make(map[string]struct{}, len(recent))
	for _, id := range recent {
		exclude[id] = struct{}{}
	}

	lesson, err := s.catalog.RandomLesson(user.Tier, exclude)
	if errors.Is(err, catalog.ErrLessonNotFound) {
		lesson, err = s.catalog.RandomLesson(user.Tier, nil)
	}
	if err != nil {
		if errors.Is(err, catalog.ErrLessonNotFound) {
			return nil, ErrNoLessonAvailable
		}
		return nil, err
	}

	return &entities.LessonPick{Lesson: lesson}, nil
}

// reviewLesson resolves a review item to a lesson, either directly or through
// the lesson a quiz is linked to.
func (s *SelectionService) reviewLesson(itemID string) (*entities.Lesson, bool) {
	if lesson, err := s.catalog.LessonByID(itemID); err == nil {
		return lesson, true
	}
	quiz, err := s.catalog.QuizByID(itemID)
	if err != nil || quiz.LessonID == "" {
		return nil, false
	}
	lesson, err := s.catalog.LessonByID(quiz.LessonID)
	if err != nil {
		return nil, false
	}
	return lesson, true
}

// DeliverLesson records a delivered lesson and consumes its review entry.
func (s *SelectionService) DeliverLesson(ctx context.Context, userID string, pick *entities.LessonPick) error {
	rec := &entities.LessonSendRecord{
		UserID:   userID,
		LessonID: pick.Lesson.ID,
		Tier:     pick.Lesson.Tier,
		SentAt:   s.clock.Now(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		return err
	}

	if pick.FromReview() {
		if err := s.review.Delete(ctx, pick.Review.ID); err != nil {
			return fmt.Errorf("consume review entry: %w", err)
		}
	}

	return nil
}

// NextQuiz picks a random quiz of the user's tier and makes it the pending quiz.
func (s *SelectionService) NextQuiz(ctx context.Context, userID string) (*entities.Quiz, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	quiz, err := s.catalog.RandomQuiz(user.Tier)
	if err != nil {
		if errors.Is(err, catalog.ErrQuizNotFound) {
			return nil, ErrNoQuizAvailable
		}
		return nil, err
	}

	if err := s.IssueQuiz(ctx, userID, quiz); err != nil {
		return nil, err
	}

	return quiz, nil
}

// IssueQuiz overwrites the user's pending quiz.
func (s *SelectionService) IssueQuiz(ctx context.Context, userID string, quiz *entities.Quiz) error {
	pending := &entities.PendingQuiz{
		UserID:   userID,
		QuizID:   quiz.ID,
		IssuedAt: s.clock.Now(),
	}
	if err := s.state.SetPendingQuiz(ctx, pending); err != nil {
		return fmt.Errorf("issue quiz: %w", err)
	}
	return nil
}

// NextReview consumes the head of the review queue. A lesson entry is delivered
// as a lesson pick, a quiz entry is issued as the pending quiz. Entries that no
// longer resolve in the catalog are dropped. Both results are nil when the queue is empty.
func (s *SelectionService) NextReview(ctx context.Context, userID string) (*entities.LessonPick, *entities.Quiz, error) {
	for {
		head, err := s.review.Head(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrReviewQueueEmpty) {
				return nil, nil, nil
			}
			return nil, nil, fmt.Errorf("get review head: %w", err)
		}

		if lesson, err := s.catalog.LessonByID(head.ItemID); err == nil {
			pick := &entities.LessonPick{Lesson: lesson, Review: head}
			if err := s.DeliverLesson(ctx, userID, pick); err != nil {
				return nil, nil, err
			}
			return pick, nil, nil
		}

		if err := s.review.Delete(ctx, head.ID); err != nil {
			return nil, nil, fmt.Errorf("consume review entry: %w", err)
		}

		if quiz, err := s.catalog.QuizByID(head.ItemID); err == nil {
			if err := s.IssueQuiz(ctx, userID, quiz); err != nil {
				return nil, nil, err
			}
			return nil, quiz, nil
		}
	}
}
