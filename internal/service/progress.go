package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

const levelWindowDays = 30

// ProgressService builds progress, level and summary views.
type ProgressService struct {
	users   UserRepository
	history LessonHistoryRepository
	results QuizResultRepository
	clock   Clock
}

func NewProgressService(
	users UserRepository,
	history LessonHistoryRepository,
	results QuizResultRepository,
	clock Clock,
) *ProgressService {
	return &ProgressService{
		users:   users,
		history: history,
		results: results,
		clock:   clock,
	}
}

// Progress returns total and weekly lesson counts and all-time quiz accuracy.
func (s *ProgressService) Progress(ctx context.Context, userID string) (*entities.Progress, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	total, err := s.history.CountSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	weekly, err := s.history.CountSince(ctx, userID, s.clock.DaysAgo(7))
	if err != nil {
		return nil, err
	}

	stats, err := s.results.Stats(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	return &entities.Progress{
		Tier:          user.Tier,
		TotalLessons:  total,
		WeeklyLessons: weekly,
		Quiz:          stats,
	}, nil
}

// Level returns the user's tier and the number of lessons received in the last 30 days.
func (s *ProgressService) Level(ctx context.Context, userID string) (*entities.LevelInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	recent, err := s.history.CountSince(ctx, userID, s.clock.DaysAgo(levelWindowDays))
	if err != nil {
		return nil, err
	}

	return &entities.LevelInfo{Tier: user.Tier, RecentLessons: recent}, nil
}
