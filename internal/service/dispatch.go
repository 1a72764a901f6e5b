package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

const reengagementAfterDays = 7

// errNothingToSend marks a user that was skipped on purpose.
var errNothingToSend = errors.New("nothing to send")

// Dispatcher runs scheduled broadcasts over every registered user.
// Users are processed sequentially and a failure for one user never stops the batch.
type Dispatcher struct {
	users     UserRepository
	selection *SelectionService
	quizzes   *QuizService
	progress  *ProgressService
	notifier  Notifier
	clock     Clock
	throttle  time.Duration
	sleep     func(time.Duration)
	logger    *zap.Logger
}

func NewDispatcher(
	users UserRepository,
	selection *SelectionService,
	quizzes *QuizService,
	progress *ProgressService,
	notifier Notifier,
	clock Clock,
	throttle time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		users:     users,
		selection: selection,
		quizzes:   quizzes,
		progress:  progress,
		notifier:  notifier,
		clock:     clock,
		throttle:  throttle,
		sleep:     time.Sleep,
		logger:    logger,
	}
}

// SendLessons sends the slot greeting and the next lesson to every user.
func (d *Dispatcher) SendLessons(ctx context.Context, slot entities.LessonSlot) (*entities.DispatchReport, error) {
	return d.forEachUser(ctx, "lesson_"+string(slot), func(ctx context.Context, u *entities.User) error {
		if err := d.notifier.Notify(ctx, u.ID, entities.Message{Kind: entities.MsgSlotIntro, Slot: slot}); err != nil {
			return fmt.Errorf("send intro: %w", err)
		}
		return d.SendLessonTo(ctx, u.ID)
	})
}

// SendQuizzes issues a tier quiz to every user.
func (d *Dispatcher) SendQuizzes(ctx context.Context) (*entities.DispatchReport, error) {
	return d.forEachUser(ctx, "weekly_quiz", func(ctx context.Context, u *entities.User) error {
		return d.SendQuizTo(ctx, u.ID)
	})
}

// SendSummaries pushes the weekly progress summary to every user.
func (d *Dispatcher) SendSummaries(ctx context.Context) (*entities.DispatchReport, error) {
	return d.forEachUser(ctx, "weekly_summary", func(ctx context.Context, u *entities.User) error {
		p, err := d.progress.Progress(ctx, u.ID)
		if err != nil {
			return err
		}
		return d.notifier.Notify(ctx, u.ID, entities.Message{Kind: entities.MsgSummary, Progress: p})
	})
}

// SendReviewReminders queues weak areas for review, then sends a review quiz to
// users whose recent accuracy is low.
func (d *Dispatcher) SendReviewReminders(ctx context.Context) (*entities.DispatchReport, error) {
	return d.forEachUser(ctx, "review_reminder", func(ctx context.Context, u *entities.User) error {
		if _, err := d.quizzes.AddWeakAreasToReview(ctx, u.ID); err != nil {
			return err
		}

		due, err := d.quizzes.ShouldSendReviewQuiz(ctx, u.ID)
		if err != nil {
			return err
		}
		if !due {
			return errNothingToSend
		}

		quiz, err := d.quizzes.ReviewQuiz(ctx, u.ID)
		if err != nil {
			if errors.Is(err, ErrNoQuizAvailable) {
				return errNothingToSend
			}
			return err
		}

		return d.notifier.Notify(ctx, u.ID, entities.Message{Kind: entities.MsgReviewQuiz, Quiz: quiz})
	})
}

// SendReengagement nudges users that have been inactive for a week.
func (d *Dispatcher) SendReengagement(ctx context.Context) (*entities.DispatchReport, error) {
	cutoff := d.clock.DaysAgo(reengagementAfterDays)
	return d.forEachUser(ctx, "reengagement", func(ctx context.Context, u *entities.User) error {
		if !u.InactiveSince(cutoff) {
			return errNothingToSend
		}
		return d.notifier.Notify(ctx, u.ID, entities.Message{Kind: entities.MsgReengagement})
	})
}

// SendLessonTo delivers the next lesson to a single user.
func (d *Dispatcher) SendLessonTo(ctx context.Context, userID string) error {
	pick, err := d.selection.NextLesson(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoLessonAvailable) {
			return errNothingToSend
		}
		return err
	}

	msg := entities.Message{Kind: entities.MsgLesson, Lesson: pick.Lesson, Review: pick.Review}
	if err := d.notifier.Notify(ctx, userID, msg); err != nil {
		return fmt.Errorf("send lesson: %w", err)
	}

	return d.selection.DeliverLesson(ctx, userID, pick)
}

// SendQuizTo issues and delivers a quiz to a single user.
func (d *Dispatcher) SendQuizTo(ctx context.Context, userID string) error {
	quiz, err := d.selection.NextQuiz(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoQuizAvailable) {
			return errNothingToSend
		}
		return err
	}

	return d.notifier.Notify(ctx, userID, entities.Message{Kind: entities.MsgQuiz, Quiz: quiz})
}

// IsNothingToSend reports whether a manual send had no content for the user.
func IsNothingToSend(err error) bool {
	return errors.Is(err, errNothingToSend)
}

func (d *Dispatcher) forEachUser(
	ctx context.Context,
	job string,
	fn func(ctx context.Context, u *entities.User) error,
) (*entities.DispatchReport, error) {
	report := &entities.DispatchReport{Job: job, StartedAt: d.clock.Now()}

	users, err := d.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for i, u := range users {
		if i > 0 && d.throttle > 0 {
			d.sleep(d.throttle)
		}

		report.Attempted++
		err := fn(ctx, u)
		switch {
		case err == nil:
			report.Delivered++
		case errors.Is(err, errNothingToSend):
			report.Skipped++
		default:
			report.Failed++
			d.logger.Error("dispatch failed for user",
				zap.String("job", job),
				zap.String("user_id", u.ID),
				zap.Error(err),
			)
		}
	}

	report.FinishedAt = d.clock.Now()
	d.logger.Info("dispatch finished",
		zap.String("job", job),
		zap.Int("attempted", report.Attempted),
		zap.Int("delivered", report.Delivered),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}
