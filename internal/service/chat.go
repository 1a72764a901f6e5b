package service

import (
	"context"
	"errors"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

const (
	statsWindowDays = 30
	weakAreasShown  = 3
)

// ChatService routes an inbound chat message to the matching action and
// returns the reply to render.
type ChatService struct {
	selection    *SelectionService
	quizzes      *QuizService
	progress     *ProgressService
	entitlements *EntitlementService
	assistant    *AssistantService
	billing      *BillingService
	clock        Clock
}

func NewChatService(
	selection *SelectionService,
	quizzes *QuizService,
	progress *ProgressService,
	entitlements *EntitlementService,
	assistant *AssistantService,
	billing *BillingService,
	clock Clock,
) *ChatService {
	return &ChatService{
		selection:    selection,
		quizzes:      quizzes,
		progress:     progress,
		entitlements: entitlements,
		assistant:    assistant,
		billing:      billing,
		clock:        clock,
	}
}

// Handle parses text and executes the command for userID.
func (s *ChatService) Handle(ctx context.Context, userID, text string) (*entities.Message, error) {
	cmd := entities.ParseCommand(text)

	switch cmd.Command {
	case entities.CommandHelp:
		return &entities.Message{Kind: entities.MsgHelp}, nil
	case entities.CommandProgress:
		return s.handleProgress(ctx, userID)
	case entities.CommandStats:
		return s.handleStats(ctx, userID)
	case entities.CommandWeak:
		return s.handleWeak(ctx, userID)
	case entities.CommandLevel:
		return s.handleLevel(ctx, userID)
	case entities.CommandLesson:
		return s.handleLesson(ctx, userID)
	case entities.CommandQuiz:
		return s.handleQuiz(ctx, userID)
	case entities.CommandReview:
		return s.handleReview(ctx, userID)
	case entities.CommandMotivation:
		return &entities.Message{Kind: entities.MsgMotivation}, nil
	case entities.CommandPremium:
		return s.handlePremium(ctx, userID)
	case entities.CommandPlan:
		return s.handlePlan(ctx, userID)
	case entities.CommandAnswer:
		return s.handleAnswer(ctx, userID, cmd.Answer)
	default:
		if cmd.Text == "" {
			return &entities.Message{Kind: entities.MsgHelp}, nil
		}
		return s.handleQuestion(ctx, userID, cmd.Text)
	}
}

func (s *ChatService) handleProgress(ctx context.Context, userID string) (*entities.Message, error) {
	p, err := s.progress.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgProgress, Progress: p}, nil
}

func (s *ChatService) handleStats(ctx context.Context, userID string) (*entities.Message, error) {
	stats, err := s.quizzes.Stats(ctx, userID, statsWindowDays)
	if err != nil {
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgStats, Stats: &stats}, nil
}

func (s *ChatService) handleWeak(ctx context.Context, userID string) (*entities.Message, error) {
	views, err := s.quizzes.WeakAreaViews(ctx, userID, entities.WeakAreaWindowDays, weakAreasShown)
	if err != nil {
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgWeakAreas, WeakAreas: views}, nil
}

func (s *ChatService) handleLevel(ctx context.Context, userID string) (*entities.Message, error) {
	level, err := s.progress.Level(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgLevel, Level: level}, nil
}

func (s *ChatService) handleLesson(ctx context.Context, userID string) (*entities.Message, error) {
	pick, err := s.selection.NextLesson(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoLessonAvailable) {
			return &entities.Message{Kind: entities.MsgNoLesson}, nil
		}
		return nil, err
	}

	if err := s.selection.DeliverLesson(ctx, userID, pick); err != nil {
		return nil, err
	}

	return &entities.Message{Kind: entities.MsgLesson, Lesson: pick.Lesson, Review: pick.Review}, nil
}

func (s *ChatService) handleQuiz(ctx context.Context, userID string) (*entities.Message, error) {
	quiz, err := s.selection.NextQuiz(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoQuizAvailable) {
			return &entities.Message{Kind: entities.MsgNoQuiz}, nil
		}
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgQuiz, Quiz: quiz}, nil
}

func (s *ChatService) handleReview(ctx context.Context, userID string) (*entities.Message, error) {
	pick, quiz, err := s.selection.NextReview(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pick != nil {
		return &entities.Message{Kind: entities.MsgLesson, Lesson: pick.Lesson, Review: pick.Review}, nil
	}
	if quiz != nil {
		return &entities.Message{Kind: entities.MsgReviewQuiz, Quiz: quiz}, nil
	}

	quiz, err = s.quizzes.ReviewQuiz(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoQuizAvailable) {
			return &entities.Message{Kind: entities.MsgNoReview}, nil
		}
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgReviewQuiz, Quiz: quiz}, nil
}

func (s *ChatService) handlePremium(ctx context.Context, userID string) (*entities.Message, error) {
	plan, err := s.entitlements.ResolvePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	if plan.IsPremium() {
		url, err := s.billing.PortalURL(ctx, userID)
		if err != nil && !errors.Is(err, ErrPaymentsDisabled) {
			return nil, err
		}
		return &entities.Message{Kind: entities.MsgPremiumManage, Plan: &plan, URL: url}, nil
	}

	url, err := s.billing.CheckoutURL(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrPaymentsDisabled) {
			return &entities.Message{Kind: entities.MsgPaymentUnavailable}, nil
		}
		return nil, err
	}
	return &entities.Message{Kind: entities.MsgPremiumOffer, Plan: &plan, URL: url}, nil
}

func (s *ChatService) handlePlan(ctx context.Context, userID string) (*entities.Message, error) {
	plan, err := s.entitlements.ResolvePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	quota, err := s.entitlements.CheckQuota(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return &entities.Message{Kind: entities.MsgPlan, Plan: &plan, Quota: &quota}, nil
}

func (s *ChatService) handleAnswer(ctx context.Context, userID, digit string) (*entities.Message, error) {
	outcome, err := s.quizzes.SubmitAnswer(ctx, userID, digit)
	if err != nil {
		if errors.Is(err, ErrInvalidAnswer) {
			return &entities.Message{Kind: entities.MsgInvalidAnswer}, nil
		}
		return nil, err
	}

	if outcome.Status == entities.AnswerNoActiveQuiz {
		return &entities.Message{Kind: entities.MsgNoActiveQuiz}, nil
	}
	return &entities.Message{Kind: entities.MsgAnswerResult, Outcome: outcome, Quiz: outcome.Quiz}, nil
}

func (s *ChatService) handleQuestion(ctx context.Context, userID, question string) (*entities.Message, error) {
	res, err := s.assistant.Ask(ctx, userID, question)
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case AskAnswered:
		return &entities.Message{Kind: entities.MsgAIAnswer, Text: res.Answer, Quota: &res.Quota}, nil
	case AskModerated:
		return &entities.Message{Kind: entities.MsgModerated}, nil
	case AskQuotaExceeded:
		return &entities.Message{Kind: entities.MsgQuotaExceeded, Quota: &res.Quota}, nil
	default:
		return &entities.Message{Kind: entities.MsgAIUnavailable}, nil
	}
}
