package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/config"
	"github.com/aliskhannn/prompt-study-bot/internal/delivery/httpapi"
	"github.com/aliskhannn/prompt-study-bot/internal/delivery/telegram"
	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/gpt"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/prompt-study-bot/internal/logger"
	"github.com/aliskhannn/prompt-study-bot/internal/payment"
	"github.com/aliskhannn/prompt-study-bot/internal/repository"
	"github.com/aliskhannn/prompt-study-bot/internal/scheduler"
	"github.com/aliskhannn/prompt-study-bot/internal/service"
)

var botCommands = []tgbotapi.BotCommand{
	{Command: "lesson", Description: "今日のレッスンを受け取る"},
	{Command: "quiz", Description: "クイズに挑戦する"},
	{Command: "review", Description: "復習する"},
	{Command: "progress", Description: "学習の進捗を見る"},
	{Command: "stats", Description: "クイズの統計を見る"},
	{Command: "weak", Description: "苦手分野を見る"},
	{Command: "level", Description: "現在のレベルを見る"},
	{Command: "plan", Description: "プランと残り質問数を見る"},
	{Command: "premium", Description: "プレミアムプランについて"},
	{Command: "help", Description: "ヘルプ"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		lg.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Fatal("database not configured", zap.Error(err))
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.MigrateUp(dsn); err != nil {
			lg.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	catalog, err := repository.LoadCatalog(cfg.Content.LessonsPath, cfg.Content.QuizzesPath)
	if err != nil {
		lg.Fatal("failed to load content catalog", zap.Error(err))
	}

	// Repositories.
	userRepo := pgrepo.NewUserRepository(pool)
	historyRepo := pgrepo.NewLessonHistoryRepository(pool)
	resultRepo := pgrepo.NewQuizResultRepository(pool)
	reviewRepo := pgrepo.NewReviewQueueRepository(pool)
	stateRepo := pgrepo.NewUserStateRepository(pool)
	questionRepo := pgrepo.NewQuestionRepository(pool)
	subscriptionRepo := pgrepo.NewSubscriptionRepository(pool)
	resetRepo := pgrepo.NewResetRepository(pool)

	clock := service.NewClock(loc, nil)

	// External providers. Interfaces stay nil when a provider is not configured.
	var (
		paymentProvider service.PaymentProvider
		webhooks        httpapi.WebhookParser
		completer       service.Completer
	)
	if cfg.Stripe.SecretKey != "" {
		stripeClient := payment.NewStripeClient(payment.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			PriceID:       cfg.Stripe.PriceID,
			AppURL:        cfg.Stripe.AppURL,
		})
		paymentProvider = stripeClient
		webhooks = stripeClient
	} else {
		lg.Warn("stripe secret key not set, payments disabled")
	}
	if cfg.OpenAI.APIKey != "" {
		completer = gpt.NewClient(cfg.OpenAI.APIKey).
			WithModel(cfg.OpenAI.Model).
			WithMaxTokens(cfg.OpenAI.MaxTokens)
	} else {
		lg.Warn("openai api key not set, ai answers disabled")
	}

	// Services.
	userService := service.NewUserService(userRepo, resetRepo, clock)
	entitlementService := service.NewEntitlementService(subscriptionRepo, questionRepo, cfg.Quota.Limits(), clock, lg)
	selectionService := service.NewSelectionService(userRepo, historyRepo, reviewRepo, stateRepo, catalog, clock)
	quizService := service.NewQuizService(userRepo, resultRepo, reviewRepo, stateRepo, catalog, selectionService, clock, lg)
	progressService := service.NewProgressService(userRepo, historyRepo, resultRepo, clock)
	assistantService := service.NewAssistantService(service.NewModerator(), entitlementService, completer, clock, lg)
	billingService := service.NewBillingService(paymentProvider, subscriptionRepo)
	chatService := service.NewChatService(
		selectionService,
		quizService,
		progressService,
		entitlementService,
		assistantService,
		billingService,
		clock,
	)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create telegram bot", zap.Error(err))
	}
	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on telegram", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	notifier := telegram.NewNotifier(bot)
	entitlementService.SetNotifier(notifier)

	dispatcher := service.NewDispatcher(
		userRepo,
		selectionService,
		quizService,
		progressService,
		notifier,
		clock,
		cfg.Scheduler.Throttle,
		lg,
	)

	sched := scheduler.New(loc, lg)
	registerJobs(sched, cfg.Scheduler.Jobs, dispatcher, lg)

	server := httpapi.NewServer(cfg.HTTP.Addr, cfg.HTTP.AdminToken, httpapi.Deps{
		Webhooks:     webhooks,
		Entitlements: entitlementService,
		Users:        userService,
		Dispatcher:   dispatcher,
		Jobs:         sched,
	}, lg)

	handler := telegram.NewHandler(bot, lg, userService, chatService)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		sched.Start(ctx)
	}()

	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			lg.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	go func() {
		defer wg.Done()
		if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			lg.Error("telegram handler failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received")
	wg.Wait()
}

// registerJobs binds each configured job name to its broadcast. Unknown names
// are logged and skipped.
func registerJobs(s *scheduler.Scheduler, specs map[string]string, d *service.Dispatcher, lg *zap.Logger) {
	jobs := map[string]scheduler.JobFunc{
		"lesson_morning": func(ctx context.Context) (*entities.DispatchReport, error) {
			return d.SendLessons(ctx, entities.SlotMorning)
		},
		"lesson_afternoon": func(ctx context.Context) (*entities.DispatchReport, error) {
			return d.SendLessons(ctx, entities.SlotAfternoon)
		},
		"lesson_evening": func(ctx context.Context) (*entities.DispatchReport, error) {
			return d.SendLessons(ctx, entities.SlotEvening)
		},
		"weekly_quiz":     d.SendQuizzes,
		"weekly_summary":  d.SendSummaries,
		"review_reminder": d.SendReviewReminders,
		"reengagement":    d.SendReengagement,
	}

	for name, spec := range specs {
		fn, ok := jobs[name]
		if !ok {
			lg.Warn("unknown job in config", zap.String("job", name))
			continue
		}
		if err := s.Register(name, spec, fn); err != nil {
			lg.Fatal("failed to register job", zap.String("job", name), zap.Error(err))
		}
	}
}
