// Package httpapi serves the payment webhook, the health check and the admin routes.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services behind the routes. Webhooks may be nil when payments
// are not configured.
type Deps struct {
	Webhooks     WebhookParser
	Entitlements EntitlementService
	Users        UserService
	Dispatcher   Dispatcher
	Jobs         JobRunner
}

// Server is the Fiber application.
type Server struct {
	app    *fiber.App
	addr   string
	logger *zap.Logger
}

// NewServer registers every route. An empty adminToken leaves the admin group unmounted.
func NewServer(addr, adminToken string, deps Deps, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	h := &handler{deps: deps, logger: logger}

	app.Get("/health", h.Health)
	app.Post("/webhook/stripe", h.StripeWebhook)

	if adminToken != "" {
		admin := app.Group("/admin", AdminAuth(adminToken))
		admin.Get("/status", h.Status)
		admin.Post("/jobs/:name/run", h.RunJob)
		admin.Post("/users/:id/lesson", h.SendLesson)
		admin.Post("/users/:id/quiz", h.SendQuiz)
		admin.Post("/users/:id/premium", h.ActivatePremium)
		admin.Put("/users/:id/tier", h.SetTier)
		admin.Delete("/users/:id/progress", h.ResetProgress)
	} else {
		logger.Warn("admin token not set, admin routes disabled")
	}

	return &Server{app: app, addr: addr, logger: logger}
}

// App exposes the Fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", s.addr))
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

// requestLogger logs every request with zap.
func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var e *fiber.Error
			if errors.As(err, &e) {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		logger.Info("http request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
