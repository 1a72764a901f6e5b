package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/prompt-study-bot/internal/payment"
	"github.com/aliskhannn/prompt-study-bot/internal/scheduler"
	"github.com/aliskhannn/prompt-study-bot/internal/service"
)

type handler struct {
	deps   Deps
	logger *zap.Logger
}

type statusResponse struct {
	Jobs  []scheduler.JobInfo `json:"jobs"`
	Users []userView          `json:"users"`
}

type userView struct {
	ID             string `json:"id"`
	Tier           string `json:"tier"`
	CreatedAt      string `json:"created_at"`
	LastActivityAt string `json:"last_activity_at"`
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

// Health reports liveness.
func (h *handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// StripeWebhook verifies and applies a Stripe event. A non-2xx response makes
// Stripe retry the delivery.
func (h *handler) StripeWebhook(c *fiber.Ctx) error {
	if h.deps.Webhooks == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "payments not configured",
		})
	}

	event, err := h.deps.Webhooks.ParseWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("stripe webhook rejected", zap.Error(err))
		msg := "invalid payload"
		if errors.Is(err, payment.ErrInvalidSignature) {
			msg = "signature verification failed"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if err := h.deps.Entitlements.HandlePaymentEvent(c.UserContext(), event); err != nil {
		if errors.Is(err, service.ErrMissingUserReference) {
			h.logger.Warn("payment event without user reference", zap.String("event_id", event.ID))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.Error("failed to apply payment event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.ProviderType),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to process event",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// Status lists the scheduled jobs and the registered users.
func (h *handler) Status(c *fiber.Ctx) error {
	users, err := h.deps.Users.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{
			ID:             u.ID,
			Tier:           string(u.Tier),
			CreatedAt:      u.CreatedAt.Format(time.RFC3339),
			LastActivityAt: u.LastActivityAt.Format(time.RFC3339),
		})
	}

	return c.JSON(statusResponse{Jobs: h.deps.Jobs.Entries(), Users: views})
}

// RunJob triggers a scheduled job immediately and returns its report.
func (h *handler) RunJob(c *fiber.Ctx) error {
	report, err := h.deps.Jobs.Run(c.UserContext(), c.Params("name"))
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, scheduler.ErrUnknownJob) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report)
}

// SendLesson pushes the next lesson to one user.
func (h *handler) SendLesson(c *fiber.Ctx) error {
	return h.sendResult(c, h.deps.Dispatcher.SendLessonTo(c.UserContext(), c.Params("id")))
}

// SendQuiz pushes a quiz to one user.
func (h *handler) SendQuiz(c *fiber.Ctx) error {
	return h.sendResult(c, h.deps.Dispatcher.SendQuizTo(c.UserContext(), c.Params("id")))
}

// ActivatePremium grants premium without a payment.
func (h *handler) ActivatePremium(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Params("id")

	if _, err := h.deps.Users.EnsureUser(ctx, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	sub, err := h.deps.Entitlements.ActivateSubscription(ctx, userID, "manual_"+uuid.NewString(), "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"user_id":    userID,
		"plan":       sub.Plan,
		"expires_at": sub.ExpiresAt.Format(time.RFC3339),
	})
}

// SetTier overrides a user's tier.
func (h *handler) SetTier(c *fiber.Ctx) error {
	var req setTierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	tier, err := entities.ParseTier(req.Tier)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.deps.Users.SetTier(c.UserContext(), c.Params("id"), tier); err != nil {
		return h.userError(c, err)
	}

	return c.JSON(fiber.Map{"user_id": c.Params("id"), "tier": tier})
}

// ResetProgress clears a user's learning history.
func (h *handler) ResetProgress(c *fiber.Ctx) error {
	if err := h.deps.Users.Reset(c.UserContext(), c.Params("id")); err != nil {
		return h.userError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) sendResult(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "sent"})
	case service.IsNothingToSend(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "nothing to send"})
	default:
		return h.userError(c, err)
	}
}

func (h *handler) userError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	h.logger.Error("admin request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
