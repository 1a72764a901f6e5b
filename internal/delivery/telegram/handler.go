package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot         Bot
	logger      *zap.Logger
	userService UserService
	chatService ChatService
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	userService UserService,
	chatService ChatService,
) *Handler {
	return &Handler{
		bot:         bot,
		logger:      logger,
		userService: userService,
		chatService: chatService,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", text),
	)

	chatID := update.Message.Chat.ID
	userID := userKey(update.Message.From.ID)

	created, err := h.userService.EnsureUser(ctx, userID)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	if created {
		h.send(newPlainMessage(chatID, msgWelcome))
	}

	_ = h.withErrorHandling("message", h.chatHandler(userID, text))(ctx, chatID)
}

// chatHandler routes text through the chat service and sends the rendered reply.
func (h *Handler) chatHandler(userID, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		reply, err := h.chatService.Handle(ctx, userID, text)
		if err != nil {
			return err
		}

		body, kb := Render(*reply)
		h.send(buildMessage(chatID, body, kb))
		return nil
	}
}

func (h *Handler) sendError(chatID int64, text string) {
	h.send(newPlainMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
