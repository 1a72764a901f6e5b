package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCallback maps inline button presses onto chat commands.
func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer h.answerCallback(cb.ID)

	if cb.Message == nil || cb.From == nil {
		return
	}

	data := decodeCallback(cb.Data)

	var text string
	switch data.Action {
	case actionAnswer:
		text = data.param(0)
		// An answered quiz keeps its text but loses its buttons.
		edit := tgbotapi.NewEditMessageReplyMarkup(
			cb.Message.Chat.ID,
			cb.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
		)
		if _, err := h.bot.Request(edit); err != nil {
			h.logger.Debug("failed to clear quiz keyboard", zap.Error(err))
		}
	case actionCommand:
		text = data.param(0)
	default:
		h.logger.Debug("unknown callback", zap.String("data", data.Raw))
		return
	}

	if text == "" {
		return
	}

	userID := userKey(cb.From.ID)
	if _, err := h.userService.EnsureUser(ctx, userID); err != nil {
		h.logger.Error("failed to ensure user",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	_ = h.withErrorHandling("callback", h.chatHandler(userID, text))(ctx, cb.Message.Chat.ID)
}

// answerCallback removes the loading indicator on the pressed button.
func (h *Handler) answerCallback(id string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}
