package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// userKey converts a Telegram user id into the opaque user identifier.
func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// chatIDFromUser converts an opaque user identifier back into a private chat id.
func chatIDFromUser(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram user id %q: %w", userID, err)
	}
	return id, nil
}

// truncate shortens s to n runes and marks the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// buildMessage renders text and keyboard into a message config.
func buildMessage(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) tgbotapi.MessageConfig {
	msg := newPlainMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	return msg
}
