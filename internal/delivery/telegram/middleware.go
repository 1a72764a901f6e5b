package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc processes one inbound interaction for a chat.
type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling logs failures and panics under the given operation name
// and replies with a generic error.
func (h *Handler) withErrorHandling(op string, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err != nil {
				h.logger.Error("handle error",
					zap.String("op", op),
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
				h.sendError(chatID, msgInternalError)
			}
		}()
		return fn(ctx, chatID)
	}
}
