package telegram

import (
	"context"
	"fmt"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

// Notifier pushes scheduled and payment messages to private chats.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Notify renders msg and sends it to the user's private chat.
func (n *Notifier) Notify(ctx context.Context, userID string, msg entities.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := chatIDFromUser(userID)
	if err != nil {
		return err
	}

	text, kb := Render(msg)
	if _, err := n.sender.Send(buildMessage(chatID, text, kb)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
