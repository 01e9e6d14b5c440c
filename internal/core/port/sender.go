package port

import (
	"context"
	"innbot/internal/core/domain"
)

type TextSender interface {
	// SendMessage sends text to the chat the message originates from and returns the sent message ID.
	SendMessage(ctx context.Context, message *domain.Message, text string) (int, error)
	// SendMessageWithKeyboard sends text together with an inline or reply keyboard, or removes the
	// current reply keyboard.
	SendMessageWithKeyboard(ctx context.Context, message *domain.Message, text string,
		keyboard domain.Keyboard) (int, error)
	// AnswerCallback acknowledges an inline button press so the client stops showing a spinner.
	AnswerCallback(ctx context.Context, message *domain.Message) error
	// NotifyAndReturnError sends a generic failure notice to the chat and returns the error.
	NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error
}
