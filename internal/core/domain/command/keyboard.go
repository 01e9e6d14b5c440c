package command

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"time"
)

// Keyboard sends a fixed text with an attached keyboard.
type Keyboard struct {
	textSender port.TextSender
	text       string
	keyboard   domain.Keyboard
	command    string
}

// NewInlineKeyboard offers the main actions as inline buttons plus a link to the registry website.
func NewInlineKeyboard(sender port.TextSender, command, registryURL string) *Keyboard {
	return &Keyboard{
		textSender: sender,
		text:       "Here is the inline keyboard:",
		keyboard: domain.InlineKeyboard(
			[]domain.Button{
				{Label: "Open the registry", URL: registryURL},
				{Label: domain.LabelLookup, CallbackData: domain.CommandLookup},
			},
			[]domain.Button{
				{Label: domain.LabelHelp, CallbackData: domain.CommandHelp},
				{Label: domain.LabelHello, CallbackData: domain.CommandHello},
			},
			[]domain.Button{
				{Label: domain.LabelRepeat, CallbackData: domain.CommandRepeat},
			},
		),
		command: command,
	}
}

func NewReplyKeyboard(sender port.TextSender, command string) *Keyboard {
	return &Keyboard{
		textSender: sender,
		text:       "Here is the reply keyboard:",
		keyboard: domain.ReplyKeyboard(
			[]domain.Button{{Label: domain.LabelLookup}},
			[]domain.Button{{Label: domain.LabelHelp}, {Label: domain.LabelHello}},
			[]domain.Button{{Label: domain.LabelRepeat}, {Label: domain.LabelHide}},
		),
		command: command,
	}
}

func NewHideKeyboard(sender port.TextSender, command string) *Keyboard {
	return &Keyboard{
		textSender: sender,
		text:       "Keyboard hidden. Send /reply to bring it back.",
		keyboard:   domain.RemoveKeyboard(),
		command:    command,
	}
}

func (k *Keyboard) GetCommand() string {
	return k.command
}

func (k *Keyboard) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	_, err := k.textSender.SendMessageWithKeyboard(ctx, message, k.text, k.keyboard)
	if err != nil {
		return fmt.Errorf("failed to send keyboard: %w", err)
	}

	return nil
}
