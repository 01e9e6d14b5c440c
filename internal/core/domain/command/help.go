package command

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"time"
)

type Help struct {
	textSender port.TextSender
	command    string
}

func NewHelp(sender port.TextSender, command string) *Help {
	return &Help{textSender: sender, command: command}
}

func (h *Help) GetCommand() string {
	return h.command
}

const helpText = `Available commands:

/inline - inline keyboard
/reply - reply keyboard
/hide - hide the reply keyboard
/help - this list
/hello - about my creator
/inn - name and address of one or more companies by tax ID (INN)
/last - repeat the last command`

func (h *Help) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	_, err := h.textSender.SendMessage(ctx, message, helpText)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
