package command

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
)

type Start struct {
	textSender port.TextSender
	command    string
}

func NewStart(sender port.TextSender, command string) *Start {
	return &Start{textSender: sender, command: command}
}

func (s *Start) GetCommand() string {
	return s.command
}

const greeting = `Welcome%s!
I am the company-by-INN informer. Send me one or more tax IDs and I will find the name and address of each company.

First, pick a keyboard:
/inline - buttons under the message
/reply - buttons instead of the keyboard`

func (s *Start) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", s.GetCommand()).
		Msg("handling request")

	var name string
	if message.Username != "" {
		name = ", " + message.Username
	}

	_, err := s.textSender.SendMessage(ctx, message, fmt.Sprintf(greeting, name))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
