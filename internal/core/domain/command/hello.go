package command

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Hello tells who built the bot. The text is assembled from the creator section of the config.
type Hello struct {
	textSender port.TextSender
	command    string
}

func NewHello(sender port.TextSender, command string) *Hello {
	return &Hello{textSender: sender, command: command}
}

func (h *Hello) GetCommand() string {
	return h.command
}

const creatorUnknown = "Looks like I can't remember anything about my creator 🤔\n" +
	"Don't worry, my memory is being fixed 😂"

var creatorKeys = []string{"creator.name", "creator.about", "creator.email", "creator.telegram", "creator.github"}

func (h *Hello) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", h.GetCommand()).
		Logger()

	text, ok := creatorInfo()
	if !ok {
		l.Warn().Msg("creator info missing from config")
		text = creatorUnknown
	}

	_, err := h.textSender.SendMessage(ctx, message, text)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func creatorInfo() (string, bool) {
	lines := make([]string, 0, len(creatorKeys))

	for _, key := range creatorKeys {
		value := strings.TrimSpace(viper.GetString(key))
		if value != "" {
			lines = append(lines, value)
		}
	}

	if len(lines) == 0 {
		return "", false
	}

	return strings.Join(lines, "\n"), true
}
