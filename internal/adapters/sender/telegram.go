package sender

import (
	"context"
	"errors"
	"fmt"
	"innbot/internal/core/domain"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const TelegramMessageLimit = 4096

const genericFailure = "Something went wrong on my side, please try again later."

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type Telegram struct {
	bot TelegramBot
}

func NewTelegram(bot TelegramBot) *Telegram {
	return &Telegram{bot: bot}
}

func (s *Telegram) SendMessage(ctx context.Context, message *domain.Message, text string) (int, error) {
	return s.send(ctx, message, text, nil)
}

func (s *Telegram) SendMessageWithKeyboard(ctx context.Context, message *domain.Message, text string,
	keyboard domain.Keyboard) (int, error) {
	return s.send(ctx, message, text, toReplyMarkup(keyboard))
}

// send splits text into chunks Telegram accepts. The keyboard is attached to the last chunk.
func (s *Telegram) send(ctx context.Context, message *domain.Message, text string,
	markup models.ReplyMarkup) (int, error) {
	chunks := chunkText(text, TelegramMessageLimit)

	var lastID int
	for i, chunk := range chunks {
		params := &bot.SendMessageParams{
			ChatID: message.ChatID,
			Text:   chunk,
		}
		if i == len(chunks)-1 && markup != nil {
			params.ReplyMarkup = markup
		}

		sent, err := s.bot.SendMessage(ctx, params)
		if err != nil {
			log.Error().Err(err).Int64("chatId", message.ChatID).Msg("failed to send message")
			return 0, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}
		if sent != nil {
			lastID = sent.ID
		}
	}

	return lastID, nil
}

func (s *Telegram) AnswerCallback(ctx context.Context, message *domain.Message) error {
	if !message.IsCallback() {
		return nil
	}

	_, err := s.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: message.CallbackID,
	})
	if err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}

	return nil
}

// NotifyAndReturnError tells the chat that something failed without exposing details and
// returns err, or a joined error when the notice itself can't be delivered.
func (s *Telegram) NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error {
	log.Err(err).Int64("chatId", message.ChatID).Msg("notifying chat about failure")

	_, sendErr := s.SendMessage(ctx, message, genericFailure)
	if sendErr != nil {
		return errors.Join(err, sendErr)
	}

	return err
}

func toReplyMarkup(keyboard domain.Keyboard) models.ReplyMarkup {
	switch keyboard.Kind {
	case domain.KeyboardInline:
		rows := make([][]models.InlineKeyboardButton, len(keyboard.Rows))
		for i, row := range keyboard.Rows {
			rows[i] = make([]models.InlineKeyboardButton, len(row))
			for j, button := range row {
				rows[i][j] = models.InlineKeyboardButton{
					Text:         button.Label,
					URL:          button.URL,
					CallbackData: button.CallbackData,
				}
			}
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	case domain.KeyboardReply:
		rows := make([][]models.KeyboardButton, len(keyboard.Rows))
		for i, row := range keyboard.Rows {
			rows[i] = make([]models.KeyboardButton, len(row))
			for j, button := range row {
				rows[i][j] = models.KeyboardButton{Text: button.Label}
			}
		}
		return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
	case domain.KeyboardRemove:
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	default:
		return nil
	}
}

func chunkText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > 0 {
		n := min(limit, len(runes))
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}

	return chunks
}
