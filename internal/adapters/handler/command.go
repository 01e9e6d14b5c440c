package handler

import (
	"context"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type MessageRouter interface {
	Handle(ctx context.Context, message *domain.Message)
}

// Command turns Telegram updates into domain messages and hands them to the router. Messages of
// one chat are routed one after another in the order Handle receives them, chats run in parallel.
// Handle has to be called sequentially (bot.WithNotAsyncHandlers) for that order to be the
// arrival order.
type Command struct {
	router  MessageRouter
	sender  port.TextSender
	timeout time.Duration

	mu     sync.Mutex
	queues map[int64]*chatQueue
	wg     sync.WaitGroup
}

type processFunc func(ctx context.Context, message *domain.Message)

type queued struct {
	message *domain.Message
	process processFunc
}

type chatQueue struct {
	pending []queued
}

func NewCommand(router MessageRouter, sender port.TextSender, timeout time.Duration) *Command {
	return &Command{
		router:  router,
		sender:  sender,
		timeout: timeout,
		queues:  make(map[int64]*chatQueue),
	}
}

const textOnly = "Please use text messages only."

func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	message, ok := toMessage(update)
	if !ok {
		log.Debug().Int64("updateId", update.ID).Msg("ignoring unsupported update")
		return
	}

	l := log.With().
		Int64("chatId", message.ChatID).
		Int64("userId", message.UserID).
		Str("username", message.Username).
		Logger()

	if message.IsCallback() {
		l.Info().Str("data", message.Text).Msg("button pressed")

		ackCtx, cancel := context.WithTimeout(ctx, c.timeout)
		if err := c.sender.AnswerCallback(ackCtx, message); err != nil {
			l.Warn().Err(err).Msg("failed to answer callback")
		}
		cancel()
	} else {
		l.Info().Str("text", message.Text).Msg("received message")
	}

	if message.Text == "" {
		c.enqueue(ctx, message, c.rejectNonText)
		return
	}

	c.enqueue(ctx, message, c.router.Handle)
}

// Wait blocks until every queued message has been processed.
func (c *Command) Wait() {
	c.wg.Wait()
}

func (c *Command) rejectNonText(ctx context.Context, message *domain.Message) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.sender.SendMessage(ctx, message, textOnly); err != nil {
		log.Err(err).Int64("chatId", message.ChatID).Msg("failed to send text only notice")
	}
}

func (c *Command) enqueue(ctx context.Context, message *domain.Message, process processFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, running := c.queues[message.ChatID]
	if !running {
		q = &chatQueue{}
		c.queues[message.ChatID] = q
	}
	q.pending = append(q.pending, queued{message: message, process: process})

	if running {
		return
	}

	c.wg.Add(1)
	go c.drain(ctx, message.ChatID, q)
}

// drain processes the queue of one chat until it is empty, then forgets the chat.
func (c *Command) drain(ctx context.Context, chatID int64, q *chatQueue) {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		if len(q.pending) == 0 {
			delete(c.queues, chatID)
			c.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		c.mu.Unlock()

		next.process(ctx, next.message)
	}
}

func toMessage(update *models.Update) (*domain.Message, bool) {
	switch {
	case update.Message != nil:
		m := update.Message
		message := &domain.Message{
			ID:     m.ID,
			ChatID: m.Chat.ID,
			Text:   m.Text,
		}
		if m.From != nil {
			message.UserID = m.From.ID
			message.Username = getUserNameOrFirstName(m.From)
		}
		return message, true
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		message := &domain.Message{
			CallbackID: q.ID,
			Text:       q.Data,
			UserID:     q.From.ID,
			Username:   getUserNameOrFirstName(&q.From),
			ChatID:     q.From.ID,
		}
		switch {
		case q.Message.Message != nil:
			message.ChatID = q.Message.Message.Chat.ID
			message.ID = q.Message.Message.ID
		case q.Message.InaccessibleMessage != nil:
			message.ChatID = q.Message.InaccessibleMessage.Chat.ID
			message.ID = q.Message.InaccessibleMessage.MessageID
		}
		return message, true
	default:
		return nil, false
	}
}

func getUserNameOrFirstName(user *models.User) string {
	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
