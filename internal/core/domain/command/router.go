package command

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"innbot/internal/core/service"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	notUnderstood  = "Sorry, I didn't understand that."
	noPriorCommand = "There is no previous command to repeat yet."
)

type RouterParams struct {
	Registry   port.CommandRegistry
	TextSender port.TextSender
	Store      *service.ConversationStore
	Auth       service.Authorizer
	Metrics    port.Metrics
	Timeout    time.Duration
}

// Router is the per-conversation state machine. A conversation is either idle, in which case
// messages are matched against the command vocabulary, or waiting for the input of a pending
// command, in which case the message goes to that command unmatched.
type Router struct {
	registry   port.CommandRegistry
	textSender port.TextSender
	store      *service.ConversationStore
	auth       service.Authorizer
	metrics    port.Metrics
	timeout    time.Duration
}

func NewRouter(p RouterParams) *Router {
	if p.Store == nil {
		p.Store = service.NewConversationStore()
	}

	return &Router{
		registry:   p.Registry,
		textSender: p.TextSender,
		store:      p.Store,
		auth:       p.Auth,
		metrics:    p.Metrics,
		timeout:    p.Timeout,
	}
}

// Handle processes one inbound message to completion. Failures are logged and never escape,
// so one broken action can't take down the bot or touch other conversations.
func (r *Router) Handle(ctx context.Context, message *domain.Message) {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Bool("callback", message.IsCallback()).
		Logger()

	defer func() {
		if rec := recover(); rec != nil {
			l.Error().Interface("panic", rec).Msg("recovered while handling message")
		}
	}()

	if r.auth != nil && !r.auth.IsAuthorized(ctx, message) {
		l.Debug().Msg("not authorized")
		return
	}

	conv, release := r.store.Acquire(message.ChatID)
	defer release()

	if err := r.dispatch(ctx, &l, conv, message); err != nil {
		l.Err(err).Msg("failed to handle message")
	}
}

func (r *Router) dispatch(ctx context.Context, l *zerolog.Logger, conv *service.Conversation,
	message *domain.Message) error {
	if conv.AwaitingInput() {
		l.Debug().Str("pending", conv.Pending).Msg("routing message as command input")
		return r.collect(ctx, conv, conv.Pending, message)
	}

	if name, ok := domain.ResolveCommand(message.Text); ok {
		return r.execute(ctx, conv, name, message)
	}

	if strings.HasPrefix(strings.TrimSpace(message.Text), "/") {
		if name, ok := domain.ResolveCommand(ParseCommand(message.Text)); ok {
			return r.executeWithArgs(ctx, conv, name, message)
		}
	}

	l.Debug().Str("text", message.Text).Msg("no command matched")

	return r.fallback(ctx, message)
}

func (r *Router) execute(ctx context.Context, conv *service.Conversation, name string,
	message *domain.Message) error {
	if r.metrics != nil {
		r.metrics.CountCommand(name)
	}

	if name == domain.CommandRepeat {
		return r.repeat(ctx, conv, message)
	}

	cmd, err := r.registry.Get(name)
	if err != nil {
		return fmt.Errorf("no handler for command %s: %w", name, err)
	}

	if err := cmd.Respond(ctx, r.timeout, message); err != nil {
		return fmt.Errorf("command %s failed: %w", name, err)
	}

	conv.LastCommand = name
	if _, ok := cmd.(port.InputCollector); ok {
		conv.Pending = name
	}

	return nil
}

// executeWithArgs handles "/inn 7719286104" style messages: commands collecting input get the
// arguments directly instead of prompting, any other command ignores them.
func (r *Router) executeWithArgs(ctx context.Context, conv *service.Conversation, name string,
	message *domain.Message) error {
	args := ParseCommandArgs(message.Text)

	cmd, err := r.registry.Get(name)
	if err != nil || args == "" {
		return r.execute(ctx, conv, name, message)
	}

	if _, ok := cmd.(port.InputCollector); !ok {
		return r.execute(ctx, conv, name, message)
	}

	if r.metrics != nil {
		r.metrics.CountCommand(name)
	}

	input := *message
	input.Text = args

	conv.Pending = name
	return r.collect(ctx, conv, name, &input)
}

func (r *Router) collect(ctx context.Context, conv *service.Conversation, name string,
	message *domain.Message) error {
	cmd, err := r.registry.Get(name)
	if err != nil {
		conv.Pending = ""
		return fmt.Errorf("pending command %s vanished: %w", name, err)
	}

	collector, ok := cmd.(port.InputCollector)
	if !ok {
		conv.Pending = ""
		return fmt.Errorf("pending command %s does not collect input", name)
	}

	accepted, err := collector.Collect(ctx, r.timeout, message)
	if accepted {
		conv.Pending = ""
		conv.LastCommand = name
	}
	if err != nil {
		return fmt.Errorf("command %s failed to process input: %w", name, err)
	}

	return nil
}

// repeat replays the last executed command. Repeating nothing or repeating the repeat command
// itself is refused, which keeps replay from recursing.
func (r *Router) repeat(ctx context.Context, conv *service.Conversation, message *domain.Message) error {
	last := conv.LastCommand
	if last == "" || last == domain.CommandRepeat {
		_, err := r.textSender.SendMessage(ctx, message, noPriorCommand)
		if err != nil {
			return fmt.Errorf("error sending repeat response: %w", err)
		}
		return nil
	}

	replay := *message
	replay.Text = last

	return r.execute(ctx, conv, last, &replay)
}

func (r *Router) fallback(ctx context.Context, message *domain.Message) error {
	_, err := r.textSender.SendMessage(ctx, message, notUnderstood)
	if err != nil {
		return fmt.Errorf("error sending fallback response: %w", err)
	}

	help, err := r.registry.Get(domain.CommandHelp)
	if err != nil {
		return nil
	}

	return help.Respond(ctx, r.timeout, message)
}
