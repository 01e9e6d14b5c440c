package command

import (
	"context"
	"errors"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"innbot/internal/core/service"
	"time"

	"github.com/rs/zerolog/log"
)

type BatchLooker interface {
	LookupAll(ctx context.Context, batch domain.IdentifierBatch, emit service.EmitFunc) error
}

type LookupParams struct {
	Looker     BatchLooker
	Quota      service.Quota
	TextSender port.TextSender
	Command    string
}

// Lookup prompts for tax identifiers and, once they arrive, reports one message per company.
type Lookup struct {
	looker     BatchLooker
	quota      service.Quota
	textSender port.TextSender
	command    string
}

func NewLookup(p LookupParams) *Lookup {
	return &Lookup{
		looker:     p.Looker,
		quota:      p.Quota,
		textSender: p.TextSender,
		command:    p.Command,
	}
}

const (
	lookupPrompt = "Send me one or more tax IDs (INN) separated by spaces or commas, " +
		"for example: 7719286104, 7720675962"
	invalidInput = "That doesn't look like a list of tax IDs. Please send digits only, " +
		"separated by spaces or commas."
	lookupDone     = "Anything else I can help you with? /help"
	foundTemplate  = "Tax ID: %s\nShort name: %s\nFull name: %s\nAddress: %s"
	notFoundFormat = "No company found for tax ID %s."
)

const notifyTimeout = 10 * time.Second

func (c *Lookup) GetCommand() string {
	return c.command
}

func (c *Lookup) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	_, err := c.textSender.SendMessage(ctx, message, lookupPrompt)
	if err != nil {
		return fmt.Errorf("failed to send prompt: %w", err)
	}

	return nil
}

func (c *Lookup) Collect(ctx context.Context, timeout time.Duration, message *domain.Message) (bool, error) {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", c.GetCommand()).
		Logger()

	batch, err := domain.ParseIdentifiers(message.Text)
	if err != nil {
		l.Debug().Str("input", message.Text).Msg("rejected identifier input")

		_, err = c.textSender.SendMessage(ctx, message, invalidInput)
		if err != nil {
			return false, fmt.Errorf("failed to send correction: %w", err)
		}
		return false, nil
	}

	l.Info().Int("identifiers", batch.Len()).Msg("handling request")

	if c.quota != nil {
		if !c.quota.CheckLimit(ctx, message, batch.Len()) {
			l.Debug().Msg("lookup limit reached")
			return true, nil
		}
		c.quota.AddUsage(message.ChatID, batch.Len())
	}

	// Only single fetches and single sends are bounded. The batch runs until every identifier has
	// been reported.
	err = c.looker.LookupAll(ctx, batch, func(ctx context.Context, outcome domain.LookupOutcome) error {
		return c.send(ctx, timeout, message, FormatOutcome(outcome))
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			defer cancel()
			_ = c.textSender.NotifyAndReturnError(notifyCtx, err, message)
		}
		return true, fmt.Errorf("batch lookup failed: %w", err)
	}

	err = c.send(ctx, timeout, message, lookupDone)
	if err != nil {
		return true, fmt.Errorf("failed to send closing message: %w", err)
	}

	return true, nil
}

func (c *Lookup) send(ctx context.Context, timeout time.Duration, message *domain.Message, text string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	_, err := c.textSender.SendMessage(ctx, message, text)
	return err
}

// FormatOutcome renders an outcome as the chat message delivered for one identifier.
func FormatOutcome(outcome domain.LookupOutcome) string {
	if !outcome.Found {
		return fmt.Sprintf(notFoundFormat, outcome.Identifier)
	}

	return fmt.Sprintf(foundTemplate,
		outcome.Identifier,
		outcome.Company.ShortName,
		outcome.Company.FullName,
		outcome.Company.Address)
}
