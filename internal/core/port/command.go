package port

import (
	"context"
	"innbot/internal/core/domain"
	"time"
)

type Command interface {
	// Respond processes a given message within a specified timeout and responds to the originating chat.
	Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error
	// GetCommand retrieves the canonical command name associated with a specific command handler.
	GetCommand() string
}

// InputCollector is a Command that expects the next message of the conversation to be its input.
type InputCollector interface {
	Command
	// Collect consumes a follow-up message. It returns false when the input was rejected and the
	// conversation should keep waiting for input.
	Collect(ctx context.Context, timeout time.Duration, message *domain.Message) (bool, error)
}

type CommandRegistry interface {
	// Register adds a new command handler to the command registry.
	Register(handler Command)
	// Get retrieves a registered Command based on its canonical name or returns an error if not found.
	Get(command string) (Command, error)
	// ListCommands returns a list of all command identifiers currently registered in the command registry.
	ListCommands() []string
}
