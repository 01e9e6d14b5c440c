package command

import (
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"strings"

	"github.com/rs/zerolog/log"
)

type Registry struct {
	commands map[string]port.Command
}

func (r *Registry) Register(handler port.Command) {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	log.Info().Str("handler", handler.GetCommand()).Msg("adding command handler to registry")
	r.commands[handler.GetCommand()] = handler
}

func (r *Registry) Get(command string) (port.Command, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	if r.commands == nil {
		return nil, domain.ErrRegistryNotInitialized
	}

	handler, ok := r.commands[command]
	if !ok {
		return nil, domain.ErrCommandNotFound
	}

	return handler, nil
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.commands))

	i := 0
	for k := range r.commands {
		keys[i] = k
		i++
	}

	return keys
}

func ParseCommandArgs(args string) string {
	command := strings.Fields(args)
	if len(command) < 2 {
		return ""
	}
	return strings.Join(command[1:], " ")
}

func ParseCommand(args string) string {
	command := strings.Fields(args)
	if len(command) == 0 {
		return ""
	}
	return strings.ToLower(command[0])
}
