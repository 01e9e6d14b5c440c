package service

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// ConversationState is the router-owned state of one chat.
type ConversationState struct {
	// Pending holds the canonical name of the command waiting for input, empty when idle.
	Pending     string
	LastCommand string
}

func (s ConversationState) AwaitingInput() bool {
	return s.Pending != ""
}

type Conversation struct {
	ConversationState
	ChatID int64

	mu sync.Mutex
}

// ConversationStore keeps per-chat state in memory. State is lost on restart.
type ConversationStore struct {
	conversations map[int64]*Conversation
	mu            sync.Mutex
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{conversations: make(map[int64]*Conversation)}
}

// Acquire returns the conversation for chatID, creating it on first use, and holds its lock until
// the returned release func is called. Events of one chat are processed one at a time while
// different chats proceed independently.
func (s *ConversationStore) Acquire(chatID int64) (*Conversation, func()) {
	s.mu.Lock()
	conv, ok := s.conversations[chatID]
	if !ok {
		log.Trace().Int64("chatId", chatID).Msg("new conversation")
		conv = &Conversation{ChatID: chatID}
		s.conversations[chatID] = conv
	}
	s.mu.Unlock()

	conv.mu.Lock()
	return conv, conv.mu.Unlock
}
