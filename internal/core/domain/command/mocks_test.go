package command

import (
	"context"
	"innbot/internal/core/domain"
	"innbot/internal/core/service"
	"sync"
)

type sent struct {
	chatID   int64
	text     string
	keyboard domain.Keyboard
}

type MockTextSender struct {
	mu       sync.Mutex
	messages []sent
	err      error
	notified []error
	answered []string
}

func (m *MockTextSender) SendMessage(_ context.Context, message *domain.Message, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sent{chatID: message.ChatID, text: text})
	return len(m.messages), m.err
}

func (m *MockTextSender) SendMessageWithKeyboard(_ context.Context, message *domain.Message, text string,
	keyboard domain.Keyboard) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sent{chatID: message.ChatID, text: text, keyboard: keyboard})
	return len(m.messages), m.err
}

func (m *MockTextSender) AnswerCallback(_ context.Context, message *domain.Message) error {
	m.answered = append(m.answered, message.CallbackID)
	return nil
}

func (m *MockTextSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	m.notified = append(m.notified, err)
	return err
}

func (m *MockTextSender) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	for i, msg := range m.messages {
		out[i] = msg.text
	}
	return out
}

func (m *MockTextSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

type MockLooker struct {
	outcomes map[string]domain.LookupOutcome
	calls    []domain.IdentifierBatch
	err      error
}

func (m *MockLooker) LookupAll(ctx context.Context, batch domain.IdentifierBatch, emit service.EmitFunc) error {
	m.calls = append(m.calls, batch)
	if m.err != nil {
		return m.err
	}

	for _, id := range batch.IDs() {
		outcome, ok := m.outcomes[id]
		if !ok {
			outcome = domain.NotFoundOutcome(id)
		}
		if err := emit(ctx, outcome); err != nil {
			return err
		}
	}

	return nil
}

type MockQuota struct {
	allow bool
	added int
}

func (m *MockQuota) CheckLimit(_ context.Context, _ *domain.Message, _ int) bool {
	return m.allow
}

func (m *MockQuota) AddUsage(_ int64, count int) {
	m.added += count
}
