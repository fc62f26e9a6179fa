package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/zap-agent/internal/domain"
)

// ReplyFunc produces a mock reply from the session's compiled prompt
// and the incoming user text.
type ReplyFunc func(prompt domain.CompiledPrompt, userText string) string

// MockChatService is an in-process stand-in for the Gemini service,
// used in tests and local development without an API key. Each opened
// session remembers its own compiled prompt and history, so tests can
// check that no conversation state crosses session boundaries.
type MockChatService struct {
	mu     sync.Mutex
	reply  ReplyFunc
	opened []domain.CompiledPrompt
}

func NewMockChatService() *MockChatService {
	return &MockChatService{
		reply: func(_ domain.CompiledPrompt, userText string) string {
			return fmt.Sprintf("Recebi sua mensagem: %q. ||| Como posso ajudar?", userText)
		},
	}
}

// SetReply overrides the canned reply for subsequent sends.
func (m *MockChatService) SetReply(fn ReplyFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = fn
}

// OpenedPrompts returns the compiled prompts of every session opened so
// far, in order.
func (m *MockChatService) OpenedPrompts() []domain.CompiledPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CompiledPrompt(nil), m.opened...)
}

func (m *MockChatService) Open(_ context.Context, prompt domain.CompiledPrompt) (domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, prompt)
	return &mockSession{svc: m, prompt: prompt}, nil
}

type mockSession struct {
	svc     *MockChatService
	prompt  domain.CompiledPrompt
	history []string
}

func (s *mockSession) Send(_ context.Context, userText string) string {
	s.svc.mu.Lock()
	reply := s.svc.reply
	s.svc.mu.Unlock()

	s.history = append(s.history, userText)
	return reply(s.prompt, userText)
}
