package memory

import (
	"sync"

	"github.com/PabloGalante/zap-agent/internal/domain"
)

// MessageLog keeps the ephemeral simulator transcript per agent.
// Transcripts are wiped whenever a session resets.
type MessageLog struct {
	mu       sync.RWMutex
	messages map[domain.AgentID][]*domain.Message
}

func NewMessageLog() *MessageLog {
	return &MessageLog{
		messages: make(map[domain.AgentID][]*domain.Message),
	}
}

func (l *MessageLog) Append(msg *domain.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages[msg.AgentID] = append(l.messages[msg.AgentID], msg)
	return nil
}

func (l *MessageLog) List(agentID domain.AgentID) ([]*domain.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	msgs := l.messages[agentID]
	return append([]*domain.Message(nil), msgs...), nil
}

func (l *MessageLog) Clear(agentID domain.AgentID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.messages, agentID)
	return nil
}
