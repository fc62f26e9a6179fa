package memory

import (
	"sync"

	"github.com/PabloGalante/zap-agent/internal/domain"
)

// AgentStore keeps agent configurations in memory. Configuration
// lifecycle is owned by the operator's editing session; durable
// persistence is out of scope.
type AgentStore struct {
	mu     sync.RWMutex
	agents map[domain.AgentID]*domain.AgentConfig
	order  []domain.AgentID
}

func NewAgentStore() *AgentStore {
	return &AgentStore{
		agents: make(map[domain.AgentID]*domain.AgentConfig),
	}
}

func (s *AgentStore) CreateAgent(cfg *domain.AgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[cfg.ID]; exists {
		return domain.ErrAgentExists
	}

	s.agents[cfg.ID] = cfg
	s.order = append(s.order, cfg.ID)
	return nil
}

func (s *AgentStore) UpdateAgent(cfg *domain.AgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[cfg.ID]; !exists {
		return domain.ErrAgentNotFound
	}

	s.agents[cfg.ID] = cfg
	return nil
}

func (s *AgentStore) GetAgent(id domain.AgentID) (*domain.AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return cfg, nil
}

// ListAgents returns agents in creation order.
func (s *AgentStore) ListAgents() ([]*domain.AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AgentConfig, 0, len(s.order))
	for _, id := range s.order {
		if cfg, ok := s.agents[id]; ok {
			result = append(result, cfg)
		}
	}
	return result, nil
}

func (s *AgentStore) DeleteAgent(id domain.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[id]; !exists {
		return domain.ErrAgentNotFound
	}

	delete(s.agents, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
