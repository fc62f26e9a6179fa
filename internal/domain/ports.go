package domain

import "context"

// ChatService opens stateful conversations against the LLM service.
type ChatService interface {
	// Open creates a new session bound to one compiled prompt. It fails
	// with ErrServiceUnavailable when the LLM service cannot be reached
	// and ErrConfiguration when the service credential is absent.
	Open(ctx context.Context, prompt CompiledPrompt) (ChatSession, error)
}

// ChatSession is one live conversation. Conversation memory lives
// inside the LLM service; the session holds only a handle.
//
// Send is fail-soft: on transport or model failure it returns a
// user-safe apology string instead of an error, so any returned text is
// display-safe. Callers must serialize sends: at most one Send may be
// in flight per session.
type ChatSession interface {
	Send(ctx context.Context, userText string) string
}

// AgentStore holds agent configurations. The current backend is
// in-memory; durable persistence is out of scope.
type AgentStore interface {
	CreateAgent(cfg *AgentConfig) error
	UpdateAgent(cfg *AgentConfig) error
	GetAgent(id AgentID) (*AgentConfig, error)
	ListAgents() ([]*AgentConfig, error)
	DeleteAgent(id AgentID) error
}

// MessageLog keeps the ephemeral simulator transcript per agent.
type MessageLog interface {
	Append(msg *Message) error
	List(agentID AgentID) ([]*Message, error)
	Clear(agentID AgentID) error
}
