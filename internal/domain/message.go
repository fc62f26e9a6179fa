package domain

// Message is one bubble in the simulator transcript (user or bot).
// Messages are ephemeral: they live only for the current simulator
// session and are discarded when the session resets.
type Message struct {
	ID        MessageID
	AgentID   AgentID
	Sender    Sender
	Text      string
	Timestamp Timestamp
	Status    MessageStatus
}
