package domain

// TurnRole is the author of a seed-history turn.
type TurnRole string

const (
	TurnUser  TurnRole = "user"
	TurnModel TurnRole = "model"
)

// Blob is inline binary media (PDF pages, images) sent to the model.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one piece of a turn: either text or inline media.
type Part struct {
	Text string
	Blob *Blob
}

// Turn is one synthetic conversation turn in the seed history.
type Turn struct {
	Role  TurnRole
	Parts []Part
}

// CompiledPrompt is the output of compiling an AgentConfig: everything
// a chat session needs to be opened against the LLM service.
type CompiledPrompt struct {
	SystemInstruction string
	SeedHistory       []Turn
	WebSearchEnabled  bool
}
