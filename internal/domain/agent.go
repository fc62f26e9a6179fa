package domain

import "strings"

// DocumentType distinguishes pasted text from uploaded files.
type DocumentType string

const (
	DocumentText DocumentType = "text"
	DocumentFile DocumentType = "file"
)

// KnowledgeDocument is one grounding source attached to an agent.
// Content is a tagged variant: text-bearing documents carry Text,
// binary media (PDFs, images) carry Data plus its MIMEType. Base64 is
// an HTTP-boundary representation only and never reaches this type.
type KnowledgeDocument struct {
	ID         string
	Name       string
	Type       DocumentType
	MIMEType   string
	UploadDate Timestamp

	Text string
	Data []byte
}

// IsText reports whether the document content goes into the textual
// knowledge block. Uploaded files with a text/* MIME type count as text;
// everything else is media and travels as inline binary.
func (d KnowledgeDocument) IsText() bool {
	return d.Type == DocumentText || strings.HasPrefix(d.MIMEType, "text/")
}

// TrainingExample is one few-shot pair teaching response style.
// Example order is significant: pairs are presented to the model in
// list order.
type TrainingExample struct {
	ID            string
	UserQuery     string
	AgentResponse string
}

// AgentConfig is the full configuration of one AI persona. It is the
// compilation input for the prompt compiler, which never mutates it.
type AgentConfig struct {
	ID           AgentID
	LastModified Timestamp

	Name        string
	CompanyName string
	Role        string
	Tone        string

	SystemInstructions string
	MaxResponseLength  int // soft budget in characters, across all bubbles

	// Typing-simulation hint in seconds, forwarded to the generated
	// bridge. Min <= Max is expected but not enforced.
	ResponseDelayMin int
	ResponseDelayMax int

	Documents []KnowledgeDocument
	Examples  []TrainingExample
	Websites  []string

	IntegrationType       IntegrationType
	EvolutionURL          string
	EvolutionAPIKey       string
	EvolutionInstanceName string
}

// NewDefaultAgent returns the template used for freshly created agents.
func NewDefaultAgent(id AgentID, now Timestamp) *AgentConfig {
	return &AgentConfig{
		ID:                 id,
		LastModified:       now,
		Name:               "Novo Assistente",
		CompanyName:        "Minha Empresa",
		Role:               "Atendente Virtual",
		Tone:               "Profissional e Formal",
		SystemInstructions: "Responda dúvidas sobre a empresa.",
		MaxResponseLength:  200,
		ResponseDelayMin:   1,
		ResponseDelayMax:   3,
		IntegrationType:    IntegrationEvolution,
	}
}
