package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/zap-agent/internal/domain"
	"github.com/PabloGalante/zap-agent/internal/observability"
	"google.golang.org/genai"
)

// Fallback strings returned by fail-soft sends. Anything a session
// returns is display-safe and goes straight into the conversation.
const (
	emptyReply     = "Desculpe, não consegui processar a resposta."
	transportReply = "Ocorreu um erro ao conectar com a IA. (Verifique sua conexão ou chave API)."
)

// GeminiChatService implements domain.ChatService on the Gemini API.
type GeminiChatService struct {
	client    *genai.Client
	modelName string
}

// NewGeminiChatService creates the service client. The API key is the
// one required credential: without it the service cannot start.
func NewGeminiChatService(ctx context.Context, apiKey, modelName string) (*GeminiChatService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", domain.ErrConfiguration)
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", domain.ErrServiceUnavailable, err)
	}

	return &GeminiChatService{
		client:    client,
		modelName: modelName,
	}, nil
}

// Open creates a stateful chat bound to the compiled prompt. The seed
// history carries attached media inline; the web-search flag maps to
// the Google Search grounding tool.
func (g *GeminiChatService) Open(ctx context.Context, compiled domain.CompiledPrompt) (domain.ChatSession, error) {
	temp := float32(0.7)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(compiled.SystemInstruction, genai.RoleUser),
		Temperature:       &temp,
	}
	if compiled.WebSearchEnabled {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	chat, err := g.client.Chats.Create(ctx, g.modelName, cfg, toGenaiHistory(compiled.SeedHistory))
	if err != nil {
		return nil, fmt.Errorf("%w: creating chat session: %v", domain.ErrServiceUnavailable, err)
	}

	return &geminiSession{chat: chat}, nil
}

// geminiSession holds the handle of one live conversation. The
// conversation memory itself lives on the Gemini side.
type geminiSession struct {
	chat *genai.Chat
}

// Send forwards the user turn and returns the reply text. Failures are
// swallowed into an apology string: the conversational UX degrades
// instead of crashing the caller.
func (s *geminiSession) Send(ctx context.Context, userText string) string {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: userText})
	if err != nil {
		observability.LoggerFromContext(ctx).Error("gemini send failed", "error", err)
		return transportReply
	}

	text := resp.Text()
	if text == "" {
		return emptyReply
	}
	return text
}

func toGenaiHistory(turns []domain.Turn) []*genai.Content {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Role == domain.TurnModel {
			role = genai.RoleModel
		}

		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			if p.Blob != nil {
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: p.Blob.MIMEType, Data: p.Blob.Data},
				})
				continue
			}
			parts = append(parts, &genai.Part{Text: p.Text})
		}

		history = append(history, genai.NewContentFromParts(parts, role))
	}
	return history
}
