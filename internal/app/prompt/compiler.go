// Package prompt turns an agent configuration into the system
// instruction, seed history and tool flags consumed by a chat session.
// Compilation is pure: no I/O, no mutation, same input same output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/zap-agent/internal/domain"
)

// Separator is the literal token the model is told to place between
// intended message bubbles. The splitter and the generated bridge cut
// replies on the same token.
const Separator = "|||"

const (
	docHeaderFormat = "--- DOCUMENTO DE REFERÊNCIA: %s ---"
	docFooter       = "--- FIM DO DOCUMENTO ---"

	knowledgeHeader = "BASE DE CONHECIMENTO (TEXTO):"
	websitesHeader  = "SITES OFICIAIS DA EMPRESA (Use a ferramenta de busca para verificar informações nestes links se necessário):"
	examplesHeader  = "EXEMPLOS DE COMPORTAMENTO (Siga este padrão de resposta):"

	mediaSeedNote = "Aqui estão os documentos visuais, catálogos e manuais (PDF/Imagens) da empresa. Use o conteúdo destes arquivos como sua fonte primária."
	mediaSeedAck  = "Entendido. Analisei os arquivos visuais e PDFs fornecidos."

	defaultMediaMIMEType = "application/pdf"
)

const directivesFormat = `INSTRUÇÕES TÉCNICAS E DE ESTILO (CRUCIAL):
1. Responda como se estivesse no WhatsApp.
2. **MENSAGENS MÚLTIPLAS**: Se for natural para a conversa, você PODE e DEVE enviar mais de uma mensagem curta em vez de um texto longo. Para fazer isso, separe as frases estritamente com o símbolo "|||".
   Exemplo: "Olá, boa tarde! ||| Como posso te ajudar hoje?"
3. Tamanho máximo da resposta (total): Tente manter abaixo de %d caracteres somando todas as partes.
4. NUNCA invente informações. Use APENAS a Base de Conhecimento fornecida, os Sites listados e os Arquivos visuais/PDFs anexados.
5. Se a informação não estiver nos documentos, peça para o humano intervir ou diga que não sabe.
6. **IDIOMA**: Detecte e responda no idioma do usuário.`

// Compile builds the complete prompt for one agent configuration.
//
// Section order is fixed: identity, technical directives, the author's
// free-text instructions, few-shot examples, grounding websites,
// textual knowledge base. Author instructions come before the examples
// so the examples read as illustrations of stated policy, not
// overrides to it. Empty lists omit their section entirely.
func Compile(cfg *domain.AgentConfig) domain.CompiledPrompt {
	textDocs, mediaDocs := partitionDocuments(cfg.Documents)

	sections := []string{
		identitySection(cfg),
		fmt.Sprintf(directivesFormat, cfg.MaxResponseLength),
	}
	if s := strings.TrimSpace(cfg.SystemInstructions); s != "" {
		sections = append(sections, s)
	}
	if s := examplesSection(cfg.Name, cfg.Examples); s != "" {
		sections = append(sections, s)
	}
	if s := websitesSection(cfg.Websites); s != "" {
		sections = append(sections, s)
	}
	if s := knowledgeSection(textDocs); s != "" {
		sections = append(sections, s)
	}

	return domain.CompiledPrompt{
		SystemInstruction: strings.Join(sections, "\n\n"),
		SeedHistory:       seedHistory(mediaDocs),
		WebSearchEnabled:  len(cfg.Websites) > 0,
	}
}

// partitionDocuments splits the list into text-bearing documents and
// binary media, preserving list order within each group.
func partitionDocuments(docs []domain.KnowledgeDocument) (text, media []domain.KnowledgeDocument) {
	for _, d := range docs {
		if d.IsText() {
			text = append(text, d)
		} else {
			media = append(media, d)
		}
	}
	return text, media
}

func identitySection(cfg *domain.AgentConfig) string {
	// Names are substituted verbatim; quotes are not escaped.
	return fmt.Sprintf(
		"Você é %s, um assistente de IA para a empresa %s.\nSeu papel é: %s.\nSeu tom de voz deve ser: %s.",
		cfg.Name, cfg.CompanyName, cfg.Role, cfg.Tone,
	)
}

// examplesSection renders the few-shot pairs in list order, each as a
// literal user/agent exchange the model is told to imitate.
func examplesSection(agentName string, examples []domain.TrainingExample) string {
	if len(examples) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(examplesHeader)
	for _, ex := range examples {
		// Verbatim substitution: quotes inside queries or responses are
		// not escaped.
		b.WriteString("\nUsuário: \"" + ex.UserQuery + "\"\n" + agentName + ": \"" + ex.AgentResponse + "\"")
	}
	return b.String()
}

func websitesSection(websites []string) string {
	if len(websites) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(websitesHeader)
	for _, url := range websites {
		b.WriteString("\n- ")
		b.WriteString(url)
	}
	return b.String()
}

// knowledgeSection concatenates the text-bearing documents, each
// wrapped in a named header/footer marker so the model can attribute
// facts to their source. No size cap is applied here; oversized
// knowledge is rejected upstream at the configuration boundary.
func knowledgeSection(docs []domain.KnowledgeDocument) string {
	if len(docs) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, fmt.Sprintf(docHeaderFormat, d.Name)+"\n"+d.Text+"\n"+docFooter)
	}
	return knowledgeHeader + "\n" + strings.Join(blocks, "\n\n")
}

// seedHistory builds the synthetic two-turn exchange that carries
// binary media into the session: one prior user turn with every media
// document inline plus a trailing note, and one prior model turn
// acknowledging receipt. Prepending it lets the model reference the
// attachments in every later turn without resending them.
func seedHistory(media []domain.KnowledgeDocument) []domain.Turn {
	if len(media) == 0 {
		return nil
	}

	parts := make([]domain.Part, 0, len(media)+1)
	for _, d := range media {
		mime := d.MIMEType
		if mime == "" {
			mime = defaultMediaMIMEType
		}
		parts = append(parts, domain.Part{Blob: &domain.Blob{MIMEType: mime, Data: d.Data}})
	}
	parts = append(parts, domain.Part{Text: mediaSeedNote})

	return []domain.Turn{
		{Role: domain.TurnUser, Parts: parts},
		{Role: domain.TurnModel, Parts: []domain.Part{{Text: mediaSeedAck}}},
	}
}
