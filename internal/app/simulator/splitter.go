package simulator

import (
	"strings"

	"github.com/PabloGalante/zap-agent/internal/app/prompt"
)

// FallbackReply is shown whenever a turn would otherwise produce no
// visible bubble. The simulator never leaves a sent message unanswered.
const FallbackReply = "Desculpe, não consegui processar a resposta."

// Split cuts a raw model reply into its intended bubbles: segments
// around the literal ||| separator, whitespace-trimmed, empties
// dropped. A reply that is empty after trimming yields exactly one
// fallback bubble.
func Split(raw string) []string {
	parts := strings.Split(raw, prompt.Separator)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return []string{FallbackReply}
	}
	return out
}
