// Package bridge renders the source of the always-on Node.js process
// that connects an Evolution API webhook to the same compile/send/split
// pipeline the simulator runs. The code is emitted as text for the
// operator to deploy externally; it is never executed here.
package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/PabloGalante/zap-agent/internal/app/prompt"
	"github.com/PabloGalante/zap-agent/internal/domain"
)

// Placeholders keep the generated file runnable-looking even before the
// operator has filled in gateway credentials.
const (
	placeholderURL      = "https://api.seuzap.com"
	placeholderAPIKey   = "SUA_API_KEY_DA_EVOLUTION"
	placeholderInstance = "nome_da_instancia"
)

// defaultDelayMillis is the typing-simulation delay sent to the
// gateway when the agent has no configured response delay range.
const defaultDelayMillis = 1500

const serverTemplate = `// server.js - O CÉREBRO (Middleware)
// Este servidor recebe mensagens do WhatsApp (via Webhook) e envia para o Gemini.
// Hospede gratuitamente no Render.com ou Replit.

const express = require('express');
const axios = require('axios');
const { GoogleGenAI } = require('@google/genai');
const app = express();
app.use(express.json());

// --- SUAS CREDENCIAIS ---
const GEMINI_API_KEY = process.env.API_KEY || "SUA_KEY_DO_GOOGLE_AISTUDIO";

// CONFIGURAÇÃO EVOLUTION API
const EVOLUTION_URL = '{{.EvolutionURL}}';
const EVOLUTION_API_KEY = '{{.EvolutionAPIKey}}';
const INSTANCE_NAME = '{{.InstanceName}}';

const ai = new GoogleGenAI({ apiKey: GEMINI_API_KEY });

const SYSTEM_INSTRUCTION = {{.SystemInstructionJS}};

// Rota que recebe as mensagens do WhatsApp
// O WhatsApp "bate" aqui sempre que chega mensagem nova
app.post('/webhook', async (req, res) => {
  try {
    const data = req.body;
    console.log("Evento recebido:", data.event);

    // Validação básica para EvolutionAPI v2
    if (data.event !== 'messages.upsert') return res.sendStatus(200);
    const msg = data.data;

    // Ignora mensagens enviadas pelo próprio bot ou grupos
    if (!msg || msg.key.fromMe || msg.key.remoteJid.includes('@g.us')) return res.sendStatus(200);

    const remoteJid = msg.key.remoteJid;
    const text = msg.message.conversation || msg.message.extendedTextMessage?.text;

    if (!text) return res.sendStatus(200);

    // 1. Enviar para o Google Gemini
    // Nota: Em produção, armazene o histórico de chat para manter o contexto
    const chat = ai.chats.create({
        model: "gemini-2.5-flash",
        config: {
            systemInstruction: SYSTEM_INSTRUCTION,
            tools: [{{.SearchTool}}]
        }
    });
    const result = await chat.sendMessage({ message: text });

    // 2. Processar resposta (suporte a balões separados)
    const replies = result.text.split('|||');

    // 3. Enviar de volta para o WhatsApp
    for (const reply of replies) {
        if (!reply.trim()) continue;
        await axios.post(EVOLUTION_URL + '/message/sendText/' + INSTANCE_NAME, {
            number: remoteJid.replace('@s.whatsapp.net', ''),
            text: reply.trim(),
            delay: {{.DelayMillis}}
        }, { headers: { 'apikey': EVOLUTION_API_KEY } });
    }
  } catch (e) {
    console.error("Erro:", e.message);
  }
  res.sendStatus(200);
});

app.listen(3000, () => console.log('Cérebro rodando na porta 3000'));
`

var serverTmpl = template.Must(template.New("server.js").Parse(serverTemplate))

type templateData struct {
	EvolutionURL        string
	EvolutionAPIKey     string
	InstanceName        string
	SystemInstructionJS string
	SearchTool          string
	DelayMillis         int
}

// Generate renders the bridge server source for one agent. The system
// instruction is re-derived with the same compiler the simulator uses
// and embedded as a literal, so the deployed bridge behaves exactly
// like the simulated agent (media seed history excluded: attachments
// cannot be interpolated into source text).
func Generate(cfg *domain.AgentConfig) (string, error) {
	compiled := prompt.Compile(cfg)

	instruction, err := json.Marshal(compiled.SystemInstruction)
	if err != nil {
		return "", fmt.Errorf("encoding system instruction: %w", err)
	}

	searchTool := ""
	if compiled.WebSearchEnabled {
		searchTool = "{ googleSearch: {} }"
	}

	data := templateData{
		EvolutionURL:        orDefault(cfg.EvolutionURL, placeholderURL),
		EvolutionAPIKey:     orDefault(cfg.EvolutionAPIKey, placeholderAPIKey),
		InstanceName:        orDefault(cfg.EvolutionInstanceName, placeholderInstance),
		SystemInstructionJS: string(instruction),
		SearchTool:          searchTool,
		DelayMillis:         delayMillis(cfg),
	}

	var b strings.Builder
	if err := serverTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering bridge template: %w", err)
	}
	return b.String(), nil
}

// delayMillis derives the gateway typing-simulation delay from the
// configured response delay range: the midpoint of the range in
// milliseconds. The range is a hint only; nothing validates min <= max.
func delayMillis(cfg *domain.AgentConfig) int {
	if cfg.ResponseDelayMin <= 0 && cfg.ResponseDelayMax <= 0 {
		return defaultDelayMillis
	}
	return (cfg.ResponseDelayMin + cfg.ResponseDelayMax) * 1000 / 2
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
