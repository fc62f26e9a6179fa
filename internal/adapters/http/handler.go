package httpadapter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/PabloGalante/zap-agent/internal/app/bridge"
	"github.com/PabloGalante/zap-agent/internal/app/simulator"
	"github.com/PabloGalante/zap-agent/internal/domain"
	"github.com/PabloGalante/zap-agent/internal/identity"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// maxKnowledgeChars caps the total text-bearing document content of one
// agent. The prompt compiler itself never truncates; oversized
// knowledge is rejected here, at the configuration boundary, before it
// can exceed the LLM service's input limits.
const maxKnowledgeChars = 500_000

type Server struct {
	agents domain.AgentStore
	sim    *simulator.Service
	now    func() time.Time
}

// Options tune cross-cutting behavior of the HTTP surface.
type Options struct {
	RequireAuth bool
	CORSOrigin  string
}

func NewServer(agents domain.AgentStore, sim *simulator.Service, opts Options) http.Handler {
	s := &Server{agents: agents, sim: sim, now: time.Now}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(withLogging)
	r.Use(withCORS(opts.CORSOrigin))
	r.Use(identity.Middleware(opts.RequireAuth))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/agents", func(r chi.Router) {
		r.Get("/", s.handleListAgents)
		r.Post("/", s.handleCreateAgent)

		r.Route("/{agentID}", func(r chi.Router) {
			r.Get("/", s.handleGetAgent)
			r.Put("/", s.handleUpdateAgent)
			r.Delete("/", s.handleDeleteAgent)

			r.Post("/session", s.handleResetSession)
			r.Post("/messages", s.handleSendMessage)
			r.Get("/messages", s.handleTranscript)
			r.Get("/bridge", s.handleBridgeCode)
			r.Get("/ws", s.handleChatSocket)
		})
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type documentPayload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"` // plain text, or base64 for binary media
	Type       string    `json:"type"`
	MimeType   string    `json:"mime_type,omitempty"`
	UploadDate time.Time `json:"upload_date"`
}

type examplePayload struct {
	ID            string `json:"id"`
	UserQuery     string `json:"user_query"`
	AgentResponse string `json:"agent_response"`
}

type agentPayload struct {
	ID                 string            `json:"id"`
	LastModified       time.Time         `json:"last_modified"`
	Name               string            `json:"name"`
	CompanyName        string            `json:"company_name"`
	Role               string            `json:"role"`
	Tone               string            `json:"tone"`
	SystemInstructions string            `json:"system_instructions"`
	MaxResponseLength  int               `json:"max_response_length"`
	ResponseDelayMin   int               `json:"response_delay_min"`
	ResponseDelayMax   int               `json:"response_delay_max"`
	Documents          []documentPayload `json:"documents"`
	Examples           []examplePayload  `json:"examples"`
	Websites           []string          `json:"websites"`

	IntegrationType       string `json:"integration_type"`
	EvolutionURL          string `json:"evolution_url,omitempty"`
	EvolutionAPIKey       string `json:"evolution_api_key,omitempty"`
	EvolutionInstanceName string `json:"evolution_instance_name,omitempty"`
}

type messagePayload struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage messagePayload   `json:"user_message"`
	Bubbles     []messagePayload `json:"bubbles"`
}

type transcriptResponse struct {
	Messages []messagePayload `json:"messages"`
}

// ─────────────────────────────────────────────
// Agent CRUD
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	agents, err := s.agents.ListAgents()
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]agentPayload, 0, len(agents))
	for _, a := range agents {
		out = append(out, toAgentPayload(a))
	}
	writeJSON(w, http.StatusOK, map[string][]agentPayload{"agents": out})
}

// handleCreateAgent creates an agent from the request body, or from the
// default template when the body is empty.
func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	id := domain.AgentID(uuid.NewString())

	var payload agentPayload
	err := json.NewDecoder(r.Body).Decode(&payload)
	switch {
	case errors.Is(err, io.EOF):
		// Empty body: create from the default template.
		cfg := domain.NewDefaultAgent(id, now)
		if err := s.agents.CreateAgent(cfg); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAgentPayload(cfg))
		return
	case err != nil:
		badRequest(w, "invalid JSON body")
		return
	}

	cfg, errMsg := toDomainAgent(&payload, id, now)
	if errMsg != "" {
		badRequestStatus(w, errMsg)
		return
	}

	if err := s.agents.CreateAgent(cfg); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgentPayload(cfg))
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.agents.GetAgent(agentIDParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentPayload(cfg))
}

// handleUpdateAgent saves a configuration snapshot and invalidates the
// agent's live session: edits must never bleed into an ongoing
// conversation compiled from the previous snapshot.
func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := agentIDParam(r)

	var payload agentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	cfg, errMsg := toDomainAgent(&payload, id, s.now())
	if errMsg != "" {
		badRequestStatus(w, errMsg)
		return
	}

	if err := s.agents.UpdateAgent(cfg); err != nil {
		writeError(w, err)
		return
	}

	s.sim.Invalidate(id)
	writeJSON(w, http.StatusOK, toAgentPayload(cfg))
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := agentIDParam(r)

	if err := s.agents.DeleteAgent(id); err != nil {
		writeError(w, err)
		return
	}

	s.sim.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Simulator
// ─────────────────────────────────────────────

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.ResetSession(r.Context(), agentIDParam(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.sim.SendMessage(r.Context(), agentIDParam(r), req.Text, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sendMessageResponse{
		UserMessage: toMessagePayload(out.UserMessage),
		Bubbles:     make([]messagePayload, 0, len(out.Bubbles)),
	}
	for _, b := range out.Bubbles {
		resp.Bubbles = append(resp.Bubbles, toMessagePayload(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.sim.Transcript(agentIDParam(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := transcriptResponse{Messages: make([]messagePayload, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toMessagePayload(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBridgeCode(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.agents.GetAgent(agentIDParam(r))
	if err != nil {
		writeError(w, err)
		return
	}

	code, err := bridge.Generate(cfg)
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(code))
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func agentIDParam(r *http.Request) domain.AgentID {
	return domain.AgentID(chi.URLParam(r, "agentID"))
}

// toDomainAgent validates and converts a payload. It returns a
// user-facing message on validation failure; oversized knowledge gets
// its own status (413) via badRequestStatus's prefix convention.
func toDomainAgent(p *agentPayload, id domain.AgentID, now time.Time) (*domain.AgentConfig, string) {
	cfg := &domain.AgentConfig{
		ID:                 id,
		LastModified:       now,
		Name:               p.Name,
		CompanyName:        p.CompanyName,
		Role:               p.Role,
		Tone:               p.Tone,
		SystemInstructions: p.SystemInstructions,
		MaxResponseLength:  p.MaxResponseLength,
		ResponseDelayMin:   p.ResponseDelayMin,
		ResponseDelayMax:   p.ResponseDelayMax,
		Websites:           p.Websites,

		IntegrationType:       domain.IntegrationEvolution,
		EvolutionURL:          p.EvolutionURL,
		EvolutionAPIKey:       p.EvolutionAPIKey,
		EvolutionInstanceName: p.EvolutionInstanceName,
	}
	if cfg.Name == "" {
		return nil, "name is required"
	}
	if cfg.MaxResponseLength <= 0 {
		return nil, "max_response_length must be positive"
	}

	totalText := 0
	for _, dp := range p.Documents {
		doc := domain.KnowledgeDocument{
			ID:         orNewID(dp.ID),
			Name:       dp.Name,
			Type:       domain.DocumentType(dp.Type),
			MIMEType:   dp.MimeType,
			UploadDate: dp.UploadDate,
		}
		if doc.Type != domain.DocumentText && doc.Type != domain.DocumentFile {
			return nil, "document type must be \"text\" or \"file\""
		}

		if doc.IsText() {
			doc.Text = dp.Content
			totalText += len(dp.Content)
		} else {
			data, err := base64.StdEncoding.DecodeString(dp.Content)
			if err != nil {
				return nil, "document " + dp.Name + ": content must be valid base64"
			}
			doc.Data = data
		}
		cfg.Documents = append(cfg.Documents, doc)
	}
	if totalText > maxKnowledgeChars {
		return nil, knowledgeTooLarge
	}

	for _, ep := range p.Examples {
		cfg.Examples = append(cfg.Examples, domain.TrainingExample{
			ID:            orNewID(ep.ID),
			UserQuery:     ep.UserQuery,
			AgentResponse: ep.AgentResponse,
		})
	}

	return cfg, ""
}

func toAgentPayload(cfg *domain.AgentConfig) agentPayload {
	p := agentPayload{
		ID:                 string(cfg.ID),
		LastModified:       cfg.LastModified,
		Name:               cfg.Name,
		CompanyName:        cfg.CompanyName,
		Role:               cfg.Role,
		Tone:               cfg.Tone,
		SystemInstructions: cfg.SystemInstructions,
		MaxResponseLength:  cfg.MaxResponseLength,
		ResponseDelayMin:   cfg.ResponseDelayMin,
		ResponseDelayMax:   cfg.ResponseDelayMax,
		Websites:           cfg.Websites,

		IntegrationType:       string(cfg.IntegrationType),
		EvolutionURL:          cfg.EvolutionURL,
		EvolutionAPIKey:       cfg.EvolutionAPIKey,
		EvolutionInstanceName: cfg.EvolutionInstanceName,
	}

	for _, d := range cfg.Documents {
		content := d.Text
		if !d.IsText() {
			content = base64.StdEncoding.EncodeToString(d.Data)
		}
		p.Documents = append(p.Documents, documentPayload{
			ID:         d.ID,
			Name:       d.Name,
			Content:    content,
			Type:       string(d.Type),
			MimeType:   d.MIMEType,
			UploadDate: d.UploadDate,
		})
	}
	for _, ex := range cfg.Examples {
		p.Examples = append(p.Examples, examplePayload{
			ID:            ex.ID,
			UserQuery:     ex.UserQuery,
			AgentResponse: ex.AgentResponse,
		})
	}
	return p
}

func toMessagePayload(m *domain.Message) messagePayload {
	return messagePayload{
		ID:        string(m.ID),
		Sender:    string(m.Sender),
		Text:      m.Text,
		Timestamp: m.Timestamp,
		Status:    string(m.Status),
	}
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

const knowledgeTooLarge = "knowledge documents exceed the supported total size"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAgentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
	case errors.Is(err, domain.ErrEmptyMessage):
		badRequest(w, "text is required")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "llm service unavailable"})
	default:
		internalError(w, err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// badRequestStatus maps validation messages to their status code:
// oversized knowledge is 413, everything else 400.
func badRequestStatus(w http.ResponseWriter, msg string) {
	if msg == knowledgeTooLarge {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": msg})
		return
	}
	badRequest(w, msg)
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
