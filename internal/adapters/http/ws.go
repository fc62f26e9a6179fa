package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/PabloGalante/zap-agent/internal/domain"
	"github.com/PabloGalante/zap-agent/internal/observability"
	"github.com/coder/websocket"
)

// wsInbound is one user turn sent by the simulator front-end.
type wsInbound struct {
	Text string `json:"text"`
}

// wsEvent is pushed for every message as delivery pacing emits it, so
// the front-end can render bubbles one by one like real typing.
type wsEvent struct {
	Type    string         `json:"type"` // "message" or "error"
	Message messagePayload `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleChatSocket streams one simulator conversation over a
// WebSocket. Sends are serialized by the read loop: the next user turn
// is not read until all bubbles of the current turn went out.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	agentID := agentIDParam(r)
	log := observability.LoggerFromContext(r.Context()).With("agent_id", agentID)

	if _, err := s.agents.GetAgent(agentID); err != nil {
		writeError(w, err)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer func() {
		_ = ws.Close(websocket.StatusNormalClosure, "conversation ended")
	}()

	ctx := r.Context()
	for {
		var in wsInbound
		if err := readJSON(ctx, ws, &in); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Debug("websocket read ended", "error", err)
			}
			return
		}

		_, err := s.sim.SendMessage(ctx, agentID, in.Text, func(msg *domain.Message) {
			if writeErr := writeWS(ctx, ws, wsEvent{Type: "message", Message: toMessagePayload(msg)}); writeErr != nil {
				log.Debug("websocket write failed", "error", writeErr)
			}
		})
		if err != nil {
			if writeErr := writeWS(ctx, ws, wsEvent{Type: "error", Error: wsErrorText(err)}); writeErr != nil {
				return
			}
		}
	}
}

func wsErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return "text is required"
	case errors.Is(err, domain.ErrAgentNotFound):
		return "agent not found"
	default:
		return "internal error"
	}
}

func readJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	_, data, err := ws.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeWS(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
