// Package simulator runs WhatsApp-style test conversations against a
// configured agent: one live chat session per agent, reply splitting
// into bubbles and human-like delivery pacing.
package simulator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/zap-agent/internal/app/prompt"
	"github.com/PabloGalante/zap-agent/internal/domain"
	"github.com/PabloGalante/zap-agent/internal/observability"
	"github.com/google/uuid"
)

// bubbleDelay is the fixed pause between successive bubbles of one
// multi-bubble reply, emulating typing. The configured response delay
// range is a hint for the generated bridge, not for this constant.
const bubbleDelay = 500 * time.Millisecond

// EmitFunc observes each message the moment it is added to the
// transcript, while delivery pacing is still running.
type EmitFunc func(msg *domain.Message)

type session struct {
	mu   sync.Mutex // serializes sends; one in flight per session
	chat domain.ChatSession
	last time.Time // last emitted timestamp, keeps ordering strict
}

// Service owns the live chat sessions and transcripts of all agents.
type Service struct {
	chatSvc domain.ChatService
	agents  domain.AgentStore
	log     domain.MessageLog

	now   func() time.Time
	sleep func(time.Duration)

	mu       sync.Mutex
	sessions map[domain.AgentID]*session
}

func NewService(chatSvc domain.ChatService, agents domain.AgentStore, log domain.MessageLog) *Service {
	return &Service{
		chatSvc:  chatSvc,
		agents:   agents,
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
		sessions: make(map[domain.AgentID]*session),
	}
}

// ResetSession discards any previous conversation with the agent and
// opens a fresh session from the current configuration. Required when
// the operator switches agents or saves configuration changes:
// conversation memory must never leak across configurations.
func (s *Service) ResetSession(ctx context.Context, agentID domain.AgentID) error {
	_, err := s.reset(ctx, agentID)
	return err
}

// reset opens a fresh session and returns it directly, so callers
// racing a concurrent Invalidate never observe a session that was
// dropped from the map between store and lookup.
func (s *Service) reset(ctx context.Context, agentID domain.AgentID) (*session, error) {
	cfg, err := s.agents.GetAgent(agentID)
	if err != nil {
		return nil, err
	}

	chat, err := s.chatSvc.Open(ctx, prompt.Compile(cfg))
	if err != nil {
		return nil, err
	}

	sess := &session{chat: chat}
	s.mu.Lock()
	s.sessions[agentID] = sess
	s.mu.Unlock()

	return sess, s.log.Clear(agentID)
}

// Invalidate drops the agent's session and transcript without opening
// a new one. Used when the agent is updated or deleted; the next send
// opens a session from the new configuration.
func (s *Service) Invalidate(agentID domain.AgentID) {
	s.mu.Lock()
	delete(s.sessions, agentID)
	s.mu.Unlock()

	if err := s.log.Clear(agentID); err != nil {
		observability.Logger().Error("failed to clear transcript", "agent_id", agentID, "error", err)
	}
}

type SendMessageOutput struct {
	UserMessage *domain.Message
	Bubbles     []*domain.Message
}

// SendMessage records the user turn, forwards it to the agent's chat
// session and delivers the reply bubble by bubble. The call blocks
// until every bubble has been emitted; pacing delays run between
// successive bubbles of a multi-bubble reply. The optional emit hook
// sees each message (user turn included) as it lands.
//
// The reply text itself is always display-safe: transport failures
// surface as an apology bubble, never as an error.
func (s *Service) SendMessage(ctx context.Context, agentID domain.AgentID, text string, emit EmitFunc) (*SendMessageOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	sess, err := s.ensureSession(ctx, agentID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With("agent_id", agentID)

	userMsg := s.newMessage(sess, agentID, domain.SenderUser, text, domain.StatusSent)
	if err := s.log.Append(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}
	if emit != nil {
		emit(userMsg)
	}

	raw := sess.chat.Send(ctx, text)
	segments := Split(raw)
	log.Info("reply received", "bubbles", len(segments))

	bubbles := make([]*domain.Message, 0, len(segments))
	for _, segment := range segments {
		if len(segments) > 1 {
			s.sleep(bubbleDelay)
		}

		msg := s.newMessage(sess, agentID, domain.SenderBot, segment, domain.StatusRead)
		if err := s.log.Append(msg); err != nil {
			log.Error("failed to append bubble", "error", err)
			return nil, err
		}
		if emit != nil {
			emit(msg)
		}
		bubbles = append(bubbles, msg)
	}

	return &SendMessageOutput{UserMessage: userMsg, Bubbles: bubbles}, nil
}

// Transcript returns the agent's current simulator conversation.
func (s *Service) Transcript(agentID domain.AgentID) ([]*domain.Message, error) {
	if _, err := s.agents.GetAgent(agentID); err != nil {
		return nil, err
	}
	return s.log.List(agentID)
}

// ensureSession returns the agent's live session, opening one from the
// current configuration when none exists yet.
func (s *Service) ensureSession(ctx context.Context, agentID domain.AgentID) (*session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[agentID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	return s.reset(ctx, agentID)
}

// newMessage stamps a fresh message with a strictly increasing
// timestamp: a later bubble is never observably delivered before an
// earlier one, even under a coarse clock.
func (s *Service) newMessage(sess *session, agentID domain.AgentID, sender domain.Sender, text string, status domain.MessageStatus) *domain.Message {
	ts := s.now()
	if !ts.After(sess.last) {
		ts = sess.last.Add(time.Millisecond)
	}
	sess.last = ts

	return &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		AgentID:   agentID,
		Sender:    sender,
		Text:      text,
		Timestamp: ts,
		Status:    status,
	}
}
