package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/vitalmech/assistant/agent/contract"
	statex "github.com/vitalmech/assistant/agent/state"
	toolx "github.com/vitalmech/assistant/agent/tool"
)

// defaultMaxToolRounds bounds the tool loop. A round is one completion that asks
// for tools; the loop runs until a plain-text answer or the cap. The cap is
// generous for real traffic and exists to keep a misbehaving model from
// spinning the turn forever.
const defaultMaxToolRounds = 4

// Service drives the turn protocol: submit transcript, execute requested
// tools, feed results back, repeat until the model produces plain text.
type Service struct {
	completer contractx.Completer
	tools     contractx.ToolGateway
	sessions  *statex.Registry

	systemPrompt  string
	maxToolRounds int

	now func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithMaxToolRounds overrides the tool-loop cap. Values <= 0 keep the default.
func WithMaxToolRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxToolRounds = n
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(completer contractx.Completer, tools contractx.ToolGateway, sessions *statex.Registry, systemPrompt string, opts ...Option) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, errors.New("system prompt is required")
	}

	s := &Service{
		completer:     completer,
		tools:         tools,
		sessions:      sessions,
		systemPrompt:  systemPrompt,
		maxToolRounds: defaultMaxToolRounds,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HandleMessage runs one turn for the session. It returns the final reply,
// the ordered list of tool invocations executed during the turn, and the
// session id actually used (the fixed default when none was supplied).
//
// On a completion failure the transcript is rolled back to just the appended
// user message, so the caller may retry the turn safely.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (contractx.TurnResult, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return contractx.TurnResult{}, "", contractx.ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = statex.DefaultSessionID
	}

	var result contractx.TurnResult
	err := s.sessions.WithSession(ctx, sessionID, func(sess *statex.Session) error {
		var err error
		result, err = s.runTurn(ctx, sess, text)
		return err
	})
	if err != nil {
		return contractx.TurnResult{}, sessionID, err
	}
	return result, sessionID, nil
}

func (s *Service) runTurn(ctx context.Context, sess *statex.Session, text string) (contractx.TurnResult, error) {
	sess.History = append(sess.History, contractx.UserText(text))
	base := len(sess.History)

	actions := []contractx.ActionRecord{}

	for round := 0; ; round++ {
		resp, err := s.completer.Complete(ctx, contractx.CompletionRequest{
			System:   s.systemPrompt,
			Messages: sess.History,
			Tools:    toolx.Definitions(sess.Flags),
		})
		if err != nil {
			sess.History = sess.History[:base]
			return contractx.TurnResult{}, fmt.Errorf("%w: %v", contractx.ErrCompletion, err)
		}

		if len(resp.ToolCalls) == 0 {
			reply := strings.TrimSpace(resp.Text)
			if reply == "" {
				sess.History = sess.History[:base]
				return contractx.TurnResult{}, fmt.Errorf("%w: empty reply", contractx.ErrCompletion)
			}
			sess.History = append(sess.History, contractx.AssistantText(reply))
			sess.Touch(s.now())
			return contractx.TurnResult{Reply: reply, Actions: actions}, nil
		}

		if round >= s.maxToolRounds {
			sess.History = sess.History[:base]
			return contractx.TurnResult{}, fmt.Errorf("%w: tool loop exceeded %d rounds", contractx.ErrCompletion, s.maxToolRounds)
		}

		for _, call := range resp.ToolCalls {
			outcome := s.tools.Execute(ctx, call.Name, call.Input)
			log.Info().
				Str("session_id", sess.ID).
				Str("tool", call.Name).
				Bool("success", outcome.Success).
				Msg("tool executed")

			actions = append(actions, contractx.ActionRecord{
				Tool:   call.Name,
				Input:  call.Input,
				Result: outcome,
			})
			sess.History = append(sess.History,
				contractx.AssistantToolCall(call),
				contractx.ToolResultMessage(call.ID, outcome.JSON()),
			)
		}
	}
}

// Reset clears a session's transcript, reporting whether it existed.
func (s *Service) Reset(sessionID string) bool {
	return s.sessions.Reset(sessionID)
}
