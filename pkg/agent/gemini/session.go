// Package gemini adapts the Gemini Live API to the agent session model used
// by the relay. Each session owns one bidirectional stream; received server
// messages are translated into agent events and pushed onto a channel the
// relay drains.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/voxcal/voxcal/pkg/agent"
)

// Config carries the settings needed to open live sessions.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string
	// Model overrides DefaultModel when set.
	Model string
	// Voice overrides DefaultVoice when set. Only used for audio sessions.
	Voice string
}

// Factory opens live sessions against a shared genai client.
type Factory struct {
	client *genai.Client
	cfg    Config
	logger *slog.Logger
}

// NewFactory builds the underlying genai client once. Sessions are opened
// per conversation via NewSession.
func NewFactory(ctx context.Context, cfg Config, logger *slog.Logger) (*Factory, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Factory{client: client, cfg: cfg, logger: logger}, nil
}

// NewSession connects a live stream for one conversation. The audio flag
// selects the response modality; the client cannot switch modality on an
// open stream.
func (f *Factory) NewSession(ctx context.Context, sessionID string, audio bool) (agent.Session, error) {
	modality := genai.ModalityText
	if audio {
		modality = genai.ModalityAudio
	}
	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{modality},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Tools: []*genai.Tool{
			{FunctionDeclarations: calendarDeclarations()},
		},
	}
	if audio {
		config.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: f.cfg.Voice},
			},
		}
	}

	live, err := f.client.Live.Connect(ctx, f.cfg.Model, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: connect live session: %w", err)
	}

	s := &Session{
		live:   live,
		events: make(chan *agent.Event, 16),
		logger: f.logger.With("session_id", sessionID, "model", f.cfg.Model),
	}
	s.queue = agent.NewInputQueue(s)
	go s.receiveLoop()
	return s, nil
}

// Session is a single live conversation with the model.
type Session struct {
	live   *genai.Session
	queue  *agent.InputQueue
	events chan *agent.Event
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ agent.Session = (*Session)(nil)
var _ agent.Sink = (*Session)(nil)

// Events returns the stream of translated server messages. The channel is
// closed when the live stream ends.
func (s *Session) Events() <-chan *agent.Event { return s.events }

// Queue returns the serialized input path into the model.
func (s *Session) Queue() *agent.InputQueue { return s.queue }

// Close tears down the live stream. Safe to call more than once; the
// receive loop exits when the stream errors out.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.live.Close()
	})
	return s.closeErr
}

// SendText submits a completed user turn.
func (s *Session) SendText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.live.SendClientContent(userTurn(text))
}

// userTurn wraps client text as a finished user turn. TurnComplete is a
// tri-state pointer on the wire; the model only starts generating once it
// is explicitly true.
func userTurn(text string) genai.LiveClientContentInput {
	return genai.LiveClientContentInput{
		Turns: []*genai.Content{
			{Role: genai.RoleUser, Parts: []*genai.Part{{Text: text}}},
		},
		TurnComplete: genai.Ptr(true),
	}
}

// SendAudio streams a chunk of caller audio into the open turn.
func (s *Session) SendAudio(ctx context.Context, mimeType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.live.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{MIMEType: mimeType, Data: data},
	})
}

// SendToolResponses injects tool results so the model can resume the turn.
func (s *Session) SendToolResponses(ctx context.Context, responses []agent.ToolResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := make([]*genai.FunctionResponse, 0, len(responses))
	for _, r := range responses {
		out = append(out, &genai.FunctionResponse{
			ID:       r.ID,
			Name:     r.Name,
			Response: r.Response,
		})
	}
	return s.live.SendToolResponse(genai.LiveToolResponseInput{FunctionResponses: out})
}

// receiveLoop drains the live stream until it ends, translating each server
// message into zero or one agent events.
func (s *Session) receiveLoop() {
	defer close(s.events)
	for {
		msg, err := s.live.Receive()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Debug("live stream ended", "error", err)
			}
			return
		}
		if ev := translate(msg); ev != nil {
			s.events <- ev
		}
	}
}

// translate maps a live server message onto the provider-neutral event
// shape. Setup acknowledgements and other bookkeeping messages yield nil.
func translate(msg *genai.LiveServerMessage) *agent.Event {
	if msg == nil {
		return nil
	}
	if tc := msg.ToolCall; tc != nil && len(tc.FunctionCalls) > 0 {
		calls := make([]*agent.FunctionCall, 0, len(tc.FunctionCalls))
		for _, fc := range tc.FunctionCalls {
			calls = append(calls, &agent.FunctionCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
		return &agent.Event{ToolCalls: calls}
	}
	if sc := msg.ServerContent; sc != nil {
		ev := &agent.Event{
			TurnComplete: sc.TurnComplete,
			Interrupted:  sc.Interrupted,
		}
		if sc.ModelTurn != nil {
			ev.Content = translateContent(sc.ModelTurn)
			// Chunks streamed before the generation settles are partial;
			// the final aggregate repeats them and is dropped downstream.
			ev.Partial = !sc.GenerationComplete && !sc.TurnComplete
		}
		return ev
	}
	return nil
}

func translateContent(c *genai.Content) *agent.Content {
	out := &agent.Content{Role: c.Role, Parts: make([]*agent.Part, 0, len(c.Parts))}
	for _, p := range c.Parts {
		if p == nil {
			continue
		}
		part := &agent.Part{Text: p.Text}
		if p.InlineData != nil {
			part.InlineData = &agent.Blob{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			}
		}
		if p.FunctionCall != nil {
			part.FunctionCall = &agent.FunctionCall{
				ID:   p.FunctionCall.ID,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}
