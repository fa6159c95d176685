package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxcal/voxcal/pkg/agent"
	"github.com/voxcal/voxcal/pkg/gateway/metrics"
	"github.com/voxcal/voxcal/pkg/tools"
)

// ClientConn is the slice of *websocket.Conn the relay needs. Tests drive
// the relay with a scripted implementation.
type ClientConn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// Relay runs the two pumps for one client connection over one agent session.
type Relay struct {
	conn       ClientConn
	session    agent.Session
	dispatcher *tools.Dispatcher
	logger     *slog.Logger

	// IdleTimeout bounds the wait for the next agent event. Zero disables
	// the bound: a hung agent stream then blocks its pump indefinitely.
	idleTimeout time.Duration

	// writeTimeout bounds each client write. Zero disables the bound: a
	// client that stops draining its socket then blocks the pump in
	// WriteMessage, out of reach of context cancellation.
	writeTimeout time.Duration

	writeMu sync.Mutex
}

// Options configures a Relay beyond its required collaborators.
type Options struct {
	Logger       *slog.Logger
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
}

func New(conn ClientConn, session agent.Session, dispatcher *tools.Dispatcher, opts Options) *Relay {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		conn:         conn,
		session:      session,
		dispatcher:   dispatcher,
		logger:       logger,
		idleTimeout:  opts.IdleTimeout,
		writeTimeout: opts.WriteTimeout,
	}
}

// ErrAgentIdle reports that the agent stream produced nothing within the
// configured idle timeout.
var ErrAgentIdle = errors.New("agent stream idle timeout")

// Run starts both pumps and blocks until both have stopped. Whichever pump
// finishes first (socket closed, agent stream exhausted, or a fatal protocol
// error) cancels the other. The first non-cancellation error wins.
func (r *Relay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errCh <- r.agentToClient(ctx)
		cancel()
	}()
	go func() {
		defer wg.Done()
		errCh <- r.clientToAgent(ctx)
		cancel()
	}()
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		if first == nil {
			first = err
		}
	}
	return first
}

// agentToClient drains the agent event stream: turn control and content go
// to the client, tool calls are dispatched and their results injected back
// into the agent input queue.
func (r *Relay) agentToClient(ctx context.Context) error {
	events := r.session.Events()
	queue := r.session.Queue()

	var idle *time.Timer
	if r.idleTimeout > 0 {
		idle = time.NewTimer(r.idleTimeout)
		defer idle.Stop()
	}

	for {
		var ev *agent.Event
		var ok bool
		if idle != nil {
			select {
			case ev, ok = <-events:
			case <-idle.C:
				return ErrAgentIdle
			case <-ctx.Done():
				return ctx.Err()
			}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(r.idleTimeout)
		} else {
			select {
			case ev, ok = <-events:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !ok {
			// Agent stream exhausted.
			return nil
		}

		classified, ok := agent.Normalize(ev)
		if !ok {
			continue
		}

		switch c := classified.(type) {
		case agent.TurnControl:
			if err := r.writeJSON(c); err != nil {
				return err
			}
			r.logger.Debug("turn control sent",
				"turn_complete", c.TurnComplete, "interrupted", c.Interrupted)

		case agent.ToolCallRequest:
			responses := r.dispatcher.Dispatch(ctx, c)
			if len(responses) == 0 {
				continue
			}
			if err := queue.SendToolResponses(ctx, responses); err != nil {
				return err
			}

		case agent.ContentChunk:
			msg := WireMessage{MIMEType: c.MIMEType}
			if c.MIMEType == MIMEAudioPCM {
				msg.Data = base64.StdEncoding.EncodeToString(c.Audio)
			} else {
				msg.Data = c.Text
			}
			if err := r.writeJSON(msg); err != nil {
				return err
			}
		}
	}
}

// clientToAgent drains the client socket into the agent input queue. An
// unsupported mime kind is fatal for the whole connection.
func (r *Relay) clientToAgent(ctx context.Context) error {
	queue := r.session.Queue()

	frames := make(chan inboundFrame, 16)
	go r.readLoop(ctx, frames)

	for {
		var frame inboundFrame
		var ok bool
		select {
		case frame, ok = <-frames:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !ok {
			return nil
		}
		if frame.err != nil {
			if isExpectedClose(frame.err) {
				return nil
			}
			return frame.err
		}

		msg, err := DecodeWireMessage(frame.data)
		if err != nil {
			r.logger.Warn("closing session on protocol error", "error", err)
			return err
		}
		metrics.WireMessages.WithLabelValues("to_agent").Inc()

		switch msg.MIMEType {
		case MIMETextPlain:
			if err := queue.SendText(ctx, msg.Data); err != nil {
				return err
			}
		case MIMEAudioPCM:
			pcm, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				return &DecodeError{Message: "audio payload is not valid base64"}
			}
			if err := queue.SendAudio(ctx, MIMEAudioPCM, pcm); err != nil {
				return err
			}
		}
	}
}

type inboundFrame struct {
	data []byte
	err  error
}

func (r *Relay) readLoop(ctx context.Context, out chan<- inboundFrame) {
	defer close(out)
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			select {
			case out <- inboundFrame{err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case out <- inboundFrame{data: data}:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Relay) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if r.writeTimeout > 0 {
		if err := r.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
			return err
		}
	}
	if err := r.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}
	metrics.WireMessages.WithLabelValues("to_client").Inc()
	return nil
}

func isExpectedClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
