package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxcal/voxcal/pkg/agent"
	"github.com/voxcal/voxcal/pkg/tools"
)

type fakeConn struct {
	inbound chan []byte

	mu      sync.Mutex
	written [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.inbound
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, data, nil
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.written))
	copy(out, c.written)
	return out
}

type recordingSink struct {
	mu    sync.Mutex
	texts []string
	audio [][]byte
	tools [][]agent.ToolResponse
}

func (s *recordingSink) SendText(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSink) SendAudio(_ context.Context, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = append(s.audio, append([]byte(nil), data...))
	return nil
}

func (s *recordingSink) SendToolResponses(_ context.Context, responses []agent.ToolResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, responses)
	return nil
}

type fakeSession struct {
	events chan *agent.Event
	queue  *agent.InputQueue
	sink   *recordingSink

	mu     sync.Mutex
	closed bool
}

func newFakeSession() *fakeSession {
	sink := &recordingSink{}
	return &fakeSession{
		events: make(chan *agent.Event, 16),
		queue:  agent.NewInputQueue(sink),
		sink:   sink,
	}
}

func (s *fakeSession) Events() <-chan *agent.Event { return s.events }
func (s *fakeSession) Queue() *agent.InputQueue    { return s.queue }
func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func newTestDispatcher(t *testing.T, adapters map[string]tools.Adapter) *tools.Dispatcher {
	t.Helper()
	registry, err := tools.NewRegistry(adapters)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return tools.NewDispatcher(registry, nil)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startRelay(t *testing.T, conn *fakeConn, session *fakeSession, dispatcher *tools.Dispatcher, opts Options) <-chan error {
	t.Helper()
	r := New(conn, session, dispatcher, opts)
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	return done
}

func TestRelay_TextRoundTripScenario(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	dispatcher := newTestDispatcher(t, map[string]tools.Adapter{
		"list_events": func(_ context.Context, args map[string]any) (map[string]any, error) {
			if args["calendar_id"] != "primary" {
				t.Errorf("calendar_id = %v", args["calendar_id"])
			}
			return map[string]any{"status": "success", "message": "Found 0 event(s).", "events": []map[string]any{}}, nil
		},
	})
	done := startRelay(t, conn, session, dispatcher, Options{})

	// Client asks a question.
	conn.inbound <- []byte(`{"mime_type":"text/plain","data":"What's on my calendar today?"}`)
	waitFor(t, "user text in queue", func() bool {
		session.sink.mu.Lock()
		defer session.sink.mu.Unlock()
		return len(session.sink.texts) == 1
	})

	// Agent answers with a tool call.
	session.events <- &agent.Event{ToolCalls: []*agent.FunctionCall{{
		ID:   "call_1",
		Name: "list_events",
		Args: map[string]any{"calendar_id": "primary", "days": float64(1)},
	}}}
	waitFor(t, "tool responses in queue", func() bool {
		session.sink.mu.Lock()
		defer session.sink.mu.Unlock()
		return len(session.sink.tools) == 1
	})
	session.sink.mu.Lock()
	batch := session.sink.tools[0]
	session.sink.mu.Unlock()
	if len(batch) != 1 || batch[0].ID != "call_1" {
		t.Fatalf("batch = %+v", batch)
	}
	if batch[0].Response["status"] != "success" {
		t.Fatalf("response = %v", batch[0].Response)
	}

	// The raw envelope never reaches the client; streamed prose does.
	if frames := conn.frames(); len(frames) != 0 {
		t.Fatalf("client received %d frames before prose: %s", len(frames), frames[0])
	}
	session.events <- &agent.Event{
		Partial: true,
		Content: &agent.Content{Parts: []*agent.Part{{Text: "Your calendar is empty today."}}},
	}
	waitFor(t, "prose frame", func() bool { return len(conn.frames()) == 1 })
	var msg WireMessage
	if err := json.Unmarshal(conn.frames()[0], &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.MIMEType != MIMETextPlain || msg.Data != "Your calendar is empty today." {
		t.Fatalf("msg = %+v", msg)
	}

	close(session.events)
	close(conn.inbound)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRelay_AudioRoundTripIsByteIdentical(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	done := startRelay(t, conn, session, newTestDispatcher(t, nil), Options{})

	pcm := []byte{0x00, 0xff, 0x10, 0x20, 0x7f}

	// Client to agent: base64 in, raw bytes on the queue.
	frame, _ := json.Marshal(WireMessage{
		MIMEType: MIMEAudioPCM,
		Data:     base64.StdEncoding.EncodeToString(pcm),
	})
	conn.inbound <- frame
	waitFor(t, "audio in queue", func() bool {
		session.sink.mu.Lock()
		defer session.sink.mu.Unlock()
		return len(session.sink.audio) == 1
	})
	session.sink.mu.Lock()
	inbound := session.sink.audio[0]
	session.sink.mu.Unlock()
	if string(inbound) != string(pcm) {
		t.Fatalf("inbound pcm mutated: %v", inbound)
	}

	// Agent to client: raw bytes in, base64 out, decoding back byte-identical.
	session.events <- &agent.Event{Content: &agent.Content{Parts: []*agent.Part{
		{InlineData: &agent.Blob{MIMEType: "audio/pcm;rate=24000", Data: pcm}},
	}}}
	waitFor(t, "audio frame", func() bool { return len(conn.frames()) == 1 })
	var msg WireMessage
	if err := json.Unmarshal(conn.frames()[0], &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.MIMEType != MIMEAudioPCM {
		t.Fatalf("mime = %q", msg.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded) != string(pcm) {
		t.Fatalf("outbound pcm mutated: %v", decoded)
	}

	close(session.events)
	close(conn.inbound)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRelay_TurnControlForwarded(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	done := startRelay(t, conn, session, newTestDispatcher(t, nil), Options{})

	session.events <- &agent.Event{TurnComplete: true}
	waitFor(t, "turn control frame", func() bool { return len(conn.frames()) == 1 })

	var tc agent.TurnControl
	if err := json.Unmarshal(conn.frames()[0], &tc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !tc.TurnComplete || tc.Interrupted {
		t.Fatalf("tc = %+v", tc)
	}

	close(session.events)
	close(conn.inbound)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRelay_UnsupportedMimeKillsBothPumps(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	done := startRelay(t, conn, session, newTestDispatcher(t, nil), Options{})

	conn.inbound <- []byte(`{"mime_type":"video/mp4","data":"AAAA"}`)

	err := <-done
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Run error = %v, want DecodeError", err)
	}
	// Run returned, so the companion pump was cancelled too. The agent
	// events channel is untouched and still open; nothing hangs.
	close(session.events)
	close(conn.inbound)
}

func TestRelay_AgentStreamExhaustedIsCleanShutdown(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	done := startRelay(t, conn, session, newTestDispatcher(t, nil), Options{})

	close(session.events)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(conn.inbound)
}

func TestRelay_UnknownToolKeepsRelayAlive(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	dispatcher := newTestDispatcher(t, map[string]tools.Adapter{
		"get_current_time": func(context.Context, map[string]any) (map[string]any, error) {
			return map[string]any{"status": "success"}, nil
		},
	})
	done := startRelay(t, conn, session, dispatcher, Options{})

	session.events <- &agent.Event{ToolCalls: []*agent.FunctionCall{
		{ID: "1", Name: "frobnicate"},
		{ID: "2", Name: "get_current_time"},
	}}
	waitFor(t, "surviving invocation result", func() bool {
		session.sink.mu.Lock()
		defer session.sink.mu.Unlock()
		return len(session.sink.tools) == 1
	})
	session.sink.mu.Lock()
	batch := session.sink.tools[0]
	session.sink.mu.Unlock()
	if len(batch) != 1 || batch[0].ID != "2" {
		t.Fatalf("batch = %+v, want only the known tool's result", batch)
	}

	close(session.events)
	close(conn.inbound)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRelay_IdleTimeout(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	session := newFakeSession()
	done := startRelay(t, conn, session, newTestDispatcher(t, nil), Options{
		IdleTimeout: 20 * time.Millisecond,
	})

	err := <-done
	if !errors.Is(err, ErrAgentIdle) {
		t.Fatalf("Run error = %v, want ErrAgentIdle", err)
	}
	close(session.events)
	close(conn.inbound)
}

// stalledConn models a peer that stopped draining its socket: writes never
// complete on their own and return only when the write deadline passes.
type stalledConn struct {
	inbound chan []byte

	mu       sync.Mutex
	deadline time.Time
}

func (c *stalledConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.inbound
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, data, nil
}

func (c *stalledConn) WriteMessage(int, []byte) error {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()
	if deadline.IsZero() {
		select {}
	}
	time.Sleep(time.Until(deadline))
	return os.ErrDeadlineExceeded
}

func (c *stalledConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	c.deadline = t
	c.mu.Unlock()
	return nil
}

func TestRelay_WriteTimeoutUnblocksStalledClient(t *testing.T) {
	t.Parallel()
	conn := &stalledConn{inbound: make(chan []byte)}
	session := newFakeSession()
	r := New(conn, session, newTestDispatcher(t, nil), Options{
		WriteTimeout: 20 * time.Millisecond,
	})
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	session.events <- &agent.Event{
		Partial: true,
		Content: &agent.Content{Parts: []*agent.Part{{Text: "hello"}}},
	}

	select {
	case err := <-done:
		if !errors.Is(err, os.ErrDeadlineExceeded) {
			t.Fatalf("Run error = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("relay still blocked on a client that stopped reading")
	}
	close(session.events)
	close(conn.inbound)
}

func TestRegistry_AcquireReleaseLifecycle(t *testing.T) {
	t.Parallel()
	var created []*fakeSession
	factory := agent.FactoryFunc(func(context.Context, string, bool) (agent.Session, error) {
		s := newFakeSession()
		created = append(created, s)
		return s, nil
	})
	registry := NewRegistry(factory)

	first, err := registry.Acquire(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if registry.Count() != 1 {
		t.Fatalf("count = %d", registry.Count())
	}

	// Reconnecting under the same id replaces and closes the stale entry.
	second, err := registry.Acquire(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if registry.Count() != 1 {
		t.Fatalf("count = %d after replace", registry.Count())
	}
	if !created[0].closed {
		t.Fatalf("stale session was not closed")
	}

	// Releasing the stale handle must not evict the live one.
	registry.Release("s1", first)
	if got, ok := registry.Lookup("s1"); !ok || got != second {
		t.Fatalf("live session evicted by stale release")
	}

	registry.Release("s1", second)
	if registry.Count() != 0 {
		t.Fatalf("count = %d after release", registry.Count())
	}
	if !created[1].closed {
		t.Fatalf("released session was not closed")
	}
}
