package agent

import "context"

// Session is one live conversation with an agent backend. The relay reads
// raw events from Events and writes through Queue; it borrows both handles
// for the lifetime of one client connection and must not use them after
// Close.
type Session interface {
	// Events yields raw agent events in emission order. The channel is
	// closed when the agent stream ends.
	Events() <-chan *Event

	// Queue returns the serialized input queue for this session.
	Queue() *InputQueue

	Close() error
}

// Factory opens a new agent session. audio selects the agent's response
// modality (spoken audio vs text) and is fixed for the session's lifetime.
type Factory interface {
	NewSession(ctx context.Context, sessionID string, audio bool) (Session, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, sessionID string, audio bool) (Session, error)

func (f FactoryFunc) NewSession(ctx context.Context, sessionID string, audio bool) (Session, error) {
	return f(ctx, sessionID, audio)
}
