// Package agent defines the event model shared between the duplex relay and
// the conversational agent backend, plus the classifier that turns the
// loosely shaped events an agent stream emits into a strict tagged union.
package agent

// Fallback values substituted when a tool invocation arrives without an
// identifier or name. The agent pairs results by id, so a stable placeholder
// is better than dropping the invocation.
const (
	UnknownToolID   = "unknown_id"
	UnknownToolName = "unknown_function"
)

// AudioPCMPrefix marks inline binary payloads that carry raw PCM audio.
const AudioPCMPrefix = "audio/pcm"

// Event is one raw item from an agent stream. Agent backends populate
// whichever fields their wire format happened to carry; any combination of
// fields may be present or zero. Consumers must go through Normalize rather
// than probing fields directly.
type Event struct {
	TurnComplete bool
	Interrupted  bool

	// Partial marks streamed, not-yet-final generated output.
	Partial bool

	// ToolCalls is the direct tool-call field. Some backends instead embed
	// calls inside content parts; Normalize checks both.
	ToolCalls []*FunctionCall

	Content *Content
}

// Content is a role-attributed sequence of parts.
type Content struct {
	Role  string
	Parts []*Part
}

// Part is one fragment of content. At most one of the fields is meaningful,
// but nothing enforces that on the wire.
type Part struct {
	Text         string
	InlineData   *Blob
	FunctionCall *FunctionCall
}

// Blob carries inline binary data with its mime type.
type Blob struct {
	MIMEType string
	Data     []byte
}

// FunctionCall is a request to invoke a named tool. Args may be a structured
// mapping, a JSON-encoded string, or missing entirely; the dispatcher owns
// coercion.
type FunctionCall struct {
	ID   string
	Name string
	Args any
}

// Classified is the strict union produced by Normalize. Exactly one concrete
// kind is active per classified event.
type Classified interface {
	classifiedKind() string
}

// TurnControl signals that the agent finished or abandoned a turn.
type TurnControl struct {
	TurnComplete bool `json:"turn_complete"`
	Interrupted  bool `json:"interrupted"`
}

func (TurnControl) classifiedKind() string { return "turn_control" }

// ToolCallRequest asks the host to run one or more tool invocations and feed
// the results back into the agent stream.
type ToolCallRequest struct {
	Invocations []ToolInvocation
}

func (ToolCallRequest) classifiedKind() string { return "tool_call_request" }

// ToolInvocation is one resolved entry of a ToolCallRequest. ID and Name are
// never empty; missing values are replaced with the unknown placeholders.
type ToolInvocation struct {
	ID   string
	Name string
	Args any
}

// ContentChunk is a streamed piece of agent output bound for the client.
type ContentChunk struct {
	// MIMEType is AudioPCMPrefix for audio chunks and "text/plain" for text.
	MIMEType string
	Text     string
	Audio    []byte
	Partial  bool
}

func (ContentChunk) classifiedKind() string { return "content_chunk" }

// ToolResponse is one tool outcome injected back into the agent stream,
// keyed by the invocation id it answers.
type ToolResponse struct {
	ID       string
	Name     string
	Response map[string]any
}
