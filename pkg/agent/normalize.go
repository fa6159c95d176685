package agent

import "strings"

const textPlainMIME = "text/plain"

// Normalize classifies one raw agent event into the Classified union.
// Precedence is fixed and first-match-wins:
//
//  1. turn-completion or interruption flags
//  2. tool calls, first from the direct field, else embedded in content parts
//  3. non-empty inline audio in the first content part
//  4. partial text in the first content part
//
// Events that match nothing are dropped: ok is false and the caller moves on.
// Normalize never fails; absent or malformed fields fall back to declared
// placeholders instead of raising.
func Normalize(ev *Event) (Classified, bool) {
	if ev == nil {
		return nil, false
	}

	if ev.TurnComplete || ev.Interrupted {
		return TurnControl{TurnComplete: ev.TurnComplete, Interrupted: ev.Interrupted}, true
	}

	if calls := findToolCalls(ev); len(calls) > 0 {
		req := ToolCallRequest{Invocations: make([]ToolInvocation, 0, len(calls))}
		for _, call := range calls {
			req.Invocations = append(req.Invocations, invocationFromCall(call))
		}
		return req, true
	}

	part := firstPart(ev)
	if part == nil {
		return nil, false
	}

	if part.InlineData != nil &&
		strings.HasPrefix(part.InlineData.MIMEType, AudioPCMPrefix) &&
		len(part.InlineData.Data) > 0 {
		return ContentChunk{
			MIMEType: AudioPCMPrefix,
			Audio:    part.InlineData.Data,
		}, true
	}

	// Only streaming text is forwarded; the final aggregate repeats what the
	// partials already carried and is dropped here.
	if part.Text != "" && ev.Partial {
		return ContentChunk{
			MIMEType: textPlainMIME,
			Text:     part.Text,
			Partial:  true,
		}, true
	}

	return nil, false
}

// findToolCalls checks the direct tool-call field first, then scans content
// parts for an embedded function call, taking the first match.
func findToolCalls(ev *Event) []*FunctionCall {
	if len(ev.ToolCalls) > 0 {
		return ev.ToolCalls
	}
	if ev.Content == nil {
		return nil
	}
	for _, part := range ev.Content.Parts {
		if part != nil && part.FunctionCall != nil {
			return []*FunctionCall{part.FunctionCall}
		}
	}
	return nil
}

func invocationFromCall(call *FunctionCall) ToolInvocation {
	inv := ToolInvocation{ID: UnknownToolID, Name: UnknownToolName}
	if call == nil {
		return inv
	}
	if call.ID != "" {
		inv.ID = call.ID
	}
	if call.Name != "" {
		inv.Name = call.Name
	}
	inv.Args = call.Args
	return inv
}

func firstPart(ev *Event) *Part {
	if ev.Content == nil || len(ev.Content.Parts) == 0 {
		return nil
	}
	return ev.Content.Parts[0]
}
