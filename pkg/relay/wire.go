// Package relay pumps realtime traffic between one client websocket and one
// agent session, in both directions at once.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Client wire mime kinds.
const (
	MIMETextPlain = "text/plain"
	MIMEAudioPCM  = "audio/pcm"
)

// WireMessage is the JSON frame exchanged with the client in both
// directions. Text payloads are plain UTF-8; audio payloads carry
// base64-encoded PCM bytes.
type WireMessage struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// DecodeError marks a client frame the relay refuses to recover from.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string { return e.Message }

// DecodeWireMessage parses one inbound client frame. A frame that does not
// parse, or that names an unsupported mime kind, is a protocol violation and
// terminates the connection; there is no lenient path here.
func DecodeWireMessage(data []byte) (WireMessage, error) {
	var msg WireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return WireMessage{}, &DecodeError{Message: fmt.Sprintf("malformed client frame: %v", err)}
	}
	switch strings.TrimSpace(msg.MIMEType) {
	case MIMETextPlain, MIMEAudioPCM:
		return msg, nil
	default:
		return WireMessage{}, &DecodeError{Message: fmt.Sprintf("mime type not supported: %s", msg.MIMEType)}
	}
}
