package agent

import (
	"context"
	"fmt"
	"sync"
)

// Sink is the write side of an agent session: user content, realtime media,
// and tool responses all flow in through it.
type Sink interface {
	SendText(ctx context.Context, text string) error
	SendAudio(ctx context.Context, mimeType string, data []byte) error
	SendToolResponses(ctx context.Context, responses []ToolResponse) error
}

// InputQueue serializes submissions to an agent sink. Both relay pumps write
// to it concurrently (client content from one, tool results from the other);
// each writer's own ordering is preserved, nothing is guaranteed across
// writers.
type InputQueue struct {
	mu   sync.Mutex
	sink Sink
}

func NewInputQueue(sink Sink) *InputQueue {
	return &InputQueue{sink: sink}
}

func (q *InputQueue) SendText(ctx context.Context, text string) error {
	if q == nil || q.sink == nil {
		return fmt.Errorf("input queue is not initialized")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sink.SendText(ctx, text)
}

func (q *InputQueue) SendAudio(ctx context.Context, mimeType string, data []byte) error {
	if q == nil || q.sink == nil {
		return fmt.Errorf("input queue is not initialized")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sink.SendAudio(ctx, mimeType, data)
}

// SendToolResponses injects one batch of tool results as a single submission.
func (q *InputQueue) SendToolResponses(ctx context.Context, responses []ToolResponse) error {
	if q == nil || q.sink == nil {
		return fmt.Errorf("input queue is not initialized")
	}
	if len(responses) == 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sink.SendToolResponses(ctx, responses)
}
