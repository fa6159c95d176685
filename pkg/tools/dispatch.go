package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxcal/voxcal/pkg/agent"
	"github.com/voxcal/voxcal/pkg/gateway/metrics"
)

var tracer = otel.Tracer("github.com/voxcal/voxcal/pkg/tools")

// Dispatcher runs tool-call requests against a registry.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch executes every invocation of req in order and returns one tool
// response per invocation that resolved to a known tool, preserving input
// order. Unknown names are logged and skipped: the agent receives no response
// for them. Adapter faults become error envelopes; Dispatch itself never
// fails.
func (d *Dispatcher) Dispatch(ctx context.Context, req agent.ToolCallRequest) []agent.ToolResponse {
	if d == nil || len(req.Invocations) == 0 {
		return nil
	}

	responses := make([]agent.ToolResponse, 0, len(req.Invocations))
	for _, inv := range req.Invocations {
		fn, ok := d.registry.lookup(inv.Name)
		if !ok {
			d.logger.Warn("unknown tool requested", "tool", inv.Name, "invocation_id", inv.ID)
			metrics.ToolInvocations.WithLabelValues(inv.Name, "unknown").Inc()
			continue
		}

		args := CoerceArgs(inv.Args)
		envelope := d.invoke(ctx, fn, inv, args)

		status := "success"
		if s, ok := envelope["status"].(string); ok && s != "" {
			status = s
		}
		metrics.ToolInvocations.WithLabelValues(inv.Name, status).Inc()
		d.logger.Info("tool invocation",
			"tool", inv.Name,
			"invocation_id", inv.ID,
			"status", status,
		)

		responses = append(responses, agent.ToolResponse{
			ID:       inv.ID,
			Name:     inv.Name,
			Response: envelope,
		})
	}
	return responses
}

func (d *Dispatcher) invoke(ctx context.Context, fn Adapter, inv agent.ToolInvocation, args map[string]any) map[string]any {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", inv.Name),
		attribute.String("tool.invocation_id", inv.ID),
	)

	envelope, err := safeInvoke(ctx, fn, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error("tool execution failed", "tool", inv.Name, "error", err)
		return ErrorEnvelope(fmt.Sprintf("Error: %v", err))
	}
	if envelope == nil {
		envelope = map[string]any{}
	}
	return envelope
}

// safeInvoke shields the relay from adapter panics as well as errors.
func safeInvoke(ctx context.Context, fn Adapter, args map[string]any) (envelope map[string]any, err error) {
	defer func() {
		if v := recover(); v != nil {
			envelope = nil
			err = fmt.Errorf("tool panicked: %v", v)
		}
	}()
	return fn(ctx, args)
}

// CoerceArgs turns whatever the agent supplied as arguments into a string
// mapping. Serialized JSON strings are parsed; anything unusable collapses to
// an empty mapping rather than an error.
func CoerceArgs(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		if v == nil {
			return map[string]any{}
		}
		return v
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil || parsed == nil {
			return map[string]any{}
		}
		return parsed
	case []byte:
		var parsed map[string]any
		if err := json.Unmarshal(v, &parsed); err != nil || parsed == nil {
			return map[string]any{}
		}
		return parsed
	default:
		return map[string]any{}
	}
}

// ErrorEnvelope builds the standard in-band failure envelope.
func ErrorEnvelope(message string) map[string]any {
	return map[string]any{
		"status":  "error",
		"message": message,
	}
}
