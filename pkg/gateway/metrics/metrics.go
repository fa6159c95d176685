// Package metrics holds the gateway's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveSessions counts live websocket sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxcal",
		Name:      "active_sessions",
		Help:      "Number of live relay sessions.",
	})

	// ToolInvocations counts tool dispatches by tool name and outcome status.
	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxcal",
		Name:      "tool_invocations_total",
		Help:      "Tool invocations by name and envelope status.",
	}, []string{"tool", "status"})

	// WireMessages counts client wire frames by pump direction.
	WireMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxcal",
		Name:      "wire_messages_total",
		Help:      "Client wire messages by direction (to_client, to_agent).",
	}, []string{"direction"})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
