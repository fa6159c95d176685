package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/voxcal/voxcal/pkg/gateway/config"
	"github.com/voxcal/voxcal/pkg/relay"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config   config.Config
	Sessions *relay.Registry
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK             bool     `json:"ok"`
		AgentModel     string   `json:"agent_model"`
		ActiveSessions int      `json:"active_sessions"`
		Issues         []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)

	if strings.TrimSpace(h.Config.GeminiAPIKey) == "" {
		issues = append(issues, "agent api key is not configured")
	}
	if strings.TrimSpace(h.Config.AgentModel) == "" {
		issues = append(issues, "agent model is not configured")
	}
	if h.Config.WSReadLimitBytes <= 0 {
		issues = append(issues, "ws read limit must be > 0")
	}
	if h.Config.ReadHeaderTimeout <= 0 || h.Config.ShutdownGracePeriod <= 0 {
		issues = append(issues, "timeouts must be > 0")
	}

	active := 0
	if h.Sessions != nil {
		active = h.Sessions.Count()
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readyResp{
		OK:             ok,
		AgentModel:     h.Config.AgentModel,
		ActiveSessions: active,
		Issues:         issues,
	})
}
