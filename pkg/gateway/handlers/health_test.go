package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxcal/voxcal/pkg/gateway/config"
)

func healthyConfig() config.Config {
	return config.Config{
		GeminiAPIKey:        "test-key",
		AgentModel:          "gemini-2.0-flash-live-001",
		WSReadLimitBytes:    1 << 20,
		ReadHeaderTimeout:   10 * time.Second,
		ShutdownGracePeriod: 30 * time.Second,
	}
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	HealthHandler{}.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Body.String() != "ok\n" {
		t.Fatalf("body=%q", rr.Body.String())
	}
}

func TestReadyHandler_OK(t *testing.T) {
	rr := httptest.NewRecorder()
	ReadyHandler{Config: healthyConfig()}.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	var resp struct {
		OK         bool     `json:"ok"`
		AgentModel string   `json:"agent_model"`
		Issues     []string `json:"issues"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK || len(resp.Issues) != 0 {
		t.Fatalf("resp=%+v", resp)
	}
	if resp.AgentModel != "gemini-2.0-flash-live-001" {
		t.Fatalf("agent_model=%q", resp.AgentModel)
	}
}

func TestReadyHandler_MissingKeyReported(t *testing.T) {
	cfg := healthyConfig()
	cfg.GeminiAPIKey = ""

	rr := httptest.NewRecorder()
	ReadyHandler{Config: cfg}.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	var resp struct {
		OK     bool     `json:"ok"`
		Issues []string `json:"issues"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.OK || len(resp.Issues) == 0 {
		t.Fatalf("resp=%+v", resp)
	}
}
