package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// Agent backend.
	GeminiAPIKey string
	AgentModel   string
	AgentVoice   string

	// AgentIdleTimeout bounds the wait for the next agent event while a
	// connection is open. Zero disables the watchdog.
	AgentIdleTimeout time.Duration

	// Calendar provider credentials (OAuth client secret and stored token).
	CalendarCredentialsPath string
	CalendarTokenPath       string

	// WebSocket limits.
	WSReadLimitBytes int64
	WSWriteTimeout   time.Duration
	HandshakeTimeout time.Duration
	WSMaxSessionLife time.Duration

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                    envOr("VOXCAL_ADDR", ":8080"),
		GeminiAPIKey:            strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		AgentModel:              envOr("VOXCAL_AGENT_MODEL", "gemini-2.0-flash-live-001"),
		AgentVoice:              envOr("VOXCAL_AGENT_VOICE", "Kore"),
		AgentIdleTimeout:        envDurationOr("VOXCAL_AGENT_IDLE_TIMEOUT", 0),
		CalendarCredentialsPath: envOr("VOXCAL_CALENDAR_CREDENTIALS", "credentials.json"),
		CalendarTokenPath:       envOr("VOXCAL_CALENDAR_TOKEN", "token.json"),
		WSReadLimitBytes:        envInt64Or("VOXCAL_WS_READ_LIMIT_BYTES", 1<<20), // 1 MiB
		WSWriteTimeout:          envDurationOr("VOXCAL_WS_WRITE_TIMEOUT", 5*time.Second),
		HandshakeTimeout:        envDurationOr("VOXCAL_WS_HANDSHAKE_TIMEOUT", 5*time.Second),
		WSMaxSessionLife:        envDurationOr("VOXCAL_WS_MAX_DURATION", 2*time.Hour),
		CORSAllowedOrigins:      make(map[string]struct{}),
		ReadHeaderTimeout:       envDurationOr("VOXCAL_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod:     envDurationOr("VOXCAL_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("VOXCAL_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GOOGLE_API_KEY must be set")
	}
	if strings.TrimSpace(cfg.AgentModel) == "" {
		return Config{}, fmt.Errorf("VOXCAL_AGENT_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.AgentVoice) == "" {
		return Config{}, fmt.Errorf("VOXCAL_AGENT_VOICE must not be empty")
	}
	if cfg.AgentIdleTimeout < 0 {
		return Config{}, fmt.Errorf("VOXCAL_AGENT_IDLE_TIMEOUT must be >= 0")
	}
	if strings.TrimSpace(cfg.CalendarCredentialsPath) == "" {
		return Config{}, fmt.Errorf("VOXCAL_CALENDAR_CREDENTIALS must not be empty")
	}
	if strings.TrimSpace(cfg.CalendarTokenPath) == "" {
		return Config{}, fmt.Errorf("VOXCAL_CALENDAR_TOKEN must not be empty")
	}
	if cfg.WSReadLimitBytes <= 0 {
		return Config{}, fmt.Errorf("VOXCAL_WS_READ_LIMIT_BYTES must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXCAL_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.HandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXCAL_WS_HANDSHAKE_TIMEOUT must be > 0")
	}
	if cfg.WSMaxSessionLife <= 0 {
		return Config{}, fmt.Errorf("VOXCAL_WS_MAX_DURATION must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXCAL_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("VOXCAL_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
