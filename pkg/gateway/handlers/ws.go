package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/voxcal/voxcal/pkg/gateway/config"
	"github.com/voxcal/voxcal/pkg/gateway/metrics"
	"github.com/voxcal/voxcal/pkg/gateway/mw"
	"github.com/voxcal/voxcal/pkg/relay"
	"github.com/voxcal/voxcal/pkg/tools"
)

// WSHandler handles /ws/{session_id} connections. Each connection binds a
// browser client to one agent session for its lifetime; reconnecting under
// the same session id replaces the previous agent session.
type WSHandler struct {
	Config     config.Config
	Sessions   *relay.Registry
	Dispatcher *tools.Dispatcher
	Logger     *slog.Logger
}

func (h WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if !h.originAllowed(r) {
		http.Error(w, "origin is not allowed", http.StatusForbidden)
		return
	}
	isAudio := r.URL.Query().Get("is_audio") == "true"

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reqID, _ := mw.RequestIDFrom(r.Context())
	connID := uuid.NewString()
	logger = logger.With(
		"request_id", reqID,
		"conn_id", connID,
		"session_id", sessionID,
		"is_audio", isAudio,
	)

	upgrader := websocket.Upgrader{
		HandshakeTimeout: h.Config.HandshakeTimeout,
		// Origin is enforced above against the configured allowlist.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	if h.Config.WSReadLimitBytes > 0 {
		conn.SetReadLimit(h.Config.WSReadLimitBytes)
	}

	ctx := r.Context()
	if h.Config.WSMaxSessionLife > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Config.WSMaxSessionLife)
		defer cancel()
	}

	session, err := h.Sessions.Acquire(ctx, sessionID, isAudio)
	if err != nil {
		logger.Error("agent session unavailable", "error", err)
		closeMsg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "agent unavailable")
		_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
		return
	}
	defer h.Sessions.Release(sessionID, session)

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()
	logger.Info("client connected")

	run := relay.New(conn, session, h.Dispatcher, relay.Options{
		Logger:       logger,
		IdleTimeout:  h.Config.AgentIdleTimeout,
		WriteTimeout: h.Config.WSWriteTimeout,
	})
	err = run.Run(ctx)
	switch {
	case err == nil:
		logger.Info("client disconnected")
	case errors.Is(err, relay.ErrAgentIdle):
		logger.Warn("agent idle timeout, closing connection")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Info("session lifetime exceeded, closing connection")
	default:
		var decodeErr *relay.DecodeError
		if errors.As(err, &decodeErr) {
			logger.Warn("client protocol error", "error", decodeErr)
			closeMsg := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, decodeErr.Error())
			_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
			return
		}
		logger.Error("relay terminated", "error", err)
	}
}

func (h WSHandler) originAllowed(r *http.Request) bool {
	// No allowlist means non-browser clients only; they send no Origin.
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if len(h.Config.CORSAllowedOrigins) == 0 {
		return false
	}
	_, ok := h.Config.CORSAllowedOrigins[origin]
	return ok
}
