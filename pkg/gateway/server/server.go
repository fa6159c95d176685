package server

import (
	"log/slog"
	"net/http"

	"github.com/voxcal/voxcal/pkg/agent"
	"github.com/voxcal/voxcal/pkg/gateway/config"
	"github.com/voxcal/voxcal/pkg/gateway/handlers"
	"github.com/voxcal/voxcal/pkg/gateway/metrics"
	"github.com/voxcal/voxcal/pkg/gateway/mw"
	"github.com/voxcal/voxcal/pkg/relay"
	"github.com/voxcal/voxcal/pkg/tools"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	sessions   *relay.Registry
	dispatcher *tools.Dispatcher
}

func New(cfg config.Config, factory agent.Factory, dispatcher *tools.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		mux:        http.NewServeMux(),
		sessions:   relay.NewRegistry(factory),
		dispatcher: dispatcher,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg, Sessions: s.sessions})
	s.mux.Handle("/metrics", metrics.Handler())

	s.mux.Handle("/ws/{session_id}", handlers.WSHandler{
		Config:     s.cfg,
		Sessions:   s.sessions,
		Dispatcher: s.dispatcher,
		Logger:     s.logger,
	})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
