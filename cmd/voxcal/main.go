package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxcal/voxcal/internal/dotenv"
	"github.com/voxcal/voxcal/pkg/agent"
	"github.com/voxcal/voxcal/pkg/agent/gemini"
	"github.com/voxcal/voxcal/pkg/calendar"
	"github.com/voxcal/voxcal/pkg/gateway/config"
	gatewayserver "github.com/voxcal/voxcal/pkg/gateway/server"
	"github.com/voxcal/voxcal/pkg/tools"
)

type gatewayDeps struct {
	loadConfig         func() (config.Config, error)
	newAgentFactory    func(context.Context, config.Config, *slog.Logger) (agent.Factory, error)
	newCalendarService func(context.Context, string, string) (calendar.Service, error)
	signalNotify       func(chan<- os.Signal, ...os.Signal)
	signalStop         func(chan<- os.Signal)
}

func defaultGatewayDeps() gatewayDeps {
	return gatewayDeps{
		loadConfig: config.LoadFromEnv,
		newAgentFactory: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (agent.Factory, error) {
			return gemini.NewFactory(ctx, gemini.Config{
				APIKey: cfg.GeminiAPIKey,
				Model:  cfg.AgentModel,
				Voice:  cfg.AgentVoice,
			}, logger)
		},
		newCalendarService: calendar.NewGoogleService,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func runGateway(ctx context.Context, logger *slog.Logger, deps gatewayDeps) error {
	if deps.loadConfig == nil {
		return errors.New("missing loadConfig dependency")
	}
	if deps.newAgentFactory == nil {
		return errors.New("missing newAgentFactory dependency")
	}
	if deps.newCalendarService == nil {
		return errors.New("missing newCalendarService dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	factory, err := deps.newAgentFactory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("agent backend: %w", err)
	}

	calendarSvc, err := deps.newCalendarService(ctx, cfg.CalendarCredentialsPath, cfg.CalendarTokenPath)
	if err != nil {
		return fmt.Errorf("calendar provider: %w", err)
	}
	registry, err := tools.NewRegistry(calendar.NewTools(calendarSvc).Adapters())
	if err != nil {
		return fmt.Errorf("tool registry: %w", err)
	}
	dispatcher := tools.NewDispatcher(registry, logger)

	gw := gatewayserver.New(cfg, factory, dispatcher, logger)
	httpSrv := buildHTTPServer(cfg, gw.Handler())

	logger.Info("starting gateway",
		"addr", cfg.Addr,
		"agent_model", cfg.AgentModel,
		"tools", registry.Names(),
	)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps gatewayDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := dotenv.Load(".env"); err != nil {
		fmt.Fprintf(stderr, "voxcal: %v\n", err)
		return 1
	}

	if err := runGateway(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "voxcal: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultGatewayDeps()))
}
