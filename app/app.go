package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/searchktools/hidouki/config"
	"github.com/searchktools/hidouki/core"
)

// App wires configuration and logging around a core.Engine
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *core.Engine
}

// New creates an application instance
func New(cfg *config.Config) *App {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is like New but sends logs to w
func NewWithWriter(cfg *config.Config, w io.Writer) *App {
	logger := NewLogger(cfg, w).With("env", cfg.Env)
	engine := core.New(cfg.Addr,
		core.WithLogger(logger),
		core.WithWorkers(cfg.Workers),
	)

	return &App{
		cfg:    cfg,
		logger: logger,
		engine: engine,
	}
}

// NewLogger builds the slog logger described by cfg
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.LevelFromString(cfg.LogLevel)}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Engine returns the underlying engine for route registration
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run serves until SIGINT/SIGTERM or a bind failure
func (a *App) Run() error {
	stop := a.awaitSignal()
	defer stop()

	a.logger.Info("starting server", "addr", a.cfg.Addr)
	if err := a.engine.Run(); err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}

	a.logger.Info("server stopped", "stats", a.engine.Stats())
	return nil
}

// awaitSignal closes the engine on SIGINT/SIGTERM. A connection being
// served finishes its cycle first. The returned func stops watching.
func (a *App) awaitSignal() func() {
	quit := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-quit:
			a.logger.Info("signal received, shutting down", "signal", sig.String())
			a.engine.Close()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(quit)
		close(done)
	}
}
