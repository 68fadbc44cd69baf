package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/halcen/marquee/pkg/templating"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := "./config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(config.Server.LogLevel),
	}))
	logger.Info("Starting preview server", "version", Version, "commit", Commit, "build_date", BuildDate)

	env, err := templating.NewEnvironment(logger, config.Templates)
	if err != nil {
		logger.Error("Failed to create template environment", "error", err)
		os.Exit(1)
	}
	for name, pattern := range config.Server.Routes {
		env.RegisterRoute(name, pattern)
	}
	if err = env.Refresh(); err != nil {
		logger.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	server := NewServer(config, logger, env)
	httpServer := &http.Server{
		Addr:              config.Server.ServerAddr,
		Handler:           server.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("Listening", "addr", config.Server.ServerAddr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
