// Command server is the entry point for the forum web application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum/internal/config"
	"forum/internal/middleware"
	"forum/internal/observability"
	"forum/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.Logger = middleware.NewLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    observability.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := shutdownOnSignal(sigChan, 10*time.Second, srv.Shutdown, shutdownTracing)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	<-done
	middleware.Logger.Info("server stopped")
}

// shutdownOnSignal runs each step in order after the first signal, sharing one timeout.
// The returned channel closes once every step has returned.
func shutdownOnSignal(sig <-chan os.Signal, timeout time.Duration, steps ...func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sig

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, step := range steps {
			if err := step(ctx); err != nil {
				middleware.Logger.Error("shutdown step failed", "error", err)
			}
		}
	}()
	return done
}
