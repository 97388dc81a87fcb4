// Command server runs the DevConnect API.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnect/internal/bootstrap"
	"devconnect/internal/config"
	"devconnect/internal/middleware"
	"devconnect/internal/observability"
	"devconnect/internal/server"
)

// @title DevConnect API
// @version 1.0
// @description Developer social network API with profiles, posts, likes and comments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@devconnect.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey TokenAuth
// @in header
// @name x-auth-token
// @description JWT issued by /users or /auth.

func main() {
	seedDemo := flag.Bool("seed", false, "fill an empty store with demo data before serving")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.NewServer(startCtx, cfg, bootstrap.Options{SeedDemo: *seedDemo})
	cancelStart()
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(srv, sigChan, shutdownTracing); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until stop fires. Start returns as soon as the listener
// closes, so serve waits for the rest of Shutdown and the trace flush.
func serve(srv lifecycle, stop <-chan os.Signal, flushTracing func(context.Context) error) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server resource shutdown error", slog.String("error", err.Error()))
		}
		if err := flushTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		return err
	}
	<-done
	return nil
}
