// Package main runs the feed service: a REST API over the post, product and contact collections.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/meiasjamais/internal/app"
	"github.com/abgdnv/meiasjamais/internal/config"
	"github.com/abgdnv/meiasjamais/internal/store"
	"github.com/abgdnv/meiasjamais/pkg/bootstrap"
	"github.com/abgdnv/meiasjamais/pkg/resilience"
	"github.com/abgdnv/meiasjamais/pkg/server"
	"github.com/abgdnv/meiasjamais/pkg/telemetry"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, connects to MongoDB, and starts the HTTP, gRPC and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(config.ServiceName, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	g, gCtx := errgroup.WithContext(ctx)
	lc := &stopper{g: g, ctx: gCtx, timeout: cfg.Shutdown.Timeout, logger: logger}

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, config.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		lc.onDone("tracer provider", tracerProvider.Shutdown)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		meterProvider, handler, err := telemetry.NewMeterProvider(config.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		metricsHandler = handler
		lc.onDone("meter provider", meterProvider.Shutdown)
	}

	client, err := bootstrap.NewMongoClient(ctx, cfg.Database.URL, cfg.Database.Timeout, cfg.Log.Commands, logger)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("Failed to disconnect from MongoDB", slog.Any("error", err))
			return
		}
		logger.Info("MongoDB client disconnected")
	}()
	logger.Info("Successfully connected to the database!", slog.String("database", cfg.Database.Name))

	var breaker *gobreaker.CircuitBreaker[any]
	if cfg.CircuitBreaker.Enabled {
		breaker = resilience.NewCircuitBreaker(cfg.Database.Name, cfg.CircuitBreaker, store.IsSuccessful, logger)
	}

	deps := app.SetupDependencies(client, cfg.Database.Name, cfg.Database.QueryTimeout, breaker, metricsHandler, cfg.Telemetry.Metrics.Path, logger)

	lc.serveHTTP("HTTP", app.SetupHttpServer(deps, cfg))

	// Follow database reachability in the gRPC health service
	g.Go(func() error {
		return deps.Health.Watch(gCtx, cfg.GRPC.HealthInterval)
	})

	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	g.Go(func() error {
		grpcAddr := server.Addr(cfg.GRPC.Port)
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	lc.onDone("gRPC server", func(shutdownCtx context.Context) error {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			return nil
		case <-shutdownCtx.Done():
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	if cfg.PProf.Enabled {
		// the pprof handlers register themselves on http.DefaultServeMux
		lc.serveHTTP("pprof", &http.Server{
			Addr:              cfg.PProf.Addr,
			ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// stopper schedules work on the errgroup that runs until the group's context is done.
type stopper struct {
	g       *errgroup.Group
	ctx     context.Context
	timeout time.Duration
	logger  *slog.Logger
}

// onDone calls shutdown with a fresh deadline once the group's context is cancelled.
func (s *stopper) onDone(name string, shutdown func(context.Context) error) {
	s.g.Go(func() error {
		<-s.ctx.Done()
		s.logger.Info("Shutting down " + name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown %s: %w", name, err)
		}
		s.logger.Info(name + " stopped")
		return nil
	})
}

// serveHTTP runs srv until the group's context is cancelled, then drains it.
func (s *stopper) serveHTTP(name string, srv *http.Server) {
	s.g.Go(func() error {
		s.logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	s.onDone(name+" server", srv.Shutdown)
}
