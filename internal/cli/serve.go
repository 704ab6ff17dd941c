package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/config"
	httpAdapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// NewServeHandler wires the engine, store and metrics into the HTTP handler.
func NewServeHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, func() error, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := NewEngine(cfg, logger, canopy.WithMetrics(reg))
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := NewEditingStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	handler := httpAdapter.NewHandler(store, engine,
		httpAdapter.WithSecret(cfg.Editing.Secret),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	return handler, closeStore, nil
}

// Serve runs the HTTP server until ctx is done, then drains it.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	handler, closeStore, err := NewServeHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Closing editing store failed", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting canopy server", "address", srv.Addr, "store", cfg.Editing.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown", "cause", context.Cause(ctx))

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Canopy server stopped gracefully")
		return nil
	}
}
