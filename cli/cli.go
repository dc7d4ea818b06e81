package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var version = "dev"

func Version() string {
	return version
}

// Health statuses reported on the /health endpoint.
const (
	HealthOK       = "ok"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// Bootstrap builds the process logger. ENABLE_PRETTY_LOG=true switches to the development
// encoder.
func Bootstrap(fields ...zap.Field) *zap.Logger {
	fields = append(fields, zap.String("version", Version()))
	if allocID := os.Getenv("NOMAD_ALLOC_ID"); allocID != "" {
		fields = append(fields,
			zap.String("nomad_alloc_id", allocID),
			zap.String("nomad_alloc_name", os.Getenv("NOMAD_ALLOC_NAME")),
			zap.String("nomad_alloc_index", os.Getenv("NOMAD_ALLOC_INDEX")),
		)
	}
	opts := []zap.Option{
		zap.Fields(fields...),
	}
	var logger *zap.Logger
	var err error
	if os.Getenv("ENABLE_PRETTY_LOG") == "true" {
		logger, err = zap.NewDevelopment(opts...)
	} else {
		logger, err = zap.NewProduction(opts...)
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// Router serves prometheus metrics and the health of the process.
func Router(health func() string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		switch health() {
		case HealthWarning:
			w.WriteHeader(http.StatusTooManyRequests)
		case HealthCritical:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	return r
}

// ServeHTTPHealth runs Router on port until ctx is done.
func ServeHTTPHealth(ctx context.Context, logger *zap.Logger, port int, health func() string) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: Router(health),
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("failed to run healthcheck endpoint", zap.Error(err))
	}
}

// SignalContext returns a context cancelled when the process receives a termination signal.
func SignalContext(logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		defer signal.Stop(sigc)
		select {
		case <-sigc:
			logger.Info("received termination signal")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
