// Package httpserver runs the ambient health/metrics HTTP surface: a
// gorilla/mux router behind rs/cors, shut down on context cancellation, the
// same shape as the teacher's server/json_rpc.go JSON-RPC server and
// metrics/geth.go's StartGethMetricServer.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cosmossdk.io/log"
	gethmetrics "github.com/ethereum/go-ethereum/metrics"
	gethprom "github.com/ethereum/go-ethereum/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Config controls the server's listen address and CORS policy. Ready, if
// set, backs /readyz: a non-nil error is reported as 503, letting the
// registry's stores (DB connectivity) gate readiness independently of the
// process's own liveness.
type Config struct {
	Addr             string
	EnableUnsafeCORS bool
	Ready            func(ctx context.Context) error
}

// Serve runs the health/metrics HTTP server until ctx is cancelled, then
// shuts it down gracefully. Mirrors metrics/geth.go's StartGethMetricServer
// select-on-ctx-or-listen-error shape.
func Serve(ctx context.Context, logger log.Logger, cfg Config) error {
	logger = logger.With("module", "httpserver")

	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readyHandler(cfg.Ready)).Methods(http.MethodGet)
	r.Handle("/metrics", gethprom.Handler(gethmetrics.DefaultRegistry)).Methods(http.MethodGet)

	handler := cors.Default()
	if cfg.EnableUnsafeCORS {
		handler = cors.AllowAll()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("stopping http server", "address", cfg.Addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "err", err)
			return err
		}
		return nil

	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed to start", "err", err)
			return err
		}
		return nil
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func readyHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready == nil {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			return
		}
		if err := ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unready", "reason": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
