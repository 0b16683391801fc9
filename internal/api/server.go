// Package api exposes the custodial vault over HTTP. Every wallet route is
// scoped to the authenticated owner; key material never appears in any
// response except the one-time recovery phrase and recovery code exports.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/seipay/custody/internal/app"
	"github.com/seipay/custody/internal/config"
	"github.com/seipay/custody/internal/logger"
	"github.com/seipay/custody/internal/metrics"
	"github.com/seipay/custody/internal/middleware"
	apperrors "github.com/seipay/custody/pkg/errors"
)

// Server is the HTTP API server
type Server struct {
	vaultService *app.VaultService
	httpServer   *http.Server
}

// NewServer creates the API server with the standard middleware chain
func NewServer(cfg *config.Config, vaultService *app.VaultService) *Server {
	s := &Server{vaultService: vaultService}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	api := http.NewServeMux()
	api.HandleFunc("/v1/wallets", s.handleWallets)
	api.HandleFunc("/v1/wallets/", s.handleWallet)
	api.HandleFunc("/v1/audit-logs", s.handleAuditLogs)
	api.HandleFunc("/v1/recovery/restore", s.handleRestoreRecovery)
	api.HandleFunc("/v1/recovery/restore-shares", s.handleRestoreShares)

	var apiHandler http.Handler = api
	apiHandler = middleware.OwnerAuth(apiHandler)
	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
		apiHandler = limiter.Limit(apiHandler)
	}
	mux.Handle("/v1/", apiHandler)

	var handler http.Handler = mux
	handler = middleware.LimitBody(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start begins serving requests. Blocks until the server stops.
func (s *Server) Start() error {
	logger.Info(context.Background(), "starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), "failed to encode response", "error", err)
	}
}

// writeError maps an error to its HTTP representation. Unknown errors are
// collapsed to a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.IsAppError(err)
	if !ok {
		logger.Error(r.Context(), "unhandled error", "error", err)
		appErr = apperrors.ErrInternalError
	}
	writeJSON(w, appErr.StatusCode, map[string]interface{}{"error": appErr})
}

// decodeJSON decodes a request body, rejecting unknown fields
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid request body", err.Error(), http.StatusBadRequest)
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
		"error": apperrors.New(apperrors.ErrCodeBadRequest, "Method not allowed", http.StatusMethodNotAllowed),
	})
}
