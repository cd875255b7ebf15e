package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tribunal/internal/api/health"
	"tribunal/internal/api/jsonrpc"
	"tribunal/internal/metrics"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// ServiceInfo is the /info payload
type ServiceInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Protocol    string            `json:"protocol"`
	Transport   string            `json:"transport"`
	Endpoints   map[string]string `json:"endpoints"`
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, rpc *jsonrpc.Handler, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	healthHandler := health.New(log, cfg.ServiceName, cfg.Version)

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Service info endpoint
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ServiceInfo{
			Name:        cfg.ServiceName,
			Version:     cfg.Version,
			Description: "MCP server for financial analysis",
			Protocol:    "JSON-RPC 2.0",
			Transport:   "Streamable HTTP",
			Endpoints: map[string]string{
				"mcp":    "/mcp",
				"health": "/health",
			},
		})
	})

	// JSON-RPC endpoint, served at /mcp and at the root
	mux.Handle("/mcp", rpc)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		rpc.ServeHTTP(w, r)
	})

	port := 8000
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
		// WriteTimeout leaves room for tool calls that reach out to
		// market data providers.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
