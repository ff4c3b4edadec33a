// Package api exposes the settings console over a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"sitemap-console/pkg/config"
	"sitemap-console/pkg/console"
	"sitemap-console/pkg/document"
	"sitemap-console/pkg/ratelimit"
	"sitemap-console/pkg/storage"
	"sitemap-console/pkg/telemetry"
)

// Server represents the API server
type Server struct {
	handler    http.Handler
	httpServer *http.Server
	acmeServer *http.Server
	logger     *slog.Logger

	// Dependencies
	session     *console.Session
	source      *document.FileSource
	storage     storage.Storage
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
	rateLimiter *ratelimit.Manager

	trustedProxies []*net.IPNet
	corsOrigins    map[string]struct{}

	authMu       sync.RWMutex
	authEnabled  bool
	apiKey       string
	authHeader   string
	basicUser    string
	passwordHash string

	// Metadata
	version   string
	startTime time.Time
}

// Config holds API server configuration
type Config struct {
	Server      config.ServerConfig
	Auth        config.AuthConfig
	Session     *console.Session
	Source      *document.FileSource
	Storage     storage.Storage
	Metrics     *telemetry.Metrics
	Tracer      trace.Tracer
	RateLimiter *ratelimit.Manager
	Logger      *slog.Logger
	Version     string
}

// New creates a new API server
func New(cfg *Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Session == nil {
		return nil, errors.New("api server requires a console session")
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NewNoOpStorage()
	}

	s := &Server{
		logger:      cfg.Logger,
		session:     cfg.Session,
		source:      cfg.Source,
		storage:     cfg.Storage,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		rateLimiter: cfg.RateLimiter,
		corsOrigins: make(map[string]struct{}, len(cfg.Server.CORSOrigins)),
		version:     cfg.Version,
		startTime:   time.Now(),
	}

	proxies, err := parseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	s.trustedProxies = proxies
	for _, origin := range cfg.Server.CORSOrigins {
		s.corsOrigins[origin] = struct{}{}
	}
	s.applyAuthConfig(cfg.Auth)

	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealthz) // Kubernetes liveness probe
	mux.HandleFunc("GET /readyz", s.handleReadyz)   // Kubernetes readiness probe
	mux.HandleFunc("GET /api/system", s.handleSystem)

	// Sites
	mux.HandleFunc("GET /api/sites", s.handleSites)
	mux.HandleFunc("POST /api/sites/{id}/select", s.handleSelectSite)
	mux.HandleFunc("PUT /api/sites/{id}/enabled", s.handleSiteEnabled)

	// Pages
	mux.HandleFunc("GET /api/pages", s.handlePages)
	mux.HandleFunc("GET /api/pages/{page}", s.handlePage)
	mux.HandleFunc("POST /api/pages/{page}/show", s.handleShowPage)
	mux.HandleFunc("POST /api/pages/{page}/reload", s.handleReloadPage)
	mux.HandleFunc("POST /api/pages/{page}/revert", s.handleRevertPage)
	mux.HandleFunc("PUT /api/pages/{page}/customize", s.handleCustomize)

	// Settings and lists. Qualified names escape the slash: WebSitemapSettings%2Fenabled
	mux.HandleFunc("PUT /api/pages/{page}/settings/{name}", s.handleInput)
	mux.HandleFunc("POST /api/pages/{page}/settings/{name}/revert", s.handleRevertSetting)
	mux.HandleFunc("POST /api/pages/{page}/lists/{name}/items", s.handleAddItem)
	mux.HandleFunc("DELETE /api/pages/{page}/lists/{name}/items/{index}", s.handleDeleteItem)

	// Document
	mux.HandleFunc("POST /api/save", s.handleSave)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/document", s.handleDocument)

	// Revisions
	mux.HandleFunc("GET /api/revisions", s.handleRevisions)
	mux.HandleFunc("GET /api/revisions/{id}", s.handleRevision)
	mux.HandleFunc("POST /api/revisions/{id}/restore", s.handleRestoreRevision)

	// Apply middleware
	handler := s.authMiddleware(mux)
	handler = s.rateLimitMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.corsMiddleware(handler)

	s.handler = handler
	s.httpServer = &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.Server.TLS.Enabled {
		tlsCfg, acmeHTTP := buildAutocert(cfg.Server.TLS, s.logger)
		s.httpServer.TLSConfig = tlsCfg
		s.acmeServer = acmeHTTP
	}

	return s, nil
}

// Handler returns the fully wrapped handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the API server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server", "address", s.httpServer.Addr, "tls", s.httpServer.TLSConfig != nil)

	errChan := make(chan error, 2)
	go func() {
		var err error
		if s.httpServer.TLSConfig != nil {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	if s.acmeServer != nil {
		go func() {
			s.logger.Info("Starting ACME HTTP-01 listener", "address", s.acmeServer.Addr)
			if err := s.acmeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("acme http-01 listener: %w", err)
			}
		}()
	}

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	if s.acmeServer != nil {
		if err := s.acmeServer.Shutdown(ctx); err != nil {
			s.logger.Warn("ACME listener shutdown failed", "error", err)
		}
	}
	return s.httpServer.Shutdown(ctx)
}

// secureTransport reports whether the API is served over TLS.
func (s *Server) secureTransport() bool {
	return s.httpServer != nil && s.httpServer.TLSConfig != nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

// getUptime returns the server uptime as a string
func (s *Server) getUptime() string {
	uptime := time.Since(s.startTime)

	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

func parseTrustedProxies(values []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(values))
	for _, v := range values {
		if ip := net.ParseIP(v); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
		}
		nets = append(nets, network)
	}
	return nets, nil
}
