package api

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/api/handler"
	mw "github.com/edvin/provisioner/internal/api/middleware"
	"github.com/edvin/provisioner/internal/config"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	svc         handler.Provisioner
	cfg         *config.Config
	auditLogger *mw.AuditLogger
	limiter     *mw.RateLimiter
}

// NewServer wires the HTTP surface. auditLogger may be nil, which disables
// the audit trail.
func NewServer(logger zerolog.Logger, svc handler.Provisioner, cfg *config.Config, auditLogger *mw.AuditLogger) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		svc:         svc,
		cfg:         cfg,
		auditLogger: auditLogger,
		limiter:     mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)

	health := handler.NewHealth(s.svc)
	s.router.Get("/health", health.Get)

	// API documentation (no auth required)
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.SharedSecret(s.cfg.ProvisioningSecret))
		if s.auditLogger != nil {
			r.Use(s.auditLogger.Middleware)
		}

		provision := handler.NewProvision(s.svc)
		r.Get("/check-subdomain/{name}", provision.CheckSubdomain)
		r.With(s.limiter.Middleware).Post("/provision", provision.Create)
		r.Delete("/deprovision/{subdomain}", provision.Deprovision)

		tenant := handler.NewTenant(s.svc)
		r.Get("/tenants", tenant.List)
		r.Post("/tenants/{subdomain}/status", tenant.SetStatus)
		r.Post("/tenants/{subdomain}/reset-password", tenant.ResetPassword)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Tenant Provisioning API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
