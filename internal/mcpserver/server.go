package mcpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/client"
)

// Server is the MCP server that turns tool calls into provisioning API calls.
type Server struct {
	router chi.Router
	logger zerolog.Logger
	cfg    *Config
}

// New builds the MCP endpoint at /mcp backed by the API at cfg.APIURL.
func New(cfg *Config, logger zerolog.Logger) *Server {
	base := client.New(cfg.APIURL, cfg.Secret)
	return newServer(cfg, func(req mcp.CallToolRequest) API {
		return sessionClient(base, req)
	}, logger)
}

func newServer(cfg *Config, api apiFor, logger zerolog.Logger) *Server {
	tools := BuildTools(cfg, api, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mcpSrv := server.NewMCPServer(
		"provisioner",
		"1.0.0",
		server.WithInstructions(cfg.Instructions),
	)
	mcpSrv.AddTools(tools...)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv, server.WithEndpointPath("/")))

	logger.Info().Int("tools", len(tools)).Str("api_url", cfg.APIURL).Msg("mounted MCP endpoint at /mcp")

	return &Server{
		router: router,
		logger: logger,
		cfg:    cfg,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// sessionClient forwards the secret from the MCP session headers when present,
// accepting it as X-Provisioning-Secret or a bearer token.
func sessionClient(base *client.Client, req mcp.CallToolRequest) API {
	secret := req.Header.Get(client.SecretHeader)
	if secret == "" {
		if auth := req.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			secret = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if secret == "" || secret == base.Secret {
		return base
	}
	c := *base
	c.Secret = secret
	return &c
}
