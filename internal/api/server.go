// Package api provides the HTTP surface of sfbilling: the tool API, the MCP endpoint and health checks.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sfbilling/sfbilling/internal/service/tool"
	"github.com/sfbilling/sfbilling/internal/telemetry"
	"github.com/sfbilling/sfbilling/pkg/types"
	"github.com/sfbilling/sfbilling/pkg/version"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	// ServiceName is reported by the health check.
	ServiceName = "Salesforce Billing MCP Server"

	APIPathPrefix = "/api"
	MCPPath       = "/mcp"

	// APIKeyHeader carries the shared secret on protected routes.
	APIKeyHeader = "x-api-key"

	// maxBodyBytes caps the size of a request body.
	maxBodyBytes = 10 << 20
)

// DefaultRateLimit allows 100 requests per client IP every 15 minutes on the tool API.
var DefaultRateLimit = limiter.Rate{
	Period: 15 * time.Minute,
	Limit:  100,
}

type ServerOptions struct {
	// Host is the interface to bind to. Empty means all interfaces.
	Host string
	// Port is the HTTP port to bind the server to
	Port string

	// APIKey is the shared secret expected in the x-api-key header.
	// When empty, the tool API and the MCP endpoint are open.
	APIKey string

	// RateLimit overrides DefaultRateLimit when set.
	RateLimit *limiter.Rate

	// CORSOrigins lists the allowed origins. Empty allows every origin.
	CORSOrigins []string

	// TrustedProxies lists the proxy addresses or CIDRs whose X-Forwarded-For header is honored
	// when identifying the client. Empty means the peer address is always the client.
	TrustedProxies []string

	Dispatcher *tool.Dispatcher

	// MCPServer exposes the tools over MCP. It is created from the dispatcher when nil.
	MCPServer *server.MCPServer

	Logger        *zap.Logger
	OtelProviders *telemetry.Providers
}

// Server is the sfbilling HTTP server.
type Server struct {
	addr   string
	apiKey string
	router *gin.Engine

	dispatcher *tool.Dispatcher
	mcpServer  *server.MCPServer
	rateLimit  limiter.Rate
	corsOrigin []string
	proxies    []string

	logger        *zap.Logger
	otelProviders *telemetry.Providers

	httpServer *http.Server
}

// NewServer initializes the gin server for the tool API and the MCP endpoint.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}
	if opts.APIKey != "" {
		if err := ValidateAPIKey(opts.APIKey); err != nil {
			return nil, fmt.Errorf("invalid API key: %w", err)
		}
	}

	s := &Server{
		addr:          net.JoinHostPort(opts.Host, opts.Port),
		apiKey:        opts.APIKey,
		dispatcher:    opts.Dispatcher,
		mcpServer:     opts.MCPServer,
		rateLimit:     DefaultRateLimit,
		corsOrigin:    opts.CORSOrigins,
		proxies:       opts.TrustedProxies,
		logger:        opts.Logger,
		otelProviders: opts.OtelProviders,
	}
	if opts.RateLimit != nil {
		s.rateLimit = *opts.RateLimit
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.mcpServer == nil {
		m, err := NewMCPServer(s.dispatcher)
		if err != nil {
			return nil, fmt.Errorf("failed to create MCP server: %w", err)
		}
		s.mcpServer = m
	}

	r, err := s.setupRouter()
	if err != nil {
		return nil, err
	}
	s.router = r
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

// Start runs the HTTP server (blocking call).
// It returns nil once the server has been shut down, even if Shutdown was called first.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to run the server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// setupRouter sets up the gin router with the tool API, the MCP endpoint and health checks.
func (s *Server) setupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// the rate limiter keys on ClientIP, which must not be spoofable through X-Forwarded-For
	if err := r.SetTrustedProxies(s.proxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(
		s.requestLogger(),
		gin.CustomRecovery(s.recoveryHandler),
		secure.New(secure.Config{
			FrameDeny:             true,
			ContentTypeNosniff:    true,
			BrowserXssFilter:      true,
			IENoOpen:              true,
			ReferrerPolicy:        "no-referrer",
			ContentSecurityPolicy: "default-src 'self'",
			STSSeconds:            15552000,
			STSIncludeSubdomains:  true,
		}),
		s.corsMiddleware(),
		limitBodySize(maxBodyBytes),
	)

	// if otel is enabled, setup prometheus metrics endpoint
	if s.otelProviders != nil && s.otelProviders.IsEnabled() {
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))
		r.GET("/metrics", gin.WrapH(s.otelProviders.Handler()))
	}

	r.GET("/health", s.healthHandler())
	r.GET(
		"/metadata",
		func(c *gin.Context) {
			c.JSON(http.StatusOK, &types.ServerMetadata{Version: version.GetVersion()})
		},
	)

	streamableHTTPServer := server.NewStreamableHTTPServer(s.mcpServer, server.WithStateLess(true))
	r.Any(MCPPath, s.requireAPIKey(), gin.WrapH(streamableHTTPServer))

	api := r.Group(APIPathPrefix, s.rateLimiter(), s.requireAPIKey())
	{
		api.GET("/tools", s.listToolsHandler())
		api.POST("/tools/:toolName", s.executeToolHandler())
		api.POST("/invoke", s.invokeToolHandler())
	}

	r.NoRoute(notFoundHandler)
	r.NoMethod(notFoundHandler)

	return r, nil
}

func (s *Server) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, &types.HealthStatus{
			Status:    "healthy",
			Service:   ServiceName,
			Version:   version.GetVersion(),
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "Endpoint not found",
		"availableEndpoints": gin.H{
			"health":      "GET /health",
			"tools":       "GET " + APIPathPrefix + "/tools",
			"executeTool": "POST " + APIPathPrefix + "/tools/:toolName",
			"invoke":      "POST " + APIPathPrefix + "/invoke",
			"mcp":         "POST " + MCPPath,
		},
	})
}
