package http

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server exposes the dashboard, the JSON API, and the health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard routes plus /healthz,
// /readyz, and /metrics. corsOrigins enables CORS on /api when non-empty.
func NewServer(addr string, h *Handler, ready sharedobs.ReadinessChecker, corsOrigins []string, logger *slog.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(logger))
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.GET("/", h.dashboard)
	engine.POST("/", h.dashboard)
	engine.GET("/predict/:interval", h.dashboard)
	engine.POST("/predict/:interval", h.dashboard)
	engine.GET("/add", h.addForm)
	engine.POST("/add", h.addMeasurement)
	engine.GET("/export.xlsx", h.export)

	api := engine.Group("/api")
	if len(corsOrigins) > 0 {
		api.Use(corsMiddleware(corsOrigins))
	}
	api.GET("/predict/:interval", h.apiPredict)
	api.GET("/models", h.apiModels)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
