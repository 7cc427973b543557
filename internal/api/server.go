// Package api exposes the prediction service over HTTP: the health probe,
// the identity endpoints, and the doctor-scoped classification, record,
// statistics and report routes.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/config"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/service"
)

// HealthChecker reports storage connectivity for the health probe.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps collects everything the HTTP layer serves.
type Deps struct {
	Config     *config.Config
	DB         HealthChecker
	Engine     domain.ModelEngine
	Resolver   domain.IdentityResolver
	Accounts   *service.AccountService
	Classifier *service.ClassifierService
	Records    *service.RecordsService
	Stats      *service.StatsService
	Reports    *service.ReportService
	Log        *logrus.Logger
}

// Server is the HTTP front of the service.
type Server struct {
	deps   Deps
	router *gin.Engine
	server *http.Server
}

// NewServer builds the router with its middleware chain and routes.
func NewServer(deps Deps) *Server {
	if deps.Config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(deps.Log))
	router.Use(CORS())
	router.Use(SecurityHeaders())
	if deps.Config.RateLimit.Enabled {
		router.Use(RateLimit(deps.Config.RateLimit.RPS, deps.Config.RateLimit.Burst))
	}
	router.MaxMultipartMemory = deps.Config.Server.MaxUploadBytes

	s := &Server{deps: deps, router: router}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", s.handleSignup)
		auth.POST("/login", s.handleLogin)
		auth.GET("/verify", Authenticate(s.deps.Resolver), s.handleVerify)
	}

	protected := v1.Group("")
	protected.Use(Authenticate(s.deps.Resolver))
	{
		protected.POST("/predict", s.handlePredict)
		protected.POST("/scans", s.handlePredictAndSave)
		protected.GET("/scans", s.handleListScans)
		protected.POST("/patients", s.handleAddPatient)
		protected.GET("/patients", s.handleListPatients)
		protected.GET("/patients/:id", s.handleGetPatient)
		protected.GET("/patients/:id/scans", s.handlePatientScans)
		protected.GET("/stats", s.handleStats)
		protected.POST("/reports", s.handleGenerateReport)
		protected.GET("/reports", s.handleListReports)
		protected.GET("/reports/:id", s.handleGetReport)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.deps.Config.Server
	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Log.WithField("address", s.server.Addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	s.deps.Log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}
