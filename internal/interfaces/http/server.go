// Package http provides the HTTP adapter for the application layer.
// It translates requests into service calls; all authorization and
// workflow decisions stay in the services.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quyenpham2020/shinsei-portal/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the server exposes
type Services struct {
	Auth         service.AuthService
	Application  service.ApplicationService
	WeeklyReport service.WeeklyReportService
	User         service.UserService
	MasterData   service.MasterDataService
	Favorite     service.FavoriteService
	Attachment   service.AttachmentService
	Audit        service.AuditService
}

// Server is the HTTP server adapter
type Server struct {
	config      ServerConfig
	httpServer  *http.Server
	router      *gin.Engine
	authService service.AuthService
	handlers    *Handlers
	logger      Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:      config,
		router:      router,
		authService: services.Auth,
		handlers:    NewHandlers(services, logger),
		logger:      logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	// Health check
	s.router.GET("/health", h.HealthCheck)

	// Login is the only unauthenticated API route
	s.router.POST("/api/auth/login", h.Login)

	api := s.router.Group("/api")
	api.Use(s.authMiddleware())
	{
		// Auth
		api.GET("/auth/me", h.Me)
		api.POST("/auth/change-password", h.ChangePassword)

		// Applications and their workflow
		api.POST("/applications", h.CreateApplication)
		api.GET("/applications", h.ListApplications)
		api.POST("/applications/bulk-approve", h.BulkApprove)
		api.POST("/applications/bulk-reject", h.BulkReject)
		api.GET("/applications/:id", h.GetApplication)
		api.PUT("/applications/:id", h.UpdateApplication)
		api.DELETE("/applications/:id", h.DeleteApplication)
		api.POST("/applications/:id/submit", h.SubmitApplication)
		api.POST("/applications/:id/approve", h.ApproveApplication)
		api.POST("/applications/:id/reject", h.RejectApplication)
		api.GET("/applications/:id/comments", h.ListComments)
		api.POST("/applications/:id/comments", h.AddComment)
		api.GET("/applications/:id/attachments", h.ListAttachments)
		api.POST("/applications/:id/attachments", h.AddAttachment)
		api.GET("/applications/:id/audit", h.AuditTrail)
		api.POST("/applications/:id/favorite", h.ToggleFavorite)
		api.DELETE("/attachments/:id", h.DeleteAttachment)
		api.GET("/favorites", h.ListFavorites)

		// Weekly reports
		api.POST("/weekly-reports", h.UpsertWeeklyReport)
		api.GET("/weekly-reports", h.ListWeeklyReports)
		api.GET("/weekly-reports/mine", h.MyWeeklyReports)
		api.GET("/weekly-reports/pending", h.PendingWeeklyReports)
		api.GET("/weekly-reports/:id", h.GetWeeklyReport)
		api.DELETE("/weekly-reports/:id", h.DeleteWeeklyReport)

		// Users and system access
		api.POST("/users", h.CreateUser)
		api.GET("/users", h.ListUsers)
		api.GET("/users/approvers", h.ListApproverUsers)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/:id", h.UpdateUser)
		api.DELETE("/users/:id", h.DeleteUser)
		api.PUT("/users/:id/systems", h.SetSystemAccess)
		api.POST("/users/system-access/bulk", h.BulkSetSystemAccess)

		// Master data
		api.GET("/departments", h.ListDepartments)
		api.POST("/departments", h.CreateDepartment)
		api.PUT("/departments/:id", h.UpdateDepartment)
		api.DELETE("/departments/:id", h.DeleteDepartment)

		api.GET("/teams", h.ListTeams)
		api.POST("/teams", h.CreateTeam)
		api.GET("/teams/:id", h.GetTeam)
		api.PUT("/teams/:id", h.UpdateTeam)
		api.DELETE("/teams/:id", h.DeleteTeam)

		api.GET("/application-types", h.ListApplicationTypes)
		api.POST("/application-types", h.CreateApplicationType)
		api.PUT("/application-types/:id", h.UpdateApplicationType)
		api.DELETE("/application-types/:id", h.DeleteApplicationType)

		api.GET("/approvers", h.ListApproverAssignments)
		api.POST("/approvers", h.CreateApproverAssignment)
		api.PUT("/approvers/:id", h.UpdateApproverAssignment)
		api.DELETE("/approvers/:id", h.DeleteApproverAssignment)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
