package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Device registry
	s.echo.POST("/api/devices", s.handleRegisterDevice, s.requireUser)
	s.echo.GET("/api/devices", s.handleListDevices, s.requireUser)

	// Session coordination
	s.echo.POST("/api/session/start", s.handleStartSession, s.requireUser)
	s.echo.POST("/api/session/stop", s.handleStopSession, s.requireUser)
	s.echo.GET("/api/session", s.handleGetSession, s.requireUser)

	// Audit trail for the UI's log panel
	s.echo.GET("/api/audit", s.handleAuditLog, s.requireUser)

	// Analysis assistant (wired only when an API key is configured)
	if s.assistant != nil {
		s.echo.POST("/api/assist", s.handleAssist, s.requireUser)
	}

	// Session change feed
	s.echo.GET("/ws/session", s.handleSessionFeed, s.requireUser)
}
