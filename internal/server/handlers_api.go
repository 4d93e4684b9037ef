package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
	apperrors "github.com/PADALAPRATHYUSHA/screen-mirroring/internal/errors"
)

type registerDeviceRequest struct {
	Name string `json:"name"`
}

type startSessionRequest struct {
	DeviceID string `json:"device_id"`
}

func (s *Server) handleRegisterDevice(c echo.Context) error {
	userID := currentUser(c)

	var req registerDeviceRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	device, err := s.app.RegisterDevice(c.Request().Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNameEmpty) {
			return apperrors.ValidationError("device name must not be empty")
		}
		return apperrors.InternalError("failed to register device", err).WithField("user_id", userID)
	}

	if err := c.JSON(http.StatusCreated, device); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListDevices(c echo.Context) error {
	userID := currentUser(c)

	devices, err := s.app.ListDevices(c.Request().Context(), userID)
	if err != nil {
		return apperrors.InternalError("failed to list devices", err).WithField("user_id", userID)
	}
	if devices == nil {
		devices = []domain.Device{}
	}

	if err := c.JSON(http.StatusOK, devices); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleStartSession(c echo.Context) error {
	userID := currentUser(c)

	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		return apperrors.ValidationError("invalid device ID").WithField("device_id", req.DeviceID)
	}

	session, err := s.app.StartSession(c.Request().Context(), userID, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDeviceNotFound):
			return apperrors.NotFoundError("device not found").
				WithField("device_id", deviceID.String())
		case errors.Is(err, domain.ErrDeviceNotAuthorized):
			return apperrors.UnauthorizedError("device is not registered for this user").
				WithField("device_id", deviceID.String())
		case errors.Is(err, domain.ErrSessionActive):
			return apperrors.ConflictError("a mirroring session is already active").
				WithField("user_id", userID)
		default:
			return apperrors.InternalError("failed to start session", err).WithField("user_id", userID)
		}
	}

	if err := c.JSON(http.StatusCreated, session); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleStopSession(c echo.Context) error {
	userID := currentUser(c)

	if err := s.app.StopSession(c.Request().Context(), userID); err != nil {
		return apperrors.InternalError("failed to stop session", err).WithField("user_id", userID)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetSession(c echo.Context) error {
	userID := currentUser(c)

	session, err := s.app.GetActiveSession(c.Request().Context(), userID)
	if err != nil {
		return apperrors.InternalError("failed to read session", err).WithField("user_id", userID)
	}
	if session == nil {
		return c.NoContent(http.StatusNoContent)
	}

	if err := c.JSON(http.StatusOK, session); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAuditLog(c echo.Context) error {
	lines := s.auditLog.Recent()
	if lines == nil {
		lines = []string{}
	}
	if err := c.JSON(http.StatusOK, map[string][]string{"lines": lines}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
