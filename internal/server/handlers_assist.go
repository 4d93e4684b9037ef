package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/assist"
	apperrors "github.com/PADALAPRATHYUSHA/screen-mirroring/internal/errors"
)

type assistRequest struct {
	Question string `json:"question"`
}

type assistResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleAssist(c echo.Context) error {
	var req assistRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if strings.TrimSpace(req.Question) == "" {
		return apperrors.ValidationError("question must not be empty")
	}

	prompt := assist.BuildPrompt(req.Question, s.auditLog.Recent())
	text, err := s.assistant.Analyze(c.Request().Context(), prompt)
	if err != nil {
		return apperrors.ExternalError("analysis request failed", err)
	}

	if err := c.JSON(http.StatusOK, assistResponse{Text: text}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
