package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/validation"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

type Controller struct {
	svc domain.Service
}

func New(svc domain.Service) *Controller { return &Controller{svc: svc} }

// Register mounts the template endpoints.
func (h *Controller) Register(e *echo.Echo) {
	e.GET("/api/templates", h.list)
	e.POST("/api/preview-template", h.preview)
}

type previewRequest struct {
	TemplateID string           `json:"template_id" validate:"required"`
	Customer   domain.Recipient `json:"customer"`
}

type previewResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Success bool   `json:"success"`
}

func (h *Controller) list(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"templates": h.svc.List(c.Request().Context()),
		"success":   true,
	})
}

func (h *Controller) preview(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid json", "success": false})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	msg, err := h.svc.Render(c.Request().Context(), req.TemplateID, req.Customer)
	if errors.Is(err, domain.ErrTemplateNotFound) {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "Template not found", "success": false})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error(), "success": false})
	}
	return c.JSON(http.StatusOK, previewResponse{Subject: msg.Subject, Body: msg.Body, Success: true})
}
