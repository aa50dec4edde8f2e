package portal

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the portal endpoints. Token reads are deliberately
// public; the token itself is the credential.
func (h *Handler) RegisterRoutes(public *echo.Group, protected *echo.Group) {
	protected.POST("/portal/generate-token", h.GenerateToken,
		auth.RequireRole(auth.RoleDoctor))
	protected.POST("/portal/:token/deactivate", h.DeactivateToken,
		auth.RequireRole(auth.RoleDoctor))
	public.GET("/portal/:token", h.ValidateToken)
	public.GET("/portal/:token/records", h.RecordsByToken)
}

type generateInput struct {
	PatientID     uuid.UUID `json:"patient_id"`
	ExpiresInDays int       `json:"expires_in_days"`
}

func (h *Handler) GenerateToken(c echo.Context) error {
	var in generateInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	if in.PatientID == uuid.Nil {
		return apierr.E(apierr.Validation, "patient_id is required")
	}
	grant, err := h.svc.GenerateToken(c.Request().Context(), in.PatientID, in.ExpiresInDays)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, grant)
}

func (h *Handler) ValidateToken(c echo.Context) error {
	view, err := h.svc.ValidateToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patient": view})
}

func (h *Handler) RecordsByToken(c echo.Context) error {
	view, err := h.svc.RecordsByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) DeactivateToken(c echo.Context) error {
	if err := h.svc.DeactivateToken(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "token deactivated"})
}
