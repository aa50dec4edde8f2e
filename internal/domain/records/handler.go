package records

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

// RegisterRoutes wires the medical record endpoints. Writing records is a
// doctor-only operation.
func (h *Handler) RegisterRoutes(protected *echo.Group) {
	protected.POST("/medical-records", h.Create, auth.RequireRole(auth.RoleDoctor))
	protected.GET("/medical-records/patient/:id", h.ListByPatient,
		auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) Create(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apierr.E(apierr.Authentication, "missing credentials")
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	rec, err := h.svc.Create(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.E(apierr.Validation, "invalid patient id")
	}
	recs, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"records": recs})
}
