package scheduling

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the scheduling endpoints. The bare booking endpoint
// stays public so the walk-in form works without an account.
func (h *Handler) RegisterRoutes(public *echo.Group, protected *echo.Group) {
	public.POST("/bookings", h.BookPublic)
	protected.POST("/appointments", h.Book,
		auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist, auth.RolePatient))
	protected.GET("/appointments", h.List)
	protected.PATCH("/appointments/:id/status", h.UpdateStatus,
		auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) Book(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apierr.E(apierr.Authentication, "missing credentials")
	}
	var in BookInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	a, err := h.svc.Book(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) BookPublic(c echo.Context) error {
	var in PublicBookingInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	a, err := h.svc.BookPublic(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "booking received",
		"appointment": a,
	})
}

func (h *Handler) List(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apierr.E(apierr.Authentication, "missing credentials")
	}
	page := pagination.FromContext(c)
	appts, total, err := h.svc.ListForCaller(c.Request().Context(), p, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, page.Limit, page.Offset))
}

type statusInput struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.E(apierr.Validation, "invalid appointment id")
	}
	var in statusInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, in.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
