package patient

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

// RegisterRoutes wires the patient registry endpoints. Reads are staff-only;
// a patient may update their own demographics.
func (h *Handler) RegisterRoutes(protected *echo.Group) {
	staff := auth.RequireRole(auth.RoleDoctor)
	protected.GET("/patients", h.List, staff)
	protected.GET("/patients/:id", h.Get, staff)
	protected.GET("/patients/:id/history", h.History, staff)
	protected.POST("/patients", h.Create, staff)
	protected.PUT("/patients/:id", h.Update,
		auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
}

func (h *Handler) List(c echo.Context) error {
	page := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, page.Limit, page.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.E(apierr.Validation, "invalid patient id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.E(apierr.Validation, "invalid patient id")
	}
	hist, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hist)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Update(c echo.Context) error {
	caller, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apierr.E(apierr.Authentication, "missing credentials")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.E(apierr.Validation, "invalid patient id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	p, err := h.svc.Update(c.Request().Context(), caller, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
