package identity

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

// RegisterRoutes wires the auth endpoints. Register and login are public;
// profile requires a session.
func (h *Handler) RegisterRoutes(public *echo.Group, protected *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	protected.GET("/auth/profile", h.GetProfile)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	profile, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "user registered successfully",
		"user":    profile,
	})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var in loginInput
	if err := c.Bind(&in); err != nil {
		return apierr.E(apierr.Validation, "malformed request body")
	}
	profile, err := h.svc.Authenticate(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	token, err := h.svc.IssueSession(profile)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token": token,
		"user":         profile,
	})
}

func (h *Handler) GetProfile(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apierr.E(apierr.Authentication, "missing credentials")
	}
	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		return apierr.E(apierr.Authentication, "invalid credentials")
	}
	profile, err := h.svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": profile})
}
