package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caremsg/caremsg/internal/platform/auth"
	"github.com/caremsg/caremsg/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	authGroup := api.Group("/auth", auth.RequireTier(auth.TierAuthenticated))
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.Me)

	mgrGroup := api.Group("/users", auth.RequireTier(auth.TierManager))
	mgrGroup.GET("/attendants", h.ListAttendants)
	mgrGroup.PATCH("/:id/role", h.UpdateRole)
}

func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	u, err := h.svc.Login(ctx, claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	p := auth.PrincipalFromContext(ctx)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	u, err := h.svc.GetUser(ctx, p.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListAttendants(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListAttendants(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateRole(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateRole(c.Request().Context(), id, body.Role); err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"role": body.Role})
}
