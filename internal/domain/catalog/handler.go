package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Channel listing is the one public read; everything else is gated.
	api.GET("/channels", h.ListChannels)
	api.POST("/channels", h.CreateChannel, auth.RequireTier(auth.TierManager))

	qr := api.Group("/quick-replies")
	qr.GET("", h.ListQuickReplies, auth.RequireTier(auth.TierAttendant))
	qr.POST("", h.CreateQuickReply, auth.RequireTier(auth.TierManager))
	qr.PATCH("/:id/deactivate", h.DeactivateQuickReply, auth.RequireTier(auth.TierManager))
}

func (h *Handler) ListChannels(c echo.Context) error {
	channels, err := h.svc.ListChannels(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, channels)
}

func (h *Handler) CreateChannel(c echo.Context) error {
	var ch Channel
	if err := c.Bind(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateChannel(c.Request().Context(), &ch); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *Handler) ListQuickReplies(c echo.Context) error {
	replies, err := h.svc.ListQuickReplies(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, replies)
}

func (h *Handler) CreateQuickReply(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var qr QuickReply
	if err := c.Bind(&qr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	qr.CreatedBy = p.ID
	if err := h.svc.CreateQuickReply(c.Request().Context(), &qr); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, qr)
}

func (h *Handler) DeactivateQuickReply(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeactivateQuickReply(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "quick reply not found")
		case errors.Is(err, ErrUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}
