package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	g := api.Group("/metrics", auth.RequireTier(auth.TierManager))
	g.GET("", h.ListByAttendant)
	g.GET("/overall", h.ListOverall)
	g.PUT("", h.Upsert)
}

func dateRange(c echo.Context) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.QueryParam("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse("2006-01-02", c.QueryParam("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *Handler) ListByAttendant(c echo.Context) error {
	attendantID, err := strconv.ParseInt(c.QueryParam("attendant_id"), 10, 64)
	if err != nil || attendantID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "attendant_id is required")
	}
	start, end, err := dateRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end dates are required (YYYY-MM-DD)")
	}
	result, err := h.svc.ListByAttendant(c.Request().Context(), attendantID, start, end)
	if err != nil {
		if errors.Is(err, ErrMissingRange) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListOverall(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end dates are required (YYYY-MM-DD)")
	}
	result, err := h.svc.ListOverall(c.Request().Context(), start, end)
	if err != nil {
		if errors.Is(err, ErrMissingRange) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Upsert(c echo.Context) error {
	var body struct {
		AttendantID           int64  `json:"attendant_id"`
		Date                  string `json:"date"`
		TotalConversations    int    `json:"total_conversations"`
		ResolvedConversations int    `json:"resolved_conversations"`
		AverageResponseTime   int    `json:"average_response_time"`
		TotalMessages         int    `json:"total_messages"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	m := &AttendanceMetric{
		AttendantID:           body.AttendantID,
		Date:                  date,
		TotalConversations:    body.TotalConversations,
		ResolvedConversations: body.ResolvedConversations,
		AverageResponseTime:   body.AverageResponseTime,
		TotalMessages:         body.TotalMessages,
	}
	if err := h.svc.Upsert(c.Request().Context(), m); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}
