package messaging

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
	conv := api.Group("/conversations", auth.RequireTier(auth.TierAuthenticated))
	conv.GET("/mine", h.ListMine)
	conv.GET("/assigned", h.ListAssigned, auth.RequireTier(auth.TierAttendant))
	conv.GET("/open", h.ListOpen, auth.RequireTier(auth.TierManager))
	conv.GET("", h.ListAll, auth.RequireTier(auth.TierManager))
	conv.POST("", h.CreateConversation)
	conv.GET("/:id", h.GetConversation)
	conv.PATCH("/:id/status", h.UpdateStatus, auth.RequireTier(auth.TierAttendant))
	conv.PATCH("/:id/assign", h.Assign, auth.RequireTier(auth.TierManager))

	conv.GET("/:id/messages", h.ListMessages)
	conv.POST("/:id/messages", h.SendMessage)
	conv.POST("/:id/messages/read", h.MarkMessagesRead)

	conv.GET("/:id/notes", h.ListNotes, auth.RequireTier(auth.TierAttendant))
	conv.POST("/:id/notes", h.CreateNote, auth.RequireTier(auth.TierAttendant))
}

func conversationID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid conversation id")
	}
	return id, nil
}

func writeError(err error) error {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	case errors.Is(err, ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) CreateConversation(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var body struct {
		ChannelID int64   `json:"channel_id"`
		Priority  string  `json:"priority"`
		Subject   *string `json:"subject"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	conv := &Conversation{
		PatientID: p.ID,
		ChannelID: body.ChannelID,
		Priority:  body.Priority,
		Subject:   body.Subject,
	}
	if err := h.svc.CreateConversation(c.Request().Context(), conv); err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, conv)
}

func (h *Handler) GetConversation(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	conv, err := h.svc.GetConversation(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *Handler) ListMine(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	convs, err := h.svc.ListMine(c.Request().Context(), p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, convs)
}

func (h *Handler) ListAssigned(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	convs, err := h.svc.ListAssigned(c.Request().Context(), p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, convs)
}

func (h *Handler) ListAll(c echo.Context) error {
	pg := pagination.FromContext(c)
	convs, total, err := h.svc.ListAll(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(convs, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListOpen(c echo.Context) error {
	convs, err := h.svc.ListOpen(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, convs)
}

func (h *Handler) Assign(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	var body struct {
		AttendantID int64 `json:"attendant_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Assign(c.Request().Context(), id, body.AttendantID); err != nil {
		return writeError(err)
	}
	conv, err := h.svc.GetConversation(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status); err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": body.Status})
}

func (h *Handler) SendMessage(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.svc.SendMessage(c.Request().Context(), id, p.ID, p.Role, body.Content)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListMessages(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) MarkMessagesRead(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.MarkMessagesRead(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked": n})
}

func (h *Handler) CreateNote(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var body struct {
		Note     string `json:"note"`
		NoteType string `json:"note_type"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	note := &ConversationNote{
		ConversationID: id,
		AttendantID:    p.ID,
		Note:           body.Note,
		NoteType:       body.NoteType,
	}
	if err := h.svc.CreateNote(c.Request().Context(), note); err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *Handler) ListNotes(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	notes, err := h.svc.ListNotes(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, notes)
}
