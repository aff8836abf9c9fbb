package handler

import (
	"context"
	"errors"
	"net/http"

	"ummah-chat/internal/services"
	"ummah-chat/internal/transport/httpdto"
	chat_errors "ummah-chat/pkg/errors"
	"ummah-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PresenceReader reports which users currently hold a live connection
// into a room.
type PresenceReader interface {
	OnlineUsers(ctx context.Context, roomID string) ([]string, error)
	OnlineCount(ctx context.Context, roomID string) (int64, error)
}

// ChatHandler exposes the REST surface of the chat room: history reads,
// message lookup and deletion, read acknowledgements and live presence.
// Live traffic goes over the websocket; these endpoints serve moderation
// tools and cold loads.
type ChatHandler struct {
	service  *services.ChatService
	presence PresenceReader
	log      *logger.Logger
}

func NewChatHandler(service *services.ChatService, presence PresenceReader, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: service, presence: presence, log: log}
}

// History returns the active room snapshot without joining it.
func (h *ChatHandler) History(c *gin.Context) {
	snap, err := h.service.History(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(snap))
}

// Presence returns the users currently connected to the active room.
func (h *ChatHandler) Presence(c *gin.Context) {
	roomID, name, err := h.service.Room(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	online, err := h.presence.OnlineUsers(c.Request.Context(), roomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	count, err := h.presence.OnlineCount(c.Request.Context(), roomID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresenceResponse{
		RoomID: roomID,
		Name:   name,
		Online: online,
		Count:  count,
	}))
}

func (h *ChatHandler) GetMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_INPUT"))
		return
	}

	view, err := h.service.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_INPUT"))
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), messageID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": messageID.String()}))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, ids); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"acknowledged": len(ids)}))
}

func (h *ChatHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case errors.Is(err, chat_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_INPUT"))
	case errors.Is(err, chat_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	default:
		h.log.Errorf("chat handler: %v", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}
