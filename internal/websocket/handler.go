package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ummah-chat/internal/events"
	"ummah-chat/internal/services"
	"ummah-chat/internal/transport/httpdto"
	chat_errors "ummah-chat/pkg/errors"
	"ummah-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatService is the server-side state machine the handler dispatches
// inbound actions to. Mutating calls publish their own room broadcasts;
// the handler only converts failures into sender-scoped events.
type ChatService interface {
	Join(ctx context.Context, userID uuid.UUID) (services.RoomSnapshot, error)
	PostMessage(ctx context.Context, in services.PostMessageInput) (events.MessageView, error)
	Like(ctx context.Context, messageID, userID uuid.UUID, userName string) error
	Dislike(ctx context.Context, messageID, userID uuid.UUID, userName string) error
	AddComment(ctx context.Context, messageID uuid.UUID, in services.CommentInput) (events.CommentView, error)
	AddReply(ctx context.Context, messageID, commentID uuid.UUID, in services.ReplyInput) (events.ReplyView, error)
	MarkRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error
}

// Presence tracks live room membership across instances. The set
// carries a TTL, so connections must refresh it for as long as they
// stay open.
type Presence interface {
	SetOnline(ctx context.Context, roomID, userID string) error
	SetOffline(ctx context.Context, roomID, userID string) error
	Heartbeat(ctx context.Context, roomID string) error
}

type Handler struct {
	auth     *services.AuthService
	chat     ChatService
	hub      *Hub
	presence Presence
	log      *logger.Logger

	heartbeatEvery time.Duration
}

func NewHandler(auth *services.AuthService, chat ChatService, hub *Hub, presence Presence, log *logger.Logger) *Handler {
	return &Handler{
		auth:           auth,
		chat:           chat,
		hub:            hub,
		presence:       presence,
		log:            log,
		heartbeatEvery: time.Minute,
	}
}

// clientFrame is one inbound action: {"event": "...", "data": {...}}
type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sendMessageData struct {
	UserName string `json:"userName"`
	Message  string `json:"message"`
}

type reactionData struct {
	MessageID string `json:"messageId"`
	UserName  string `json:"userName"`
}

type addCommentData struct {
	MessageID string `json:"messageId"`
	Comment   struct {
		SenderName string `json:"senderName"`
		Content    string `json:"content"`
	} `json:"comment"`
}

type addReplyData struct {
	MessageID     string `json:"messageId"`
	CommentID     string `json:"commentId"`
	Content       string `json:"content"`
	SenderName    string `json:"senderName"`
	SenderPicture string `json:"senderPicture"`
}

type readData struct {
	MessageIDs []string `json:"messageIds"`
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)
	if h.presence != nil {
		go h.heartbeatLoop(ctx, client)
	}

	h.log.InfoCtx(ctx, "websocket connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID))

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(client, events.EventError, "malformed frame")
			continue
		}
		h.dispatch(ctx, client, userID, frame)
	}

	h.disconnect(client)
}

// dispatch applies one action. Domain errors are emitted to the sender
// only and never drop the connection.
func (h *Handler) dispatch(ctx context.Context, client *Client, userID uuid.UUID, frame clientFrame) {
	switch frame.Event {
	case events.ActionJoin:
		h.handleJoin(ctx, client, userID)
	case events.ActionSendMessage:
		h.handleSendMessage(ctx, client, userID, frame.Data)
	case events.ActionLikeMessage:
		h.handleReaction(ctx, client, userID, frame.Data, true)
	case events.ActionDislikeMessage:
		h.handleReaction(ctx, client, userID, frame.Data, false)
	case events.ActionAddComment:
		h.handleAddComment(ctx, client, userID, frame.Data)
	case events.ActionAddReply:
		h.handleAddReply(ctx, client, userID, frame.Data)
	case events.ActionRead:
		h.handleRead(ctx, client, userID, frame.Data)
	default:
		h.sendError(client, events.EventError, "unknown event")
	}
}

func (h *Handler) handleJoin(ctx context.Context, client *Client, userID uuid.UUID) {
	snap, err := h.chat.Join(ctx, userID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrUserNotFound) {
			h.sendError(client, events.EventError, "User not found")
			return
		}
		h.log.Errorf("join user %s: %v", userID, err)
		h.sendError(client, events.EventError, "failed to join chat")
		return
	}

	h.hub.JoinRoom(client, snap.RoomID)
	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, snap.RoomID, client.UserID); err != nil {
			h.log.Warnf("presence online %s: %v", client.UserID, err)
		}
	}

	h.sendEvent(client, events.EventLoadMessages, snap.Messages)
}

func (h *Handler) handleSendMessage(ctx context.Context, client *Client, userID uuid.UUID, data json.RawMessage) {
	var in sendMessageData
	if err := json.Unmarshal(data, &in); err != nil {
		h.sendError(client, events.EventError, "malformed frame")
		return
	}

	_, err := h.chat.PostMessage(ctx, services.PostMessageInput{
		UserID:   userID,
		UserName: in.UserName,
		Content:  in.Message,
	})
	if err != nil {
		h.sendError(client, events.EventError, domainMessage(err, "failed to post message"))
	}
}

func (h *Handler) handleReaction(ctx context.Context, client *Client, userID uuid.UUID, data json.RawMessage, like bool) {
	var in reactionData
	if err := json.Unmarshal(data, &in); err != nil {
		h.sendError(client, events.EventError, "malformed frame")
		return
	}
	messageID, err := uuid.Parse(in.MessageID)
	if err != nil {
		h.sendError(client, events.EventError, "invalid message id")
		return
	}

	if like {
		err = h.chat.Like(ctx, messageID, userID, in.UserName)
	} else {
		err = h.chat.Dislike(ctx, messageID, userID, in.UserName)
	}
	if err != nil {
		h.sendError(client, events.EventError, domainMessage(err, "failed to react"))
	}
}

func (h *Handler) handleAddComment(ctx context.Context, client *Client, userID uuid.UUID, data json.RawMessage) {
	var in addCommentData
	if err := json.Unmarshal(data, &in); err != nil {
		h.sendError(client, events.EventError, "malformed frame")
		return
	}
	messageID, err := uuid.Parse(in.MessageID)
	if err != nil {
		h.sendError(client, events.EventError, "invalid message id")
		return
	}

	_, err = h.chat.AddComment(ctx, messageID, services.CommentInput{
		Sender:     userID,
		SenderName: in.Comment.SenderName,
		Content:    in.Comment.Content,
	})
	if err != nil {
		h.sendError(client, events.EventError, domainMessage(err, "failed to add comment"))
	}
}

func (h *Handler) handleAddReply(ctx context.Context, client *Client, userID uuid.UUID, data json.RawMessage) {
	var in addReplyData
	if err := json.Unmarshal(data, &in); err != nil {
		h.sendError(client, events.EventReplyError, "malformed frame")
		return
	}
	messageID, err := uuid.Parse(in.MessageID)
	if err != nil {
		h.sendError(client, events.EventReplyError, "invalid message id")
		return
	}
	commentID, err := uuid.Parse(in.CommentID)
	if err != nil {
		h.sendError(client, events.EventReplyError, "invalid comment id")
		return
	}

	_, err = h.chat.AddReply(ctx, messageID, commentID, services.ReplyInput{
		Sender:        userID,
		SenderName:    in.SenderName,
		SenderPicture: in.SenderPicture,
		Content:       in.Content,
	})
	if err != nil {
		h.sendError(client, events.EventReplyError, domainMessage(err, "failed to add reply"))
	}
}

func (h *Handler) handleRead(ctx context.Context, client *Client, userID uuid.UUID, data json.RawMessage) {
	var in readData
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(in.MessageIDs))
	for _, raw := range in.MessageIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	// Fire-and-forget: no broadcast, no acknowledgement.
	if err := h.chat.MarkRead(ctx, userID, ids); err != nil {
		h.log.Errorf("mark read for %s: %v", userID, err)
	}
}

// heartbeatLoop refreshes the presence TTL while the connection lives,
// so members connected longer than the TTL stay visible.
func (h *Handler) heartbeatLoop(ctx context.Context, client *Client) {
	ticker := time.NewTicker(h.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			room := client.Room()
			if room == "" {
				continue
			}
			if err := h.presence.Heartbeat(ctx, room); err != nil {
				h.log.Warnf("presence heartbeat %s: %v", client.UserID, err)
			}
		}
	}
}

func (h *Handler) disconnect(client *Client) {
	if room := client.Room(); room != "" && h.presence != nil {
		if err := h.presence.SetOffline(context.Background(), room, client.UserID); err != nil {
			h.log.Warnf("presence offline %s: %v", client.UserID, err)
		}
	}
	h.hub.Unregister(client)
	h.log.Infof("websocket disconnected client=%s user=%s", client.ID, client.UserID)
}

// sendEvent emits a sender-scoped event directly to one connection.
func (h *Handler) sendEvent(client *Client, event string, payload interface{}) {
	env, err := events.NewEnvelope(event, "", payload)
	if err != nil {
		h.log.Errorf("marshal %s payload: %v", event, err)
		return
	}
	data, err := env.Marshal()
	if err != nil {
		h.log.Errorf("marshal %s envelope: %v", event, err)
		return
	}
	client.SendMessage(data)
}

func (h *Handler) sendError(client *Client, event, message string) {
	h.sendEvent(client, event, events.ErrorPayload{Message: message})
}

// domainMessage maps domain errors to client-facing text.
func domainMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, chat_errors.ErrCommentNotFound):
		return "Comment not found"
	case errors.Is(err, chat_errors.ErrMessageNotFound):
		return "Message not found"
	case errors.Is(err, chat_errors.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, chat_errors.ErrInvalidInput):
		return "Missing required fields"
	default:
		return fallback
	}
}
