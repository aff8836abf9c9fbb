package services

import (
	"context"
	"errors"
	"strings"

	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/events"
	"ummah-chat/internal/repository"
	chat_errors "ummah-chat/pkg/errors"
	"ummah-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService applies one inbound action to the store and publishes the
// resulting delta to the room channel. Handlers are stateless beyond the
// repositories; broadcasts are best-effort and never fail the mutation.
type ChatService struct {
	roomName string
	rooms    repository.RoomRepository
	users    repository.UserRepository
	bus      events.Publisher
	log      *logger.Logger
}

func NewChatService(roomName string, rooms repository.RoomRepository, users repository.UserRepository, bus events.Publisher, log *logger.Logger) *ChatService {
	if roomName == "" {
		roomName = "community"
	}
	return &ChatService{
		roomName: roomName,
		rooms:    rooms,
		users:    users,
		bus:      bus,
		log:      log,
	}
}

// RoomSnapshot is the initial state load sent on join.
type RoomSnapshot struct {
	RoomID   string               `json:"roomId"`
	Name     string               `json:"name"`
	Messages []events.MessageView `json:"messages"`
}

type PostMessageInput struct {
	UserID   uuid.UUID
	UserName string
	Content  string
}

type CommentInput struct {
	Sender     uuid.UUID
	SenderName string
	Content    string
}

type ReplyInput struct {
	Sender        uuid.UUID
	SenderName    string
	SenderPicture string
	Content       string
}

// Join verifies the user against the identity collaborator, records
// room membership and returns the current message list.
func (s *ChatService) Join(ctx context.Context, userID uuid.UUID) (RoomSnapshot, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return RoomSnapshot{}, err
	}

	room, err := s.rooms.GetOrCreateActiveRoom(ctx, s.roomName)
	if err != nil {
		return RoomSnapshot{}, err
	}

	if err := s.rooms.AddParticipant(ctx, room.ID, userID); err != nil {
		return RoomSnapshot{}, err
	}

	messages, err := s.rooms.ListMessages(ctx, room.ID)
	if err != nil {
		return RoomSnapshot{}, err
	}

	return RoomSnapshot{
		RoomID:   room.ID.String(),
		Name:     room.Name,
		Messages: toMessageViews(messages),
	}, nil
}

// Room returns the active room's identity without loading messages.
func (s *ChatService) Room(ctx context.Context) (string, string, error) {
	room, err := s.rooms.GetOrCreateActiveRoom(ctx, s.roomName)
	if err != nil {
		return "", "", err
	}
	return room.ID.String(), room.Name, nil
}

// History returns the current room snapshot without joining.
func (s *ChatService) History(ctx context.Context) (RoomSnapshot, error) {
	room, err := s.rooms.GetOrCreateActiveRoom(ctx, s.roomName)
	if err != nil {
		return RoomSnapshot{}, err
	}
	messages, err := s.rooms.ListMessages(ctx, room.ID)
	if err != nil {
		return RoomSnapshot{}, err
	}
	return RoomSnapshot{
		RoomID:   room.ID.String(),
		Name:     room.Name,
		Messages: toMessageViews(messages),
	}, nil
}

func (s *ChatService) PostMessage(ctx context.Context, in PostMessageInput) (events.MessageView, error) {
	if in.UserID == uuid.Nil || strings.TrimSpace(in.UserName) == "" || strings.TrimSpace(in.Content) == "" {
		return events.MessageView{}, chat_errors.ErrInvalidInput
	}

	room, err := s.rooms.GetOrCreateActiveRoom(ctx, s.roomName)
	if err != nil {
		return events.MessageView{}, err
	}

	// Sender picture is denormalized from the identity read model at post
	// time; a later profile edit does not rewrite history.
	var picture string
	if u, err := s.users.GetByID(ctx, in.UserID); err == nil {
		picture = u.Picture
	} else if !errors.Is(err, chat_errors.ErrUserNotFound) {
		return events.MessageView{}, err
	}

	msg := chat.Message{
		RoomID:        room.ID,
		SenderID:      in.UserID,
		SenderName:    in.UserName,
		SenderPicture: picture,
		Content:       in.Content,
	}
	if err := s.rooms.AppendMessage(ctx, &msg); err != nil {
		return events.MessageView{}, err
	}

	if err := s.rooms.AddParticipant(ctx, room.ID, in.UserID); err != nil {
		s.log.Errorf("record participant %s: %v", in.UserID, err)
	}

	view := toMessageView(msg)
	s.publish(ctx, room.ID, events.EventNewMessage, view)
	return view, nil
}

func (s *ChatService) Like(ctx context.Context, messageID, userID uuid.UUID, userName string) error {
	return s.react(ctx, messageID, userID, userName, chat.ReactionLike)
}

func (s *ChatService) Dislike(ctx context.Context, messageID, userID uuid.UUID, userName string) error {
	return s.react(ctx, messageID, userID, userName, chat.ReactionDislike)
}

func (s *ChatService) react(ctx context.Context, messageID, userID uuid.UUID, userName, kind string) error {
	if messageID == uuid.Nil || userID == uuid.Nil {
		return chat_errors.ErrInvalidInput
	}

	changed, err := s.rooms.SetReaction(ctx, messageID, userID, kind)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return chat_errors.ErrMessageNotFound
		}
		return err
	}
	if !changed {
		// Already reacted with the same kind. No broadcast.
		return nil
	}

	reactions, err := s.rooms.ListReactions(ctx, messageID)
	if err != nil {
		return err
	}
	likes, dislikes := splitReactions(reactions)

	msg, err := s.rooms.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}

	event := events.EventMessageLiked
	if kind == chat.ReactionDislike {
		event = events.EventMessageDisliked
	}
	s.publish(ctx, msg.RoomID, event, events.ReactionPayload{
		MessageID: messageID.String(),
		UserID:    userID.String(),
		UserName:  userName,
		Likes:     likes,
		Dislikes:  dislikes,
	})
	return nil
}

func (s *ChatService) AddComment(ctx context.Context, messageID uuid.UUID, in CommentInput) (events.CommentView, error) {
	if in.Sender == uuid.Nil || strings.TrimSpace(in.Content) == "" {
		return events.CommentView{}, chat_errors.ErrInvalidInput
	}

	msg, err := s.rooms.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return events.CommentView{}, chat_errors.ErrMessageNotFound
		}
		return events.CommentView{}, err
	}

	comment := chat.Comment{
		MessageID:  messageID,
		SenderID:   in.Sender,
		SenderName: in.SenderName,
		Content:    in.Content,
	}
	if err := s.rooms.AddComment(ctx, &comment); err != nil {
		return events.CommentView{}, err
	}

	view := toCommentView(comment)
	s.publish(ctx, msg.RoomID, events.EventNewComment, events.CommentPayload{
		MessageID: messageID.String(),
		Comment:   view,
	})
	return view, nil
}

func (s *ChatService) AddReply(ctx context.Context, messageID, commentID uuid.UUID, in ReplyInput) (events.ReplyView, error) {
	if in.Sender == uuid.Nil || strings.TrimSpace(in.SenderName) == "" || strings.TrimSpace(in.Content) == "" {
		return events.ReplyView{}, chat_errors.ErrInvalidInput
	}

	msg, err := s.rooms.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return events.ReplyView{}, chat_errors.ErrMessageNotFound
		}
		return events.ReplyView{}, err
	}

	// The comment must belong to this message, not merely exist.
	comment, err := s.rooms.GetComment(ctx, messageID, commentID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return events.ReplyView{}, chat_errors.ErrCommentNotFound
		}
		return events.ReplyView{}, err
	}

	reply := chat.Reply{
		CommentID:     comment.ID,
		SenderID:      in.Sender,
		SenderName:    in.SenderName,
		SenderPicture: in.SenderPicture,
		Content:       in.Content,
	}
	if err := s.rooms.AddReply(ctx, &reply); err != nil {
		return events.ReplyView{}, err
	}

	view := toReplyView(reply)
	s.publish(ctx, msg.RoomID, events.EventReplyAdded, events.ReplyPayload{
		MessageID: messageID.String(),
		CommentID: commentID.String(),
		Reply:     view,
	})
	return view, nil
}

// MarkRead is fire-and-forget: unknown ids are skipped and nothing is
// broadcast.
func (s *ChatService) MarkRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error {
	if userID == uuid.Nil || len(messageIDs) == 0 {
		return nil
	}
	return s.rooms.MarkRead(ctx, userID, messageIDs)
}

func (s *ChatService) GetMessage(ctx context.Context, messageID uuid.UUID) (events.MessageView, error) {
	msg, err := s.rooms.GetMessage(ctx, messageID)
	if err != nil {
		return events.MessageView{}, err
	}
	return toMessageView(msg), nil
}

func (s *ChatService) DeleteMessage(ctx context.Context, messageID uuid.UUID) error {
	msg, err := s.rooms.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.rooms.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.publish(ctx, msg.RoomID, events.EventMessageDeleted, events.MessageDeletedPayload{
		MessageID: messageID.String(),
	})
	return nil
}

// publish sends a delta to the room channel. Delivery is best-effort:
// failures are logged, never retried, and never surfaced to the caller.
func (s *ChatService) publish(ctx context.Context, roomID uuid.UUID, event string, payload interface{}) {
	env, err := events.NewEnvelope(event, roomID.String(), payload)
	if err != nil {
		s.log.Errorf("marshal %s payload: %v", event, err)
		return
	}
	data, err := env.Marshal()
	if err != nil {
		s.log.Errorf("marshal %s envelope: %v", event, err)
		return
	}
	if err := s.bus.Publish(ctx, events.RoomChannel(roomID.String()), data); err != nil {
		s.log.ErrorCtx(ctx, "broadcast failed",
			zap.String("event", event),
			zap.String("room_id", roomID.String()),
			zap.Error(err))
	}
}

func splitReactions(reactions []chat.MessageReaction) (likes, dislikes []string) {
	likes = make([]string, 0, len(reactions))
	dislikes = make([]string, 0)
	for _, r := range reactions {
		if r.Kind == chat.ReactionDislike {
			dislikes = append(dislikes, r.UserID.String())
		} else {
			likes = append(likes, r.UserID.String())
		}
	}
	return likes, dislikes
}

func toMessageView(m chat.Message) events.MessageView {
	likes, dislikes := splitReactions(m.Reactions)

	readBy := make([]string, 0, len(m.Reads))
	for _, r := range m.Reads {
		readBy = append(readBy, r.UserID.String())
	}

	comments := make([]events.CommentView, 0, len(m.Comments))
	for _, c := range m.Comments {
		comments = append(comments, toCommentView(c))
	}

	return events.MessageView{
		ID:            m.ID.String(),
		Sender:        m.SenderID.String(),
		SenderName:    m.SenderName,
		SenderPicture: m.SenderPicture,
		Content:       m.Content,
		Timestamp:     m.CreatedAt,
		Likes:         likes,
		Dislikes:      dislikes,
		Comments:      comments,
		ReadBy:        readBy,
	}
}

func toMessageViews(messages []chat.Message) []events.MessageView {
	views := make([]events.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, toMessageView(m))
	}
	return views
}

func toCommentView(c chat.Comment) events.CommentView {
	replies := make([]events.ReplyView, 0, len(c.Replies))
	for _, r := range c.Replies {
		replies = append(replies, toReplyView(r))
	}
	return events.CommentView{
		ID:         c.ID.String(),
		Sender:     c.SenderID.String(),
		SenderName: c.SenderName,
		Content:    c.Content,
		Timestamp:  c.CreatedAt,
		Replies:    replies,
	}
}

func toReplyView(r chat.Reply) events.ReplyView {
	return events.ReplyView{
		ID:            r.ID.String(),
		Sender:        r.SenderID.String(),
		SenderName:    r.SenderName,
		SenderPicture: r.SenderPicture,
		Content:       r.Content,
		Timestamp:     r.CreatedAt,
	}
}
