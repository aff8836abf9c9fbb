package events

import "time"

// Server -> client events
const (
	EventLoadMessages    = "loadMessages"
	EventNewMessage      = "newMessage"
	EventMessageLiked    = "messageLiked"
	EventMessageDisliked = "messageDisliked"
	EventNewComment      = "newComment"
	EventReplyAdded      = "replyAdded"
	EventMessageDeleted  = "messageDeleted"
	EventReplyError      = "replyError"
	EventError           = "error"
)

// Client -> server actions
const (
	ActionJoin           = "join"
	ActionSendMessage    = "sendMessage"
	ActionLikeMessage    = "likeMessage"
	ActionDislikeMessage = "dislikeMessage"
	ActionAddComment     = "addComment"
	ActionAddReply       = "addReply"
	ActionRead           = "read"
)

// Redis channel prefix for room broadcasts
const ChannelPrefixRoom = "channel:room:"

// ChannelPatternRooms is the pattern the websocket bridge subscribes to.
const ChannelPatternRooms = ChannelPrefixRoom + "*"

func RoomChannel(roomID string) string {
	return ChannelPrefixRoom + roomID
}

// MessageView is the authoritative wire shape of a message. Broadcasts
// always carry post-mutation state so clients never guess server-assigned
// ids or reaction sets.
type MessageView struct {
	ID            string        `json:"id"`
	Sender        string        `json:"sender"`
	SenderName    string        `json:"senderName"`
	SenderPicture string        `json:"senderPicture,omitempty"`
	Content       string        `json:"content"`
	Timestamp     time.Time     `json:"timestamp"`
	Likes         []string      `json:"likes"`
	Dislikes      []string      `json:"dislikes"`
	Comments      []CommentView `json:"comments"`
	ReadBy        []string      `json:"readBy"`
}

type CommentView struct {
	ID         string      `json:"id"`
	Sender     string      `json:"sender"`
	SenderName string      `json:"senderName"`
	Content    string      `json:"content"`
	Timestamp  time.Time   `json:"timestamp"`
	Replies    []ReplyView `json:"replies"`
}

type ReplyView struct {
	ID            string    `json:"id"`
	Sender        string    `json:"sender"`
	SenderName    string    `json:"senderName"`
	SenderPicture string    `json:"senderPicture,omitempty"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReactionPayload carries the acting user plus both full reaction sets.
// The original protocol never announced the implicit removal when a
// dislike superseded a like; shipping the authoritative sets closes
// that gap without a second event.
type ReactionPayload struct {
	MessageID string   `json:"messageId"`
	UserID    string   `json:"userId"`
	UserName  string   `json:"userName"`
	Likes     []string `json:"likes"`
	Dislikes  []string `json:"dislikes"`
}

type CommentPayload struct {
	MessageID string      `json:"messageId"`
	Comment   CommentView `json:"comment"`
}

type ReplyPayload struct {
	MessageID string    `json:"messageId"`
	CommentID string    `json:"commentId"`
	Reply     ReplyView `json:"reply"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
