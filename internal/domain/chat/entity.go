package chat

import (
	"time"

	"github.com/google/uuid"
)

// Reaction kinds. One row per (message, user) makes like/dislike
// mutual exclusivity structural rather than enforced in code.
const (
	ReactionLike    = "LIKE"
	ReactionDislike = "DISLIKE"
)

// Room represents the chat_rooms table. A partial unique index on
// (is_active) WHERE is_active guarantees at most one active room.
type Room struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time

	Participants []Participant `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	Messages     []Message     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// Participant represents room_participants. Membership grows
// monotonically; rows are never pruned.
type Participant struct {
	RoomID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time
}

// Message represents the messages table. Sender name and picture are
// denormalized snapshots taken at post time and never refreshed.
type Message struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID        uuid.UUID `gorm:"type:uuid;index;not null"`
	SenderID      uuid.UUID `gorm:"type:uuid;not null"`
	SenderName    string    `gorm:"not null"`
	SenderPicture string
	Content       string `gorm:"not null"`
	CreatedAt     time.Time

	Reactions []MessageReaction `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Reads     []MessageRead     `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Comments  []Comment         `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// MessageReaction represents message_reactions
type MessageReaction struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"not null"`
	CreatedAt time.Time
}

// MessageRead represents message_reads
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt    time.Time
}

// Comment represents the comments table (first-level replies to a message)
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageID  uuid.UUID `gorm:"type:uuid;index;not null"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null"`
	SenderName string    `gorm:"not null"`
	Content    string    `gorm:"not null"`
	CreatedAt  time.Time

	Replies []Reply `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

// Reply represents the replies table. One level of nesting only:
// replies hang off comments and have no children of their own.
type Reply struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CommentID     uuid.UUID `gorm:"type:uuid;index;not null"`
	SenderID      uuid.UUID `gorm:"type:uuid;not null"`
	SenderName    string    `gorm:"not null"`
	SenderPicture string
	Content       string `gorm:"not null"`
	CreatedAt     time.Time
}

func (Room) TableName() string {
	return "chat_rooms"
}

func (Participant) TableName() string {
	return "room_participants"
}

func (Message) TableName() string {
	return "messages"
}

func (MessageReaction) TableName() string {
	return "message_reactions"
}

func (MessageRead) TableName() string {
	return "message_reads"
}

func (Comment) TableName() string {
	return "comments"
}

func (Reply) TableName() string {
	return "replies"
}
