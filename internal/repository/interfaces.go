package repository

import (
	"context"

	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/domain/user"

	"github.com/google/uuid"
)

// RoomRepository is the sole authority over persisted room state. All
// mutations go through these helpers so the exclusivity and uniqueness
// invariants hold regardless of caller interleaving.
type RoomRepository interface {
	// GetOrCreateActiveRoom returns the room with is_active=true, creating
	// it if absent. Safe under concurrent first access.
	GetOrCreateActiveRoom(ctx context.Context, name string) (chat.Room, error)

	// AddParticipant records room membership. Idempotent.
	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error

	// ListMessages returns the room's messages newest-first with reactions,
	// read receipts, comments and replies loaded.
	ListMessages(ctx context.Context, roomID uuid.UUID) ([]chat.Message, error)

	AppendMessage(ctx context.Context, m *chat.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (chat.Message, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error

	// SetReaction records the user's single reaction slot on a message.
	// Returns false when the same reaction already existed (no-op).
	SetReaction(ctx context.Context, messageID, userID uuid.UUID, kind string) (bool, error)
	ListReactions(ctx context.Context, messageID uuid.UUID) ([]chat.MessageReaction, error)

	AddComment(ctx context.Context, c *chat.Comment) error
	GetComment(ctx context.Context, messageID, commentID uuid.UUID) (chat.Comment, error)
	AddReply(ctx context.Context, r *chat.Reply) error

	// MarkRead acknowledges messages for a user. Unknown ids are skipped.
	MarkRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error
}

// UserRepository is the identity lookup collaborator.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}
