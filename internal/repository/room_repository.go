package repository

import (
	"context"
	"errors"
	"time"

	"ummah-chat/internal/domain/chat"
	chat_errors "ummah-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) GetOrCreateActiveRoom(ctx context.Context, name string) (chat.Room, error) {
	candidate := chat.Room{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	// Conditional insert against the uniq_active_room partial index.
	// Concurrent first-accesses race here; losers insert nothing and
	// read the winner back below.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&candidate)
	if res.Error != nil && !isUniqueViolation(res.Error) && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return chat.Room{}, res.Error
	}

	var room chat.Room
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Room{}, chat_errors.ErrNotFound
		}
		return chat.Room{}, err
	}
	return room, nil
}

func (r *PostgresRoomRepository) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	p := chat.Participant{RoomID: roomID, UserID: userID, JoinedAt: time.Now()}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&p)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return chat_errors.ErrNotFound
		}
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) ListMessages(ctx context.Context, roomID uuid.UUID) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("message_reactions.created_at ASC")
		}).
		Preload("Reads").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.created_at ASC")
		}).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresRoomRepository) AppendMessage(ctx context.Context, m *chat.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			if isForeignKeyViolation(err) {
				return chat_errors.ErrNotFound
			}
			return err
		}
		// The sender has read their own message.
		read := chat.MessageRead{MessageID: m.ID, UserID: m.SenderID, ReadAt: m.CreatedAt}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error; err != nil {
			return err
		}
		m.Reads = []chat.MessageRead{read}
		return nil
	})
}

func (r *PostgresRoomRepository) GetMessage(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Reactions").
		Preload("Reads").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.created_at ASC")
		}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, chat_errors.ErrNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PostgresRoomRepository) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	// Hard removal; comments, replies, reactions and receipts cascade.
	res := r.db.WithContext(ctx).Delete(&chat.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) SetReaction(ctx context.Context, messageID, userID uuid.UUID, kind string) (bool, error) {
	reaction := chat.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	// One statement covers the whole read-modify-write: inserting claims
	// the user's single reaction slot, the conditional DO UPDATE flips an
	// opposite reaction, and RowsAffected == 0 means the same reaction was
	// already present.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"kind": kind, "created_at": reaction.CreatedAt}),
			Where: clause.Where{
				Exprs: []clause.Expression{
					clause.Neq{
						Column: clause.Column{Table: "message_reactions", Name: "kind"},
						Value:  kind,
					},
				},
			},
		}).
		Create(&reaction)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return false, chat_errors.ErrNotFound
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresRoomRepository) ListReactions(ctx context.Context, messageID uuid.UUID) ([]chat.MessageReaction, error) {
	var reactions []chat.MessageReaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

func (r *PostgresRoomRepository) AddComment(ctx context.Context, c *chat.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isForeignKeyViolation(err) {
			return chat_errors.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresRoomRepository) GetComment(ctx context.Context, messageID, commentID uuid.UUID) (chat.Comment, error) {
	var c chat.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND message_id = ?", commentID, messageID).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.created_at ASC")
		}).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Comment{}, chat_errors.ErrNotFound
		}
		return chat.Comment{}, err
	}
	return c, nil
}

func (r *PostgresRoomRepository) AddReply(ctx context.Context, reply *chat.Reply) error {
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	reply.CreatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		if isForeignKeyViolation(err) {
			return chat_errors.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresRoomRepository) MarkRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error {
	if len(messageIDs) == 0 {
		return nil
	}
	// Unknown ids are skipped, not failed.
	var known []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("id IN ?", messageIDs).
		Pluck("id", &known).Error
	if err != nil {
		return err
	}
	if len(known) == 0 {
		return nil
	}

	now := time.Now()
	reads := make([]chat.MessageRead, 0, len(known))
	for _, msgID := range known {
		reads = append(reads, chat.MessageRead{MessageID: msgID, UserID: userID, ReadAt: now})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&reads).Error
}
