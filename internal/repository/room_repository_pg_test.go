//go:build integration

// These tests run against a real Postgres because the invariants they
// cover live in SQL: the partial unique index keeping the active room a
// singleton, and the conditional reaction upsert. Run with:
//
//	go test -tags integration ./internal/repository/
//
// using the same DB_* environment variables as the server.
package repository

import (
	"context"
	"sync"
	"testing"

	"ummah-chat/config"
	"ummah-chat/internal/domain/chat"
	"ummah-chat/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	require.NoError(t, db.AutoMigrate(
		&chat.Room{},
		&chat.Participant{},
		&chat.Message{},
		&chat.MessageReaction{},
		&chat.MessageRead{},
		&chat.Comment{},
		&chat.Reply{},
	))
	require.NoError(t, database.ApplyRawMigrations(db, "../../migrations"))

	require.NoError(t, db.Exec("TRUNCATE chat_rooms, room_participants, messages, message_reactions, message_reads, comments, replies CASCADE").Error)
	return db
}

func TestGetOrCreateActiveRoomConcurrentFirstAccess(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	const callers = 8
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			room, err := repo.GetOrCreateActiveRoom(ctx, "community")
			ids[i], errs[i] = room.ID, err
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var active int64
	require.NoError(t, db.Model(&chat.Room{}).Where("is_active = ?", true).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestSetReactionExclusiveAndIdempotent(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room, err := repo.GetOrCreateActiveRoom(ctx, "community")
	require.NoError(t, err)

	msg := chat.Message{
		RoomID:     room.ID,
		SenderID:   uuid.New(),
		SenderName: "Amina",
		Content:    "hello",
	}
	require.NoError(t, repo.AppendMessage(ctx, &msg))

	userID := uuid.New()

	changed, err := repo.SetReaction(ctx, msg.ID, userID, chat.ReactionLike)
	require.NoError(t, err)
	assert.True(t, changed, "first like claims the slot")

	changed, err = repo.SetReaction(ctx, msg.ID, userID, chat.ReactionLike)
	require.NoError(t, err)
	assert.False(t, changed, "repeated like is a no-op")

	changed, err = repo.SetReaction(ctx, msg.ID, userID, chat.ReactionDislike)
	require.NoError(t, err)
	assert.True(t, changed, "opposite reaction flips the slot")

	reactions, err := repo.ListReactions(ctx, msg.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1, "one reaction row per (message, user)")
	assert.Equal(t, chat.ReactionDislike, reactions[0].Kind)
}

func TestSetReactionUnknownMessage(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRoomRepository(db)

	_, err := repo.SetReaction(context.Background(), uuid.New(), uuid.New(), chat.ReactionLike)
	require.Error(t, err)
}
