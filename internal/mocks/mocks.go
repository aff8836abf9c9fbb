// Package mocks holds testify mocks for the repository and event bus
// interfaces used across service and handler tests.
package mocks

import (
	"context"

	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) GetOrCreateActiveRoom(ctx context.Context, name string) (chat.Room, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(chat.Room), args.Error(1)
}

func (m *RoomRepositoryMock) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ListMessages(ctx context.Context, roomID uuid.UUID) ([]chat.Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.Message), args.Error(1)
}

func (m *RoomRepositoryMock) AppendMessage(ctx context.Context, msg *chat.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *RoomRepositoryMock) GetMessage(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(chat.Message), args.Error(1)
}

func (m *RoomRepositoryMock) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RoomRepositoryMock) SetReaction(ctx context.Context, messageID, userID uuid.UUID, kind string) (bool, error) {
	args := m.Called(ctx, messageID, userID, kind)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) ListReactions(ctx context.Context, messageID uuid.UUID) ([]chat.MessageReaction, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.MessageReaction), args.Error(1)
}

func (m *RoomRepositoryMock) AddComment(ctx context.Context, c *chat.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *RoomRepositoryMock) GetComment(ctx context.Context, messageID, commentID uuid.UUID) (chat.Comment, error) {
	args := m.Called(ctx, messageID, commentID)
	return args.Get(0).(chat.Comment), args.Error(1)
}

func (m *RoomRepositoryMock) AddReply(ctx context.Context, r *chat.Reply) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RoomRepositoryMock) MarkRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, messageIDs)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, channel string, payload []byte) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}
