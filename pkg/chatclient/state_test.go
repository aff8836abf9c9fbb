package chatclient

import (
	"testing"
	"time"

	"ummah-chat/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEnvelope(t *testing.T, event string, payload interface{}) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(event, "room-1", payload)
	require.NoError(t, err)
	return env
}

func msgView(id, sender, content string) events.MessageView {
	return events.MessageView{
		ID:       id,
		Sender:   sender,
		Content:  content,
		Likes:    []string{},
		Dislikes: []string{},
		Comments: []events.CommentView{},
		ReadBy:   []string{sender},
	}
}

func TestNewMessagesArriveMostRecentFirst(t *testing.T) {
	s := NewState("me")

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "me", "first"))))
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m2", "other", "second"))))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, "m1", msgs[1].ID)
}

func TestDuplicateNewMessageIgnored(t *testing.T) {
	s := NewState("me")
	view := msgView("m1", "me", "hello")

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, view)))
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, view)))

	assert.Len(t, s.Messages(), 1)
}

func TestLoadReplacesState(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("stale", "other", "old"))))

	snapshot := []events.MessageView{
		msgView("m2", "other", "newest"),
		msgView("m1", "me", "older"),
	}
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventLoadMessages, snapshot)))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)
}

func TestReactionReplacesBothSets(t *testing.T) {
	s := NewState("me")
	view := msgView("m1", "other", "hello")
	view.Likes = []string{"u1"}
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, view)))

	// u1 switches from like to dislike; one event carries the new truth.
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventMessageDisliked, events.ReactionPayload{
		MessageID: "m1",
		UserID:    "u1",
		Likes:     []string{},
		Dislikes:  []string{"u1"},
	})))

	m, ok := s.Message("m1")
	require.True(t, ok)
	assert.Empty(t, m.Likes)
	assert.Equal(t, []string{"u1"}, m.Dislikes)
}

func TestReplyScopedByCommentID(t *testing.T) {
	s := NewState("me")
	view := msgView("m1", "other", "hello")
	// Two comments with identical text; only the id may disambiguate.
	view.Comments = []events.CommentView{
		{ID: "c1", Sender: "u1", Content: "same text", Replies: []events.ReplyView{}},
		{ID: "c2", Sender: "u2", Content: "same text", Replies: []events.ReplyView{}},
	}
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, view)))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventReplyAdded, events.ReplyPayload{
		MessageID: "m1",
		CommentID: "c2",
		Reply:     events.ReplyView{ID: "r1", Sender: "me", Content: "reply"},
	})))

	m, ok := s.Message("m1")
	require.True(t, ok)
	assert.Empty(t, m.Comments[0].Replies)
	require.Len(t, m.Comments[1].Replies, 1)
	assert.Equal(t, "r1", m.Comments[1].Replies[0].ID)
}

func TestCommentAppended(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "other", "hello"))))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewComment, events.CommentPayload{
		MessageID: "m1",
		Comment:   events.CommentView{ID: "c1", Sender: "me", Content: "nice"},
	})))

	m, ok := s.Message("m1")
	require.True(t, ok)
	require.Len(t, m.Comments, 1)
	assert.Equal(t, "c1", m.Comments[0].ID)
}

func TestMessageDeletedRemoved(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "other", "hello"))))
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m2", "other", "world"))))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventMessageDeleted, events.MessageDeletedPayload{
		MessageID: "m1",
	})))

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m2", msgs[0].ID)
}

func TestNotificationsOnlyForForeignMessages(t *testing.T) {
	s := NewState("me")

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("mine", "me", "own"))))
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("theirs", "other", "hi"))))

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "theirs", notes[0].MessageID)
}

func TestForeignCommentProducesNotification(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "me", "own post"))))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewComment, events.CommentPayload{
		MessageID: "m1",
		Comment:   events.CommentView{ID: "c1", Sender: "other", SenderName: "Bilal", Content: "nice"},
	})))

	notes := s.Notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, events.EventNewComment, notes[0].Event)
	assert.Equal(t, "m1", notes[0].MessageID)
	assert.Equal(t, "Bilal", notes[0].SenderName)
}

func TestLocalCommentProducesNoNotification(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "other", "post"))))
	s.Dismiss("m1")

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewComment, events.CommentPayload{
		MessageID: "m1",
		Comment:   events.CommentView{ID: "c1", Sender: "me", Content: "my own comment"},
	})))

	assert.Empty(t, s.Notifications())
}

func TestForeignReactionProducesNotification(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "me", "post"))))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventMessageLiked, events.ReactionPayload{
		MessageID: "m1",
		UserID:    "other",
		UserName:  "Bilal",
		Likes:     []string{"other"},
		Dislikes:  []string{},
	})))

	notes := s.Notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, events.EventMessageLiked, notes[0].Event)
	assert.Equal(t, "Bilal", notes[0].SenderName)
}

func TestLocalReactionProducesNoNotification(t *testing.T) {
	s := NewState("me")
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "other", "post"))))
	s.Dismiss("m1")

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventMessageLiked, events.ReactionPayload{
		MessageID: "m1",
		UserID:    "me",
		Likes:     []string{"me"},
		Dislikes:  []string{},
	})))

	assert.Empty(t, s.Notifications())
}

func TestForeignReplyProducesNotification(t *testing.T) {
	s := NewState("me")
	view := msgView("m1", "me", "post")
	view.Comments = []events.CommentView{{ID: "c1", Sender: "me", Content: "comment", Replies: []events.ReplyView{}}}
	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, view)))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventReplyAdded, events.ReplyPayload{
		MessageID: "m1",
		CommentID: "c1",
		Reply:     events.ReplyView{ID: "r1", Sender: "other", SenderName: "Bilal", Content: "reply"},
	})))

	notes := s.Notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, events.EventReplyAdded, notes[0].Event)
}

func TestNotifyActionRecordsOptimisticEntry(t *testing.T) {
	now := time.Now()
	s := NewState("me", WithClock(func() time.Time { return now }))

	s.NotifyAction("m1", "Message sent")

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationLocalAction, notes[0].Event)
	assert.Equal(t, "Message sent", notes[0].Text)

	now = now.Add(DefaultNotificationTTL + time.Millisecond)
	assert.Empty(t, s.Notifications())
}

func TestNotificationExpiry(t *testing.T) {
	now := time.Now()
	s := NewState("me", WithClock(func() time.Time { return now }))

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "other", "hi"))))
	require.Len(t, s.Notifications(), 1)

	now = now.Add(DefaultNotificationTTL + time.Millisecond)
	assert.Empty(t, s.Notifications())
}

func TestNotificationDismiss(t *testing.T) {
	s := NewState("me")

	require.NoError(t, s.Apply(mustEnvelope(t, events.EventNewMessage, msgView("m1", "other", "hi"))))
	require.Len(t, s.Notifications(), 1)

	s.Dismiss("m1")
	assert.Empty(t, s.Notifications())
}

func TestUnknownEventIgnored(t *testing.T) {
	s := NewState("me")
	env, err := events.NewEnvelope("somethingNew", "room-1", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, s.Apply(env))
	assert.Empty(t, s.Messages())
}
