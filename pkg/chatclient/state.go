// Package chatclient maintains a local mirror of the chat room for a
// single connected user. Feed every inbound envelope to Apply and the
// state converges on what the server holds.
package chatclient

import (
	"encoding/json"
	"sync"
	"time"

	"ummah-chat/internal/events"
)

// DefaultNotificationTTL is how long a notification stays active before
// it expires on its own.
const DefaultNotificationTTL = 5 * time.Second

// NotificationLocalAction marks an optimistic notification recorded for
// an action this client initiated, before the broadcast confirms it.
const NotificationLocalAction = "localAction"

// Notification is a transient alert. Foreign room activity produces one
// per event; local actions produce one optimistic entry via NotifyAction.
type Notification struct {
	Event      string
	MessageID  string
	SenderName string
	Text       string
	CreatedAt  time.Time
}

// State is the client-side view of the room. Messages are ordered most
// recent first, matching the server's history order.
type State struct {
	mu sync.Mutex

	localUserID     string
	notificationTTL time.Duration

	messages      []events.MessageView
	notifications []notificationEntry
	nowFn         func() time.Time
}

type notificationEntry struct {
	Notification
	dismissed bool
}

type Option func(*State)

// WithNotificationTTL overrides the notification expiry window.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(s *State) { s.notificationTTL = ttl }
}

// WithClock injects a time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.nowFn = now }
}

func NewState(localUserID string, opts ...Option) *State {
	s := &State{
		localUserID:     localUserID,
		notificationTTL: DefaultNotificationTTL,
		nowFn:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply merges one server envelope into the local state. Unknown events
// are ignored so older clients survive protocol additions.
func (s *State) Apply(env events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch env.Event {
	case events.EventLoadMessages:
		return s.applyLoad(env.Payload)
	case events.EventNewMessage:
		return s.applyNewMessage(env.Payload)
	case events.EventMessageLiked, events.EventMessageDisliked:
		return s.applyReaction(env.Event, env.Payload)
	case events.EventNewComment:
		return s.applyComment(env.Payload)
	case events.EventReplyAdded:
		return s.applyReply(env.Payload)
	case events.EventMessageDeleted:
		return s.applyDeleted(env.Payload)
	default:
		return nil
	}
}

// NotifyAction records an optimistic notification for an action this
// client just sent, so the UI can acknowledge it before the broadcast
// round-trips. Expires and dismisses like any other notification.
func (s *State) NotifyAction(messageID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(NotificationLocalAction, messageID, "", text)
}

// notify enqueues an alert. Caller holds s.mu.
func (s *State) notify(event, messageID, senderName, text string) {
	s.notifications = append(s.notifications, notificationEntry{
		Notification: Notification{
			Event:      event,
			MessageID:  messageID,
			SenderName: senderName,
			Text:       text,
			CreatedAt:  s.nowFn(),
		},
	})
}

func (s *State) applyLoad(payload json.RawMessage) error {
	var messages []events.MessageView
	if err := json.Unmarshal(payload, &messages); err != nil {
		return err
	}
	s.messages = messages
	return nil
}

func (s *State) applyNewMessage(payload json.RawMessage) error {
	var msg events.MessageView
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}

	// Broadcasts reach the sender too; applying our own message twice
	// would duplicate it.
	for _, existing := range s.messages {
		if existing.ID == msg.ID {
			return nil
		}
	}

	s.messages = append([]events.MessageView{msg}, s.messages...)

	if msg.Sender != s.localUserID {
		s.notify(events.EventNewMessage, msg.ID, msg.SenderName, msg.Content)
	}
	return nil
}

func (s *State) applyReaction(event string, payload json.RawMessage) error {
	var p events.ReactionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	// Both sets are replaced wholesale. A like superseding a dislike
	// arrives as one event and still leaves the sets consistent.
	for i := range s.messages {
		if s.messages[i].ID == p.MessageID {
			s.messages[i].Likes = p.Likes
			s.messages[i].Dislikes = p.Dislikes
			break
		}
	}

	if p.UserID != s.localUserID {
		s.notify(event, p.MessageID, p.UserName, "")
	}
	return nil
}

func (s *State) applyComment(payload json.RawMessage) error {
	var p events.CommentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	for i := range s.messages {
		if s.messages[i].ID != p.MessageID {
			continue
		}
		for _, c := range s.messages[i].Comments {
			if c.ID == p.Comment.ID {
				return nil
			}
		}
		s.messages[i].Comments = append(s.messages[i].Comments, p.Comment)
		break
	}

	if p.Comment.Sender != s.localUserID {
		s.notify(events.EventNewComment, p.MessageID, p.Comment.SenderName, p.Comment.Content)
	}
	return nil
}

func (s *State) applyReply(payload json.RawMessage) error {
	var p events.ReplyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	// Replies are matched by id, never by content: two comments with the
	// same text must not both receive the reply.
loop:
	for i := range s.messages {
		if s.messages[i].ID != p.MessageID {
			continue
		}
		for j := range s.messages[i].Comments {
			if s.messages[i].Comments[j].ID != p.CommentID {
				continue
			}
			for _, r := range s.messages[i].Comments[j].Replies {
				if r.ID == p.Reply.ID {
					return nil
				}
			}
			s.messages[i].Comments[j].Replies = append(s.messages[i].Comments[j].Replies, p.Reply)
			break loop
		}
		break
	}

	if p.Reply.Sender != s.localUserID {
		s.notify(events.EventReplyAdded, p.MessageID, p.Reply.SenderName, p.Reply.Content)
	}
	return nil
}

func (s *State) applyDeleted(payload json.RawMessage) error {
	var p events.MessageDeletedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	for i := range s.messages {
		if s.messages[i].ID == p.MessageID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	return nil
}

// Messages returns a copy of the current message list, most recent
// first.
func (s *State) Messages() []events.MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.MessageView, len(s.messages))
	copy(out, s.messages)
	return out
}

// Message returns the message with the given id, if present.
func (s *State) Message(id string) (events.MessageView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return events.MessageView{}, false
}

// Notifications returns alerts that are neither dismissed nor expired.
func (s *State) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	out := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.dismissed {
			continue
		}
		if now.Sub(n.CreatedAt) >= s.notificationTTL {
			continue
		}
		out = append(out, n.Notification)
	}
	return out
}

// Dismiss hides all notifications for a message before they expire.
func (s *State) Dismiss(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].MessageID == messageID {
			s.notifications[i].dismissed = true
		}
	}
}
