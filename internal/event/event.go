package event

// UserID identifies a user. SystemUser marks events with no acting user.
type UserID int64

// ConferenceID identifies a conference. AnyConference means unspecified.
type ConferenceID int64

// MessageID identifies a stored message.
type MessageID int64

const (
	SystemUser    UserID       = -1
	AnyConference ConferenceID = -1
)

// Kind names an event variant; it is used for logs and metric labels.
type Kind string

const (
	KindChatMessage               Kind = "chat_message"
	KindChatAnonymousMessage      Kind = "chat_anonymous_message"
	KindBroadcastMessage          Kind = "broadcast_message"
	KindBroadcastAnonymousMessage Kind = "broadcast_anonymous_message"
	KindNewMessage                Kind = "new_message"
	KindUserAttendance            Kind = "user_attendance"
	KindReloadUserProfile         Kind = "reload_user_profile"
	KindMessageDeleted            Kind = "message_deleted"
)

// Event is a notification delivered to EventTargets.
type Event interface {
	// Origin is the acting user, or SystemUser.
	Origin() UserID
	Kind() Kind
	// Deliver invokes the single EventTarget callback for this variant.
	// Events outside the built-in set should call t.OnEvent.
	Deliver(t EventTarget) error
}

// ClientEvent is an Event that only makes sense for a directly connected
// client, and can therefore be handed to the narrower ClientEventTarget.
type ClientEvent interface {
	Event
	DeliverClient(t ClientEventTarget) error
}

type base struct{ origin UserID }

func (b base) Origin() UserID { return b.origin }
